package excel

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Reader flattens workbook cells into text lines, one line per non-empty row.
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) ReadText(ctx context.Context, data []byte) (string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	lines := make([]string, 0)
	for _, sheet := range book.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				lines = append(lines, strings.Join(cells, " "))
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
