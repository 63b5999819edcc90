package pdfinspect

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// Inspector reads PDF structure without rendering pages.
type Inspector struct{}

func New() *Inspector {
	return &Inspector{}
}

func (i *Inspector) PageCount(data []byte) (count int, err error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty pdf")
	}
	// The parser panics on some malformed trailers.
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
