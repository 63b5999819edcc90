package excel

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T) []byte {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()

	rows := map[string]any{
		"A1": "Name:",
		"B1": "Sara Ahmed",
		"A2": "ID Number",
		"C2": "784-1990-1234567-1",
		"A4": "Nationality: India",
	}
	for cell, value := range rows {
		if err := book.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", cell, err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}

func TestReadTextJoinsRows(t *testing.T) {
	got, err := New().ReadText(context.Background(), workbook(t))
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	want := "Name: Sara Ahmed\nID Number 784-1990-1234567-1\nNationality: India"
	if got != want {
		t.Fatalf("ReadText() = %q, want %q", got, want)
	}
}

func TestReadTextRejectsNonWorkbook(t *testing.T) {
	if _, err := New().ReadText(context.Background(), []byte("plain text")); err == nil {
		t.Fatalf("expected error")
	}
}
