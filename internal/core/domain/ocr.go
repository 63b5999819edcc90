package domain

import (
	"path/filepath"
	"strings"
)

type OCRLanguage string

const (
	LanguageEnglish OCRLanguage = "eng"
	LanguageArabic  OCRLanguage = "ara"
)

// OCRStatus is the outcome code of one recognition call.
type OCRStatus int

const (
	OCRSuccess          OCRStatus = 0
	OCRNetworkError     OCRStatus = 1
	OCRHTTPError        OCRStatus = 2
	OCRProviderError    OCRStatus = 4
	OCRNoResults        OCRStatus = 5
	OCRProcessingFailed OCRStatus = 6
)

func (s OCRStatus) String() string {
	switch s {
	case OCRSuccess:
		return "success"
	case OCRNetworkError:
		return "network_error"
	case OCRHTTPError:
		return "http_error"
	case OCRProviderError:
		return "provider_error"
	case OCRNoResults:
		return "no_results"
	case OCRProcessingFailed:
		return "processing_failed"
	default:
		return "unknown"
	}
}

// OCRResult is what the recognition service returned for one call.
// Pages holds the per-page text in provider order; for images it has one entry.
type OCRResult struct {
	Pages   []string
	Status  OCRStatus
	Message string
}

func (r OCRResult) OK() bool {
	return r.Status == OCRSuccess
}

// Text joins non-empty pages with a blank line and trims the result.
func (r OCRResult) Text() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if strings.TrimSpace(p) == "" {
			continue
		}
		parts = append(parts, p)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

type Side string

const (
	SideFront   Side = "front"
	SideBack    Side = "back"
	SideUnknown Side = "unknown"
)

// UploadFile is one file received in an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f UploadFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

func (f UploadFile) IsPDF() bool {
	return f.Ext() == ".pdf"
}

func (f UploadFile) IsSpreadsheet() bool {
	switch f.Ext() {
	case ".xlsx", ".xlsm", ".xltx":
		return true
	default:
		return false
	}
}

// ProcessedFile is the per-file outcome of recognition and side detection.
type ProcessedFile struct {
	Name       string    `json:"name"`
	Text       string    `json:"-"`
	Side       Side      `json:"side"`
	IsPDF      bool      `json:"is_pdf"`
	PageCount  int       `json:"page_count,omitempty"`
	StorageKey string    `json:"storage_key,omitempty"`
	Language   string    `json:"language,omitempty"`
	Status     OCRStatus `json:"-"`
	Message    string    `json:"-"`
}
