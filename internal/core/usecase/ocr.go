package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

// minAcceptedText is the trimmed rune count an English result must exceed
// before the Arabic retry is skipped.
const minAcceptedText = 10

// OCRTimeouts bound each outbound recognition call.
type OCRTimeouts struct {
	Image time.Duration
	PDF   time.Duration
}

// OCROrchestrator turns one uploaded file into text, retrying once in Arabic
// when the English pass yields too little.
type OCROrchestrator struct {
	recognizer   ports.TextRecognizer
	spreadsheets ports.SpreadsheetReader
	pdfs         ports.PDFInspector
	timeouts     OCRTimeouts
	logger       *slog.Logger
}

func NewOCROrchestrator(
	recognizer ports.TextRecognizer,
	spreadsheets ports.SpreadsheetReader,
	pdfs ports.PDFInspector,
	timeouts OCRTimeouts,
	logger *slog.Logger,
) *OCROrchestrator {
	if timeouts.Image <= 0 {
		timeouts.Image = 60 * time.Second
	}
	if timeouts.PDF <= 0 {
		timeouts.PDF = 90 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OCROrchestrator{
		recognizer:   recognizer,
		spreadsheets: spreadsheets,
		pdfs:         pdfs,
		timeouts:     timeouts,
		logger:       logger,
	}
}

// Recognize returns the processed file with Text, Status and Language set.
// Side is left for the caller.
func (o *OCROrchestrator) Recognize(ctx context.Context, file domain.UploadFile) domain.ProcessedFile {
	out := domain.ProcessedFile{
		Name:  file.Name,
		IsPDF: file.IsPDF(),
	}

	switch {
	case file.IsSpreadsheet() && o.spreadsheets != nil:
		o.readSpreadsheet(ctx, file, &out)
	case out.IsPDF:
		out.PageCount = o.pageCount(file)
		o.recognizePDF(ctx, file, &out)
	default:
		o.recognizeImage(ctx, file, &out)
	}
	return out
}

func (o *OCROrchestrator) recognizeImage(ctx context.Context, file domain.UploadFile, out *domain.ProcessedFile) {
	eng := o.call(ctx, file, domain.LanguageEnglish, o.timeouts.Image)
	engText := firstPage(eng)
	if eng.OK() && utf8.RuneCountInString(engText) > minAcceptedText {
		setResult(out, engText, eng, domain.LanguageEnglish)
		return
	}

	ara := o.call(ctx, file, domain.LanguageArabic, o.timeouts.Image)
	if ara.OK() {
		setResult(out, firstPage(ara), ara, domain.LanguageArabic)
		return
	}
	setResult(out, engText, eng, domain.LanguageEnglish)
}

func (o *OCROrchestrator) recognizePDF(ctx context.Context, file domain.UploadFile, out *domain.ProcessedFile) {
	eng := o.call(ctx, file, domain.LanguageEnglish, o.timeouts.PDF)
	if !eng.OK() {
		setResult(out, "", eng, domain.LanguageEnglish)
		return
	}
	engText := eng.Text()
	if utf8.RuneCountInString(engText) > minAcceptedText {
		setResult(out, engText, eng, domain.LanguageEnglish)
		return
	}

	ara := o.call(ctx, file, domain.LanguageArabic, o.timeouts.PDF)
	switch ara.Status {
	case domain.OCRSuccess:
		setResult(out, ara.Text(), ara, domain.LanguageArabic)
	case domain.OCRHTTPError, domain.OCRProviderError, domain.OCRNoResults:
		o.logger.Warn("arabic pdf pass failed, keeping english text",
			"file", file.Name,
			"ocr_status", int(ara.Status),
			"error", ara.Message,
		)
		setResult(out, engText, domain.OCRResult{Status: domain.OCRSuccess}, domain.LanguageEnglish)
	default:
		setResult(out, "", ara, domain.LanguageArabic)
	}
}

func (o *OCROrchestrator) readSpreadsheet(ctx context.Context, file domain.UploadFile, out *domain.ProcessedFile) {
	text, err := o.spreadsheets.ReadText(ctx, file.Data)
	if err != nil {
		out.Status = domain.OCRProcessingFailed
		out.Message = "Processing error: " + err.Error()
		return
	}
	out.Text = strings.TrimSpace(text)
	out.Status = domain.OCRSuccess
}

func (o *OCROrchestrator) pageCount(file domain.UploadFile) int {
	if o.pdfs == nil {
		return 0
	}
	n, err := o.pdfs.PageCount(file.Data)
	if err != nil {
		o.logger.Warn("pdf inspection failed", "file", file.Name, "error", err)
		return 0
	}
	return n
}

// call issues one recognition request that the client cannot cancel; only the
// per-call timeout ends it early.
func (o *OCROrchestrator) call(ctx context.Context, file domain.UploadFile, lang domain.OCRLanguage, timeout time.Duration) domain.OCRResult {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	started := time.Now()
	res := o.recognizer.Recognize(callCtx, ports.OCRRequest{File: file, Language: lang})
	o.logger.Debug("ocr call finished",
		"file", file.Name,
		"language", string(lang),
		"ocr_status", int(res.Status),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return res
}

func firstPage(res domain.OCRResult) string {
	if len(res.Pages) == 0 {
		return ""
	}
	return strings.TrimSpace(res.Pages[0])
}

func setResult(out *domain.ProcessedFile, text string, res domain.OCRResult, lang domain.OCRLanguage) {
	out.Text = text
	out.Status = res.Status
	out.Message = res.Message
	out.Language = string(lang)
}

// GroupBySide joins front and unknown texts into the front blob and back texts
// into the back blob. An empty front blob borrows the back one.
func GroupBySide(files []domain.ProcessedFile) (front, back string, sides domain.SidesDetected) {
	var frontTexts, backTexts []string
	for _, f := range files {
		if f.Side == domain.SideBack {
			backTexts = append(backTexts, f.Text)
			continue
		}
		frontTexts = append(frontTexts, f.Text)
	}
	front = strings.Join(frontTexts, " ")
	back = strings.Join(backTexts, " ")
	if front == "" && back != "" {
		front = back
	}
	return front, back, domain.SidesDetected{Front: len(frontTexts) > 0, Back: len(backTexts) > 0}
}
