package ocrspace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/resilience"
)

const DefaultURL = "https://api.ocr.space/parse/image"

// CallObserver is told the outcome of every provider call.
type CallObserver interface {
	RecordOCRCall(language, status string)
}

type Options struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	Executor   *resilience.Executor
	Observer   CallObserver
	Logger     *slog.Logger
}

// Client calls the OCR.space Parse API. Per-call deadlines come from ctx.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
	observer   CallObserver
	logger     *slog.Logger
}

func New(opts Options) *Client {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		url = DefaultURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        url,
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		executor:   opts.Executor,
		observer:   opts.Observer,
		logger:     logger,
	}
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// Recognize runs one Parse API call. It never returns an error; failures are
// encoded in the result status.
func (c *Client) Recognize(ctx context.Context, req ports.OCRRequest) domain.OCRResult {
	result := c.recognize(ctx, req)
	if c.observer != nil {
		c.observer.RecordOCRCall(string(req.Language), result.Status.String())
	}
	return result
}

func (c *Client) recognize(ctx context.Context, req ports.OCRRequest) domain.OCRResult {
	body, contentType, err := c.buildForm(req)
	if err != nil {
		return failure(domain.OCRProcessingFailed, "Processing error: "+err.Error())
	}

	var parsed parseResponse
	call := func(callCtx context.Context) error {
		return c.post(callCtx, body, contentType, &parsed)
	}
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ocrspace.parse", call, resilience.ClassifyTransport)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return classifyFailure(err)
	}

	if parsed.IsErroredOnProcessing {
		msg := errorMessage(parsed.ErrorMessage)
		if msg == "" {
			msg = "Unknown OCR.space error"
		}
		return failure(domain.OCRProviderError, msg)
	}
	if len(parsed.ParsedResults) == 0 {
		return failure(domain.OCRNoResults, "No OCR results returned")
	}

	pages := make([]string, 0, len(parsed.ParsedResults))
	for _, page := range parsed.ParsedResults {
		pages = append(pages, strings.TrimSpace(page.ParsedText))
	}
	return domain.OCRResult{Pages: pages, Status: domain.OCRSuccess}
}

func (c *Client) buildForm(req ports.OCRRequest) ([]byte, string, error) {
	data, partType := c.payload(req.File)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"apikey", c.apiKey},
		{"language", string(req.Language)},
		{"isTable", "true"},
		{"OCREngine", "2"},
		{"scale", "true"},
		{"isCreateSearchablePdf", "false"},
		{"isSearchablePdfHideTextLayer", "false"},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, formFilename(req.File.Name)))
	header.Set("Content-Type", partType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return buf.Bytes(), form.FormDataContentType(), nil
}

// payload returns the bytes to upload. Images that fail to decode are sent
// as received.
func (c *Client) payload(file domain.UploadFile) ([]byte, string) {
	if file.IsPDF() {
		return file.Data, "application/pdf"
	}
	processed, err := preprocess(file.Data)
	if err != nil {
		c.logger.Warn("ocr_preprocess_skipped", "file", file.Name, "error", err)
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return file.Data, contentType
	}
	return processed, "image/jpeg"
}

func (c *Client) post(ctx context.Context, body []byte, contentType string, out *parseResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create parse request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ocrspace parse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &resilience.HTTPStatusError{
			Service:    "ocrspace",
			Operation:  "parse",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(msg),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return "decode parse response: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func classifyFailure(err error) domain.OCRResult {
	var statusErr *resilience.HTTPStatusError
	if errors.As(err, &statusErr) {
		return failure(domain.OCRHTTPError, fmt.Sprintf("HTTP %d", statusErr.StatusCode))
	}
	var decodeErr *decodeError
	if errors.As(err, &decodeErr) {
		return failure(domain.OCRProcessingFailed, "Processing error: "+decodeErr.Error())
	}
	return failure(domain.OCRNetworkError, "Network error: "+err.Error())
}

// errorMessage flattens the provider's ErrorMessage, which is either a string
// or a list of strings.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}
	return ""
}

func formFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "upload"
	}
	return name
}

func failure(status domain.OCRStatus, msg string) domain.OCRResult {
	return domain.OCRResult{Status: status, Message: msg}
}
