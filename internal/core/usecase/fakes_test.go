package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

type sessionRepoFake struct {
	byID      map[string]*domain.ChatSession
	getErr    error
	updateErr error
	created   int
	updated   int
}

func newSessionRepoFake(sessions ...*domain.ChatSession) *sessionRepoFake {
	f := &sessionRepoFake{byID: map[string]*domain.ChatSession{}}
	for _, s := range sessions {
		f.byID[s.SessionID] = s
	}
	return f
}

func (f *sessionRepoFake) Create(_ context.Context, s *domain.ChatSession) error {
	f.created++
	s.ID = int64(len(f.byID) + 1)
	copySession := *s
	f.byID[s.SessionID] = &copySession
	return nil
}

func (f *sessionRepoFake) GetBySessionID(_ context.Context, id string) (*domain.ChatSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", errors.New(id))
	}
	copySession := *s
	return &copySession, nil
}

func (f *sessionRepoFake) Update(_ context.Context, s *domain.ChatSession) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated++
	copySession := *s
	f.byID[s.SessionID] = &copySession
	return nil
}

type recordRepoFake struct {
	bySession   map[string]*domain.IdentityRecord
	getErr      error
	created     int
	updated     int
	statusCalls []domain.RecordStatus
	nextID      int64
}

func newRecordRepoFake(recs ...*domain.IdentityRecord) *recordRepoFake {
	f := &recordRepoFake{bySession: map[string]*domain.IdentityRecord{}, nextID: 1}
	for _, r := range recs {
		f.bySession[r.SessionID] = r
		if r.ID >= f.nextID {
			f.nextID = r.ID + 1
		}
	}
	return f
}

func (f *recordRepoFake) Create(_ context.Context, rec *domain.IdentityRecord) error {
	f.created++
	rec.ID = f.nextID
	f.nextID++
	copyRec := *rec
	f.bySession[rec.SessionID] = &copyRec
	return nil
}

func (f *recordRepoFake) GetByID(_ context.Context, id int64) (*domain.IdentityRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, rec := range f.bySession {
		if rec.ID == id {
			copyRec := *rec
			return &copyRec, nil
		}
	}
	return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", errors.New("missing"))
}

func (f *recordRepoFake) GetBySessionID(_ context.Context, sessionID string) (*domain.IdentityRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.bySession[sessionID]
	if !ok {
		return nil, domain.WrapError(domain.ErrRecordNotFound, "get record", errors.New(sessionID))
	}
	copyRec := *rec
	return &copyRec, nil
}

func (f *recordRepoFake) Update(_ context.Context, rec *domain.IdentityRecord) error {
	f.updated++
	copyRec := *rec
	f.bySession[rec.SessionID] = &copyRec
	return nil
}

func (f *recordRepoFake) UpdateStatus(_ context.Context, id int64, status domain.RecordStatus) error {
	f.statusCalls = append(f.statusCalls, status)
	for _, rec := range f.bySession {
		if rec.ID == id {
			rec.Status = status
			return nil
		}
	}
	return domain.WrapError(domain.ErrRecordNotFound, "update record status", errors.New("missing"))
}

type messageRepoFake struct {
	msgs []domain.ChatMessage
}

func (f *messageRepoFake) Append(_ context.Context, msg domain.ChatMessage) error {
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *messageRepoFake) ListBySession(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, 0)
	for _, m := range f.msgs {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

type storageFake struct {
	saved map[string]string
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	f.saved[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.saved[key])), nil
}

type queueFake struct {
	published []int64
	err       error
}

func (f *queueFake) PublishRecordUpdated(_ context.Context, id int64) error {
	f.published = append(f.published, id)
	return f.err
}

func (f *queueFake) SubscribeRecordUpdated(context.Context, func(context.Context, int64) error) error {
	return nil
}

// recognizerFake answers by file name and language. Missing entries return
// an empty successful result.
type recognizerFake struct {
	results map[string]domain.OCRResult
	calls   []ports.OCRRequest
}

func ocrKey(name string, lang domain.OCRLanguage) string {
	return name + "|" + string(lang)
}

func (f *recognizerFake) Recognize(_ context.Context, req ports.OCRRequest) domain.OCRResult {
	f.calls = append(f.calls, req)
	res, ok := f.results[ocrKey(req.File.Name, req.Language)]
	if !ok {
		return domain.OCRResult{Pages: []string{""}, Status: domain.OCRSuccess}
	}
	return res
}

type spreadsheetFake struct {
	text string
	err  error
}

func (f *spreadsheetFake) ReadText(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type pdfInspectorFake struct {
	pages int
	err   error
}

func (f *pdfInspectorFake) PageCount([]byte) (int, error) {
	return f.pages, f.err
}

type generatorFake struct {
	reply    *domain.GeneratedReply
	replyErr error
	text     string
	textErr  error
	requests []domain.ReplyRequest
}

func (f *generatorFake) GenerateReply(_ context.Context, req domain.ReplyRequest) (*domain.GeneratedReply, error) {
	f.requests = append(f.requests, req)
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	return f.reply, nil
}

func (f *generatorFake) GenerateText(context.Context, string) (string, error) {
	return f.text, f.textErr
}

type recommenderFake struct {
	place domain.Place
	band  domain.SalaryBand
	out   domain.Recommendation
}

func (f *recommenderFake) Recommend(place domain.Place, band domain.SalaryBand) domain.Recommendation {
	f.place = place
	f.band = band
	return f.out
}

func okResult(pages ...string) domain.OCRResult {
	return domain.OCRResult{Pages: pages, Status: domain.OCRSuccess}
}
