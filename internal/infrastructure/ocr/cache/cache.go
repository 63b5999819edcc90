package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/core/ports"
)

const (
	defaultSize = 256
	defaultTTL  = time.Hour
)

// LookupObserver is told whether each lookup hit.
type LookupObserver interface {
	RecordOCRCacheLookup(hit bool)
}

// Recognizer remembers successful recognition results per file content and
// language. Failed results always go back to the wrapped recognizer.
type Recognizer struct {
	next     ports.TextRecognizer
	entries  *expirable.LRU[string, domain.OCRResult]
	observer LookupObserver
}

func New(next ports.TextRecognizer, size int, ttl time.Duration, observer LookupObserver) *Recognizer {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Recognizer{
		next:     next,
		entries:  expirable.NewLRU[string, domain.OCRResult](size, nil, ttl),
		observer: observer,
	}
}

func (r *Recognizer) Recognize(ctx context.Context, req ports.OCRRequest) domain.OCRResult {
	key := cacheKey(req)
	if cached, ok := r.entries.Get(key); ok {
		r.observe(true)
		return copyResult(cached)
	}
	r.observe(false)

	result := r.next.Recognize(ctx, req)
	if result.OK() {
		r.entries.Add(key, copyResult(result))
	}
	return result
}

func (r *Recognizer) Len() int {
	return r.entries.Len()
}

func (r *Recognizer) observe(hit bool) {
	if r.observer != nil {
		r.observer.RecordOCRCacheLookup(hit)
	}
}

func cacheKey(req ports.OCRRequest) string {
	sum := sha256.Sum256(req.File.Data)
	return string(req.Language) + ":" + hex.EncodeToString(sum[:])
}

func copyResult(in domain.OCRResult) domain.OCRResult {
	out := in
	out.Pages = append([]string(nil), in.Pages...)
	return out
}
