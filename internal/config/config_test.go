package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"OCR_IMAGE_TIMEOUT", "OCR_PDF_TIMEOUT", "NATS_SUBJECT", "LLM_PROVIDER", "PRODUCT_BASE_URL", "UPLOAD_MAX_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.OCRImageTimeout != 60*time.Second || cfg.OCRPDFTimeout != 90*time.Second {
		t.Fatalf("unexpected ocr timeouts: %v %v", cfg.OCRImageTimeout, cfg.OCRPDFTimeout)
	}
	if cfg.NATSSubject != "identity.records.updated" {
		t.Fatalf("expected default subject, got %q", cfg.NATSSubject)
	}
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.LLMProvider)
	}
	if cfg.ProductBaseURL != "https://gia-insurance-provider.com/" {
		t.Fatalf("unexpected product base url %q", cfg.ProductBaseURL)
	}
	if cfg.UploadMaxBytes != 20<<20 {
		t.Fatalf("unexpected upload limit %d", cfg.UploadMaxBytes)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("OCR_IMAGE_TIMEOUT", "15s")
	t.Setenv("OCR_PDF_TIMEOUT", "120")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("BREAKER_ENABLED", "false")
	t.Setenv("OCR_CACHE_SIZE", "not-a-number")

	cfg := Load()
	if cfg.OCRImageTimeout != 15*time.Second {
		t.Fatalf("expected 15s, got %v", cfg.OCRImageTimeout)
	}
	if cfg.OCRPDFTimeout != 120*time.Second {
		t.Fatalf("expected bare seconds to parse, got %v", cfg.OCRPDFTimeout)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled")
	}
	if cfg.OCRCacheSize != 256 {
		t.Fatalf("invalid int must fall back to default, got %d", cfg.OCRCacheSize)
	}
}
