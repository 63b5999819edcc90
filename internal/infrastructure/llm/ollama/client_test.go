package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
	"github.com/kirillkom/insurance-onboarding/internal/infrastructure/llm/prompt"
)

func TestGenerateReplySendsContextAsUserTurn(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"reply\":\"Are you looking for medical insurance?\",\"options\":[\"Yes\",\"No\"],\"session_updates\":{\"step\":\"q1\"},\"complete\":false}"}}`))
	}))
	defer server.Close()

	client := New(server.URL+"/", "llama3", Options{})
	got, err := client.GenerateReply(context.Background(), domain.ReplyRequest{
		Context:         domain.ReplyContext{Step: domain.StepStart},
		LastUserMessage: "",
	})
	if err != nil {
		t.Fatalf("GenerateReply() error = %v", err)
	}
	if got.Reply != "Are you looking for medical insurance?" || got.SessionUpdates["step"] != "q1" {
		t.Fatalf("unexpected reply: %#v", got)
	}
	if captured.Model != "llama3" || captured.Format != "json" || captured.Stream {
		t.Fatalf("unexpected request: %#v", captured)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Content != prompt.SystemInstruction {
		t.Fatalf("system instruction missing: %#v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, `"step":"start"`) {
		t.Fatalf("user turn missing context: %s", captured.Messages[1].Content)
	}
}

func TestGenerateReplyRejectsProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Hello there"}}`))
	}))
	defer server.Close()

	if _, err := New(server.URL, "m", Options{}).GenerateReply(context.Background(), domain.ReplyRequest{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestGenerateTextIncludesHTTPBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, "m", Options{}).GenerateText(context.Background(), "hello")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary for 502, got %v", err)
	}
}

func TestGenerateTextIgnoresCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":" hi "}}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := New(server.URL, "m", Options{Timeout: time.Second}).GenerateText(ctx, "hello")
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if got != "hi" {
		t.Fatalf("GenerateText() = %q", got)
	}
}
