package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/insurance-onboarding/internal/core/domain"
)

func fastConfig() Config {
	return Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: 1 * time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}
}

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(fastConfig())

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "nats.publish", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, func(err error) ErrorClassification {
		return ErrorClassification{Retryable: errors.Is(err, errTemp), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteSingleAttemptNeverRetries(t *testing.T) {
	exec := NewExecutor(fastConfig().SingleAttempt())

	attempts := 0
	err := exec.Execute(context.Background(), "ocrspace.parse", func(context.Context) error {
		attempts++
		return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}, ClassifyTransport)
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     1 * time.Millisecond,
		RetryMaxBackoff:         1 * time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	})
	var transitions []string
	exec.WithStateObserver(func(op, from, to string) {
		transitions = append(transitions, op+":"+from+"->"+to)
	})

	errTemp := errors.New("temporary")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "llm.generate", func(context.Context) error {
			return errTemp
		}, nil)
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "llm.generate", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
	if len(transitions) != 1 || transitions[0] != "llm.generate:closed->open" {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
}

func TestClassifyTransport(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorClassification
	}{
		{"canceled", context.Canceled, ErrorClassification{}},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrorClassification{RecordFailure: true}},
		{"open circuit", gobreaker.ErrOpenState, ErrorClassification{Retryable: true, RecordFailure: true}},
		{"http 503", &HTTPStatusError{Service: "ocrspace", StatusCode: 503}, ErrorClassification{Retryable: true, RecordFailure: true}},
		{"http 400", &HTTPStatusError{Service: "ocrspace", StatusCode: 400}, ErrorClassification{}},
		{"net error", &net.OpError{Op: "read", Err: errors.New("reset")}, ErrorClassification{Retryable: true, RecordFailure: true}},
		{"other", errors.New("boom"), ErrorClassification{RecordFailure: true}},
	}
	for _, tc := range cases {
		if got := ClassifyTransport(tc.err); got != tc.want {
			t.Fatalf("%s: ClassifyTransport() = %#v, want %#v", tc.name, got, tc.want)
		}
	}
}

func TestWrapTemporary(t *testing.T) {
	err := WrapTemporary("ollama chat", &HTTPStatusError{Service: "ollama", Operation: "chat", StatusCode: 502, Status: "502 Bad Gateway"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	plain := errors.New("bad json")
	if got := WrapTemporary("ollama chat", plain); got != plain {
		t.Fatalf("non transient errors must pass through, got %v", got)
	}
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	err := &HTTPStatusError{Service: "ollama", Operation: "chat", Status: "500 Internal Server Error", Body: " model missing \n"}
	if got := err.Error(); got != "ollama chat status: 500 Internal Server Error: model missing" {
		t.Fatalf("Error() = %q", got)
	}
}
