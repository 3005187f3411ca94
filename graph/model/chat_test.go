package model

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestWrapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if err := WrapError("anthropic", nil); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("context errors pass through", func(t *testing.T) {
		err := WrapError("openai", fmt.Errorf("request failed: %w", context.Canceled))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			t.Error("context error should not become an APIError")
		}
	})

	tests := []struct {
		name      string
		raw       string
		code      string
		retryable bool
	}{
		{"auth failure", "401 unauthorized: invalid api_key", "invalid_api_key", false},
		{"forbidden", "status 403 from upstream", "invalid_api_key", false},
		{"rate limit status", "429 too many requests", "rate_limited", true},
		{"rate limit text", "rate_limit_error: slow down", "rate_limited", true},
		{"quota", "insufficient_quota for this billing period", "quota_exceeded", false},
		{"timeout", "request timeout while waiting for headers", "timeout", true},
		{"overload", "overloaded_error: try again soon", "server_error", true},
		{"unknown", "something odd happened", "api_error", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError("google", errors.New(tt.raw))
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Provider != "google" {
				t.Errorf("provider = %q", apiErr.Provider)
			}
			if apiErr.Code != tt.code {
				t.Errorf("code = %q, want %q", apiErr.Code, tt.code)
			}
			if apiErr.Retryable != tt.retryable {
				t.Errorf("retryable = %t, want %t", apiErr.Retryable, tt.retryable)
			}
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := &APIError{Provider: "openai", Code: "rate_limited", Message: "API rate limit exceeded"}
	want := "openai rate_limited: API rate limit exceeded"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Run("system folded in", func(t *testing.T) {
		got := BuildPrompt(Request{System: "Be brief.", Prompt: "Explain tides."})
		want := "Be brief.\n\nExplain tides."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("no system", func(t *testing.T) {
		if got := BuildPrompt(Request{Prompt: "Explain tides."}); got != "Explain tides." {
			t.Errorf("got %q", got)
		}
	})
}
