// Package model abstracts hosted language-model providers behind a
// single completion interface so graph nodes stay provider-agnostic.
// Adapters for Anthropic, OpenAI, and Google live in subpackages; Mock
// serves tests.
package model

import (
	"context"
	"errors"
	"strings"
)

// Request is one completion request. System sets instructions and
// behavior; Prompt carries the user content. System may be empty.
type Request struct {
	System string
	Prompt string
}

// Response is a provider-neutral completion result. Tokens is the total
// usage reported by the provider (zero when unreported).
type Response struct {
	Text   string
	Tokens int
}

// Client is a hosted language-model provider.
//
// Implementations must respect context cancellation and translate
// provider failures into *APIError so callers can branch on
// retryability without importing provider SDKs.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// APIError is a provider failure in common form.
type APIError struct {
	Provider  string
	Code      string
	Message   string
	Retryable bool
}

func (e *APIError) Error() string {
	return e.Provider + " " + e.Code + ": " + e.Message
}

// WrapError translates a raw SDK error into an *APIError. Context
// errors pass through unchanged so errors.Is keeps working; everything
// else is classified by status code and message text, the only
// signals the SDKs expose uniformly.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "401", "403", "authentication", "api_key", "api key"):
		return &APIError{Provider: provider, Code: "invalid_api_key",
			Message: "API key is invalid or expired", Retryable: false}
	case containsAny(msg, "429", "rate_limit", "rate limit", "too many requests"):
		return &APIError{Provider: provider, Code: "rate_limited",
			Message: "API rate limit exceeded", Retryable: true}
	case containsAny(msg, "quota", "billing"):
		return &APIError{Provider: provider, Code: "quota_exceeded",
			Message: "API quota exceeded", Retryable: false}
	case containsAny(msg, "timeout", "deadline"):
		return &APIError{Provider: provider, Code: "timeout",
			Message: "request timed out", Retryable: true}
	case containsAny(msg, "500", "502", "503", "overloaded"):
		return &APIError{Provider: provider, Code: "server_error",
			Message: msg, Retryable: true}
	}
	return &APIError{Provider: provider, Code: "api_error", Message: msg, Retryable: false}
}

func containsAny(s string, needles ...string) bool {
	s = strings.ToLower(s)
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// BuildPrompt folds the system instructions into a single prompt
// string for providers called with one user message.
func BuildPrompt(req Request) string {
	if req.System == "" {
		return req.Prompt
	}
	return req.System + "\n\n" + req.Prompt
}
