package github

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNewAPIError_Message(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", 404, `{"message":"Not Found","documentation_url":"https://docs.github.com"}`, "Not Found"},
		{"plain body", 502, "upstream timeout", "upstream timeout"},
		{"empty body", 503, "", http.StatusText(503)},
		{"long body", 500, strings.Repeat("x", 600), strings.Repeat("x", 500) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newAPIError(http.MethodGet, "https://api.github.com/x", tt.status, []byte(tt.body))
			if err.Message != tt.want {
				t.Errorf("Message = %q, want %q", err.Message, tt.want)
			}
			if err.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", err.StatusCode, tt.status)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	notFound := &APIError{StatusCode: http.StatusNotFound}
	wrapped := fmt.Errorf("failed to get variable X: %w", notFound)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped 404) = false")
	}
	if IsNotFound(&APIError{StatusCode: http.StatusInternalServerError}) {
		t.Error("IsNotFound(500) = true")
	}
	if IsNotFound(errors.New("not found")) {
		t.Error("IsNotFound(plain error) = true")
	}
	if StatusCode(wrapped) != http.StatusNotFound {
		t.Errorf("StatusCode(wrapped) = %d", StatusCode(wrapped))
	}
	if StatusCode(errors.New("x")) != 0 {
		t.Error("StatusCode(non-API error) should be 0")
	}
}
