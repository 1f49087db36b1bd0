// SPDX-License-Identifier: MIT

package feed

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrapError_Sentinels(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		sentinel error
		reason   string
	}{
		{name: "HTTP 404", status: http.StatusNotFound, sentinel: ErrStatus, reason: "status"},
		{name: "HTTP 503", status: http.StatusServiceUnavailable, sentinel: ErrStatus, reason: "status"},
		{name: "Network timeout", err: &net.DNSError{IsTimeout: true}, sentinel: ErrTimeout, reason: "timeout"},
		{name: "Context timeout", err: context.DeadlineExceeded, sentinel: ErrTimeout, reason: "timeout"},
		{name: "Connection refused", err: errors.New("dial tcp: connection refused"), sentinel: ErrUnavailable, reason: "unavailable"},
		{name: "Decode failure on 200", err: errors.New("unexpected EOF"), status: http.StatusOK, sentinel: ErrBadResponse, reason: "bad_response"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := wrapError(tc.err, tc.status, nil)
			if !errors.Is(wrapped, tc.sentinel) {
				t.Errorf("expected sentinel %v, got %v", tc.sentinel, wrapped)
			}
			if wrapped.Reason() != tc.reason {
				t.Errorf("Reason() = %q, want %q", wrapped.Reason(), tc.reason)
			}
			if wrapped.Status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, wrapped.Status)
			}
		})
	}
}

func TestWrapError_Redaction(t *testing.T) {
	body := []byte(`{"error": "expired link https://blob.example.com/a.jpg?X-Amz-Signature=abcdef123&token=s3cr3t"}`)
	err := wrapError(nil, http.StatusForbidden, body)

	msg := err.Error()
	if strings.Contains(msg, "abcdef123") {
		t.Error("expected signature to be redacted")
	}
	if strings.Contains(msg, "s3cr3t") {
		t.Error("expected token to be redacted")
	}
	if !strings.Contains(msg, "[REDACTED]") {
		t.Error("expected [REDACTED] placeholder")
	}
}

func TestWrapError_TruncatesBody(t *testing.T) {
	err := wrapError(nil, http.StatusBadGateway, []byte(strings.Repeat("x", 1000)))
	if len(err.Body) > maxErrorBody+len("…") {
		t.Errorf("body not truncated: %d bytes", len(err.Body))
	}
}

func TestWrapError_TruncatesOnRuneBoundary(t *testing.T) {
	// "a" shifts every two-byte rune so the byte limit lands mid-rune.
	body := "a" + strings.Repeat("é", 300)
	err := wrapError(nil, http.StatusBadGateway, []byte(body))
	if !utf8.ValidString(err.Body) {
		t.Fatalf("truncated body is not valid UTF-8: %q", err.Body)
	}
	if !strings.HasSuffix(err.Body, "é…") {
		t.Errorf("expected a whole rune before the ellipsis, got %q", err.Body[len(err.Body)-8:])
	}
	if len(err.Body) > maxErrorBody+len("…") {
		t.Errorf("body not truncated: %d bytes", len(err.Body))
	}
}

func TestMessage(t *testing.T) {
	if Message(nil) != "" {
		t.Error("Message(nil) should be empty")
	}
	fe := wrapError(nil, http.StatusInternalServerError, nil)
	if !strings.Contains(Message(fe), "HTTP 500") {
		t.Errorf("Message() = %q", Message(fe))
	}
	if Message(errors.New("plain")) != "plain" {
		t.Error("Message should fall back to err.Error()")
	}
}
