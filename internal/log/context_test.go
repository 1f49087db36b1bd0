// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		requestID string
		want      string
	}{
		{
			name:      "nil context",
			ctx:       nil,
			requestID: "test-id-123",
			want:      "test-id-123",
		},
		{
			name:      "background context",
			ctx:       context.Background(),
			requestID: "req-456",
			want:      "req-456",
		},
		{
			name:      "empty request ID",
			ctx:       context.Background(),
			requestID: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithRequestID(tt.ctx, tt.requestID)
			got := RequestIDFromContext(ctx)
			if got != tt.want {
				t.Errorf("RequestIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextWithFetchID(t *testing.T) {
	ctx := ContextWithFetchID(context.Background(), "fetch-1")
	if got := FetchIDFromContext(ctx); got != "fetch-1" {
		t.Errorf("FetchIDFromContext() = %v, want fetch-1", got)
	}
	if got := FetchIDFromContext(context.Background()); got != "" {
		t.Errorf("FetchIDFromContext() on empty context = %v, want empty", got)
	}
}

func TestRequestIDFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), requestIDKey, 123)
	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("RequestIDFromContext() = %v, want empty", got)
	}
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithFetchID(ctx, "fetch-9")
	cl := WithContext(ctx, l)
	cl.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry[FieldRequestID] != "req-123" {
		t.Errorf("request_id = %v, want req-123", entry[FieldRequestID])
	}
	if entry[FieldFetchID] != "fetch-9" {
		t.Errorf("fetch_id = %v, want fetch-9", entry[FieldFetchID])
	}
}

func TestWithContextWithoutFieldsReturnsLogger(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	cl := WithContext(context.Background(), l)
	cl.Info().Msg("plain")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if _, ok := entry[FieldRequestID]; ok {
		t.Error("unexpected request_id field")
	}
}

func TestDerive(t *testing.T) {
	logger1 := Derive(nil)
	if logger1.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from Derive with nil builder")
	}

	logger2 := Derive(func(ctx *zerolog.Context) {
		ctx.Str("custom_field", "test_value")
	})
	if logger2.GetLevel() > zerolog.PanicLevel {
		t.Error("Expected valid logger from Derive with custom builder")
	}
}

func TestFromContextFallsBackToBase(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil {
		t.Fatal("FromContext returned nil")
	}
}
