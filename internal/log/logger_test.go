// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConfigureAttachesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "slideshow-test", Version: "v0.0.1"})
	t.Cleanup(func() { Configure(Config{}) })

	cl := WithComponent("engine")
	cl.Info().Str(FieldEvent, "test.event").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry[FieldService] != "slideshow-test" {
		t.Errorf("service = %v", entry[FieldService])
	}
	if entry[FieldVersion] != "v0.0.1" {
		t.Errorf("version = %v", entry[FieldVersion])
	}
	if entry[FieldComponent] != "engine" {
		t.Errorf("component = %v", entry[FieldComponent])
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/slideshow", nil)
	req = req.WithContext(ContextWithRequestID(req.Context(), "req-42"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("unmarshal log line %q: %v", line, err)
	}
	if entry[FieldEvent] != "request.handled" {
		t.Errorf("event = %v", entry[FieldEvent])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status field = %v", entry["status"])
	}
	if entry[FieldRequestID] != "req-42" {
		t.Errorf("request_id = %v", entry[FieldRequestID])
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
}
