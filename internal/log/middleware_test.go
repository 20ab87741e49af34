package log

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
)

type capturingHandler struct {
	records []slog.Record
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func recordAttr(r slog.Record, key string) (slog.Value, bool) {
	var v slog.Value
	var found bool
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == key {
			v = a.Value
			found = true
			return false
		}
		return true
	})
	return v, found
}

func newCapturingStructuredLogger() (*StructuredLogger, *capturingHandler) {
	h := &capturingHandler{}
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentHTTP, Handler: h})
	return NewStructuredLogger(logger), h
}

func TestLogHTTPStartIncludesRequestID(t *testing.T) {
	sl, h := newCapturingStructuredLogger()
	r := httptest.NewRequest("GET", "/goals?kind=asset", nil)

	sl.LogHTTPStart(context.Background(), r, "req_abc123", "10.0.0.1")

	if len(h.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(h.records))
	}
	rec := h.records[0]
	if rec.Message != "HTTP request started" {
		t.Errorf("message = %q", rec.Message)
	}
	if v, ok := recordAttr(rec, FieldRequestID); !ok || v.String() != "req_abc123" {
		t.Errorf("request_id attr = %v, %v; want req_abc123", v, ok)
	}
	if v, ok := recordAttr(rec, FieldClientIP); !ok || v.String() != "10.0.0.1" {
		t.Errorf("client_ip attr = %v, %v; want 10.0.0.1", v, ok)
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantLevel  slog.Level
	}{
		{"success is info", 200, slog.LevelInfo},
		{"client error is warn", 404, slog.LevelWarn},
		{"server error is error", 500, slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sl, h := newCapturingStructuredLogger()
			r := httptest.NewRequest("POST", "/entries", nil)

			sl.LogHTTPEnd(context.Background(), r, "req_xyz", tt.statusCode, 12, "10.0.0.1")

			if len(h.records) != 1 {
				t.Fatalf("expected 1 record, got %d", len(h.records))
			}
			rec := h.records[0]
			if rec.Level != tt.wantLevel {
				t.Errorf("level = %v, want %v", rec.Level, tt.wantLevel)
			}
			if v, ok := recordAttr(rec, FieldRequestID); !ok || v.String() != "req_xyz" {
				t.Errorf("request_id attr = %v, %v; want req_xyz", v, ok)
			}
			if v, ok := recordAttr(rec, FieldStatusCode); !ok || v.Int64() != int64(tt.statusCode) {
				t.Errorf("status_code attr = %v, %v; want %d", v, ok, tt.statusCode)
			}
		})
	}
}
