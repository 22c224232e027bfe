package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestParseConnectionID(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name      string
		pathValue string
		wantOK    bool
	}{
		{"valid id", "db_550e8400-e29b-41d4-a716-446655440000", true},
		{"missing prefix", "550e8400-e29b-41d4-a716-446655440000", false},
		{"wrong prefix", "dir_550e8400-e29b-41d4-a716-446655440000", false},
		{"not a uuid", "db_nope", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.SetPathValue("id", tt.pathValue)
			rec := httptest.NewRecorder()

			id, ok := ParseConnectionID(rec, req, logger)

			if ok != tt.wantOK {
				t.Fatalf("ParseConnectionID() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok {
				if id != tt.pathValue {
					t.Errorf("ParseConnectionID() id = %q, want %q", id, tt.pathValue)
				}
				return
			}

			if rec.Code != http.StatusNotFound {
				t.Errorf("ParseConnectionID() status = %d, want %d", rec.Code, http.StatusNotFound)
			}
			var resp ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Error != "connection_not_found" {
				t.Errorf("ParseConnectionID() error = %q, want %q", resp.Error, "connection_not_found")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	if !DecodeJSON(rec, req, &dst, zap.NewNop()) {
		t.Fatalf("DecodeJSON() = false, want true")
	}
	if dst.Name != "x" {
		t.Errorf("Name = %q, want %q", dst.Name, "x")
	}

	req = httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":`))
	rec = httptest.NewRecorder()
	if DecodeJSON(rec, req, &dst, zap.NewNop()) {
		t.Fatalf("DecodeJSON() = true for malformed body")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
