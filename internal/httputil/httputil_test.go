package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateNonce_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		nonce := GenerateNonce()
		if len(nonce) < 16 {
			t.Fatalf("nonce %q too short", nonce)
		}
		if seen[nonce] {
			t.Fatalf("duplicate nonce %q", nonce)
		}
		seen[nonce] = true
	}
}

func TestNonceContext(t *testing.T) {
	if got := NonceFromContext(context.Background()); got != "" {
		t.Errorf("expected empty nonce, got %q", got)
	}
	ctx := ContextWithNonce(context.Background(), "abc")
	if got := NonceFromContext(ctx); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, http.StatusCreated, map[string]int{"position": 2})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"position":2}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{http.StatusBadRequest, "title is required"},
		{http.StatusNotFound, "section not found"},
		{http.StatusInternalServerError, `quote " and <tag>`},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.status, tt.message)

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var body ErrorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.message {
				t.Errorf("expected %q, got %q", tt.message, body.Error)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Title string `json:"title"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hero"}`))
	if err := DecodeJSON(httptest.NewRecorder(), r, &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Title != "Hero" {
		t.Errorf("expected Hero, got %q", v.Title)
	}
}

func TestDecodeJSON_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{`},
		{"empty", ``},
		{"oversized", `{"title":"` + strings.Repeat("a", MaxBodyBytes) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v map[string]any
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if err := DecodeJSON(httptest.NewRecorder(), r, &v); err == nil {
				t.Error("expected error")
			}
		})
	}
}
