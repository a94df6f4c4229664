package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/emissions", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return NewRequestBodyParser(httptest.NewRecorder(), req)
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, "application/json", `{"category":" fuel ","amount":12.5,"description":null,"zero":0}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.jsonData == nil {
		t.Fatal("expected JSON body")
	}

	tests := []struct {
		key     string
		want    string
		present bool
	}{
		{"category", "fuel", true},
		{"amount", "12.5", true},
		{"zero", "0", true},
		{"description", "", false},
		{"missing", "", false},
	}
	for _, tt := range tests {
		got, ok := p.Lookup(tt.key)
		if got != tt.want || ok != tt.present {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.present)
		}
	}
}

func TestRequestBodyParser_JSONKeepsNumberLiteral(t *testing.T) {
	p := newParser(t, "", `{"amount": 1e3}`)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.Get("amount"); got != "1e3" {
		t.Errorf("amount = %q, want literal 1e3", got)
	}
}

func TestRequestBodyParser_Form(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded", "category=travel&amount=&description=train%0Atrip")
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.jsonData != nil {
		t.Fatal("form body detected as JSON")
	}

	if v, ok := p.Lookup("amount"); !ok || v != "" {
		t.Errorf("empty form amount should be present and blank, got (%q, %v)", v, ok)
	}
	if _, ok := p.Lookup("date"); ok {
		t.Error("absent form key reported as present")
	}
	if got := p.Get("description"); got != "train\ntrip" {
		t.Errorf("description = %q", got)
	}
}

func TestRequestBodyParser_Empty(t *testing.T) {
	p := newParser(t, "", "   ")
	if err := p.Parse(); err != nil {
		t.Fatalf("empty body should parse, got %v", err)
	}
	if _, ok := p.Lookup("name"); ok {
		t.Error("nothing should be present in an empty body")
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	for _, body := range []string{`{"name":`, `["a"]`} {
		p := newParser(t, "application/json", body)
		err := p.Parse()
		if !errors.Is(err, errInvalidBody) {
			t.Errorf("%s: expected errInvalidBody, got %v", body, err)
		}
		if again := p.Parse(); again != err {
			t.Errorf("%s: second Parse should return the first error", body)
		}
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	p := newParser(t, "application/json", `{"name":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	if err := p.Parse(); !errors.Is(err, errInvalidBody) {
		t.Errorf("expected errInvalidBody for oversized body, got %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"tab\there", "tab\there"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	if resp := RequireMethod(req, http.MethodGet); resp != nil {
		t.Error("GET should be allowed")
	}

	resp := RequireMethod(req, http.MethodPost, http.MethodPut)
	if resp == nil {
		t.Fatal("expected a 405 builder")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "POST, PUT" {
		t.Errorf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
	}
}
