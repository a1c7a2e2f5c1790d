package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeRejectsTrailingContent(t *testing.T) {
	var v map[string]any
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	if err := Decode(httptest.NewRecorder(), r, &v); err == nil {
		t.Fatal("expected error for trailing content")
	}
}

func TestNavigate(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	Navigate(w, r, "/", nil)
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected 303 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	r = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w = httptest.NewRecorder()
	Navigate(w, r, "/", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"redirect":"/"`) {
		t.Fatalf("expected JSON redirect hint, got %d %s", w.Code, w.Body.String())
	}
}
