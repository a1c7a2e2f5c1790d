// Package httpserver holds the response helpers shared by handlers and
// middleware.
package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/LuisHerrera98/tiendagenai/internal/backend"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "err", err)
	}
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Decode reads a single JSON document of at most 1MB into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)) // 1MB
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON: " + err.Error())
	}
	if dec.More() {
		return errors.New("invalid JSON (extra content)")
	}
	return nil
}

// Navigate sends the client to path: a 303 for browser navigations (or
// ?redirect=1), otherwise a JSON body with a redirect hint.
func Navigate(w http.ResponseWriter, r *http.Request, path string, body map[string]any) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") || r.URL.Query().Get("redirect") == "1" {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}
	if body == nil {
		body = map[string]any{}
	}
	body["ok"] = true
	body["redirect"] = path
	JSON(w, http.StatusOK, body)
}

// BackendError relays a backend HTTP failure with its status and message;
// transport failures become 502.
func BackendError(w http.ResponseWriter, err error) {
	var he *backend.HTTPError
	if errors.As(err, &he) {
		msg := he.Message
		if msg == "" {
			msg = http.StatusText(he.Status)
		}
		Error(w, he.Status, msg)
		return
	}
	slog.Error("backend call failed", "err", err)
	Error(w, http.StatusBadGateway, "backend unavailable")
}
