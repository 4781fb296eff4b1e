package utils

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"rolinks/database"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToJSON converts to json and logs errors. Simply here to reduce code duplication
func ToJSON(v interface{}) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal response", "error", err)
	}
	return out
}

// FromJSON decodes a request body into v
func FromJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// WriteJSON writes out a response in json form and sets appropriate headers. Should be used by API
func WriteJSON(w http.ResponseWriter, status int, content interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(ToJSON(content))
}

// ErrorJSON writes out an error in json form and sets appropriate headers. Should be used by API
func ErrorJSON(w http.ResponseWriter, status int, err string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := make(map[string]interface{})
	resp["error"] = err
	_, _ = w.Write(ToJSON(&resp))
}

// GenerateToken returns a session secret and its expiration
func GenerateToken(ttl time.Duration) (string, time.Time) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		slog.Error("generate token", "error", err)
	}
	return fmt.Sprintf("%x", b), time.Now().Add(ttl)
}

// CurrentSession resolves the request's token cookie to an unexpired session
// with its user preloaded. Returns nil when the caller isn't logged in
func CurrentSession(r *http.Request) *database.Session {
	tokenCookie, err := r.Cookie("token")
	if err != nil {
		return nil
	}
	session, err := database.SessionByToken(tokenCookie.Value)
	if err != nil {
		return nil
	}
	return session
}
