package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"rolinks/database"
	"rolinks/utils"
)

// setupLogger installs the process-wide structured logger
func setupLogger(level string) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// statusRecorder captures the status code a handler writes
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// requestLog logs every request with a correlation id
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"requestId", requestID,
		)
	})
}

// recoverPanic converts any panic below into an opaque 500 so no internal
// detail reaches the client
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				utils.ErrorJSON(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// secureHeaders stamps the fixed security header set on every response
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; script-src 'self' 'unsafe-eval' 'unsafe-inline'; "+
				"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; "+
				"connect-src 'self' https:;")
		next.ServeHTTP(w, r)
	})
}

// throttle applies the process-wide request limiter. This is a blunt
// overload guard; the per-user submission limits live in the handlers
func throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				utils.ErrorJSON(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isMutating reports whether the method can change state
func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodDelete || method == http.MethodPut
}

// checkOrigin enforces same-origin on the sensitive mutating endpoints. The
// account-deletion endpoint additionally needs the custom CSRF header; its
// handler re-checks that on top
func checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if isMutating(r.Method) && strings.HasPrefix(path, "/api/settings/") {
			origin := r.Header.Get("Origin")
			host := r.Host
			if origin == "" || host == "" || !strings.Contains(origin, host) {
				utils.ErrorJSON(w, http.StatusForbidden, "Invalid origin")
				return
			}
			if strings.HasPrefix(path, "/api/settings/delete-account") &&
				r.Header.Get("X-CSRF-Token") == "" {
				utils.ErrorJSON(w, http.StatusForbidden, "CSRF token required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// publicRoute reports whether a route is reachable without a session
func publicRoute(r *http.Request) bool {
	path := r.URL.Path

	if isMutating(r.Method) {
		return path == "/login" || path == "/register"
	}

	// Public read surface
	if strings.HasPrefix(path, "/api/") {
		return strings.HasPrefix(path, "/api/games") || strings.HasPrefix(path, "/api/search")
	}

	// Pages and static assets, except the settings pages
	return !strings.HasPrefix(path, "/settings")
}

// checkAuthenticated gates everything non-public behind a valid session.
// Settings pages bounce to the home page; API calls get a 401. A session
// close to expiry is quietly extended so active users stay logged in
func checkAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicRoute(r) {
			next.ServeHTTP(w, r)
			return
		}

		session := utils.CurrentSession(r)
		if session == nil {
			if strings.HasPrefix(r.URL.Path, "/settings") {
				http.Redirect(w, r, "/", http.StatusFound)
			} else {
				utils.ErrorJSON(w, http.StatusUnauthorized, "Unauthorized")
			}
			return
		}

		// See if the session expires in less than 2 hours
		now := time.Now()
		if now.Add(2 * time.Hour).After(session.ExpiresAt) {
			session.ExpiresAt = now.Add(cfg.SessionTTL)
			database.DB.Save(session)
			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     "token",
				Value:    session.Token,
				Expires:  session.ExpiresAt,
				Secure:   true,
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}

		next.ServeHTTP(w, r)
	})
}
