package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/agentdeck/internal/domain"
	"github.com/soyeahso/agentdeck/internal/logging"
)

type contextKey string

const identityKey contextKey = "identity"

// identity is the authenticated caller for the current request.
type identity struct {
	OwnerID  int64
	Username string
}

// identityFrom extracts the authenticated identity from the request
// context. The auth middleware guarantees it is present on API routes.
func identityFrom(r *http.Request) identity {
	id, _ := r.Context().Value(identityKey).(identity)
	return id
}

// withMiddleware wraps a handler with the standard middleware chain.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	h := handler
	h = requestIDMiddleware(h)
	h = corsMiddleware(h, s.cfg.Server.AllowedOrigins)
	h = loggingMiddleware(h, s.log)
	return h
}

// authMiddleware resolves the caller from an API key. With requireAuth
// off (local single-user mode) a keyless request falls back to the first
// active user, mirroring the picker-less local setup.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)

		if token != "" {
			ident, err := s.keys.Validate(token)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeFailure(w, http.StatusUnauthorized, "invalid api key")
				} else {
					s.writeError(w, err)
				}
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, identity{
				OwnerID:  ident.OwnerID,
				Username: ident.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if s.cfg.Server.RequireAuth {
			writeFailure(w, http.StatusUnauthorized, "api key required")
			return
		}

		user, err := s.users.First()
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeFailure(w, http.StatusUnauthorized, "no users registered")
			} else {
				s.writeError(w, err)
			}
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity{
			OwnerID:  user.ID,
			Username: user.Username,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the API key from the Authorization header or the
// X-API-Key fallback.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
	}
	return r.Header.Get("X-API-Key")
}

// loggingMiddleware logs each HTTP request.
func loggingMiddleware(next http.Handler, log *logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("http request")
	})
}

// requestIDMiddleware adds a unique request ID to each request/response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware handles CORS headers.
func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && isOriginAllowed(origin, allowedOrigins) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return false // deny cross-origin by default when no origins are configured
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
