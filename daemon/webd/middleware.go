package webd

import (
	"crypto/subtle"
	ghandlers "github.com/gorilla/handlers"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// tokenAuthenticationMiddleware checks for the configured token as a Bearer
// Authorization header or a token query param.
// If the token is not valid, it returns a 403 Forbidden.
// If no token is configured, it allows all requests.
func (s *WebDaemon) tokenAuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validToken := s.Config.Token
		if validToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(validToken)) != 1 {
			s.logger.Warn("Invalid token",
				"method", r.Method, "url", r.URL.Path,
				"remote", r.RemoteAddr, "user-agent", r.UserAgent())
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// permissiveCorsMiddleware allows any origin, and answers preflight requests itself.
func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func contentTypeMiddlewareFunc(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs each request once it is served.
// Websocket upgrades are logged when the connection ends.
func (s *WebDaemon) loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(os.Stdout, next, func(_ io.Writer, p ghandlers.LogFormatterParams) {
		s.logger.Info("HTTP",
			"remote", p.Request.RemoteAddr,
			"method", p.Request.Method,
			"uri", p.URL.RequestURI(),
			"status", p.StatusCode,
			"size", p.Size,
			"elapsed", time.Since(p.TimeStamp).Round(time.Millisecond),
		)
	})
}
