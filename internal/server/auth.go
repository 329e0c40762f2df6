package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"discflight/internal/api"
)

const apiKeyHeader = "X-API-KEY"

// requireAPIKey rejects requests without the shared trigger secret before
// next runs.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	expected := []byte(s.apiKey)
	return func(w http.ResponseWriter, r *http.Request) {
		provided := strings.TrimSpace(r.Header.Get(apiKeyHeader))
		if provided == "" {
			s.writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "API key is missing"})
			return
		}
		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			s.writeJSON(w, http.StatusUnauthorized, api.MessageResponse{Message: "Invalid API key"})
			return
		}
		next(w, r)
	}
}

// requireAdmin checks basic credentials against the configured bcrypt hash.
// With no admin configured every request is refused.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || !s.checkAdmin(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Login Required"`)
			s.writeJSON(w, http.StatusUnauthorized, api.MessageResponse{
				Message: "Could not verify your access level for that URL. You have to login with proper credentials",
			})
			return
		}
		next(w, r)
	}
}

func (s *Server) checkAdmin(user, pass string) bool {
	if s.adminUser == "" || s.adminHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.adminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(pass)) == nil
	return userOK && passOK
}
