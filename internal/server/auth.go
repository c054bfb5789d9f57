package server

import (
	"context"
	"crypto/subtle"
	"net/http"
)

// accessLevel is the permission tier granted to a request. Download is
// a strict subset of upload.
type accessLevel string

const (
	accessUpload   accessLevel = "upload"
	accessDownload accessLevel = "download"
)

type ctxKey string

const accessCtxKey ctxKey = "access_level"

// requireKey rejects any request whose "key" query parameter matches
// neither configured secret. The upload secret is checked first, so a
// key matching both grants upload.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")

		var level accessLevel
		switch {
		case key == "":
			// Secrets are validated non-empty at startup, so an
			// absent or empty key can never match.
		case secretEqual(key, s.cfg.SecretUpload):
			level = accessUpload
		case secretEqual(key, s.cfg.SecretDownload):
			level = accessDownload
		}

		if level == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), accessCtxKey, level)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func secretEqual(presented, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}

func accessFromContext(ctx context.Context) accessLevel {
	if level, ok := ctx.Value(accessCtxKey).(accessLevel); ok {
		return level
	}
	return ""
}
