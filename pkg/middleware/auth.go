package middleware

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "campusgate/pkg/errors"
	httputil "campusgate/pkg/http"
	"campusgate/pkg/logger"
	"campusgate/pkg/token"
)

// Authenticator wraps individual routes with role checks. Missing or
// unverifiable tokens map to Unauthorized; a valid token with the wrong
// role maps to Forbidden.
type Authenticator struct {
	tokens *token.Manager
	log    *logger.Logger
}

func NewAuthenticator(tokens *token.Manager, log *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, log: log}
}

func (a *Authenticator) RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		bearer := bearerToken(r)
		if bearer == "" {
			a.reject(w, r, apperrors.Unauthorized("No token provided"))
			return
		}

		claims, err := a.tokens.VerifyAdmin(bearer)
		if err != nil {
			a.reject(w, r, apperrors.Unauthorized("Invalid or expired token"))
			return
		}
		if claims.Role != token.RoleAdmin {
			a.reject(w, r, apperrors.Forbidden("Admins only"))
			return
		}

		next(w, r, ps)
	}
}

func (a *Authenticator) RequireStudent(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		bearer := bearerToken(r)
		if bearer == "" {
			a.reject(w, r, apperrors.Unauthorized("No token provided"))
			return
		}

		claims, err := a.tokens.VerifyStudent(bearer)
		if err != nil {
			a.reject(w, r, apperrors.Unauthorized("Invalid or expired token"))
			return
		}
		if claims.Role != token.RoleStudent {
			a.reject(w, r, apperrors.Forbidden("Students only"))
			return
		}

		next(w, r, ps)
	}
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	a.log.Warn("Request rejected by auth",
		"path", r.URL.Path,
		"method", r.Method,
		"reason", err.Message,
	)
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		a.log.Error("failed to write auth error response", "error", writeErr)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
