package middleware

import (
	"barberbook/pkg/auth"
	apperrors "barberbook/pkg/errors"
	httputil "barberbook/pkg/http"
	"barberbook/pkg/logger"
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// RoleResolver looks up the role currently stored for a user.
type RoleResolver interface {
	CurrentRole(ctx context.Context, userID string) (string, error)
}

// Authenticator guards individual routes with a bearer token.
type Authenticator struct {
	tokens TokenParser
	roles  RoleResolver
	log    *logger.Logger
}

// NewAuthenticator builds an Authenticator. With a nil roles resolver the
// role claim of the token is trusted as is.
func NewAuthenticator(tokens TokenParser, roles RoleResolver, log *logger.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, roles: roles, log: log}
}

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			a.reject(w, r, apperrors.Unauthorized("Missing bearer token"))
			return
		}

		identity, err := a.tokens.Parse(token)
		if err != nil {
			a.log.Debug("Token rejected", "request_id", RequestIDFromContext(r.Context()), "error", err)
			a.reject(w, r, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		if a.roles != nil {
			role, err := a.roles.CurrentRole(r.Context(), identity.UserID)
			if err != nil {
				if apperrors.HasCode(err, apperrors.CodeNotFound) {
					a.log.Info("Token for unknown user", "request_id", RequestIDFromContext(r.Context()), "user_id", identity.UserID)
					a.reject(w, r, apperrors.Unauthorized("Account no longer exists"))
					return
				}
				a.reject(w, r, apperrors.AsAppError(err))
				return
			}
			if role != identity.Role {
				a.log.Debug("Token role is stale", "user_id", identity.UserID, "token_role", identity.Role, "role", role)
				current := *identity
				current.Role = role
				identity = &current
			}
		}

		next(w, r.WithContext(auth.WithIdentity(r.Context(), identity)), ps)
	}
}

// RequireRole authenticates the caller and additionally demands one of roles.
func (a *Authenticator) RequireRole(next httprouter.Handle, roles ...string) httprouter.Handle {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return a.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity := auth.FromContext(r.Context())
		if _, ok := allowed[identity.Role]; !ok {
			a.log.Warn("Insufficient role",
				"request_id", RequestIDFromContext(r.Context()),
				"user_id", identity.UserID,
				"role", identity.Role,
				"path", r.URL.Path,
			)
			a.reject(w, r, apperrors.Forbidden("Insufficient permissions"))
			return
		}
		next(w, r, ps)
	})
}

func (a *Authenticator) reject(w http.ResponseWriter, r *http.Request, err *apperrors.AppError) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		a.log.Error("failed to write error response", "path", r.URL.Path, "error", writeErr)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
