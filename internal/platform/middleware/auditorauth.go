package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "attestra/pkg/domain-errors"
	"attestra/pkg/platform/httputil"
	"attestra/pkg/requestcontext"
	"attestra/pkg/secrets"
)

// AuditorAuth guards the audit export endpoints. Two credentials are
// accepted: an HS256 bearer token signed with the configured key, or the
// static auditor API key checked against its bcrypt hash. Either may be left
// unconfigured.
type AuditorAuth struct {
	jwtKey     []byte
	apiKeyHash string
	logger     *slog.Logger
}

// NewAuditorAuth builds the guard. With neither credential configured, every
// request is rejected; audit exports are never open by accident.
func NewAuditorAuth(jwtKey string, apiKeyHash string, logger *slog.Logger) *AuditorAuth {
	return &AuditorAuth{
		jwtKey:     []byte(jwtKey),
		apiKeyHash: apiKeyHash,
		logger:     logger,
	}
}

// Middleware enforces auditor authentication on the wrapped handler.
func (a *AuditorAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sub, ok := a.authenticate(r); ok {
			ctx := requestcontext.WithAuditorSubject(r.Context(), sub)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if a.logger != nil {
			a.logger.WarnContext(r.Context(), "auditor auth failed",
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(r.Context()),
			)
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "auditor credentials required"))
	})
}

func (a *AuditorAuth) authenticate(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	if len(a.jwtKey) > 0 {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			if sub, err := a.verifyJWT(token); err == nil {
				return sub, true
			}
		}
	}

	if a.apiKeyHash != "" {
		if key := r.Header.Get("X-Auditor-Key"); key != "" {
			if err := secrets.Verify(key, a.apiKeyHash); err == nil {
				return "auditor-api-key", true
			}
		}
	}
	return "", false
}

func (a *AuditorAuth) verifyJWT(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.jwtKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", jwt.ErrTokenInvalidSubject
	}
	return sub, nil
}
