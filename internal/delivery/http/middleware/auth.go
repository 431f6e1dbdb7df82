package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/delivery/http/response"
)

// Capabilities carried in the "cap" claim. ManageOptions implies EditPages.
const (
	CapEditPages     = "edit_pages"
	CapManageOptions = "manage_options"
)

// NonceHeader must echo the token's nonce claim.
const NonceHeader = "X-Siloq-Nonce"

// Claims are the JWT claims expected on API requests.
type Claims struct {
	jwt.RegisteredClaims
	Cap   string `json:"cap"`
	Nonce string `json:"nonce"`
}

type claimsKey struct{}

// ClaimsFrom returns the claims of an authenticated request.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// Authenticate validates the bearer token and the nonce header. An empty
// secret rejects every request.
func Authenticate(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				response.WriteError(w, logger, apperror.New(apperror.KindUnauthorized, "auth", "Authentication not configured"))
				return
			}

			parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				response.WriteError(w, logger, apperror.New(apperror.KindUnauthorized, "auth", "Missing or malformed Authorization header"))
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				response.WriteError(w, logger, apperror.New(apperror.KindUnauthorized, "auth", "Invalid or expired token"))
				return
			}

			nonce := r.Header.Get(NonceHeader)
			if claims.Nonce == "" || subtle.ConstantTimeCompare([]byte(nonce), []byte(claims.Nonce)) != 1 {
				response.WriteError(w, logger, apperror.New(apperror.KindForbidden, "auth", "Missing or invalid request nonce"))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// Require rejects requests whose token lacks capability.
func Require(capability string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok || !allows(claims.Cap, capability) {
				response.WriteError(w, logger, apperror.New(apperror.KindForbidden, "auth", "You do not have permission to do this"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allows(granted, required string) bool {
	if granted == CapManageOptions {
		return required == CapManageOptions || required == CapEditPages
	}
	return granted == required
}
