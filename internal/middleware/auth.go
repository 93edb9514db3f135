package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/pkg/apperrors"
	"github.com/arbdesk/arbgate/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ContextTenantKey = "tenant"

// IdentityResolver maps an authenticated subject to its tenant.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (*model.TenantContext, error)
}

// ExtractBearer pulls the token out of an Authorization header.
func ExtractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware verifies the bearer credential and resolves it to a
// TenantContext before anything else runs. Tenancy comes only from the
// credential, never from the request payload. An identity without a tenant
// is rejected the same as a bad token.
func AuthMiddleware(cfg *config.Config, resolver IdentityResolver) gin.HandlerFunc {
	secret := []byte(cfg.Auth.JWTSecret)
	return func(c *gin.Context) {
		token := ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "missing bearer credential")
			return
		}

		subject, err := parseSubject(token, secret)
		if err != nil {
			abortUnauthorized(c, "invalid bearer credential")
			return
		}

		tenant, err := resolver.Resolve(c.Request.Context(), subject)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortUnauthorized(c, "unknown identity or no tenant")
				return
			}
			c.Error(apperrors.Wrap(err))
			c.Abort()
			return
		}

		c.Set(ContextTenantKey, tenant)
		c.Next()
	}
}

func parseSubject(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Error(apperrors.NewAuthFailed(msg))
	c.Abort()
}

// Tenant fetches the TenantContext set by AuthMiddleware.
func Tenant(c *gin.Context) *model.TenantContext {
	return c.MustGet(ContextTenantKey).(*model.TenantContext)
}
