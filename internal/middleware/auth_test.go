package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arbdesk/arbgate/internal/config"
	"github.com/arbdesk/arbgate/internal/model"
	"github.com/arbdesk/arbgate/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeResolver struct {
	tenants map[string]*model.TenantContext
}

func (r *fakeResolver) Resolve(_ context.Context, userID string) (*model.TenantContext, error) {
	tenant, ok := r.tenants[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return tenant, nil
}

func signToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authTestRouter(resolver IdentityResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testSecret

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/whoami", AuthMiddleware(cfg, resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, Tenant(c))
	})
	return r
}

func TestAuthResolvesTenantFromSubject(t *testing.T) {
	resolver := &fakeResolver{tenants: map[string]*model.TenantContext{
		"user-1": {UserID: "user-1", TenantID: "tenant-a", Email: "a@example.com"},
	}}
	router := authTestRouter(resolver)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", testSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tenant-a")
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := authTestRouter(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing bearer credential")
}

func TestAuthRejectsBadSignature(t *testing.T) {
	router := authTestRouter(&fakeResolver{})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "user-1", "wrong-secret"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsUnknownSubject(t *testing.T) {
	router := authTestRouter(&fakeResolver{tenants: map[string]*model.TenantContext{}})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ghost", testSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unknown identity or no tenant")
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearer("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearer("bearer abc"))
	assert.Equal(t, "", ExtractBearer(""))
	assert.Equal(t, "", ExtractBearer("Basic abc"))
	assert.Equal(t, "", ExtractBearer("Bearer"))
}
