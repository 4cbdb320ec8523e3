package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var driver = &models.User{ID: 7, UserName: "Dee", Email: "dee@example.com", Role: models.RoleDriver}

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Issue(driver)
	require.NoError(t, err)

	p, err := tm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, models.Principal{ID: 7, Email: "dee@example.com", Name: "Dee", Role: models.RoleDriver}, p)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Issue(driver)
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.Verify(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestVerifyRejectsTamperedAndForeignTokens(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Issue(driver)
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Verify(token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.Verify(tampered)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	claims := Claims{ID: 7, Role: models.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Verify(hs384)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: 7, Role: models.RoleAdmin}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Verify(noExpiry)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func router(tm *TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(tm), func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	r.GET("/admin", RequireAuth(tm), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r http.Handler, path, token string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequireAuth(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	r := router(tm)

	w, body := call(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", body["code"])

	w, body = call(r, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_TOKEN", body["code"])

	token, err := tm.Issue(driver)
	require.NoError(t, err)
	w, body = call(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), body["id"])
}

func TestRequireRole(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	r := router(tm)

	token, err := tm.Issue(driver)
	require.NoError(t, err)
	w, body := call(r, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body["code"])

	admin, err := tm.Issue(&models.User{ID: 1, UserName: "Ada", Email: "ada@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	w, _ = call(r, "/admin", admin)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
