package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
)

const principalKey = "principal"

// Claims is the token payload. Handlers trust it without re-reading the
// user row.
type Claims struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for user that expires after the configured TTL.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := Claims{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.UserName,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *TokenManager) Verify(tokenString string) (models.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return models.Principal{}, services.ErrInvalidToken
	}
	if claims.ID == 0 || !claims.Role.Valid() {
		return models.Principal{}, services.ErrInvalidToken
	}
	return models.Principal{ID: claims.ID, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's Principal on the context.
func RequireAuth(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abort(c, http.StatusUnauthorized, services.ErrUnauthenticated)
			return
		}

		principal, err := tokens.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			abort(c, http.StatusUnauthorized, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireRole lets the request through only when the caller holds one of
// roles. It must run after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			abort(c, http.StatusUnauthorized, services.ErrUnauthenticated)
			return
		}
		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, services.ErrForbidden)
	}
}

func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

func abort(c *gin.Context, status int, err error) {
	var e *services.Error
	if !errors.As(err, &e) {
		e = services.ErrInvalidToken
	}
	c.AbortWithStatusJSON(status, gin.H{"message": e.Message, "code": e.Code})
}
