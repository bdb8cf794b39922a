package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/application"
	"storefront/pkg/helpers"
)

type staticResolver struct {
	identities map[string]*application.Identity
	err        error
}

func (r *staticResolver) Resolve(_ context.Context, userID string) (*application.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	id, ok := r.identities[userID]
	if !ok {
		return nil, application.ErrUserNotFound
	}
	return id, nil
}

func newAuthRig(t *testing.T) (*gin.Engine, *helpers.JWTManager, *staticResolver) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	resolver := &staticResolver{identities: map[string]*application.Identity{
		"user-1": {ID: "user-1", Username: "alice", Email: "alice@example.com", IsAdmin: true},
	}}

	r := gin.New()
	r.GET("/protected", Auth(jwt, resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(CtxUserIDKey),
			"username": c.GetString(CtxUsernameKey),
			"email":    c.GetString(CtxEmailKey),
			"is_admin": c.GetBool(CtxIsAdminKey),
		})
	})
	return r, jwt, resolver
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMissingHeader(t *testing.T) {
	r, _, _ := newAuthRig(t)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
}

func TestAuthMalformedHeader(t *testing.T) {
	r, jwt, _ := newAuthRig(t)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	for _, header := range []string{"Basic abc", token, "Bearer"} {
		assert.Equal(t, http.StatusUnauthorized, doGet(r, header).Code, "header %q", header)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	r, _, _ := newAuthRig(t)

	forged, _, err := helpers.NewJWTManager("other-secret", time.Hour).Generate("user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+forged).Code)

	expired, _, err := helpers.NewJWTManager("test-secret", -time.Minute).Generate("user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+expired).Code)
}

func TestAuthUnknownUser(t *testing.T) {
	r, jwt, _ := newAuthRig(t)
	token, _, err := jwt.Generate("ghost")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+token).Code)
}

func TestAuthResolverFailureIsServerError(t *testing.T) {
	r, jwt, resolver := newAuthRig(t)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	resolver.err = errors.New("connection refused")
	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code,
		"a failing identity store must not read as an auth failure")
}

func TestAuthSetsIdentity(t *testing.T) {
	r, jwt, _ := newAuthRig(t)
	token, _, err := jwt.Generate("user-1")
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.Contains(t, w.Body.String(), `"email":"alice@example.com"`)
	assert.Contains(t, w.Body.String(), `"is_admin":true`)
}
