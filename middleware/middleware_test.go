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
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"carbon-track/models"
	"carbon-track/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(issuer *session.Issuer, lookup UserLookup) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTMiddleware(issuer, lookup), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, u)
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	issuer := session.NewIssuer("secret", time.Hour)
	ana := models.User{Name: "Ana", Email: "ana@example.com"}
	token, _, err := issuer.Issue(ana)
	require.NoError(t, err)

	known := func(_ context.Context, identity string) (models.User, error) {
		if identity == "ana@example.com" {
			return ana, nil
		}
		return models.User{}, ErrUnknownUser
	}

	t.Run("valid", func(t *testing.T) {
		w := get(newProtectedRouter(issuer, known), token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"name":"Ana","email":"ana@example.com"}`, w.Body.String())
	})
	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(issuer, known), "").Code)
	})
	t.Run("bad token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(issuer, known), "abc").Code)
	})
	t.Run("logged out", func(t *testing.T) {
		gone := func(context.Context, string) (models.User, error) { return models.User{}, ErrUnknownUser }
		assert.Equal(t, http.StatusUnauthorized, get(newProtectedRouter(issuer, gone), token).Code)
	})
	t.Run("storage down", func(t *testing.T) {
		down := func(context.Context, string) (models.User, error) { return models.User{}, errors.New("db down") }
		assert.Equal(t, http.StatusInternalServerError, get(newProtectedRouter(issuer, down), token).Code)
	})
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "request served", entries[0].Message)
	assert.Equal(t, int64(http.StatusNoContent), entries[0].ContextMap()["status"])
	assert.Equal(t, "request failed", entries[1].Message)
}
