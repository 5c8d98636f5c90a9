package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/services"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := services.NewTokenService("test-secret", time.Hour, nil)

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("session-secret"))))
	router.Use(RequestLogger(logger.NewNop()))

	router.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(7))
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})
	router.GET("/me", RequireAuth(tokens), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return router, tokens
}

func TestRequireAuth_BearerToken(t *testing.T) {
	router, tokens := setupAuthRouter(t)

	token, err := tokens.Issue(&models.User{ID: 42, Username: "alice"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 42}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))
}

func TestRequireAuth_RejectsBadTokens(t *testing.T) {
	router, _ := setupAuthRouter(t)

	for _, header := range []string{"Bearer not-a-jwt", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestRequireAuth_SessionFallback(t *testing.T) {
	router, _ := setupAuthRouter(t)

	loginReq := httptest.NewRequest(http.MethodPost, "/login", nil)
	loginRes := httptest.NewRecorder()
	router.ServeHTTP(loginRes, loginReq)
	require.Equal(t, http.StatusOK, loginRes.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range loginRes.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": 7}`, w.Body.String())
}

func TestRequireAuth_NoCredentials(t *testing.T) {
	router, _ := setupAuthRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(constants.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderRequestID))
}
