package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/dto"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/services"
	"golang.org/x/oauth2"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/register", map[string]string{
		"full_name": "New User",
		"username":  "newuser",
		"password":  "supersecret",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	response := decode[dto.AuthResponse](t, w)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "newuser", response.User.Username)
	require.Equal(t, "New User", response.User.FullName)
	require.Equal(t, models.AuthProviderLocal, response.User.AuthProvider)

	claims, err := env.tokenService.Parse(response.Token)
	require.NoError(t, err)
	require.Equal(t, response.User.ID, claims.UserID)
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/register", map[string]string{"username": "newuser"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/register", `{"username":`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := map[string]string{"username": "dup", "password": "supersecret"}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/register", payload, nil).Code)

	w = env.do(t, http.MethodPost, "/api/register", payload, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, "CONFLICT", errorCode(t, w))
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)

	_, err := env.authService.Register(context.Background(), services.RegisterInput{
		Username: "loginuser",
		Password: "supersecret",
	})
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "loginuser",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	response := decode[dto.AuthResponse](t, w)
	require.NotEmpty(t, response.Token)
	require.Equal(t, "loginuser", response.User.Username)

	// The session cookie alone authenticates follow-up requests.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	me := httptest.NewRecorder()
	env.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	require.Equal(t, "loginuser", decode[dto.UserDTO](t, me).Username)

	w = env.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": "loginuser",
		"password": "wrong-password",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := createTestUser(t, env.db, "current")

	w := env.do(t, http.MethodGet, "/api/me", nil, user)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, user.ID, decode[dto.UserDTO](t, w).ID)

	w = env.do(t, http.MethodGet, "/api/me", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/me", nil, &models.User{ID: 9999, Username: "ghost"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_GoogleNotConfigured(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/auth/google", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func newFakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"google-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"g-1","email":"alice@example.com","name":"Alice","picture":"https://example.com/a.png"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAuthHandler_GoogleFlow(t *testing.T) {
	env := setupHandlerTestEnv(t)
	fake := newFakeGoogle(t)

	google := services.NewGoogleOAuth(services.GoogleOAuthConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost:5001/api/auth/google/callback",
		Endpoint:     oauth2.Endpoint{AuthURL: fake.URL + "/auth", TokenURL: fake.URL + "/token"},
		UserInfoURL:  fake.URL + "/userinfo",
	})
	handler := NewAuthHandler(env.authService, env.tokenService, google, "http://localhost:3000/", nil)

	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	router.GET("/api/auth/google", handler.GoogleLogin)
	router.GET("/api/auth/google/callback", handler.GoogleCallback)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusFound, w.Code)

	consent, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := consent.Query().Get("state")
	require.NotEmpty(t, state)
	cookies := w.Result().Cookies()

	// A mismatched state is rejected.
	bad := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=forged&code=abc", nil)
	for _, c := range cookies {
		bad.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state="+url.QueryEscape(state)+"&code=abc", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	redirect, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "localhost:3000", redirect.Host)
	require.Equal(t, "/oauth-success", redirect.Path)

	claims, err := env.tokenService.Parse(redirect.Query().Get("token"))
	require.NoError(t, err)

	user, err := env.authService.GetUser(context.Background(), claims.UserID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Username)
	require.Equal(t, models.AuthProviderGoogle, user.AuthProvider)
	require.Equal(t, "https://example.com/a.png", user.ProfileImage)
}
