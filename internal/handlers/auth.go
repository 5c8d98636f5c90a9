package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/dto"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/middleware"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService  *services.AuthService
	tokenService *services.TokenService
	google       *services.GoogleOAuth
	frontendURL  string
	log          *logger.Logger
}

// NewAuthHandler creates a new AuthHandler. google may be nil when Google
// sign-in is not configured.
func NewAuthHandler(authService *services.AuthService, tokenService *services.TokenService, google *services.GoogleOAuth, frontendURL string, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
		google:       google,
		frontendURL:  strings.TrimRight(frontendURL, "/"),
		log:          log,
	}
}

// Register creates a local user and returns an access token.
func (h *AuthHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		FullName      string `json:"full_name"`
		FullNameCamel string `json:"fullName"`
		Username      string `json:"username"`
		Password      string `json:"password"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.FullNameCamel
	}

	user, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		FullName: fullName,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user)
}

// Login authenticates a local user, initializes the session and returns an
// access token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Username     string `json:"username"`
		Password     string `json:"password"`
		CaptchaToken string `json:"captchaToken"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Username:     req.Username,
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		middleware.RequestLog(c, h.log).Error("failed to save session", "error", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	h.respondWithToken(c, http.StatusOK, user)
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// GoogleLogin redirects to Google's consent page.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.google == nil {
		apierrors.ServiceUnavailable(c, "Google sign-in is not configured")
		return
	}

	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(constants.SessionKeyOAuthState, state)
	if err := session.Save(); err != nil {
		middleware.RequestLog(c, h.log).Error("failed to save oauth state", "error", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback completes the OAuth flow and redirects to the frontend with
// an access token.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		apierrors.ServiceUnavailable(c, "Google sign-in is not configured")
		return
	}

	session := sessions.Default(c)
	expected, _ := session.Get(constants.SessionKeyOAuthState).(string)
	state := c.Query("state")
	if expected == "" || state != expected {
		apierrors.BadRequest(c, "Invalid OAuth state")
		return
	}
	session.Delete(constants.SessionKeyOAuthState)

	code := c.Query("code")
	if code == "" {
		apierrors.BadRequest(c, "Missing authorization code")
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), code)
	if err != nil {
		middleware.RequestLog(c, h.log).Warn("google token exchange failed", "error", err)
		h.respondError(c, err)
		return
	}

	user, err := h.authService.LoginWithGoogle(c.Request.Context(), profile)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		middleware.RequestLog(c, h.log).Error("failed to save session", "error", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/oauth-success?token="+url.QueryEscape(token))
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User) {
	token, err := h.tokenService.Issue(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(status, dto.AuthResponse{
		Token: token,
		User:  dto.ToUserDTO(*user),
	})
}

func (h *AuthHandler) respondError(c *gin.Context, err error) {
	apierrors.Respond(c, middleware.RequestLog(c, h.log), err)
}
