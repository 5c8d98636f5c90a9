package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var ErrGoogleExchangeFailed = apierrors.NewKind(apierrors.ErrUpstreamUnavailable, "google sign-in failed")

// GoogleProfile is the subset of the Google userinfo response used to sign in.
type GoogleProfile struct {
	ID      string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleOAuth runs the authorization code flow against Google.
type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// GoogleOAuthConfig configures GoogleOAuth. Zero Endpoint and UserInfoURL
// select Google's production endpoints.
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// NewGoogleOAuth creates a GoogleOAuth.
func NewGoogleOAuth(cfg GoogleOAuthConfig) *GoogleOAuth {
	if cfg.Endpoint.AuthURL == "" {
		cfg.Endpoint = endpoints.Google
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = GoogleUserInfoURL
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     cfg.Endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// AuthCodeURL returns the consent page URL carrying state.
func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's Google profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrGoogleExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrGoogleExchangeFailed, err)
	}

	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrGoogleExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("%w: userinfo returned %d", ErrGoogleExchangeFailed, resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, fmt.Errorf("%w: %v", ErrGoogleExchangeFailed, err)
	}
	return profile, nil
}
