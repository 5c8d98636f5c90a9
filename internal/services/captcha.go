package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
)

const RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var (
	ErrCaptchaFailed      = apierrors.NewKind(apierrors.ErrUpstream, "captcha verification failed")
	ErrCaptchaUnavailable = apierrors.NewKind(apierrors.ErrUpstreamUnavailable, "captcha verification is unavailable")
)

// CaptchaVerifier checks a client's CAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// NoopCaptchaVerifier accepts every token. It is used when no secret is configured.
type NoopCaptchaVerifier struct{}

func (NoopCaptchaVerifier) Verify(context.Context, string, string) error { return nil }

// RecaptchaVerifier verifies tokens against the reCAPTCHA siteverify API.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// NewRecaptchaVerifier creates a verifier. An empty verifyURL uses Google's endpoint.
func NewRecaptchaVerifier(secret, verifyURL string, client *http.Client) *RecaptchaVerifier {
	if verifyURL == "" {
		verifyURL = RecaptchaVerifyURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: verifyURL,
		client:    client,
	}
}

type recaptchaResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify returns ErrCaptchaFailed when the provider rejects the token and
// ErrCaptchaUnavailable when the provider cannot be reached.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return ErrCaptchaFailed
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: siteverify returned %d", ErrCaptchaUnavailable, resp.StatusCode)
	}

	var body recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptchaUnavailable, err)
	}
	if !body.Success {
		return ErrCaptchaFailed
	}
	return nil
}
