package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/team-todo-api/internal/constants"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrMissingCredentials = apierrors.NewKind(apierrors.ErrValidation, "username and password are required")
	ErrPasswordTooShort   = apierrors.NewKind(apierrors.ErrValidation, fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	ErrUsernameTaken      = apierrors.NewKind(apierrors.ErrConflict, "username already exists")
	ErrInvalidCredentials = apierrors.NewKind(apierrors.ErrUnauthenticated, "invalid username or password")
	ErrUserNotFound       = apierrors.NewKind(apierrors.ErrNotFound, "user not found")
	ErrGoogleEmailMissing = apierrors.NewKind(apierrors.ErrUpstream, "google account has no email")
	ErrGoogleIDMissing    = apierrors.NewKind(apierrors.ErrUpstream, "google account has no id")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	captcha  CaptchaVerifier
	throttle LoginThrottle
}

// NewAuthService creates a new AuthService. Nil collaborators are replaced
// with their no-op versions.
func NewAuthService(userRepo repository.UserRepository, captcha CaptchaVerifier, throttle LoginThrottle) *AuthService {
	if captcha == nil {
		captcha = NoopCaptchaVerifier{}
	}
	if throttle == nil {
		throttle = NoopLoginThrottle{}
	}
	return &AuthService{
		userRepo: userRepo,
		captcha:  captcha,
		throttle: throttle,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	FullName string
	Username string
	Password string
}

// Register creates a local user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(hashedPassword)

	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		fullName = username
	}

	user := &models.User{
		Username:     username,
		FullName:     fullName,
		PasswordHash: &hash,
		ProfileImage: constants.DefaultProfileImage,
		AuthProvider: models.AuthProviderLocal,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username     string
	Password     string
	CaptchaToken string
	RemoteIP     string
}

// Login verifies the CAPTCHA and the credentials of a local user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	if err := s.captcha.Verify(ctx, input.CaptchaToken, input.RemoteIP); err != nil {
		return nil, err
	}
	if err := s.throttle.Allow(ctx, username); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil || user.AuthProvider != models.AuthProviderLocal || user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)) != nil {
		if err := s.throttle.RecordFailure(ctx, username); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.throttle.Reset(ctx, username); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginWithGoogle finds or creates the user linked to a Google account and
// keeps the stored photo and name in sync with Google.
func (s *AuthService) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	if strings.TrimSpace(profile.ID) == "" {
		return nil, ErrGoogleIDMissing
	}
	if strings.TrimSpace(profile.Email) == "" {
		return nil, ErrGoogleEmailMissing
	}

	user, err := s.userRepo.FindByGoogleID(ctx, profile.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		googleID := profile.ID
		user = &models.User{
			Username:     profile.Email,
			FullName:     profile.Name,
			ProfileImage: profile.Picture,
			AuthProvider: models.AuthProviderGoogle,
			GoogleID:     &googleID,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrUsernameTaken
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return user, nil
	}

	if profile.Picture != "" && user.ProfileImage != profile.Picture {
		if err := s.userRepo.UpdateProfile(ctx, user.ID, profile.Name, profile.Picture); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
		user.FullName = profile.Name
		user.ProfileImage = profile.Picture
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
