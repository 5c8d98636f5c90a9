package repository

import (
	"context"

	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).First(&user, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, id uint64, fullName, profileImage string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"full_name":     fullName,
			"profile_image": profileImage,
		}).Error
}
