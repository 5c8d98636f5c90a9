package models

import "time"

type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

type User struct {
	ID           uint64       `gorm:"primarykey" json:"id"`
	Username     string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	FullName     string       `gorm:"type:varchar(255)" json:"full_name"`
	PasswordHash *string      `gorm:"column:password;type:varchar(255)" json:"-"`
	ProfileImage string       `gorm:"type:varchar(1024)" json:"profile_image"`
	AuthProvider AuthProvider `gorm:"type:varchar(20);not null;default:'local'" json:"auth_provider"`
	GoogleID     *string      `gorm:"type:varchar(255);uniqueIndex" json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	// Relations
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"-"`
}
