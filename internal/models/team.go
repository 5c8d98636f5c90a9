package models

import "time"

type Team struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	AdminUserID uint64    `gorm:"not null;index" json:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Admin   User         `gorm:"foreignKey:AdminUserID" json:"-"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"-"`
	Todos   []Todo       `gorm:"foreignKey:TeamID" json:"-"`
}

// IsAdmin reports whether userID is the team's admin.
func (t Team) IsAdmin(userID uint64) bool {
	return t.AdminUserID == userID
}
