package models

import "time"

type TeamMember struct {
	TeamID   uint64    `gorm:"primarykey" json:"team_id"`
	UserID   uint64    `gorm:"primarykey" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// MemberView is a team member joined with the user's public profile.
type MemberView struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	ProfileImage string `json:"profile_image"`
}
