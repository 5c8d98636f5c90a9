package dto

import (
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	AdminUserID uint64    `json:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberDTO is one row of a team's member list.
type MemberDTO struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	ProfileImage string `json:"profile_image"`
}

func ToTeamDTO(team models.Team) TeamDTO {
	return TeamDTO{
		ID:          team.ID,
		Name:        team.Name,
		AdminUserID: team.AdminUserID,
		CreatedAt:   team.CreatedAt,
	}
}

func ToTeamDTOs(teams []models.Team) []TeamDTO {
	out := make([]TeamDTO, len(teams))
	for i, team := range teams {
		out[i] = ToTeamDTO(team)
	}
	return out
}

func ToMemberDTOs(members []models.MemberView) []MemberDTO {
	out := make([]MemberDTO, len(members))
	for i, m := range members {
		out[i] = MemberDTO(m)
	}
	return out
}
