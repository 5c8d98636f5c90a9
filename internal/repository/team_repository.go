package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrCreateTeam is returned when inserting the team row fails inside the create transaction.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrCreateAdminMembership is returned when inserting the admin's membership fails inside the create transaction.
	ErrCreateAdminMembership = errors.New("team repository: create admin membership failed")
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithAdmin creates the team and the admin's membership atomically.
func (r *GormTeamRepository) CreateWithAdmin(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		member := models.TeamMember{
			TeamID:   team.ID,
			UserID:   team.AdminUserID,
			JoinedAt: team.CreatedAt,
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAdminMembership, err)
		}

		return nil
	})
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).First(&team, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &team, nil
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("team_id = ? AND user_id = ?", teamID, userID).
			First(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// RemoveMember removes a member from a team. Removing a non-member is a no-op.
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// ListMembers lists the members of a team in join order
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uint64) ([]models.MemberView, error) {
	var members []models.MemberView
	err := database.Retry(ctx, func() error {
		members = members[:0]
		return r.db.WithContext(ctx).
			Table("team_members").
			Select("users.id AS user_id, users.username, users.full_name, users.profile_image").
			Joins("JOIN users ON users.id = team_members.user_id").
			Where("team_members.team_id = ?", teamID).
			Order("team_members.joined_at ASC, users.id ASC").
			Scan(&members).Error
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUserID lists all teams a user is a member of
func (r *GormTeamRepository) ListByUserID(ctx context.Context, userID uint64) ([]models.Team, error) {
	var teams []models.Team
	err := database.Retry(ctx, func() error {
		teams = teams[:0]
		return r.db.WithContext(ctx).
			Joins("JOIN team_members ON team_members.team_id = teams.id").
			Where("team_members.user_id = ?", userID).
			Order("teams.id ASC").
			Find(&teams).Error
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

// Delete deletes a team and all related data in a transaction
func (r *GormTeamRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.Todo{}).Error; err != nil {
			return err
		}

		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Team{}, id).Error
	})
}
