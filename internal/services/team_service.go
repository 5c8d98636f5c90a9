package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTeamNameRequired  = apierrors.NewKind(apierrors.ErrValidation, "team name is required")
	ErrAdminRequired     = apierrors.NewKind(apierrors.ErrValidation, "admin user is required")
	ErrTeamNotFound      = apierrors.NewKind(apierrors.ErrNotFound, "team not found")
	ErrNotTeamAdmin      = apierrors.NewKind(apierrors.ErrPermissionDenied, "only the team admin can perform this action")
	ErrAlreadyTeamMember = apierrors.NewKind(apierrors.ErrConflict, "user is already a member of this team")
	ErrCannotRemoveAdmin = apierrors.NewKind(apierrors.ErrValidation, "the team admin cannot be removed")
)

// TeamService manages teams and their memberships.
type TeamService struct {
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
	clock    Clock
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, userRepo repository.UserRepository, clock Clock) *TeamService {
	if clock == nil {
		clock = SystemClock
	}
	return &TeamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		clock:    clock,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Name        string
	AdminUserID uint64
}

// CreateTeam creates a team whose admin is also its first member.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.AdminUserID == 0 {
		return nil, ErrAdminRequired
	}

	team := &models.Team{
		Name:        name,
		AdminUserID: input.AdminUserID,
		CreatedAt:   s.clock(),
	}
	if err := s.teamRepo.CreateWithAdmin(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	return team, nil
}

// AddMember adds targetID to the team. Only the admin may add members.
func (s *TeamService) AddMember(ctx context.Context, teamID, requesterID, targetID uint64) error {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.IsAdmin(requesterID) {
		return ErrNotTeamAdmin
	}

	if _, err := s.userRepo.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.teamRepo.FindMember(ctx, teamID, targetID); err == nil {
		return ErrAlreadyTeamMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   targetID,
		JoinedAt: s.clock(),
	}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyTeamMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// RemoveMember removes targetID from the team. Removing a user who is not a
// member succeeds without changes.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, requesterID, targetID uint64) error {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.IsAdmin(requesterID) {
		return ErrNotTeamAdmin
	}
	if targetID == requesterID {
		return ErrCannotRemoveAdmin
	}

	if err := s.teamRepo.RemoveMember(ctx, teamID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// ListMembers returns the members of a team with their profiles.
func (s *TeamService) ListMembers(ctx context.Context, teamID uint64) ([]models.MemberView, error) {
	members, err := s.teamRepo.ListMembers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ListTeamsForUser returns the teams the user belongs to.
func (s *TeamService) ListTeamsForUser(ctx context.Context, userID uint64) ([]models.Team, error) {
	teams, err := s.teamRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

// DeleteTeam removes a team along with its tasks and memberships.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID, requesterID uint64) error {
	team, err := s.findTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.IsAdmin(requesterID) {
		return ErrNotTeamAdmin
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *TeamService) findTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}
