package repository

import (
	"context"

	"github.com/yukikurage/team-todo-api/internal/models"
)

// TodoRepository defines the interface for task data access
type TodoRepository interface {
	// Create inserts a new task
	Create(ctx context.Context, todo *models.Todo) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Todo, error)

	// ListVisible lists the tasks the filter's user may see
	ListVisible(ctx context.Context, filter TodoFilter) ([]models.Todo, error)

	// Update writes the given columns of a task and returns the matched row count
	Update(ctx context.Context, id uint64, fields map[string]interface{}) (int64, error)

	// DeleteForActor deletes a task if it is personal or the actor belongs to its
	// team, and returns the number of rows removed
	DeleteForActor(ctx context.Context, id, actorID uint64) (int64, error)
}

// TodoFilter holds filtering options for listing tasks
type TodoFilter struct {
	UserID uint64
	TeamID *uint64
}

// TeamRepository defines the interface for team and membership data access
type TeamRepository interface {
	// CreateWithAdmin creates a team and its admin's membership in one transaction
	CreateWithAdmin(ctx context.Context, team *models.Team) error

	// FindByID finds a team by ID
	FindByID(ctx context.Context, id uint64) (*models.Team, error)

	// FindMember finds a specific team member
	FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMember, error)

	// AddMember adds a member to a team
	AddMember(ctx context.Context, member *models.TeamMember) error

	// RemoveMember removes a member from a team
	RemoveMember(ctx context.Context, teamID, userID uint64) error

	// ListMembers lists the members of a team with their profiles
	ListMembers(ctx context.Context, teamID uint64) ([]models.MemberView, error)

	// ListByUserID lists all teams a user is a member of
	ListByUserID(ctx context.Context, userID uint64) ([]models.Team, error)

	// Delete deletes a team with its tasks and memberships
	Delete(ctx context.Context, id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByGoogleID finds a user linked to a Google account
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)

	// UpdateProfile updates the display name and profile image
	UpdateProfile(ctx context.Context, id uint64, fullName, profileImage string) error
}
