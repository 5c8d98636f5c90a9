package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskRequired         = apierrors.NewKind(apierrors.ErrValidation, "task is required")
	ErrAssigneeRequired     = apierrors.NewKind(apierrors.ErrValidation, "assignee is required")
	ErrAssigneeNotMember    = apierrors.NewKind(apierrors.ErrValidation, "assignee is not a member of the team")
	ErrNoFieldsToUpdate     = apierrors.NewKind(apierrors.ErrValidation, "no fields to update")
	ErrInvalidStatus        = apierrors.NewKind(apierrors.ErrValidation, "status must be 0, 1 or 2")
	ErrTodoNotFound         = apierrors.NewKind(apierrors.ErrNotFound, "todo not found")
	ErrTodoPermissionDenied = apierrors.NewKind(apierrors.ErrPermissionDenied, "user does not have permission to modify this todo")
)

// TodoService enforces who may see, create and change tasks.
type TodoService struct {
	todoRepo repository.TodoRepository
	teamRepo repository.TeamRepository
	clock    Clock
}

// NewTodoService creates a new TodoService
func NewTodoService(todoRepo repository.TodoRepository, teamRepo repository.TeamRepository, clock Clock) *TodoService {
	if clock == nil {
		clock = SystemClock
	}
	return &TodoService{
		todoRepo: todoRepo,
		teamRepo: teamRepo,
		clock:    clock,
	}
}

// CreateTodoInput represents input for creating a task
type CreateTodoInput struct {
	CreatorID  uint64
	Task       string
	TargetAt   *time.Time
	TeamID     *uint64
	AssigneeID uint64
}

// UpdateTodoInput represents a partial update. ClearTargetAt removes the
// deadline and takes precedence over TargetAt.
type UpdateTodoInput struct {
	Status        *models.TodoStatus
	TargetAt      *time.Time
	ClearTargetAt bool
}

func (in UpdateTodoInput) empty() bool {
	return in.Status == nil && in.TargetAt == nil && !in.ClearTargetAt
}

// CanEdit reports whether actorID may update or delete todo. team must be the
// task's team and is ignored for personal tasks.
func CanEdit(todo *models.Todo, actorID uint64, team *models.Team) bool {
	if todo.IsPersonal() {
		return todo.UserID == actorID
	}
	if team != nil && team.IsAdmin(actorID) {
		return true
	}
	return todo.UserID == actorID
}

// VisibleTodos lists the tasks userID may see, ordered by status then deadline.
func (s *TodoService) VisibleTodos(ctx context.Context, userID uint64) ([]models.Todo, error) {
	todos, err := s.todoRepo.ListVisible(ctx, repository.TodoFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// TeamTodos lists the tasks of one team that userID may see: every task for a
// member, only their own assignments otherwise.
func (s *TodoService) TeamTodos(ctx context.Context, teamID, userID uint64) ([]models.Todo, error) {
	if _, err := s.findTeam(ctx, teamID); err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListVisible(ctx, repository.TodoFilter{UserID: userID, TeamID: &teamID})
	if err != nil {
		return nil, fmt.Errorf("failed to list team todos: %w", err)
	}
	return todos, nil
}

// CreateTodo creates a task. Team tasks may only be created by the team admin
// and assigned to a member; personal tasks belong to their creator.
func (s *TodoService) CreateTodo(ctx context.Context, input CreateTodoInput) (*models.Todo, error) {
	task := strings.TrimSpace(input.Task)
	if task == "" {
		return nil, ErrTaskRequired
	}
	if input.AssigneeID == 0 {
		return nil, ErrAssigneeRequired
	}

	if input.TeamID != nil {
		team, err := s.findTeam(ctx, *input.TeamID)
		if err != nil {
			return nil, err
		}
		if !team.IsAdmin(input.CreatorID) {
			return nil, ErrNotTeamAdmin
		}
		if _, err := s.teamRepo.FindMember(ctx, team.ID, input.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotMember
			}
			return nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	} else if input.AssigneeID != input.CreatorID {
		return nil, ErrTodoPermissionDenied
	}

	todo := &models.Todo{
		Task:      task,
		Status:    models.TodoStatusTodo,
		Updated:   s.clock(),
		TeamID:    input.TeamID,
		UserID:    input.AssigneeID,
		CreatedBy: input.CreatorID,
	}
	if input.TargetAt != nil {
		targetAt := utils.NormalizeTime(*input.TargetAt)
		todo.TargetAt = &targetAt
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// UpdateTodo changes status and/or deadline of a task the actor may edit.
func (s *TodoService) UpdateTodo(ctx context.Context, todoID, actorID uint64, input UpdateTodoInput) (*models.Todo, error) {
	if input.empty() {
		return nil, ErrNoFieldsToUpdate
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	todo, err := s.authorize(ctx, todoID, actorID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated": s.clock(),
	}
	if input.Status != nil {
		fields["status"] = *input.Status
		todo.Status = *input.Status
	}
	switch {
	case input.ClearTargetAt:
		fields["target_at"] = nil
		todo.TargetAt = nil
	case input.TargetAt != nil:
		targetAt := utils.NormalizeTime(*input.TargetAt)
		fields["target_at"] = targetAt
		todo.TargetAt = &targetAt
	}
	todo.Updated = fields["updated"].(time.Time)

	updated, err := s.todoRepo.Update(ctx, todoID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if updated == 0 {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

// DeleteTodo deletes a task the actor may edit. The delete also requires the
// actor to still belong to the task's team at the time of the statement.
func (s *TodoService) DeleteTodo(ctx context.Context, todoID, actorID uint64) error {
	if _, err := s.authorize(ctx, todoID, actorID); err != nil {
		return err
	}

	removed, err := s.todoRepo.DeleteForActor(ctx, todoID, actorID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if removed == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (s *TodoService) authorize(ctx context.Context, todoID, actorID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	var team *models.Team
	if !todo.IsPersonal() {
		team, err = s.teamRepo.FindByID(ctx, *todo.TeamID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find team: %w", err)
		}
	}

	if !CanEdit(todo, actorID, team) {
		return nil, ErrTodoPermissionDenied
	}
	return todo, nil
}

func (s *TodoService) findTeam(ctx context.Context, teamID uint64) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}
