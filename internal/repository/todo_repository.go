package repository

import (
	"context"

	"github.com/yukikurage/team-todo-api/internal/database"
	"github.com/yukikurage/team-todo-api/internal/models"
	"gorm.io/gorm"
)

const (
	// A task is visible when it is the user's personal task, is assigned to the
	// user, or belongs to a team the user is a member of.
	visibilityCondition = "((todo.team_id IS NULL AND todo.user_id = ?) OR " +
		"(todo.team_id IS NOT NULL AND (todo.user_id = ? OR EXISTS " +
		"(SELECT 1 FROM team_members tm WHERE tm.team_id = todo.team_id AND tm.user_id = ?))))"

	deletableCondition = "(todo.team_id IS NULL OR EXISTS " +
		"(SELECT 1 FROM team_members tm WHERE tm.team_id = todo.team_id AND tm.user_id = ?))"

	// Status first, then deadline with undated tasks last.
	visibleOrder = "todo.status ASC, CASE WHEN todo.target_at IS NULL THEN 1 ELSE 0 END ASC, todo.target_at ASC, todo.id ASC"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create inserts a new task
func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByID finds a task by ID
func (r *GormTodoRepository) FindByID(ctx context.Context, id uint64) (*models.Todo, error) {
	var todo models.Todo
	err := database.Retry(ctx, func() error {
		return r.db.WithContext(ctx).First(&todo, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListVisible lists the tasks filter.UserID may see, optionally within one team
func (r *GormTodoRepository) ListVisible(ctx context.Context, filter TodoFilter) ([]models.Todo, error) {
	var todos []models.Todo
	err := database.Retry(ctx, func() error {
		todos = todos[:0]
		query := r.db.WithContext(ctx).
			Model(&models.Todo{}).
			Where(visibilityCondition, filter.UserID, filter.UserID, filter.UserID)

		if filter.TeamID != nil {
			query = query.Where("todo.team_id = ?", *filter.TeamID)
		}

		return query.Order(visibleOrder).Find(&todos).Error
	})
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Update writes the given columns of a task and reports how many rows matched.
func (r *GormTodoRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// DeleteForActor deletes a task in a single statement that also checks team
// membership, so a membership removed after the permission check still blocks
// the delete.
func (r *GormTodoRepository) DeleteForActor(ctx context.Context, id, actorID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("todo.id = ?", id).
		Where(deletableCondition, actorID).
		Delete(&models.Todo{})
	return result.RowsAffected, result.Error
}
