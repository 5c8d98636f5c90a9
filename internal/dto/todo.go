package dto

import (
	"time"

	"github.com/yukikurage/team-todo-api/internal/models"
)

// TodoDTO represents a task in API responses
type TodoDTO struct {
	ID        uint64            `json:"id"`
	Task      string            `json:"task"`
	Status    models.TodoStatus `json:"status"`
	TargetAt  *time.Time        `json:"target_at"`
	Updated   time.Time         `json:"updated"`
	TeamID    *uint64           `json:"team_id"`
	UserID    uint64            `json:"user_id"`
	CreatedBy uint64            `json:"created_by"`
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:        todo.ID,
		Task:      todo.Task,
		Status:    todo.Status,
		TargetAt:  todo.TargetAt,
		Updated:   todo.Updated,
		TeamID:    todo.TeamID,
		UserID:    todo.UserID,
		CreatedBy: todo.CreatedBy,
	}
}

// ToTodoDTOs converts a list, always returning a non-nil slice so empty lists
// encode as [].
func ToTodoDTOs(todos []models.Todo) []TodoDTO {
	out := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		out[i] = ToTodoDTO(todo)
	}
	return out
}
