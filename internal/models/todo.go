package models

import "time"

type TodoStatus int

const (
	TodoStatusTodo  TodoStatus = 0
	TodoStatusDoing TodoStatus = 1
	TodoStatusDone  TodoStatus = 2
)

// Valid reports whether s is one of the three known states. Any valid state
// may move to any other.
func (s TodoStatus) Valid() bool {
	return s >= TodoStatusTodo && s <= TodoStatusDone
}

func (s TodoStatus) String() string {
	switch s {
	case TodoStatusTodo:
		return "todo"
	case TodoStatusDoing:
		return "doing"
	case TodoStatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Todo is a task. A nil TeamID marks a personal task owned by UserID.
type Todo struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Task      string     `gorm:"type:text;not null" json:"task"`
	Status    TodoStatus `gorm:"not null;default:0" json:"status"`
	TargetAt  *time.Time `json:"target_at"`
	Updated   time.Time  `gorm:"column:updated;not null" json:"updated"`
	TeamID    *uint64    `json:"team_id"`
	UserID    uint64     `gorm:"not null" json:"user_id"`
	CreatedBy uint64     `gorm:"not null" json:"created_by"`
}

func (Todo) TableName() string {
	return "todo"
}

// IsPersonal reports whether the task has no team.
func (t Todo) IsPersonal() bool {
	return t.TeamID == nil
}
