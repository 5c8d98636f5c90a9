package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/dto"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/middleware"
	"github.com/yukikurage/team-todo-api/internal/models"
	"github.com/yukikurage/team-todo-api/internal/services"
	"github.com/yukikurage/team-todo-api/internal/utils"
)

// TodoHandler serves task endpoints.
type TodoHandler struct {
	todoService *services.TodoService
	log         *logger.Logger
}

func NewTodoHandler(todoService *services.TodoService, log *logger.Logger) *TodoHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TodoHandler{
		todoService: todoService,
		log:         log,
	}
}

// nullableString records whether a JSON key was present, so that an explicit
// null can be told apart from an absent field.
type nullableString struct {
	Set   bool
	Value *string
}

func (n *nullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// parseTargetAt converts an optional deadline, writing a 400 when it is malformed.
func parseTargetAt(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := utils.ParseTargetAt(*raw)
	if err != nil {
		apierrors.BadRequest(c, "target_at must be formatted as YYYY-MM-DD HH:MM:SS")
		return nil, false
	}
	return &t, true
}

// ListUserTodos returns every task visible to the user in the path, which
// must be the authenticated user.
func (h *TodoHandler) ListUserTodos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	pathUserID, ok := parseIDParam(c, "userId")
	if !ok || !requireSelf(c, userID, &pathUserID, "userId") {
		return
	}

	todos, err := h.todoService.VisibleTodos(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTOs(todos))
}

// ListTeamTodos returns the tasks of one team visible to the authenticated user.
func (h *TodoHandler) ListTeamTodos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	claimed, ok := parseOptionalIDQuery(c, "user_id")
	if !ok || !requireSelf(c, userID, claimed, "user_id") {
		return
	}

	todos, err := h.todoService.TeamTodos(c.Request.Context(), teamID, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTOs(todos))
}

// CreateTodo creates a personal or team task. user_id names the assignee.
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	type CreateTodoRequest struct {
		Task      string  `json:"task"`
		UserID    uint64  `json:"user_id"`
		CreatedBy *uint64 `json:"created_by"`
		TargetAt  *string `json:"target_at"`
		TeamID    *uint64 `json:"team_id"`
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !requireSelf(c, userID, req.CreatedBy, "created_by") {
		return
	}

	targetAt, ok := parseTargetAt(c, req.TargetAt)
	if !ok {
		return
	}

	todo, err := h.todoService.CreateTodo(c.Request.Context(), services.CreateTodoInput{
		CreatorID:  userID,
		Task:       req.Task,
		TargetAt:   targetAt,
		TeamID:     req.TeamID,
		AssigneeID: req.UserID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// UpdateTodo changes the status and/or deadline of a task. A null target_at
// clears the deadline.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	type UpdateTodoRequest struct {
		Status   *models.TodoStatus `json:"status" binding:"omitempty,todostatus"`
		TargetAt nullableString     `json:"target_at"`
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "status must be 0, 1 or 2 and target_at a datetime or null", err)
		return
	}

	input := services.UpdateTodoInput{Status: req.Status}
	if req.TargetAt.Set {
		if req.TargetAt.Value == nil || *req.TargetAt.Value == "" {
			input.ClearTargetAt = true
		} else {
			targetAt, ok := parseTargetAt(c, req.TargetAt.Value)
			if !ok {
				return
			}
			input.TargetAt = targetAt
		}
	}

	todo, err := h.todoService.UpdateTodo(c.Request.Context(), todoID, userID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// DeleteTodo deletes a task. The optional body's user_id must name the
// authenticated user.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	type DeleteTodoRequest struct {
		TeamID *uint64 `json:"team_id"`
		UserID *uint64 `json:"user_id"`
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	todoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeleteTodoRequest
	if !bindOptionalJSON(c, &req) || !requireSelf(c, userID, req.UserID, "user_id") {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), todoID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

func (h *TodoHandler) respondError(c *gin.Context, err error) {
	apierrors.Respond(c, middleware.RequestLog(c, h.log), err)
}
