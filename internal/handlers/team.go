package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/team-todo-api/internal/dto"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/middleware"
	"github.com/yukikurage/team-todo-api/internal/services"
)

// TeamHandler serves team and membership endpoints.
type TeamHandler struct {
	teamService *services.TeamService
	log         *logger.Logger
}

func NewTeamHandler(teamService *services.TeamService, log *logger.Logger) *TeamHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TeamHandler{
		teamService: teamService,
		log:         log,
	}
}

// ListTeams returns the teams of the authenticated user. The user_id query
// parameter is accepted for compatibility and must name the same user.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	claimed, ok := parseOptionalIDQuery(c, "user_id")
	if !ok || !requireSelf(c, userID, claimed, "user_id") {
		return
	}

	teams, err := h.teamService.ListTeamsForUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTOs(teams))
}

// CreateTeam creates a team administered by the authenticated user.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	type CreateTeamRequest struct {
		Name        string  `json:"name"`
		AdminUserID *uint64 `json:"admin_user_id"`
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !requireSelf(c, userID, req.AdminUserID, "admin_user_id") {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Name:        req.Name,
		AdminUserID: userID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team))
}

type adminRequest struct {
	AdminUserID *uint64 `json:"admin_user_id"`
}

// DeleteTeam deletes a team with its tasks and memberships.
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req adminRequest
	if !bindOptionalJSON(c, &req) || !requireSelf(c, userID, req.AdminUserID, "admin_user_id") {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), teamID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team deleted"})
}

// AddMember adds a user to the team.
func (h *TeamHandler) AddMember(c *gin.Context) {
	type AddMemberRequest struct {
		AdminUserID *uint64 `json:"admin_user_id"`
		UserID      uint64  `json:"user_id" binding:"required"`
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, "user_id is required", err)
		return
	}
	if !requireSelf(c, userID, req.AdminUserID, "admin_user_id") {
		return
	}

	if err := h.teamService.AddMember(c.Request.Context(), teamID, userID, req.UserID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User added to team"})
}

// RemoveMember removes a user from the team.
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	targetID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req adminRequest
	if !bindOptionalJSON(c, &req) || !requireSelf(c, userID, req.AdminUserID, "admin_user_id") {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), teamID, userID, targetID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}

// ListMembers returns the members of a team.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	teamID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(c.Request.Context(), teamID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTOs(members))
}

func (h *TeamHandler) respondError(c *gin.Context, err error) {
	apierrors.Respond(c, middleware.RequestLog(c, h.log), err)
}
