package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/middleware"
)

// currentUserID returns the authenticated user or writes a 401.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

// parseIDParam reads a numeric path parameter or writes a 400.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// parseOptionalIDQuery reads an optional numeric query parameter. It writes a
// 400 and returns ok=false when the value is present but malformed.
func parseOptionalIDQuery(c *gin.Context, name string) (*uint64, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// requireSelf rejects identity fields that name someone other than the
// authenticated user. A nil claim is accepted.
func requireSelf(c *gin.Context, actorID uint64, claimed *uint64, field string) bool {
	if claimed != nil && *claimed != actorID {
		apierrors.Forbidden(c, field+" does not match the authenticated user")
		return false
	}
	return true
}

// bindOptionalJSON binds a JSON body that may be absent.
func bindOptionalJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// respondBindError writes a 400 for a failed bind. Validation failures list
// the offending fields and the rule each one broke.
func respondBindError(c *gin.Context, message string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		apierrors.BadRequest(c, message)
		return
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	apierrors.BadRequestWithDetails(c, message, details)
}
