// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

// currentUserID reads the authenticated user's id set by the auth
// middleware. Returns false and writes the 401 itself when absent.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	idStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}
	return id, true
}

func currentRole(c *gin.Context) string {
	role, _ := utils.GetUserRoleFromContext(c)
	return role
}

// parseIDParam parses a uuid path parameter, writing the 400 itself on
// failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps a service error to the matching HTTP status.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case strings.Contains(err.Error(), "validation failed"):
		utils.BadRequestResponse(c, err.Error(), nil)
	case strings.Contains(err.Error(), "database error"),
		strings.Contains(err.Error(), "failed to"):
		logrus.WithError(err).Error("Request failed")
		utils.InternalErrorResponse(c, "")
	default:
		utils.BadRequestResponse(c, err.Error(), nil)
	}
}
