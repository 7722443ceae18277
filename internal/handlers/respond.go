package handlers

import (
	"net/http"

	"clinic-manager-server/internal/service"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondServiceError maps a service error onto the HTTP status the
// error kind calls for and writes the standard error envelope.
func respondServiceError(c *gin.Context, err error) {
	svcErr, ok := service.AsError(err)
	if !ok {
		utils.InternalServerError(c, "An unexpected error occurred")
		return
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindConflict:
		status = http.StatusConflict
	}

	if svcErr.Details != nil {
		utils.ErrorWithDetails(c, status, svcErr.Message, svcErr.Details)
		return
	}
	utils.Error(c, status, svcErr.Message)
}

// respondUserSaveError maps a user insert failure. A unique-email
// violation is a conflict, not a validation failure.
func respondUserSaveError(c *gin.Context, err error) {
	if err == gorm.ErrDuplicatedKey {
		utils.Conflict(c, "User with this email already exists")
		return
	}
	utils.InternalServerError(c, "Failed to save user: "+err.Error())
}
