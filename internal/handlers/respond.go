package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
)

// respondServiceError translates service layer errors into API responses.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var taskErr *services.TaskError
	var statusErr *services.TaskStatusError
	var groupErr *services.GroupError

	switch {
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, "")
	case errors.Is(err, services.ErrPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMustHaveOwner):
		apierrors.Conflict(c, err.Error())
	case errors.As(err, &validationErr):
		if validationErr.Field != "" {
			apierrors.BadRequestWithDetails(c, validationErr.Message, gin.H{"field": validationErr.Field})
		} else {
			apierrors.BadRequest(c, validationErr.Message)
		}
	case errors.As(err, &taskErr):
		apierrors.UnprocessableWithCode(c, taskErr.Code(), taskErr.Message)
	case errors.As(err, &statusErr):
		apierrors.UnprocessableWithCode(c, statusErr.Code(), statusErr.Message)
	case errors.As(err, &groupErr):
		apierrors.ConflictWithCode(c, groupErr.Code(), groupErr.Message)
	default:
		apierrors.InternalError(c, "")
	}
}

// parseIDParam reads and parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// bindTaskChanges parses a partial task update. Raw JSON is inspected so a
// null due_date can be told apart from an absent one.
func bindTaskChanges(c *gin.Context) (services.TaskChanges, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return services.TaskChanges{}, false
	}

	var changes services.TaskChanges
	if value, ok := raw["description"]; ok {
		description, ok := value.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid description")
			return services.TaskChanges{}, false
		}
		changes.Description = &description
	}
	if value, ok := raw["due_date"]; ok {
		if value == nil {
			changes.ClearDueDate = true
		} else {
			dueDateStr, ok := value.(string)
			if !ok {
				apierrors.BadRequest(c, "Invalid due_date")
				return services.TaskChanges{}, false
			}
			dueDate, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return services.TaskChanges{}, false
			}
			changes.DueDate = &dueDate
		}
	}
	if value, ok := raw["status"]; ok {
		statusStr, _ := value.(string)
		status := models.TaskStatus(statusStr)
		changes.Status = &status
	}
	return changes, true
}

// dueDateRequest is the body of close-adjacent operations that take only an
// optional due date.
type dueDateRequest struct {
	DueDate *time.Time `json:"due_date"`
}
