package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/dto"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/middleware"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/utils"
)

// UserTaskHandler coordinates personal task HTTP handlers.
type UserTaskHandler struct {
	taskService *services.UserTaskService
}

// NewUserTaskHandler creates a new UserTaskHandler.
func NewUserTaskHandler(taskService *services.UserTaskService) *UserTaskHandler {
	return &UserTaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the authenticated user's tasks, optionally filtered by
// derived status (issued, expired or closed).
func (h *UserTaskHandler) ListTasks(c *gin.Context) {
	h.list(c, 0)
}

// ListTasksForUser returns another user's tasks. Staff only.
func (h *UserTaskHandler) ListTasksForUser(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.list(c, targetID)
}

func (h *UserTaskHandler) list(c *gin.Context, targetID uint64) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.List(c.Request.Context(), actor, services.ListUserTasksInput{
		TargetUserID: targetID,
		Status:       c.Query("status"),
		Page:         params.Page,
		PageSize:     params.PageSize,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserTaskListResponse(tasks, params.Page, params.PageSize, total))
}

// CreateTask creates a personal task for the authenticated user.
func (h *UserTaskHandler) CreateTask(c *gin.Context) {
	h.create(c, 0)
}

// CreateTaskForUser creates a personal task for another user. Staff only.
func (h *UserTaskHandler) CreateTaskForUser(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.create(c, targetID)
}

func (h *UserTaskHandler) create(c *gin.Context, targetID uint64) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Description string     `json:"description" binding:"required"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actor, services.CreateUserTaskInput{
		TargetUserID: targetID,
		Description:  req.Description,
		DueDate:      req.DueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserTaskDTO(*task, time.Now()))
}

// GetTask returns a personal task.
func (h *UserTaskHandler) GetTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserTaskDTO(*task, time.Now()))
}

// UpdateTask applies a partial update to a personal task.
func (h *UserTaskHandler) UpdateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	changes, ok := bindTaskChanges(c)
	if !ok {
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actor, taskID, changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserTaskDTO(*task, time.Now()))
}

// CloseTask marks a personal task as done.
func (h *UserTaskHandler) CloseTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Close(c.Request.Context(), actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserTaskDTO(*task, time.Now()))
}

// ReissueTask reopens a closed or expired personal task.
func (h *UserTaskHandler) ReissueTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dueDateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	task, err := h.taskService.Reissue(c.Request.Context(), actor, taskID, req.DueDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserTaskDTO(*task, time.Now()))
}

// DeleteTask removes a personal task.
func (h *UserTaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
