package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/dto"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/middleware"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/utils"
)

// GroupTaskHandler coordinates group task HTTP handlers.
type GroupTaskHandler struct {
	taskService *services.GroupTaskService
}

// NewGroupTaskHandler creates a new GroupTaskHandler.
func NewGroupTaskHandler(taskService *services.GroupTaskService) *GroupTaskHandler {
	return &GroupTaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a task inside a group.
func (h *GroupTaskHandler) CreateTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
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

	task, err := h.taskService.Create(actor, services.CreateGroupTaskInput{
		GroupID:     groupID,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupTaskDTO(*task, time.Now()))
}

// ListTasks returns a group's tasks. Plain members only see tasks they hold
// a relation for.
func (h *GroupTaskHandler) ListTasks(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListGroupTasksInput{
		GroupID:       groupID,
		SortByDueDate: c.Query("sort") == "due_date",
		Page:          params.Page,
		PageSize:      params.PageSize,
	}

	if closedStr := c.Query("closed"); closedStr != "" {
		closed, err := strconv.ParseBool(closedStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid closed")
			return
		}
		input.Closed = &closed
	}
	if currentStr := c.Query("current"); currentStr != "" {
		current, err := strconv.ParseBool(currentStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid current")
			return
		}
		input.Current = &current
	}
	if fromStr := c.Query("due_from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_from")
			return
		}
		input.DueFrom = &from
	}
	if toStr := c.Query("due_to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_to")
			return
		}
		input.DueTo = &to
	}
	if creatorStr := c.Query("creator_id"); creatorStr != "" {
		creatorID, err := strconv.ParseUint(creatorStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid creator_id")
			return
		}
		input.CreatorID = &creatorID
	}

	tasks, total, err := h.taskService.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupTaskListResponse(tasks, params.Page, params.PageSize, total))
}

// GetTask returns a group task.
func (h *GroupTaskHandler) GetTask(c *gin.Context) {
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

	c.JSON(http.StatusOK, dto.ToGroupTaskDTO(*task, time.Now()))
}

// UpdateTask applies a partial update to a group task.
func (h *GroupTaskHandler) UpdateTask(c *gin.Context) {
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

	task, err := h.taskService.Update(actor, taskID, changes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupTaskDTO(*task, time.Now()))
}

// CloseTask marks a group task as done.
func (h *GroupTaskHandler) CloseTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Close(actor, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupTaskDTO(*task, time.Now()))
}

// ReissueTask reopens a closed or expired group task.
func (h *GroupTaskHandler) ReissueTask(c *gin.Context) {
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

	task, err := h.taskService.Reissue(actor, taskID, req.DueDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupTaskDTO(*task, time.Now()))
}

// DeleteTask removes a group task. Creator only.
func (h *GroupTaskHandler) DeleteTask(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(actor, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
