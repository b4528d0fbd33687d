package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/dto"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/middleware"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/utils"
)

// RelationHandler coordinates task relation HTTP handlers.
type RelationHandler struct {
	relationService *services.RelationService
}

// NewRelationHandler creates a new RelationHandler.
func NewRelationHandler(relationService *services.RelationService) *RelationHandler {
	return &RelationHandler{
		relationService: relationService,
	}
}

// CreateRelation grants a member access to a group task.
func (h *RelationHandler) CreateRelation(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateRelationRequest struct {
		MemberID uint64 `json:"member_id" binding:"required"`
		CanEdit  bool   `json:"can_edit"`
	}

	var req CreateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	relation, err := h.relationService.Create(actor, taskID, req.MemberID, req.CanEdit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRelationDTO(*relation))
}

// ListRelations returns the relations of a group task.
func (h *RelationHandler) ListRelations(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListRelationsInput{
		TaskID:   taskID,
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	if canEditStr := c.Query("can_edit"); canEditStr != "" {
		canEdit, err := strconv.ParseBool(canEditStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid can_edit")
			return
		}
		input.CanEdit = &canEdit
	}

	relations, total, err := h.relationService.List(actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRelationListResponse(relations, params.Page, params.PageSize, total))
}

// GetRelation returns a single relation.
func (h *RelationHandler) GetRelation(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	relationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	relation, err := h.relationService.Get(actor, relationID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRelationDTO(*relation))
}

// UpdateRelation changes the can_edit flag of a relation.
func (h *RelationHandler) UpdateRelation(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	relationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateRelationRequest struct {
		CanEdit *bool `json:"can_edit" binding:"required"`
	}

	var req UpdateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	relation, err := h.relationService.Update(actor, relationID, *req.CanEdit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRelationDTO(*relation))
}

// DeleteRelation revokes a relation.
func (h *RelationHandler) DeleteRelation(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	relationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.relationService.Delete(actor, relationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Relation removed successfully",
	})
}
