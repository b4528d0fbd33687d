package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/dto"
	apierrors "github.com/i11iaore1/to-do-list-pet-backend/internal/errors"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/middleware"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/repository"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/services"
	"github.com/i11iaore1/to-do-list-pet-backend/internal/utils"
)

// GroupHandler coordinates group and membership HTTP handlers.
type GroupHandler struct {
	membershipService *services.MembershipService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(membershipService *services.MembershipService) *GroupHandler {
	return &GroupHandler{
		membershipService: membershipService,
	}
}

// CreateGroup creates a group with the authenticated user as owner.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateGroupRequest struct {
		Name string `json:"name" binding:"required,min=1,max=100"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.membershipService.CreateGroup(actor, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group))
}

// ListGroups returns the groups the authenticated user belongs to.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	h.listGroups(c, 0)
}

// ListGroupsForUser returns another user's groups. Staff only.
func (h *GroupHandler) ListGroupsForUser(c *gin.Context) {
	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.listGroups(c, targetID)
}

func (h *GroupHandler) listGroups(c *gin.Context, targetID uint64) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.membershipService.ListGroups(actor, targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": dto.ToGroupMembershipDTOs(memberships),
	})
}

// GetGroup returns a group with its members.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, members, err := h.membershipService.GetGroup(actor, groupID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{
		"group":   dto.ToGroupDTO(*group),
		"members": memberDTOs,
	})
}

// UpdateGroup renames a group. Requires the admin role.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateGroupRequest struct {
		Name string `json:"name" binding:"required,min=1,max=100"`
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.membershipService.UpdateGroup(actor, groupID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group))
}

// DeleteGroup removes a group with its tasks and memberships. Owner only.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.DeleteGroup(actor, groupID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Group deleted successfully",
	})
}

// ListMembers returns a group's members, optionally filtered by role.
func (h *GroupHandler) ListMembers(c *gin.Context) {
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
	filter := repository.MemberFilter{
		Page:     params.Page,
		PageSize: params.PageSize,
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.MemberRole(roleStr)
		switch role {
		case models.RoleDefault, models.RoleAdmin, models.RoleOwner:
			filter.Role = &role
		default:
			apierrors.BadRequest(c, "Invalid role")
			return
		}
	}

	members, total, err := h.membershipService.ListMembers(actor, groupID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberListResponse(members, params.Page, params.PageSize, total))
}

// CreateMember adds a user to a group.
func (h *GroupHandler) CreateMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	groupID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateMemberRequest struct {
		UserID uint64            `json:"user_id" binding:"required"`
		Role   models.MemberRole `json:"role"`
	}

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleDefault
	}

	member, err := h.membershipService.CreateMember(actor, services.CreateMemberInput{
		GroupID:      groupID,
		TargetUserID: req.UserID,
		Role:         req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// GetMember returns a single membership.
func (h *GroupHandler) GetMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := h.membershipService.GetMember(actor, memberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// UpdateMember changes a member's role. Promoting to owner transfers
// ownership from the current owner.
func (h *GroupHandler) UpdateMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateMemberRequest struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.membershipService.UpdateMemberRole(actor, memberID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// DeleteMember removes a member from a group.
func (h *GroupHandler) DeleteMember(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	memberID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.membershipService.DeleteMember(actor, memberID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}
