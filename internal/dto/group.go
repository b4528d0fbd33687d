package dto

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
)

// GroupDTO represents a group in API responses
type GroupDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GroupMembershipDTO represents one of a user's groups together with the
// role held there
type GroupMembershipDTO struct {
	Group    GroupDTO          `json:"group"`
	MemberID uint64            `json:"member_id"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}

// ToGroupMembershipDTOs converts a user's memberships to GroupMembershipDTOs
func ToGroupMembershipDTOs(memberships []models.Member) []GroupMembershipDTO {
	items := make([]GroupMembershipDTO, len(memberships))
	for i, membership := range memberships {
		items[i] = GroupMembershipDTO{
			Group:    ToGroupDTO(membership.Group),
			MemberID: membership.ID,
			Role:     membership.Role,
			JoinedAt: membership.JoinedAt,
		}
	}
	return items
}

// MemberDTO represents a group membership in API responses
type MemberDTO struct {
	ID       uint64            `json:"id"`
	UserID   uint64            `json:"user_id"`
	GroupID  uint64            `json:"group_id"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
	User     *UserDTO          `json:"user,omitempty"`
}

// MemberListResponse represents a paginated list of group members
type MemberListResponse struct {
	Members    []MemberDTO `json:"members"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
	TotalPages int         `json:"total_pages"`
}

// ToGroupDTO converts a Group model to GroupDTO
func ToGroupDTO(group models.Group) GroupDTO {
	return GroupDTO{
		ID:        group.ID,
		Name:      group.Name,
		CreatedAt: group.CreatedAt,
	}
}

// ToMemberDTO converts a Member model to MemberDTO
func ToMemberDTO(member models.Member) MemberDTO {
	dto := MemberDTO{
		ID:       member.ID,
		UserID:   member.UserID,
		GroupID:  member.GroupID,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}

	// Include user if preloaded
	if member.User.ID != 0 {
		user := ToUserDTO(member.User)
		dto.User = &user
	}

	return dto
}

// ToMemberListResponse converts a slice of members to MemberListResponse
func ToMemberListResponse(members []models.Member, page, pageSize int, totalCount int64) MemberListResponse {
	items := make([]MemberDTO, len(members))
	for i, member := range members {
		items[i] = ToMemberDTO(member)
	}

	return MemberListResponse{
		Members:    items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, pageSize),
	}
}
