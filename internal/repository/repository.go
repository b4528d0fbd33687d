package repository

import (
	"time"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}

// UserTaskFilter holds filtering options for listing personal tasks
type UserTaskFilter struct {
	UserID   uint64
	Status   string // "", "issued", "expired" or "closed"
	Now      time.Time
	Page     int
	PageSize int
}

// UserTaskRepository defines the interface for personal task data access
type UserTaskRepository interface {
	// Create creates a new task
	Create(task *models.UserTask) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.UserTask, error)

	// List retrieves tasks with status partitioning and pagination
	List(filter UserTaskFilter) ([]models.UserTask, int64, error)

	// MutateLocked re-reads the task under an exclusive row lock, applies fn
	// and saves, all within one transaction
	MutateLocked(id uint64, fn func(task *models.UserTask) error) (*models.UserTask, error)

	// DeleteLocked re-reads the task under an exclusive row lock, runs the
	// guard fn and deletes within one transaction
	DeleteLocked(id uint64, fn func(task *models.UserTask) error) error
}

// MemberFilter holds filtering options for listing group members
type MemberFilter struct {
	Role     *models.MemberRole
	Page     int
	PageSize int
}

// GroupRepository defines the interface for group and membership data access
type GroupRepository interface {
	// CreateWithOwner creates a group and its first member with the owner
	// role in one transaction
	CreateWithOwner(group *models.Group, ownerUserID uint64) (*models.Member, error)

	// FindByID finds a group by ID
	FindByID(id uint64) (*models.Group, error)

	// Update updates a group
	Update(group *models.Group) error

	// Delete deletes a group together with its members, tasks and relations
	Delete(id uint64) error

	// ListByUserID lists the memberships of a user with groups preloaded
	ListByUserID(userID uint64) ([]models.Member, error)

	// AddMemberWithOwnership adds a member and, if the role is owner,
	// transfers ownership to it within the same transaction
	AddMemberWithOwnership(member *models.Member) error

	// FindMember finds the membership of a user in a group
	FindMember(groupID, userID uint64) (*models.Member, error)

	// FindMemberByID finds a member by ID with optional preloading
	FindMemberByID(id uint64, preload ...string) (*models.Member, error)

	// ListMembers lists the members of a group
	ListMembers(groupID uint64, filter MemberFilter) ([]models.Member, int64, error)

	// MutateMemberLocked re-reads the member under an exclusive row lock,
	// applies fn and saves within one transaction. When fn promotes the
	// member to owner, ownership is transferred from the current owner in
	// the same transaction
	MutateMemberLocked(id uint64, fn func(member *models.Member) error) (*models.Member, error)

	// RemoveMemberLocked re-reads the member under an exclusive row lock,
	// runs the guard fn and deletes it, detaching created tasks and removing
	// its task relations, all within one transaction
	RemoveMemberLocked(id uint64, fn func(member *models.Member) error) error
}

// GroupTaskFilter holds filtering options for listing group tasks
type GroupTaskFilter struct {
	GroupID         uint64
	RelatedMemberID *uint64 // restrict to tasks the member holds a relation for
	Closed          *bool
	Current         *bool
	DueFrom         *time.Time
	DueTo           *time.Time
	CreatorID       *uint64
	Now             time.Time
	SortByDueDate   bool
	Page            int
	PageSize        int
}

// RelationFilter holds filtering options for listing member-task relations
type RelationFilter struct {
	CanEdit  *bool
	Page     int
	PageSize int
}

// GroupTaskRepository defines the interface for group task and relation data
// access
type GroupTaskRepository interface {
	// CreateWithCreatorRelation creates a group task and, when creator is
	// non-nil, an editor relation for it, in one transaction
	CreateWithCreatorRelation(task *models.GroupTask, creator *models.Member) error

	// FindByID finds a group task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.GroupTask, error)

	// List retrieves group tasks with filtering and pagination
	List(filter GroupTaskFilter) ([]models.GroupTask, int64, error)

	// MutateLocked re-reads the task under an exclusive row lock, applies fn
	// and saves, all within one transaction
	MutateLocked(id uint64, fn func(task *models.GroupTask) error) (*models.GroupTask, error)

	// DeleteLocked re-reads the task under an exclusive row lock, runs the
	// guard fn and deletes the task with its relations
	DeleteLocked(id uint64, fn func(task *models.GroupTask) error) error

	// CreateRelation creates a member-task relation
	CreateRelation(relation *models.MemberTaskRelation) error

	// FindRelation finds the relation of a member to a task
	FindRelation(memberID, groupTaskID uint64) (*models.MemberTaskRelation, error)

	// FindRelationByID finds a relation by ID with optional preloading
	FindRelationByID(id uint64, preload ...string) (*models.MemberTaskRelation, error)

	// ListRelations lists the relations of a group task
	ListRelations(groupTaskID uint64, filter RelationFilter) ([]models.MemberTaskRelation, int64, error)

	// UpdateRelationLocked re-reads the relation under an exclusive row lock,
	// applies fn and saves
	UpdateRelationLocked(id uint64, fn func(relation *models.MemberTaskRelation) error) (*models.MemberTaskRelation, error)

	// DeleteRelation deletes a relation
	DeleteRelation(id uint64) error
}
