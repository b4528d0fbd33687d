package authz

import (
	"testing"

	"github.com/i11iaore1/to-do-list-pet-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func member(id, userID, groupID uint64, role models.MemberRole) *models.Member {
	return &models.Member{ID: id, UserID: userID, GroupID: groupID, Role: role}
}

func TestCanActOnGroup(t *testing.T) {
	owner := member(1, 10, 100, models.RoleOwner)
	admin := member(2, 11, 100, models.RoleAdmin)
	plain := member(3, 12, 100, models.RoleDefault)

	actor := Actor{ID: 12}
	assert.True(t, CanActOnGroup(actor, plain, CapabilityMember))
	assert.False(t, CanActOnGroup(actor, plain, CapabilityAdmin))
	assert.False(t, CanActOnGroup(actor, plain, CapabilityOwner))

	actor = Actor{ID: 11}
	assert.True(t, CanActOnGroup(actor, admin, CapabilityAdmin))
	assert.False(t, CanActOnGroup(actor, admin, CapabilityOwner))

	actor = Actor{ID: 10}
	assert.True(t, CanActOnGroup(actor, owner, CapabilityOwner))

	// no membership, no access
	assert.False(t, CanActOnGroup(Actor{ID: 99}, nil, CapabilityMember))

	// staff bypasses membership entirely
	assert.True(t, CanActOnGroup(Actor{ID: 99, IsStaff: true}, nil, CapabilityOwner))
}

func TestCanActOnMember(t *testing.T) {
	admin := member(2, 11, 100, models.RoleAdmin)
	plain := member(3, 12, 100, models.RoleDefault)
	otherGroup := member(4, 11, 200, models.RoleOwner)

	// admin of the same group may act
	assert.True(t, CanActOnMember(Actor{ID: 11}, admin, plain, CapabilityAdmin, false))

	// a role in another group grants nothing
	assert.False(t, CanActOnMember(Actor{ID: 11}, otherGroup, plain, CapabilityAdmin, false))

	// self bypass lets a member act on their own record
	assert.False(t, CanActOnMember(Actor{ID: 12}, plain, plain, CapabilityAdmin, false))
	assert.True(t, CanActOnMember(Actor{ID: 12}, plain, plain, CapabilityAdmin, true))

	// but not on someone else's
	assert.False(t, CanActOnMember(Actor{ID: 12}, plain, admin, CapabilityAdmin, true))

	assert.True(t, CanActOnMember(Actor{ID: 99, IsStaff: true}, nil, plain, CapabilityOwner, false))
}

func TestCanActOnGroupTask(t *testing.T) {
	admin := member(2, 11, 100, models.RoleAdmin)
	creator := member(3, 12, 100, models.RoleDefault)
	other := member(4, 13, 100, models.RoleDefault)
	stranger := member(5, 14, 200, models.RoleOwner)

	creatorID := creator.ID
	task := &models.GroupTask{ID: 50, GroupID: 100, CreatorID: &creatorID}

	editRelation := &models.MemberTaskRelation{ID: 1, MemberID: other.ID, GroupTaskID: task.ID, CanEdit: true}
	viewRelation := &models.MemberTaskRelation{ID: 2, MemberID: other.ID, GroupTaskID: task.ID, CanEdit: false}

	// group admins may do anything with the task
	assert.True(t, CanActOnGroupTask(Actor{ID: 11}, admin, task, nil, TaskCreator))

	// the creator holds the creator capability without a relation
	assert.True(t, CanActOnGroupTask(Actor{ID: 12}, creator, task, nil, TaskCreator))
	assert.False(t, CanActOnGroupTask(Actor{ID: 13}, other, task, editRelation, TaskCreator))

	// relations gate visibility and editing for plain members
	assert.False(t, CanActOnGroupTask(Actor{ID: 13}, other, task, nil, TaskRelated))
	assert.True(t, CanActOnGroupTask(Actor{ID: 13}, other, task, viewRelation, TaskRelated))
	assert.False(t, CanActOnGroupTask(Actor{ID: 13}, other, task, viewRelation, TaskEditor))
	assert.True(t, CanActOnGroupTask(Actor{ID: 13}, other, task, editRelation, TaskEditor))

	// membership in another group is no membership at all
	assert.False(t, CanActOnGroupTask(Actor{ID: 14}, stranger, task, nil, TaskRelated))
	assert.False(t, CanActOnGroupTask(Actor{ID: 99}, nil, task, nil, TaskRelated))

	assert.True(t, CanActOnGroupTask(Actor{ID: 99, IsStaff: true}, nil, task, nil, TaskCreator))
}

func TestCanActOnGroupTask_DetachedCreator(t *testing.T) {
	plain := member(3, 12, 100, models.RoleDefault)
	task := &models.GroupTask{ID: 50, GroupID: 100, CreatorID: nil}

	// a task whose creator left has no creator-capable member
	assert.False(t, CanActOnGroupTask(Actor{ID: 12}, plain, task, nil, TaskCreator))
}

func TestCanDeleteRelation(t *testing.T) {
	creator := member(3, 12, 100, models.RoleDefault)
	other := member(4, 13, 100, models.RoleDefault)

	creatorID := creator.ID
	task := &models.GroupTask{ID: 50, GroupID: 100, CreatorID: &creatorID}
	relation := &models.MemberTaskRelation{ID: 1, MemberID: other.ID, GroupTaskID: task.ID, CanEdit: true}

	// the creator may revoke any relation on the task
	assert.True(t, CanDeleteRelation(Actor{ID: 12}, creator, task, relation))

	// the target member may drop their own relation but not update it
	assert.True(t, CanDeleteRelation(Actor{ID: 13}, other, task, relation))
	assert.False(t, CanUpdateRelation(Actor{ID: 13}, other, task))

	// an unrelated member may do neither
	third := member(5, 14, 100, models.RoleDefault)
	assert.False(t, CanDeleteRelation(Actor{ID: 14}, third, task, relation))
}
