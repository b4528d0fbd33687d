// Package authz holds the authorization predicates shared by every service
// operation. Predicates are pure functions over already-resolved entities, so
// list scoping and object checks evaluate the exact same conditions.
package authz

import "github.com/i11iaore1/to-do-list-pet-backend/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID      uint64
	IsStaff bool
}

// GroupCapability is the role tier required to act on a group or on one of
// its members.
type GroupCapability int

const (
	// CapabilityMember requires any membership in the group.
	CapabilityMember GroupCapability = iota
	// CapabilityAdmin requires the admin or owner role.
	CapabilityAdmin
	// CapabilityOwner requires the owner role.
	CapabilityOwner
)

// TaskCapability is the relationship required to act on a group task.
type TaskCapability int

const (
	// TaskRelated requires a MemberTaskRelation for the actor's membership.
	TaskRelated TaskCapability = iota
	// TaskEditor additionally requires can_edit on that relation.
	TaskEditor
	// TaskCreator requires the actor's membership to be the task's creator.
	TaskCreator
)

func roleSatisfies(role models.MemberRole, capability GroupCapability) bool {
	switch capability {
	case CapabilityMember:
		return true
	case CapabilityAdmin:
		return models.IsAdminRole(role)
	case CapabilityOwner:
		return role == models.RoleOwner
	default:
		return false
	}
}

// CanActOnGroup decides whether the actor may perform a group-level operation.
// membership is the actor's membership in the group, or nil.
func CanActOnGroup(actor Actor, membership *models.Member, capability GroupCapability) bool {
	if actor.IsStaff {
		return true
	}
	if membership == nil {
		return false
	}
	return roleSatisfies(membership.Role, capability)
}

// CanActOnMember decides whether the actor may perform an operation targeting
// a specific member record. The role check runs against the target's group.
// When selfBypass is set, the actor being the target member's user allows the
// operation regardless of role; that is used for self-service actions, never
// role escalation.
func CanActOnMember(actor Actor, actorMembership *models.Member, target *models.Member, capability GroupCapability, selfBypass bool) bool {
	if actor.IsStaff {
		return true
	}
	if selfBypass && target.UserID == actor.ID {
		return true
	}
	if actorMembership == nil || actorMembership.GroupID != target.GroupID {
		return false
	}
	return roleSatisfies(actorMembership.Role, capability)
}

// CanActOnGroupTask decides whether the actor may perform an operation on a
// group task. Staff and group admins/owners always may; otherwise the
// decision depends on the requested capability and the actor's relation to
// the task. relation is the actor's MemberTaskRelation for the task, or nil.
func CanActOnGroupTask(actor Actor, actorMembership *models.Member, task *models.GroupTask, relation *models.MemberTaskRelation, capability TaskCapability) bool {
	if actor.IsStaff {
		return true
	}
	if actorMembership == nil || actorMembership.GroupID != task.GroupID {
		return false
	}
	if models.IsAdminRole(actorMembership.Role) {
		return true
	}

	switch capability {
	case TaskCreator:
		return task.CreatorID != nil && *task.CreatorID == actorMembership.ID
	case TaskRelated:
		return relation != nil
	case TaskEditor:
		return relation != nil && relation.CanEdit
	default:
		return false
	}
}

// CanUpdateRelation decides whether the actor may change a relation's grants:
// staff, group admins/owners and the task's creator only.
func CanUpdateRelation(actor Actor, actorMembership *models.Member, task *models.GroupTask) bool {
	return CanActOnGroupTask(actor, actorMembership, task, nil, TaskCreator)
}

// CanDeleteRelation decides whether the actor may revoke a relation: anyone
// allowed to update it, plus the relation's own target member.
func CanDeleteRelation(actor Actor, actorMembership *models.Member, task *models.GroupTask, relation *models.MemberTaskRelation) bool {
	if CanUpdateRelation(actor, actorMembership, task) {
		return true
	}
	return actorMembership != nil && actorMembership.ID == relation.MemberID
}
