// Package permissions evaluates what an actor may do to an entity, list,
// tag, or relationship. Evaluation is pure: every input is passed in, and
// nothing here reads or writes storage.
package permissions

import (
	"time"

	"github.com/Ramsey-B/graft/pkg/models"
)

// Policy holds the tunable constants permission checks depend on.
type Policy struct {
	// DeletionGracePeriod is how long after creation a non-admin creator
	// may still delete what they created.
	DeletionGracePeriod time.Duration
	// DeletionLinkThreshold is the relationship count at or above which an
	// entity is too connected for non-admin deletion.
	DeletionLinkThreshold int
}

// EntityPermissions is the capability set for one actor on one entity.
type EntityPermissions struct {
	Mergeable  bool `json:"mergeable"`
	Deleteable bool `json:"deleteable"`
}

// ForEntity evaluates entity capabilities. Merging needs the merge ability.
// Deletion needs admin, or being the creator inside the grace window on an
// entity with few relationships.
func ForEntity(policy Policy, actor *models.User, e *models.Entity) EntityPermissions {
	if actor == nil {
		return EntityPermissions{}
	}

	perms := EntityPermissions{
		Mergeable: actor.HasAbility(models.AbilityMerge),
	}

	switch {
	case actor.IsAdmin():
		perms.Deleteable = true
	case actor.ID == e.CreatedBy &&
		time.Since(e.CreatedAt) < policy.DeletionGracePeriod &&
		e.LinkCount < policy.DeletionLinkThreshold:
		perms.Deleteable = true
	}

	return perms
}

// ListPermissions is the capability set for one actor on one list.
type ListPermissions struct {
	Viewable     bool `json:"viewable"`
	Editable     bool `json:"editable"`
	Configurable bool `json:"configurable"`
}

// ForList evaluates list capabilities for a logged-in actor against the
// list's access level.
func ForList(actor *models.User, l *models.List) ListPermissions {
	if actor == nil {
		return AnonList(l)
	}

	isOwner := actor.IsAdmin() || actor.ID == l.CreatorUserID

	switch l.AccessLevel {
	case models.AccessOpen:
		return ListPermissions{
			Viewable:     true,
			Editable:     isOwner || actor.HasAbility(models.AbilityList),
			Configurable: isOwner,
		}
	case models.AccessClosed:
		return ListPermissions{
			Viewable:     true,
			Editable:     isOwner,
			Configurable: isOwner,
		}
	case models.AccessPrivate:
		return ListPermissions{
			Viewable:     isOwner,
			Editable:     isOwner,
			Configurable: isOwner,
		}
	default:
		return ListPermissions{}
	}
}

// AnonList evaluates list capabilities for an anonymous reader. Private
// lists are invisible; nothing is ever editable.
func AnonList(l *models.List) ListPermissions {
	return ListPermissions{
		Viewable: l.AccessLevel != models.AccessPrivate,
	}
}

// TagPermissions is the capability set for one actor on one tag.
type TagPermissions struct {
	Viewable bool `json:"viewable"`
	Editable bool `json:"editable"`
}

// ForTag evaluates tag capabilities. Any tag is viewable. Unrestricted tags
// are editable by any logged-in user; restricted tags only by admins and
// users holding a grant, passed in as editableTagIDs.
func ForTag(actor *models.User, t *models.Tag, editableTagIDs []int64) TagPermissions {
	if actor == nil {
		return AnonTag(t)
	}

	perms := TagPermissions{Viewable: true}

	if !t.Restricted || actor.IsAdmin() {
		perms.Editable = true
		return perms
	}

	for _, id := range editableTagIDs {
		if id == t.ID {
			perms.Editable = true
			break
		}
	}

	return perms
}

// AnonTag evaluates tag capabilities for an anonymous reader.
func AnonTag(t *models.Tag) TagPermissions {
	return TagPermissions{Viewable: true}
}

// RelationshipPermissions is the capability set for one actor on one
// relationship.
type RelationshipPermissions struct {
	Deleteable bool `json:"deleteable"`
}

// ForRelationship evaluates relationship capabilities. Relationships backed
// by external donation matches are protected and never deleteable, no
// matter who asks.
func ForRelationship(policy Policy, actor *models.User, r *models.Relationship, hasDonationMatches bool) RelationshipPermissions {
	if actor == nil || hasDonationMatches {
		return RelationshipPermissions{}
	}

	switch {
	case actor.IsAdmin(), actor.HasAbility(models.AbilityDelete):
		return RelationshipPermissions{Deleteable: true}
	case actor.ID == r.CreatedBy && time.Since(r.CreatedAt) < policy.DeletionGracePeriod:
		return RelationshipPermissions{Deleteable: true}
	default:
		return RelationshipPermissions{}
	}
}
