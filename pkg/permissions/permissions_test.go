package permissions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/graft/pkg/models"
)

var testPolicy = Policy{
	DeletionGracePeriod:   24 * time.Hour,
	DeletionLinkThreshold: 3,
}

func TestForEntity(t *testing.T) {
	admin := &models.User{ID: 1, Abilities: []string{models.AbilityAdmin}}
	merger := &models.User{ID: 2, Abilities: []string{models.AbilityMerge}}
	regular := &models.User{ID: 3}

	freshEntity := func(createdBy int64, linkCount int) *models.Entity {
		return &models.Entity{ID: 10, CreatedBy: createdBy, LinkCount: linkCount, CreatedAt: time.Now()}
	}

	t.Run("anonymous has no capabilities", func(t *testing.T) {
		perms := ForEntity(testPolicy, nil, freshEntity(3, 0))
		assert.Equal(t, EntityPermissions{}, perms)
	})

	t.Run("admin may merge and delete anything", func(t *testing.T) {
		old := &models.Entity{ID: 10, CreatedBy: 99, LinkCount: 500, CreatedAt: time.Now().Add(-365 * 24 * time.Hour)}
		perms := ForEntity(testPolicy, admin, old)
		assert.True(t, perms.Mergeable)
		assert.True(t, perms.Deleteable)
	})

	t.Run("merge ability without admin", func(t *testing.T) {
		perms := ForEntity(testPolicy, merger, freshEntity(99, 0))
		assert.True(t, perms.Mergeable)
		assert.False(t, perms.Deleteable)
	})

	t.Run("creator inside grace window with few links", func(t *testing.T) {
		perms := ForEntity(testPolicy, regular, freshEntity(regular.ID, 2))
		assert.False(t, perms.Mergeable)
		assert.True(t, perms.Deleteable)
	})

	t.Run("creator outside grace window", func(t *testing.T) {
		stale := &models.Entity{ID: 10, CreatedBy: regular.ID, LinkCount: 0, CreatedAt: time.Now().Add(-48 * time.Hour)}
		perms := ForEntity(testPolicy, regular, stale)
		assert.False(t, perms.Deleteable)
	})

	t.Run("creator of well-connected entity", func(t *testing.T) {
		perms := ForEntity(testPolicy, regular, freshEntity(regular.ID, 3))
		assert.False(t, perms.Deleteable)
	})

	t.Run("non-creator inside grace window", func(t *testing.T) {
		perms := ForEntity(testPolicy, regular, freshEntity(99, 0))
		assert.False(t, perms.Deleteable)
	})
}

func TestForList(t *testing.T) {
	admin := &models.User{ID: 1, Abilities: []string{models.AbilityAdmin}}
	lister := &models.User{ID: 2, Abilities: []string{models.AbilityList}}
	owner := &models.User{ID: 3}
	outsider := &models.User{ID: 4}

	openList := &models.List{ID: 1, AccessLevel: models.AccessOpen, CreatorUserID: owner.ID}
	closedList := &models.List{ID: 2, AccessLevel: models.AccessClosed, CreatorUserID: owner.ID}
	privateList := &models.List{ID: 3, AccessLevel: models.AccessPrivate, CreatorUserID: owner.ID}

	tests := []struct {
		name     string
		actor    *models.User
		list     *models.List
		expected ListPermissions
	}{
		{"open list, list ability", lister, openList, ListPermissions{Viewable: true, Editable: true}},
		{"open list, outsider", outsider, openList, ListPermissions{Viewable: true}},
		{"open list, owner", owner, openList, ListPermissions{Viewable: true, Editable: true, Configurable: true}},
		{"closed list, list ability does not help", lister, closedList, ListPermissions{Viewable: true}},
		{"closed list, owner", owner, closedList, ListPermissions{Viewable: true, Editable: true, Configurable: true}},
		{"private list, outsider sees nothing", outsider, privateList, ListPermissions{}},
		{"private list, owner", owner, privateList, ListPermissions{Viewable: true, Editable: true, Configurable: true}},
		{"private list, admin", admin, privateList, ListPermissions{Viewable: true, Editable: true, Configurable: true}},
		{"nil actor falls back to anonymous", nil, openList, ListPermissions{Viewable: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ForList(tt.actor, tt.list))
		})
	}
}

func TestAnonList(t *testing.T) {
	assert.Equal(t, ListPermissions{Viewable: true}, AnonList(&models.List{AccessLevel: models.AccessOpen}))
	assert.Equal(t, ListPermissions{Viewable: true}, AnonList(&models.List{AccessLevel: models.AccessClosed}))
	assert.Equal(t, ListPermissions{}, AnonList(&models.List{AccessLevel: models.AccessPrivate}))
}

func TestForTag(t *testing.T) {
	admin := &models.User{ID: 1, Abilities: []string{models.AbilityAdmin}}
	granted := &models.User{ID: 2}
	outsider := &models.User{ID: 3}

	open := &models.Tag{ID: 10, Name: "oil"}
	restricted := &models.Tag{ID: 11, Name: "nyc", Restricted: true}

	t.Run("unrestricted tag editable by any user", func(t *testing.T) {
		perms := ForTag(outsider, open, nil)
		assert.True(t, perms.Viewable)
		assert.True(t, perms.Editable)
	})

	t.Run("restricted tag needs a grant", func(t *testing.T) {
		assert.False(t, ForTag(outsider, restricted, nil).Editable)
		assert.True(t, ForTag(granted, restricted, []int64{11}).Editable)
		assert.False(t, ForTag(granted, restricted, []int64{12}).Editable)
	})

	t.Run("admin edits restricted tags without a grant", func(t *testing.T) {
		assert.True(t, ForTag(admin, restricted, nil).Editable)
	})

	t.Run("anonymous reader", func(t *testing.T) {
		perms := ForTag(nil, restricted, nil)
		assert.True(t, perms.Viewable)
		assert.False(t, perms.Editable)
	})
}

func TestForRelationship(t *testing.T) {
	admin := &models.User{ID: 1, Abilities: []string{models.AbilityAdmin}}
	deleter := &models.User{ID: 2, Abilities: []string{models.AbilityDelete}}
	creator := &models.User{ID: 3}

	fresh := &models.Relationship{ID: 100, CreatedBy: creator.ID, CreatedAt: time.Now()}
	stale := &models.Relationship{ID: 101, CreatedBy: creator.ID, CreatedAt: time.Now().Add(-48 * time.Hour)}

	t.Run("donation-matched relationships are protected from everyone", func(t *testing.T) {
		assert.False(t, ForRelationship(testPolicy, admin, fresh, true).Deleteable)
	})

	t.Run("admin deletes", func(t *testing.T) {
		assert.True(t, ForRelationship(testPolicy, admin, stale, false).Deleteable)
	})

	t.Run("delete ability", func(t *testing.T) {
		assert.True(t, ForRelationship(testPolicy, deleter, stale, false).Deleteable)
	})

	t.Run("creator inside grace window", func(t *testing.T) {
		assert.True(t, ForRelationship(testPolicy, creator, fresh, false).Deleteable)
	})

	t.Run("creator outside grace window", func(t *testing.T) {
		assert.False(t, ForRelationship(testPolicy, creator, stale, false).Deleteable)
	})

	t.Run("anonymous", func(t *testing.T) {
		assert.False(t, ForRelationship(testPolicy, nil, fresh, false).Deleteable)
	})
}
