package tag

import (
	"context"
	"strings"
	"sync"

	"github.com/Ramsey-B/graft/pkg/models"
)

// Cache is an in-memory snapshot of the tags table keyed by name. Tags
// change rarely, so readers tolerate a stale snapshot between refreshes.
type Cache struct {
	repo *Repository

	mu     sync.RWMutex
	byName map[string]models.Tag
	byID   map[int64]models.Tag
}

// NewCache creates an empty cache. Call Refresh before first use.
func NewCache(repo *Repository) *Cache {
	return &Cache{
		repo:   repo,
		byName: map[string]models.Tag{},
		byID:   map[int64]models.Tag{},
	}
}

// Refresh reloads the snapshot from the database.
func (c *Cache) Refresh(ctx context.Context) error {
	tags, err := c.repo.All(ctx)
	if err != nil {
		return err
	}

	byName := make(map[string]models.Tag, len(tags))
	byID := make(map[int64]models.Tag, len(tags))
	for _, t := range tags {
		byName[t.Name] = t
		byID[t.ID] = t
	}

	c.mu.Lock()
	c.byName = byName
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// Get returns the tag with the exact name.
func (c *Cache) Get(name string) (models.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byName[name]
	return t, ok
}

// GetByID returns the tag with the given id.
func (c *Cache) GetByID(id int64) (models.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.byID[id]
	return t, ok
}

// SearchByName tries the exact name, then a lowercased form, then a form
// with dashes folded to spaces. User-typed names arrive in all three shapes.
func (c *Cache) SearchByName(name string) (models.Tag, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if t, ok := c.byName[name]; ok {
		return t, true
	}

	lowered := strings.ToLower(name)
	if t, ok := c.byName[lowered]; ok {
		return t, true
	}

	if t, ok := c.byName[strings.ReplaceAll(lowered, "-", " ")]; ok {
		return t, true
	}

	return models.Tag{}, false
}
