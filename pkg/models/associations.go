package models

import "time"

// Address is a contact-info item keyed for dedup by latitude/longitude.
type Address struct {
	ID        int64    `json:"id" db:"id"`
	EntityID  int64    `json:"entity_id" db:"entity_id"`
	Street1   *string  `json:"street1,omitempty" db:"street1"`
	Street2   *string  `json:"street2,omitempty" db:"street2"`
	City      string   `json:"city" db:"city"`
	State     *string  `json:"state,omitempty" db:"state"`
	Country   *string  `json:"country,omitempty" db:"country"`
	Postal    *string  `json:"postal,omitempty" db:"postal"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// SameCoordinates is the dedup key for addresses.
func (a *Address) SameCoordinates(other *Address) bool {
	if a.Latitude == nil || a.Longitude == nil || other.Latitude == nil || other.Longitude == nil {
		return false
	}
	return *a.Latitude == *other.Latitude && *a.Longitude == *other.Longitude
}

// Phone is a contact-info item keyed for dedup by normalized number.
type Phone struct {
	ID       int64   `json:"id" db:"id"`
	EntityID int64   `json:"entity_id" db:"entity_id"`
	Number   string  `json:"number" db:"number"`
	Type     *string `json:"type,omitempty" db:"type"`
}

// Email is a contact-info item keyed for dedup by address.
type Email struct {
	ID       int64  `json:"id" db:"id"`
	EntityID int64  `json:"entity_id" db:"entity_id"`
	Address  string `json:"address" db:"address"`
}

// Image is always additive on merge; no dedup key.
type Image struct {
	ID         int64   `json:"id" db:"id"`
	EntityID   int64   `json:"entity_id" db:"entity_id"`
	Title      *string `json:"title,omitempty" db:"title"`
	URL        string  `json:"url" db:"url"`
	IsFeatured bool    `json:"is_featured" db:"is_featured"`
}

// Document is a citable source shared by references.
type Document struct {
	ID   int64   `json:"id" db:"id"`
	URL  string  `json:"url" db:"url"`
	Name *string `json:"name,omitempty" db:"name"`
}

// Reference attaches a document to an entity or relationship.
type Reference struct {
	ID               int64  `json:"id" db:"id"`
	DocumentID       int64  `json:"document_id" db:"document_id"`
	ReferenceableID  int64  `json:"referenceable_id" db:"referenceable_id"`
	ReferenceableTyp string `json:"referenceable_type" db:"referenceable_type"`
}

// Referenceable type names.
const (
	ReferenceableEntity       = "Entity"
	ReferenceableRelationship = "Relationship"
)

// List is a curated collection of entities.
type List struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Description   *string    `json:"description,omitempty" db:"description"`
	AccessLevel   int        `json:"access_level" db:"access_level"`
	CreatorUserID int64      `json:"creator_user_id" db:"creator_user_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// List access levels.
const (
	AccessOpen    = 0
	AccessClosed  = 1
	AccessPrivate = 2
)

// ListEntity is a list membership row.
type ListEntity struct {
	ID       int64 `json:"id" db:"id"`
	ListID   int64 `json:"list_id" db:"list_id"`
	EntityID int64 `json:"entity_id" db:"entity_id"`
}

// Tag is a globally-unique named label.
type Tag struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	Restricted  bool    `json:"restricted" db:"restricted"`
}

// Tagging attaches a tag to an entity, list, or relationship.
type Tagging struct {
	ID           int64  `json:"id" db:"id"`
	TagID        int64  `json:"tag_id" db:"tag_id"`
	TagableClass string `json:"tagable_class" db:"tagable_class"`
	TagableID    int64  `json:"tagable_id" db:"tagable_id"`
}

// Tagable class names.
const (
	TagableEntity       = "Entity"
	TagableList         = "List"
	TagableRelationship = "Relationship"
)

// Article is a news article connected to entities via a join table.
type Article struct {
	ID    int64   `json:"id" db:"id"`
	URL   string  `json:"url" db:"url"`
	Title *string `json:"title,omitempty" db:"title"`
}

// ArticleEntity is an article-entity join row.
type ArticleEntity struct {
	ID        int64 `json:"id" db:"id"`
	ArticleID int64 `json:"article_id" db:"article_id"`
	EntityID  int64 `json:"entity_id" db:"entity_id"`
}

// OsCategory classifies an entity against the external campaign-finance
// dataset's industry taxonomy.
type OsCategory struct {
	ID         int64  `json:"id" db:"id"`
	CategoryID string `json:"category_id" db:"category_id"`
	Name       string `json:"name" db:"name"`
}

// OsEntityCategory joins an entity to an external category.
type OsEntityCategory struct {
	ID         int64  `json:"id" db:"id"`
	CategoryID string `json:"category_id" db:"category_id"`
	EntityID   int64  `json:"entity_id" db:"entity_id"`
}
