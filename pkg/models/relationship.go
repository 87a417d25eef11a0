package models

import "time"

// Relationship categories. The ids are stable and stored on both
// relationships and links.
const (
	CategoryPosition     = 1
	CategoryEducation    = 2
	CategoryMembership   = 3
	CategoryFamily       = 4
	CategoryDonation     = 5
	CategoryTransaction  = 6
	CategoryLobbying     = 7
	CategorySocial       = 8
	CategoryProfessional = 9
	CategoryOwnership    = 10
	CategoryHierarchy    = 11
	CategoryGeneric      = 12
)

// CategoryNames maps category ids to their display names.
var CategoryNames = map[int]string{
	CategoryPosition:     "Position",
	CategoryEducation:    "Education",
	CategoryMembership:   "Membership",
	CategoryFamily:       "Family",
	CategoryDonation:     "Donation",
	CategoryTransaction:  "Service/Transaction",
	CategoryLobbying:     "Lobbying",
	CategorySocial:       "Social",
	CategoryProfessional: "Professional",
	CategoryOwnership:    "Ownership",
	CategoryHierarchy:    "Hierarchy",
	CategoryGeneric:      "Generic",
}

// Relationship is a directed, typed edge between two entities.
type Relationship struct {
	ID           int64      `json:"id" db:"id"`
	Entity1ID    int64      `json:"entity1_id" db:"entity1_id"`
	Entity2ID    int64      `json:"entity2_id" db:"entity2_id"`
	CategoryID   int        `json:"category_id" db:"category_id"`
	Description1 *string    `json:"description1,omitempty" db:"description1"`
	Description2 *string    `json:"description2,omitempty" db:"description2"`
	Amount       *int64     `json:"amount,omitempty" db:"amount"`
	StartDate    *string    `json:"start_date,omitempty" db:"start_date"`
	EndDate      *string    `json:"end_date,omitempty" db:"end_date"`
	IsCurrent    *bool      `json:"is_current,omitempty" db:"is_current"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`
	CreatedBy    int64      `json:"created_by" db:"created_by"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Triplet is the duplicate-detection key shared by the merge engine and the
// link grouping: two relationships with the same triplet describe the same
// edge.
type Triplet struct {
	Entity1ID  int64 `json:"entity1_id"`
	Entity2ID  int64 `json:"entity2_id"`
	CategoryID int   `json:"category_id"`
}

func (r *Relationship) Triplet() Triplet {
	return Triplet{Entity1ID: r.Entity1ID, Entity2ID: r.Entity2ID, CategoryID: r.CategoryID}
}

// HasEndpoint reports whether the entity is on either side of the edge.
func (r *Relationship) HasEndpoint(entityID int64) bool {
	return r.Entity1ID == entityID || r.Entity2ID == entityID
}

// Link is a denormalized per-direction projection of a relationship. Every
// relationship is represented by exactly two links, one per direction.
type Link struct {
	ID             int64 `json:"id" db:"id"`
	Entity1ID      int64 `json:"entity1_id" db:"entity1_id"`
	Entity2ID      int64 `json:"entity2_id" db:"entity2_id"`
	RelationshipID int64 `json:"relationship_id" db:"relationship_id"`
	CategoryID     int   `json:"category_id" db:"category_id"`
	IsReverse      bool  `json:"is_reverse" db:"is_reverse"`

	// Relationship is hydrated on read paths that need sorting data.
	Relationship *Relationship `json:"relationship,omitempty" db:"-"`
}

// CreateRelationshipRequest is the request body for creating a relationship.
type CreateRelationshipRequest struct {
	Entity1ID    int64   `json:"entity1_id" validate:"required"`
	Entity2ID    int64   `json:"entity2_id" validate:"required"`
	CategoryID   int     `json:"category_id" validate:"required,min=1,max=12"`
	Description1 *string `json:"description1,omitempty"`
	Description2 *string `json:"description2,omitempty"`
	Amount       *int64  `json:"amount,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
	IsCurrent    *bool   `json:"is_current,omitempty"`
}
