package models

import (
	"encoding/json"
	"time"
)

// Primary extension names. Every entity is exactly one of these; addon
// extensions layer on top.
const (
	PrimaryExtPerson = "Person"
	PrimaryExtOrg    = "Org"
)

// Entity is a node in the relationship graph: a person or an organization.
// A non-nil MergedID means the entity has been folded into another entity
// and reads should resolve through the chain.
type Entity struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	PrimaryExt string     `json:"primary_ext" db:"primary_ext"`
	Blurb      *string    `json:"blurb,omitempty" db:"blurb"`
	Summary    *string    `json:"summary,omitempty" db:"summary"`
	Website    *string    `json:"website,omitempty" db:"website"`
	StartDate  *string    `json:"start_date,omitempty" db:"start_date"`
	EndDate    *string    `json:"end_date,omitempty" db:"end_date"`
	IsCurrent  *bool      `json:"is_current,omitempty" db:"is_current"`
	LinkCount  int        `json:"link_count" db:"link_count"`
	MergedID   *int64     `json:"merged_id,omitempty" db:"merged_id"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func (e *Entity) IsPerson() bool {
	return e.PrimaryExt == PrimaryExtPerson
}

func (e *Entity) IsOrg() bool {
	return e.PrimaryExt == PrimaryExtOrg
}

func (e *Entity) IsDeleted() bool {
	return e.DeletedAt != nil
}

func (e *Entity) IsMerged() bool {
	return e.MergedID != nil
}

// ExtensionRecord marks an entity as carrying an extension type. Fields is
// only populated for extensions whose definition has a field schema.
type ExtensionRecord struct {
	ID           int64           `json:"id" db:"id"`
	EntityID     int64           `json:"entity_id" db:"entity_id"`
	DefinitionID int             `json:"definition_id" db:"definition_id"`
	Fields       json.RawMessage `json:"fields,omitempty" db:"fields"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// Alias is a name variant for an entity. Exactly one alias per live entity
// is primary.
type Alias struct {
	ID        int64     `json:"id" db:"id"`
	EntityID  int64     `json:"entity_id" db:"entity_id"`
	Name      string    `json:"name" db:"name"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateEntityRequest is the request body for creating an entity.
type CreateEntityRequest struct {
	Name       string  `json:"name" validate:"required"`
	PrimaryExt string  `json:"primary_ext" validate:"required,oneof=Person Org"`
	Blurb      *string `json:"blurb,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
}

// UpdateEntityRequest is the request body for updating an entity.
type UpdateEntityRequest struct {
	Name      *string `json:"name,omitempty"`
	Blurb     *string `json:"blurb,omitempty"`
	Summary   *string `json:"summary,omitempty"`
	Website   *string `json:"website,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// EntityListResponse is the response for listing entities.
type EntityListResponse struct {
	Items      []Entity `json:"items"`
	TotalCount int      `json:"total_count"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}
