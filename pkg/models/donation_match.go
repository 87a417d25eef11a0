package models

import "time"

// OsMatch joins an external federal donation record to a donor entity and,
// when matched, a recipient entity. The backing relationship is synthesized
// from the match and is never edited directly.
type OsMatch struct {
	ID             int64     `json:"id" db:"id"`
	OsDonationID   int64     `json:"os_donation_id" db:"os_donation_id"`
	DonorID        int64     `json:"donor_id" db:"donor_id"`
	RecipID        *int64    `json:"recip_id,omitempty" db:"recip_id"`
	CommitteeID    *int64    `json:"committee_id,omitempty" db:"committee_id"`
	RelationshipID *int64    `json:"relationship_id,omitempty" db:"relationship_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NyMatch joins an external state disclosure record to a donor entity.
type NyMatch struct {
	ID             int64     `json:"id" db:"id"`
	NyDisclosureID int64     `json:"ny_disclosure_id" db:"ny_disclosure_id"`
	DonorID        int64     `json:"donor_id" db:"donor_id"`
	RecipID        *int64    `json:"recip_id,omitempty" db:"recip_id"`
	RelationshipID *int64    `json:"relationship_id,omitempty" db:"relationship_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
