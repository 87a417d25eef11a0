package models

import (
	"encoding/json"
	"time"
)

// MergeRecord is the provenance row written when a merge commits.
type MergeRecord struct {
	ID          int64           `json:"id" db:"id"`
	SourceID    int64           `json:"source_id" db:"source_id"`
	DestID      int64           `json:"dest_id" db:"dest_id"`
	PerformedBy int64           `json:"performed_by" db:"performed_by"`
	Report      json.RawMessage `json:"report,omitempty" db:"report"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// AssociationSnapshot is serialized onto an entity at soft-delete time so
// the deletion can be restored.
type AssociationSnapshot struct {
	AliasIDs         []int64 `json:"alias_ids,omitempty"`
	TaggingIDs       []int64 `json:"tagging_ids,omitempty"`
	ListEntityIDs    []int64 `json:"list_entity_ids,omitempty"`
	ImageIDs         []int64 `json:"image_ids,omitempty"`
	RelationshipIDs  []int64 `json:"relationship_ids,omitempty"`
	ArticleEntityIDs []int64 `json:"article_entity_ids,omitempty"`
}

// MergeReport summarizes what a committed merge staged and applied. It is
// stored on the provenance row and returned to the caller.
type MergeReport struct {
	SourceID                        int64     `json:"source_id"`
	DestID                          int64     `json:"dest_id"`
	ExtensionsAdded                 []string  `json:"extensions_added,omitempty"`
	ExtensionsUpdated               []string  `json:"extensions_updated,omitempty"`
	AddressesTransferred            int       `json:"addresses_transferred"`
	PhonesTransferred               int       `json:"phones_transferred"`
	EmailsTransferred               int       `json:"emails_transferred"`
	ListsAdded                      []int64   `json:"lists_added,omitempty"`
	ImagesTransferred               int       `json:"images_transferred"`
	AliasesAdded                    []string  `json:"aliases_added,omitempty"`
	ReferencesAdded                 int       `json:"references_added"`
	TagsAdded                       []int64   `json:"tags_added,omitempty"`
	ArticlesRepointed               int       `json:"articles_repointed"`
	ExternalCategoriesRepointed     int       `json:"external_categories_repointed"`
	RelationshipsRepointed          int       `json:"relationships_repointed"`
	MatchRelationshipsRepointed     int       `json:"match_relationships_repointed"`
	DonationMatchesRepointed        int       `json:"donation_matches_repointed"`
	PotentialDuplicateRelationships []Triplet `json:"potential_duplicate_relationships,omitempty"`
}
