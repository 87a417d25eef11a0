package merging

import (
	"github.com/Ramsey-B/graft/pkg/models"
)

// ExtensionAction stages one extension write on the destination entity.
type ExtensionAction struct {
	DefinitionID int            `json:"definition_id"`
	Name         string         `json:"name"`
	Fields       map[string]any `json:"fields,omitempty"`
	Create       bool           `json:"create"`
}

// Plan is everything a merge would write, staged as data. Building a plan
// performs no writes, so the same entities can be previewed repeatedly and
// the commit path can rebuild it under lock.
type Plan struct {
	SourceID int64 `json:"source_id"`
	DestID   int64 `json:"dest_id"`

	Extensions           []ExtensionAction `json:"extensions,omitempty"`
	Addresses            []models.Address  `json:"addresses,omitempty"`
	Phones               []models.Phone    `json:"phones,omitempty"`
	Emails               []models.Email    `json:"emails,omitempty"`
	ListIDs              []int64           `json:"list_ids,omitempty"`
	ImageCount           int               `json:"image_count"`
	AliasNames           []string          `json:"alias_names,omitempty"`
	DocumentIDs          []int64           `json:"document_ids,omitempty"`
	TagIDs               []int64           `json:"tag_ids,omitempty"`
	ArticleJoinIDs       []int64           `json:"article_join_ids,omitempty"`
	CategoryJoinRepoints []int64           `json:"category_join_repoints,omitempty"`
	CategoryJoinDeletes  []int64           `json:"category_join_deletes,omitempty"`
	RelationshipIDs      []int64           `json:"relationship_ids,omitempty"`
	OsDonorMatchIDs      []int64           `json:"os_donor_match_ids,omitempty"`
	OsRecipientMatchIDs  []int64           `json:"os_recipient_match_ids,omitempty"`
	NyDonorMatchIDs      []int64           `json:"ny_donor_match_ids,omitempty"`
	NyRecipientMatchIDs  []int64           `json:"ny_recipient_match_ids,omitempty"`

	// MatchRelationshipIDs are relationships backed by a donation match.
	// They move with their matches and bypass duplicate detection so the
	// match and its backing relationship always land on the same entity.
	MatchRelationshipIDs []int64 `json:"match_relationship_ids,omitempty"`

	// PotentialDuplicateRelationships are repointed relationships whose new
	// endpoint triplet collides with one the destination already has. They
	// are reported, never auto-resolved.
	PotentialDuplicateRelationships []models.Triplet `json:"potential_duplicate_relationships,omitempty"`
}

// Report summarizes the plan for the provenance record and the caller.
func (p *Plan) Report() *models.MergeReport {
	report := &models.MergeReport{
		SourceID:                        p.SourceID,
		DestID:                          p.DestID,
		AddressesTransferred:            len(p.Addresses),
		PhonesTransferred:               len(p.Phones),
		EmailsTransferred:               len(p.Emails),
		ListsAdded:                      p.ListIDs,
		ImagesTransferred:               p.ImageCount,
		AliasesAdded:                    p.AliasNames,
		ReferencesAdded:                 len(p.DocumentIDs),
		TagsAdded:                       p.TagIDs,
		ArticlesRepointed:               len(p.ArticleJoinIDs),
		ExternalCategoriesRepointed:     len(p.CategoryJoinRepoints),
		RelationshipsRepointed:          len(p.RelationshipIDs),
		MatchRelationshipsRepointed:     len(p.MatchRelationshipIDs),
		DonationMatchesRepointed:        len(p.OsDonorMatchIDs) + len(p.OsRecipientMatchIDs) + len(p.NyDonorMatchIDs) + len(p.NyRecipientMatchIDs),
		PotentialDuplicateRelationships: p.PotentialDuplicateRelationships,
	}

	for _, action := range p.Extensions {
		if action.Create {
			report.ExtensionsAdded = append(report.ExtensionsAdded, action.Name)
		} else {
			report.ExtensionsUpdated = append(report.ExtensionsUpdated, action.Name)
		}
	}

	return report
}
