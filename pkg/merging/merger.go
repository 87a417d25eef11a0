// Package merging implements the entity merge engine: planning what an
// absorption would transfer and committing it atomically.
package merging

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/internal/repositories/alias"
	"github.com/Ramsey-B/graft/internal/repositories/article"
	"github.com/Ramsey-B/graft/internal/repositories/contactinfo"
	"github.com/Ramsey-B/graft/internal/repositories/donationmatch"
	"github.com/Ramsey-B/graft/internal/repositories/entity"
	"github.com/Ramsey-B/graft/internal/repositories/extension"
	"github.com/Ramsey-B/graft/internal/repositories/image"
	"github.com/Ramsey-B/graft/internal/repositories/list"
	"github.com/Ramsey-B/graft/internal/repositories/merge"
	"github.com/Ramsey-B/graft/internal/repositories/oscategory"
	"github.com/Ramsey-B/graft/internal/repositories/reference"
	"github.com/Ramsey-B/graft/internal/repositories/relationship"
	"github.com/Ramsey-B/graft/internal/repositories/tag"
	"github.com/Ramsey-B/graft/pkg/extensions"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/normalizers"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Emitter publishes merge outcomes after commit.
type Emitter interface {
	EntityMerged(ctx context.Context, report *models.MergeReport) error
	RelationshipRepointed(ctx context.Context, relationshipID, fromEntityID, toEntityID int64) error
}

// EntityMerger absorbs a source entity into a destination entity
type EntityMerger struct {
	logger            ectologger.Logger
	entityRepo        *entity.Repository
	extensionRepo     *extension.Repository
	aliasRepo         *alias.Repository
	contactRepo       *contactinfo.Repository
	imageRepo         *image.Repository
	listRepo          *list.Repository
	tagRepo           *tag.Repository
	referenceRepo     *reference.Repository
	articleRepo       *article.Repository
	osCategoryRepo    *oscategory.Repository
	relationshipRepo  *relationship.Repository
	donationMatchRepo *donationmatch.Repository
	mergeRepo         *merge.Repository
	fieldMerger       *FieldMerger
	emitter           Emitter
}

// NewEntityMerger creates a new merge engine. emitter may be nil.
func NewEntityMerger(
	logger ectologger.Logger,
	entityRepo *entity.Repository,
	extensionRepo *extension.Repository,
	aliasRepo *alias.Repository,
	contactRepo *contactinfo.Repository,
	imageRepo *image.Repository,
	listRepo *list.Repository,
	tagRepo *tag.Repository,
	referenceRepo *reference.Repository,
	articleRepo *article.Repository,
	osCategoryRepo *oscategory.Repository,
	relationshipRepo *relationship.Repository,
	donationMatchRepo *donationmatch.Repository,
	mergeRepo *merge.Repository,
	emitter Emitter,
) *EntityMerger {
	return &EntityMerger{
		logger:            logger,
		entityRepo:        entityRepo,
		extensionRepo:     extensionRepo,
		aliasRepo:         aliasRepo,
		contactRepo:       contactRepo,
		imageRepo:         imageRepo,
		listRepo:          listRepo,
		tagRepo:           tagRepo,
		referenceRepo:     referenceRepo,
		articleRepo:       articleRepo,
		osCategoryRepo:    osCategoryRepo,
		relationshipRepo:  relationshipRepo,
		donationMatchRepo: donationMatchRepo,
		mergeRepo:         mergeRepo,
		fieldMerger:       NewFieldMerger(),
		emitter:           emitter,
	}
}

// BuildPlan stages everything a merge of source into dest would write,
// without writing anything. Used for previews; the commit path rebuilds the
// plan under lock.
func (e *EntityMerger) BuildPlan(ctx context.Context, sourceID, destID int64) (*Plan, error) {
	ctx, span := tracing.StartSpan(ctx, "merging.EntityMerger.BuildPlan")
	defer span.End()

	if err := validateIDs(sourceID, destID); err != nil {
		return nil, err
	}

	source, err := e.entityRepo.GetWithDeleted(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	dest, err := e.entityRepo.GetWithDeleted(ctx, destID)
	if err != nil {
		return nil, err
	}

	if err := validatePair(source, dest); err != nil {
		return nil, err
	}

	return e.buildPlan(ctx, source, dest)
}

// Merge absorbs source into dest in one transaction: both rows are locked,
// the plan is rebuilt against the locked state, every staged write is
// applied, and the source is marked merged with an association snapshot.
func (e *EntityMerger) Merge(ctx context.Context, sourceID, destID, performedBy int64) (*models.MergeReport, error) {
	ctx, span := tracing.StartSpan(ctx, "merging.EntityMerger.Merge")
	defer span.End()

	if err := validateIDs(sourceID, destID); err != nil {
		return nil, err
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"source_id": sourceID,
		"dest_id":   destID,
	})

	ctxTx, tx, err := e.entityRepo.DB().GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	locked, err := e.entityRepo.LockPair(ctxTx, sourceID, destID)
	if err != nil {
		return nil, err
	}

	source, ok := locked[sourceID]
	if !ok {
		return nil, newMergeError(ErrMissingArgument, "source entity %d not found", sourceID)
	}
	dest, ok := locked[destID]
	if !ok {
		return nil, newMergeError(ErrMissingArgument, "destination entity %d not found", destID)
	}

	if err := validatePair(source, dest); err != nil {
		return nil, err
	}

	plan, err := e.buildPlan(ctxTx, source, dest)
	if err != nil {
		return nil, err
	}

	if err := e.apply(ctxTx, plan); err != nil {
		return nil, err
	}

	snapshot, err := e.buildSnapshot(ctxTx, sourceID)
	if err != nil {
		return nil, err
	}

	if err := e.entityRepo.MarkMerged(ctxTx, sourceID, destID, snapshot); err != nil {
		return nil, err
	}

	report := plan.Report()
	if _, err := e.mergeRepo.CreateRecord(ctxTx, sourceID, destID, performedBy, report); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	log.WithFields(map[string]any{
		"relationships_repointed": report.RelationshipsRepointed,
		"potential_duplicates":    len(report.PotentialDuplicateRelationships),
	}).Info("Merged entity")

	if e.emitter != nil {
		if err := e.emitter.EntityMerged(ctx, report); err != nil {
			log.WithError(err).Error("Failed to publish merge event")
		}
		for _, relID := range plan.RelationshipIDs {
			if err := e.emitter.RelationshipRepointed(ctx, relID, sourceID, destID); err != nil {
				log.WithError(err).Error("Failed to publish repoint event")
			}
		}
		for _, relID := range plan.MatchRelationshipIDs {
			if err := e.emitter.RelationshipRepointed(ctx, relID, sourceID, destID); err != nil {
				log.WithError(err).Error("Failed to publish repoint event")
			}
		}
	}

	return report, nil
}

func validateIDs(sourceID, destID int64) error {
	if sourceID <= 0 || destID <= 0 {
		return newMergeError(ErrMissingArgument, "source and destination ids are required")
	}
	if sourceID == destID {
		return newMergeError(ErrMissingArgument, "cannot merge entity %d into itself", sourceID)
	}
	return nil
}

func validatePair(source, dest *models.Entity) error {
	if source.IsMerged() {
		return newMergeError(ErrAlreadyMerged, "entity %d was already merged into entity %d", source.ID, *source.MergedID)
	}
	if source.IsDeleted() {
		return newMergeError(ErrAlreadyMerged, "entity %d is deleted", source.ID)
	}
	if dest.IsMerged() || dest.IsDeleted() {
		return newMergeError(ErrAlreadyMerged, "destination entity %d is no longer live", dest.ID)
	}
	if source.PrimaryExt != dest.PrimaryExt {
		return newMergeError(ErrExtensionMismatch, "cannot merge %s %d into %s %d",
			source.PrimaryExt, source.ID, dest.PrimaryExt, dest.ID)
	}
	return nil
}

func (e *EntityMerger) buildPlan(ctx context.Context, source, dest *models.Entity) (*Plan, error) {
	ctx, span := tracing.StartSpan(ctx, "merging.EntityMerger.buildPlan")
	defer span.End()

	plan := &Plan{SourceID: source.ID, DestID: dest.ID}

	if err := e.planExtensions(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planContactInfo(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planLists(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planImages(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planAliases(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planReferences(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planTags(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planArticles(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planExternalCategories(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planRelationships(ctx, plan); err != nil {
		return nil, err
	}
	if err := e.planDonationMatches(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

// planExtensions stages extension transfers. Extensions only the source has
// are created on the destination; extensions both have are combined with the
// destination's values winning and source values filling gaps.
func (e *EntityMerger) planExtensions(ctx context.Context, plan *Plan) error {
	sourceExts, err := e.extensionRepo.GetForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destExts, err := e.extensionRepo.GetForEntity(ctx, plan.DestID)
	if err != nil {
		return err
	}

	destByDef := make(map[int]models.ExtensionRecord, len(destExts))
	for _, ext := range destExts {
		destByDef[ext.DefinitionID] = ext
	}

	for _, ext := range sourceExts {
		def, err := extensions.DefinitionByID(ext.DefinitionID)
		if err != nil {
			return err
		}

		sourceFields, err := decodeFields(ext.Fields)
		if err != nil {
			return newValidationError(def.Name, "unreadable source fields: %v", err)
		}

		destExt, exists := destByDef[ext.DefinitionID]
		if !exists {
			if err := e.validateFields(def.ID, def.Name, sourceFields); err != nil {
				return err
			}
			plan.Extensions = append(plan.Extensions, ExtensionAction{
				DefinitionID: def.ID,
				Name:         def.Name,
				Fields:       sourceFields,
				Create:       true,
			})
			continue
		}

		destFields, err := decodeFields(destExt.Fields)
		if err != nil {
			return newValidationError(def.Name, "unreadable destination fields: %v", err)
		}

		merged, changed := e.fieldMerger.MergeFields(destFields, sourceFields)
		if !changed {
			continue
		}
		if err := e.validateFields(def.ID, def.Name, merged); err != nil {
			return err
		}
		plan.Extensions = append(plan.Extensions, ExtensionAction{
			DefinitionID: def.ID,
			Name:         def.Name,
			Fields:       merged,
			Create:       false,
		})
	}

	return nil
}

func (e *EntityMerger) validateFields(definitionID int, name string, fields map[string]any) error {
	result, err := extensions.ValidateFields(definitionID, fields)
	if err != nil {
		return err
	}
	if !result.Valid {
		first := result.Errors[0]
		return &MergeError{Kind: ErrValidationFailure, Field: name + "." + first.Field, Reason: first.Message}
	}
	return nil
}

// planContactInfo stages contact-info copies, deduplicated by coordinates
// for addresses, normalized address for emails, and digit string for phones.
func (e *EntityMerger) planContactInfo(ctx context.Context, plan *Plan) error {
	sourceAddresses, err := e.contactRepo.GetAddresses(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destAddresses, err := e.contactRepo.GetAddresses(ctx, plan.DestID)
	if err != nil {
		return err
	}
	plan.Addresses = missingAddresses(sourceAddresses, destAddresses)

	sourceEmails, err := e.contactRepo.GetEmails(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destEmails, err := e.contactRepo.GetEmails(ctx, plan.DestID)
	if err != nil {
		return err
	}
	plan.Emails = missingEmails(sourceEmails, destEmails)

	sourcePhones, err := e.contactRepo.GetPhones(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destPhones, err := e.contactRepo.GetPhones(ctx, plan.DestID)
	if err != nil {
		return err
	}
	plan.Phones = missingPhones(sourcePhones, destPhones)

	return nil
}

// missingAddresses returns the source addresses whose coordinates do not
// match any destination address.
func missingAddresses(source, dest []models.Address) []models.Address {
	var missing []models.Address
	for i := range source {
		duplicate := false
		for j := range dest {
			if source[i].SameCoordinates(&dest[j]) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			missing = append(missing, source[i])
		}
	}
	return missing
}

// missingEmails returns the source emails whose normalized address the
// destination lacks.
func missingEmails(source, dest []models.Email) []models.Email {
	seen := make(map[string]bool, len(dest))
	for _, email := range dest {
		seen[normalizers.NormalizeEmail(email.Address)] = true
	}
	var missing []models.Email
	for _, email := range source {
		if !seen[normalizers.NormalizeEmail(email.Address)] {
			missing = append(missing, email)
		}
	}
	return missing
}

// missingPhones returns the source phones whose digit string the destination
// lacks.
func missingPhones(source, dest []models.Phone) []models.Phone {
	seen := make(map[string]bool, len(dest))
	for _, phone := range dest {
		seen[normalizers.NormalizePhone(phone.Number)] = true
	}
	var missing []models.Phone
	for _, phone := range source {
		if !seen[normalizers.NormalizePhone(phone.Number)] {
			missing = append(missing, phone)
		}
	}
	return missing
}

func (e *EntityMerger) planLists(ctx context.Context, plan *Plan) error {
	sourceIDs, err := e.listRepo.GetListIDsForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destIDs, err := e.listRepo.GetListIDsForEntity(ctx, plan.DestID)
	if err != nil {
		return err
	}

	plan.ListIDs = diffIDs(sourceIDs, destIDs)
	return nil
}

func (e *EntityMerger) planImages(ctx context.Context, plan *Plan) error {
	images, err := e.imageRepo.GetForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	plan.ImageCount = len(images)
	return nil
}

// planAliases stages name variants the destination lacks. Comparison is
// case-sensitive; the source's primary alias transfers as a regular alias.
func (e *EntityMerger) planAliases(ctx context.Context, plan *Plan) error {
	sourceAliases, err := e.aliasRepo.GetForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destAliases, err := e.aliasRepo.GetForEntity(ctx, plan.DestID)
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(destAliases))
	for _, a := range destAliases {
		seen[a.Name] = true
	}
	for _, a := range sourceAliases {
		if !seen[a.Name] {
			plan.AliasNames = append(plan.AliasNames, a.Name)
			seen[a.Name] = true
		}
	}

	return nil
}

func (e *EntityMerger) planReferences(ctx context.Context, plan *Plan) error {
	sourceIDs, err := e.referenceRepo.GetDocumentIDsFor(ctx, models.ReferenceableEntity, plan.SourceID)
	if err != nil {
		return err
	}
	destIDs, err := e.referenceRepo.GetDocumentIDsFor(ctx, models.ReferenceableEntity, plan.DestID)
	if err != nil {
		return err
	}

	plan.DocumentIDs = diffIDs(sourceIDs, destIDs)
	return nil
}

func (e *EntityMerger) planTags(ctx context.Context, plan *Plan) error {
	sourceIDs, err := e.tagRepo.GetTagIDsFor(ctx, models.TagableEntity, plan.SourceID)
	if err != nil {
		return err
	}
	destIDs, err := e.tagRepo.GetTagIDsFor(ctx, models.TagableEntity, plan.DestID)
	if err != nil {
		return err
	}

	plan.TagIDs = diffIDs(sourceIDs, destIDs)
	return nil
}

// planArticles stages article join repoints, skipping articles the
// destination already has. Duplicate joins stay on the source.
func (e *EntityMerger) planArticles(ctx context.Context, plan *Plan) error {
	joins, err := e.articleRepo.GetJoinsForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destArticleIDs, err := e.articleRepo.GetArticleIDsForEntity(ctx, plan.DestID)
	if err != nil {
		return err
	}

	have := make(map[int64]bool, len(destArticleIDs))
	for _, id := range destArticleIDs {
		have[id] = true
	}
	for _, join := range joins {
		if !have[join.ArticleID] {
			plan.ArticleJoinIDs = append(plan.ArticleJoinIDs, join.ID)
			have[join.ArticleID] = true
		}
	}

	return nil
}

// planExternalCategories stages category join repoints; joins whose
// category the destination already carries are dropped instead.
func (e *EntityMerger) planExternalCategories(ctx context.Context, plan *Plan) error {
	joins, err := e.osCategoryRepo.GetJoinsForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	destCategoryIDs, err := e.osCategoryRepo.GetCategoryIDsForEntity(ctx, plan.DestID)
	if err != nil {
		return err
	}

	have := make(map[string]bool, len(destCategoryIDs))
	for _, id := range destCategoryIDs {
		have[id] = true
	}
	for _, join := range joins {
		if have[join.CategoryID] {
			plan.CategoryJoinDeletes = append(plan.CategoryJoinDeletes, join.ID)
			continue
		}
		plan.CategoryJoinRepoints = append(plan.CategoryJoinRepoints, join.ID)
		have[join.CategoryID] = true
	}

	return nil
}

// planRelationships stages endpoint repoints for every live relationship
// touching the source. Relationships backed by a donation match follow their
// matches instead of the generic path and are never reported as duplicates.
// When the repointed triplet collides with one the destination already has,
// the collision is reported as a potential duplicate and the relationship is
// not repointed.
func (e *EntityMerger) planRelationships(ctx context.Context, plan *Plan) error {
	rels, err := e.relationshipRepo.GetForEntity(ctx, plan.SourceID)
	if err != nil {
		return err
	}

	for i := range rels {
		matchBacked, err := e.donationMatchRepo.HasMatchesForRelationship(ctx, rels[i].ID)
		if err != nil {
			return err
		}

		tripletTaken := false
		if !matchBacked {
			tripletTaken, err = e.relationshipRepo.TripletExists(ctx, repointTriplet(rels[i].Triplet(), plan.SourceID, plan.DestID))
			if err != nil {
				return err
			}
		}

		stageRelationship(plan, &rels[i], matchBacked, tripletTaken)
	}

	return nil
}

// repointTriplet rewrites the endpoints a merge of source into dest would
// move.
func repointTriplet(t models.Triplet, sourceID, destID int64) models.Triplet {
	if t.Entity1ID == sourceID {
		t.Entity1ID = destID
	}
	if t.Entity2ID == sourceID {
		t.Entity2ID = destID
	}
	return t
}

// stageRelationship records the planning decision for one source
// relationship: match-backed relationships move with their matches, a
// colliding triplet is left on the source for manual review instead of
// creating a second identical relationship on the destination, and
// everything else is repointed.
func stageRelationship(plan *Plan, rel *models.Relationship, matchBacked, tripletTaken bool) {
	switch {
	case matchBacked:
		plan.MatchRelationshipIDs = append(plan.MatchRelationshipIDs, rel.ID)
	case tripletTaken:
		plan.PotentialDuplicateRelationships = append(plan.PotentialDuplicateRelationships,
			repointTriplet(rel.Triplet(), plan.SourceID, plan.DestID))
	default:
		plan.RelationshipIDs = append(plan.RelationshipIDs, rel.ID)
	}
}

// planDonationMatches stages donation match repoints. Donor matches always
// follow the merge; recipient matches follow only when the source is an
// elected representative, since only representatives receive matched
// contributions.
func (e *EntityMerger) planDonationMatches(ctx context.Context, plan *Plan) error {
	osDonor, err := e.donationMatchRepo.GetOsMatchesForDonor(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	for _, m := range osDonor {
		plan.OsDonorMatchIDs = append(plan.OsDonorMatchIDs, m.ID)
	}

	nyDonor, err := e.donationMatchRepo.GetNyMatchesForDonor(ctx, plan.SourceID)
	if err != nil {
		return err
	}
	for _, m := range nyDonor {
		plan.NyDonorMatchIDs = append(plan.NyDonorMatchIDs, m.ID)
	}

	isRep, err := e.extensionRepo.HasExtension(ctx, plan.SourceID, extensions.ElectedRepresentativeID)
	if err != nil {
		return err
	}
	if isRep {
		osRecip, err := e.donationMatchRepo.GetOsMatchesForRecipient(ctx, plan.SourceID)
		if err != nil {
			return err
		}
		for _, m := range osRecip {
			plan.OsRecipientMatchIDs = append(plan.OsRecipientMatchIDs, m.ID)
		}

		nyRecip, err := e.donationMatchRepo.GetNyMatchesForRecipient(ctx, plan.SourceID)
		if err != nil {
			return err
		}
		for _, m := range nyRecip {
			plan.NyRecipientMatchIDs = append(plan.NyRecipientMatchIDs, m.ID)
		}
	}

	return nil
}

// apply executes every staged write. The caller owns the transaction.
func (e *EntityMerger) apply(ctx context.Context, plan *Plan) error {
	ctx, span := tracing.StartSpan(ctx, "merging.EntityMerger.apply")
	defer span.End()

	for _, action := range plan.Extensions {
		raw, err := json.Marshal(action.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal extension fields: %w", err)
		}
		if action.Create {
			err = e.extensionRepo.Create(ctx, plan.DestID, action.DefinitionID, raw)
		} else {
			err = e.extensionRepo.UpdateFields(ctx, plan.DestID, action.DefinitionID, raw)
		}
		if err != nil {
			return err
		}
	}

	for i := range plan.Addresses {
		if err := e.contactRepo.CreateAddress(ctx, plan.DestID, &plan.Addresses[i]); err != nil {
			return err
		}
	}
	for i := range plan.Phones {
		if err := e.contactRepo.CreatePhone(ctx, plan.DestID, &plan.Phones[i]); err != nil {
			return err
		}
	}
	for i := range plan.Emails {
		if err := e.contactRepo.CreateEmail(ctx, plan.DestID, &plan.Emails[i]); err != nil {
			return err
		}
	}

	for _, listID := range plan.ListIDs {
		if err := e.listRepo.AddMembership(ctx, listID, plan.DestID); err != nil {
			return err
		}
	}

	if plan.ImageCount > 0 {
		if _, err := e.imageRepo.Repoint(ctx, plan.SourceID, plan.DestID); err != nil {
			return err
		}
	}

	for _, name := range plan.AliasNames {
		if _, err := e.aliasRepo.Create(ctx, plan.DestID, name); err != nil {
			return err
		}
	}

	for _, docID := range plan.DocumentIDs {
		if err := e.referenceRepo.Attach(ctx, docID, models.ReferenceableEntity, plan.DestID); err != nil {
			return attachReferenceError(docID, err)
		}
	}

	for _, tagID := range plan.TagIDs {
		if err := e.tagRepo.AddTagging(ctx, tagID, models.TagableEntity, plan.DestID); err != nil {
			return err
		}
	}

	for _, joinID := range plan.ArticleJoinIDs {
		if err := e.articleRepo.RepointJoin(ctx, joinID, plan.DestID); err != nil {
			return err
		}
	}

	for _, joinID := range plan.CategoryJoinRepoints {
		if err := e.osCategoryRepo.RepointJoin(ctx, joinID, plan.DestID); err != nil {
			return err
		}
	}
	for _, joinID := range plan.CategoryJoinDeletes {
		if err := e.osCategoryRepo.DeleteJoin(ctx, joinID); err != nil {
			return err
		}
	}

	for _, relID := range plan.RelationshipIDs {
		if err := e.relationshipRepo.RepointEndpoint(ctx, relID, plan.SourceID, plan.DestID); err != nil {
			return err
		}
	}
	for _, relID := range plan.MatchRelationshipIDs {
		if err := e.relationshipRepo.RepointEndpoint(ctx, relID, plan.SourceID, plan.DestID); err != nil {
			return err
		}
	}

	for _, matchID := range plan.OsDonorMatchIDs {
		if err := e.donationMatchRepo.RepointOsDonor(ctx, matchID, plan.DestID); err != nil {
			return err
		}
	}
	for _, matchID := range plan.OsRecipientMatchIDs {
		if err := e.donationMatchRepo.RepointOsRecipient(ctx, matchID, plan.DestID); err != nil {
			return err
		}
	}
	for _, matchID := range plan.NyDonorMatchIDs {
		if err := e.donationMatchRepo.RepointNyDonor(ctx, matchID, plan.DestID); err != nil {
			return err
		}
	}
	for _, matchID := range plan.NyRecipientMatchIDs {
		if err := e.donationMatchRepo.RepointNyRecipient(ctx, matchID, plan.DestID); err != nil {
			return err
		}
	}

	return nil
}

// attachReferenceError maps a missing staged document onto the merge error
// taxonomy; everything else passes through unchanged.
func attachReferenceError(docID int64, err error) error {
	if errors.Is(err, reference.ErrDocumentMissing) {
		return newMergeError(ErrReferenceInvalid, "document %d does not exist", docID)
	}
	return err
}

// buildSnapshot captures what remains attached to the source after the
// staged writes, so a restore can find it.
func (e *EntityMerger) buildSnapshot(ctx context.Context, sourceID int64) (*models.AssociationSnapshot, error) {
	snapshot := &models.AssociationSnapshot{}

	aliases, err := e.aliasRepo.GetForEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	for _, a := range aliases {
		snapshot.AliasIDs = append(snapshot.AliasIDs, a.ID)
	}

	taggingIDs, err := e.tagRepo.GetTaggingIDsForEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	snapshot.TaggingIDs = taggingIDs

	membershipIDs, err := e.listRepo.GetMembershipIDsForEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	snapshot.ListEntityIDs = membershipIDs

	joins, err := e.articleRepo.GetJoinsForEntity(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	for _, j := range joins {
		snapshot.ArticleEntityIDs = append(snapshot.ArticleEntityIDs, j.ID)
	}

	return snapshot, nil
}

func decodeFields(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func diffIDs(source, dest []int64) []int64 {
	have := make(map[int64]bool, len(dest))
	for _, id := range dest {
		have[id] = true
	}

	var missing []int64
	for _, id := range source {
		if !have[id] {
			missing = append(missing, id)
			have[id] = true
		}
	}
	return missing
}
