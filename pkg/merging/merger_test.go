package merging

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/internal/repositories/reference"
	"github.com/Ramsey-B/graft/pkg/models"
)

func TestValidateIDs(t *testing.T) {
	tests := []struct {
		name     string
		sourceID int64
		destID   int64
		wantErr  bool
	}{
		{"valid pair", 1, 2, false},
		{"zero source", 0, 2, true},
		{"zero dest", 1, 0, true},
		{"negative source", -5, 2, true},
		{"self merge", 7, 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateIDs(tt.sourceID, tt.destID)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var me *MergeError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, ErrMissingArgument, me.Kind)
		})
	}
}

func TestValidatePair(t *testing.T) {
	now := time.Now()
	mergedInto := int64(99)

	liveSource := &models.Entity{ID: 1, PrimaryExt: models.PrimaryExtPerson}
	liveDest := &models.Entity{ID: 2, PrimaryExt: models.PrimaryExtPerson}

	t.Run("live pair with matching extensions", func(t *testing.T) {
		assert.NoError(t, validatePair(liveSource, liveDest))
	})

	t.Run("source already merged", func(t *testing.T) {
		source := &models.Entity{ID: 1, PrimaryExt: models.PrimaryExtPerson, MergedID: &mergedInto}
		err := validatePair(source, liveDest)

		var me *MergeError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrAlreadyMerged, me.Kind)
	})

	t.Run("source deleted", func(t *testing.T) {
		source := &models.Entity{ID: 1, PrimaryExt: models.PrimaryExtPerson, DeletedAt: &now}
		err := validatePair(source, liveDest)

		var me *MergeError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrAlreadyMerged, me.Kind)
	})

	t.Run("destination not live", func(t *testing.T) {
		dest := &models.Entity{ID: 2, PrimaryExt: models.PrimaryExtPerson, DeletedAt: &now}
		err := validatePair(liveSource, dest)

		var me *MergeError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrAlreadyMerged, me.Kind)
	})

	t.Run("primary extension mismatch", func(t *testing.T) {
		dest := &models.Entity{ID: 2, PrimaryExt: models.PrimaryExtOrg}
		err := validatePair(liveSource, dest)

		var me *MergeError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrExtensionMismatch, me.Kind)
	})
}

func TestMergeError_HTTPStatus(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
	}{
		{ErrMissingArgument, http.StatusBadRequest},
		{ErrExtensionMismatch, http.StatusUnprocessableEntity},
		{ErrValidationFailure, http.StatusUnprocessableEntity},
		{ErrReferenceInvalid, http.StatusUnprocessableEntity},
		{ErrAlreadyMerged, http.StatusConflict},
		{ErrorKind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := &MergeError{Kind: tt.kind, Reason: "test"}
			assert.Equal(t, tt.status, err.HTTPStatus())
		})
	}
}

func TestMergeError_Error(t *testing.T) {
	withField := newValidationError("sec_cik", "expected type %s", "string")
	assert.Contains(t, withField.Error(), `field "sec_cik"`)
	assert.Contains(t, withField.Error(), "validation_failure")

	withoutField := newMergeError(ErrAlreadyMerged, "entity %d is deleted", 5)
	assert.Equal(t, "merge rejected (already_merged): entity 5 is deleted", withoutField.Error())
}

func TestDiffIDs(t *testing.T) {
	tests := []struct {
		name     string
		source   []int64
		dest     []int64
		expected []int64
	}{
		{"disjoint", []int64{1, 2}, []int64{3}, []int64{1, 2}},
		{"overlap", []int64{1, 2, 3}, []int64{2}, []int64{1, 3}},
		{"source duplicates collapse", []int64{4, 4, 5}, nil, []int64{4, 5}},
		{"everything present", []int64{1}, []int64{1, 2}, nil},
		{"empty source", nil, []int64{1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, diffIDs(tt.source, tt.dest))
		})
	}
}

func TestPlan_Report(t *testing.T) {
	plan := &Plan{
		SourceID: 10,
		DestID:   20,
		Extensions: []ExtensionAction{
			{DefinitionID: 5, Name: "Business", Create: true},
			{DefinitionID: 13, Name: "PublicCompany", Create: false},
		},
		Addresses:            []models.Address{{City: "New York"}},
		Phones:               []models.Phone{{Number: "2125551234"}, {Number: "2125555678"}},
		ListIDs:              []int64{3},
		ImageCount:           4,
		AliasNames:           []string{"Acme Inc"},
		DocumentIDs:          []int64{7, 8},
		TagIDs:               []int64{1},
		ArticleJoinIDs:       []int64{11, 12, 13},
		RelationshipIDs:      []int64{100, 101},
		MatchRelationshipIDs: []int64{102},
		OsDonorMatchIDs:      []int64{200},
		OsRecipientMatchIDs:  []int64{201},
		NyDonorMatchIDs:      []int64{300, 301},
		NyRecipientMatchIDs:  []int64{302},
		PotentialDuplicateRelationships: []models.Triplet{
			{Entity1ID: 20, Entity2ID: 50, CategoryID: models.CategoryDonation},
		},
	}

	report := plan.Report()

	assert.Equal(t, int64(10), report.SourceID)
	assert.Equal(t, int64(20), report.DestID)
	assert.Equal(t, []string{"Business"}, report.ExtensionsAdded)
	assert.Equal(t, []string{"PublicCompany"}, report.ExtensionsUpdated)
	assert.Equal(t, 1, report.AddressesTransferred)
	assert.Equal(t, 2, report.PhonesTransferred)
	assert.Equal(t, 0, report.EmailsTransferred)
	assert.Equal(t, 4, report.ImagesTransferred)
	assert.Equal(t, 2, report.ReferencesAdded)
	assert.Equal(t, 3, report.ArticlesRepointed)
	assert.Equal(t, 2, report.RelationshipsRepointed)
	assert.Equal(t, 1, report.MatchRelationshipsRepointed)
	assert.Equal(t, 5, report.DonationMatchesRepointed)
	require.Len(t, report.PotentialDuplicateRelationships, 1)
	assert.Equal(t, int64(50), report.PotentialDuplicateRelationships[0].Entity2ID)
}

func TestRepointTriplet(t *testing.T) {
	tests := []struct {
		name     string
		triplet  models.Triplet
		expected models.Triplet
	}{
		{
			"source on the first endpoint",
			models.Triplet{Entity1ID: 10, Entity2ID: 30, CategoryID: models.CategoryDonation},
			models.Triplet{Entity1ID: 20, Entity2ID: 30, CategoryID: models.CategoryDonation},
		},
		{
			"source on the second endpoint",
			models.Triplet{Entity1ID: 30, Entity2ID: 10, CategoryID: models.CategoryGeneric},
			models.Triplet{Entity1ID: 30, Entity2ID: 20, CategoryID: models.CategoryGeneric},
		},
		{
			"source on neither endpoint",
			models.Triplet{Entity1ID: 30, Entity2ID: 40, CategoryID: models.CategoryGeneric},
			models.Triplet{Entity1ID: 30, Entity2ID: 40, CategoryID: models.CategoryGeneric},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repointTriplet(tt.triplet, 10, 20))
		})
	}
}

func TestStageRelationship(t *testing.T) {
	rel := &models.Relationship{ID: 100, Entity1ID: 10, Entity2ID: 30, CategoryID: models.CategoryDonation}

	t.Run("clean relationship is repointed", func(t *testing.T) {
		plan := &Plan{SourceID: 10, DestID: 20}
		stageRelationship(plan, rel, false, false)

		assert.Equal(t, []int64{100}, plan.RelationshipIDs)
		assert.Empty(t, plan.MatchRelationshipIDs)
		assert.Empty(t, plan.PotentialDuplicateRelationships)
	})

	t.Run("colliding triplet is reported and left on the source", func(t *testing.T) {
		plan := &Plan{SourceID: 10, DestID: 20}
		stageRelationship(plan, rel, false, true)

		assert.Empty(t, plan.RelationshipIDs)
		require.Len(t, plan.PotentialDuplicateRelationships, 1)
		assert.Equal(t, models.Triplet{Entity1ID: 20, Entity2ID: 30, CategoryID: models.CategoryDonation},
			plan.PotentialDuplicateRelationships[0])
	})

	t.Run("match-backed relationship moves with its matches", func(t *testing.T) {
		plan := &Plan{SourceID: 10, DestID: 20}
		stageRelationship(plan, rel, true, false)

		assert.Equal(t, []int64{100}, plan.MatchRelationshipIDs)
		assert.Empty(t, plan.RelationshipIDs)
		assert.Empty(t, plan.PotentialDuplicateRelationships)
	})

	t.Run("match-backed relationship is never reported as a duplicate", func(t *testing.T) {
		// Even when the destination already has an identical triplet, the
		// backing relationship follows its matches so both end up on the
		// same entity.
		plan := &Plan{SourceID: 10, DestID: 20, OsDonorMatchIDs: []int64{200}}
		stageRelationship(plan, rel, true, true)

		assert.Equal(t, []int64{100}, plan.MatchRelationshipIDs)
		assert.Empty(t, plan.RelationshipIDs)
		assert.Empty(t, plan.PotentialDuplicateRelationships)
	})
}

func floatPtr(f float64) *float64 { return &f }

func TestMissingAddresses(t *testing.T) {
	shared := models.Address{City: "New York", Latitude: floatPtr(40.7), Longitude: floatPtr(-74.0)}
	unique := models.Address{City: "Albany", Latitude: floatPtr(42.6), Longitude: floatPtr(-73.7)}
	noCoords := models.Address{City: "Buffalo"}

	missing := missingAddresses(
		[]models.Address{shared, unique, noCoords},
		[]models.Address{shared},
	)

	// Addresses without coordinates never match, so they always transfer.
	require.Len(t, missing, 2)
	assert.Equal(t, "Albany", missing[0].City)
	assert.Equal(t, "Buffalo", missing[1].City)
}

func TestMissingEmails(t *testing.T) {
	missing := missingEmails(
		[]models.Email{{Address: "Info@Acme.com "}, {Address: "press@acme.com"}},
		[]models.Email{{Address: "info@acme.com"}},
	)

	// Comparison runs on the normalized address.
	require.Len(t, missing, 1)
	assert.Equal(t, "press@acme.com", missing[0].Address)
}

func TestMissingPhones(t *testing.T) {
	missing := missingPhones(
		[]models.Phone{{Number: "(212) 555-1234"}, {Number: "212-555-9999"}},
		[]models.Phone{{Number: "2125551234"}},
	)

	// Formatting differences collapse to the same digit string.
	require.Len(t, missing, 1)
	assert.Equal(t, "212-555-9999", missing[0].Number)
}

func TestAttachReferenceError(t *testing.T) {
	t.Run("missing document maps to the reference taxonomy", func(t *testing.T) {
		err := attachReferenceError(7, fmt.Errorf("document 7: %w", reference.ErrDocumentMissing))

		var me *MergeError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrReferenceInvalid, me.Kind)
		assert.Equal(t, http.StatusUnprocessableEntity, me.HTTPStatus())
	})

	t.Run("other failures pass through", func(t *testing.T) {
		cause := errors.New("connection reset")
		assert.Same(t, cause, attachReferenceError(7, cause))
	})
}
