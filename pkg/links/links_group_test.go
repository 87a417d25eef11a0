package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/models"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func int64Ptr(n int64) *int64 { return &n }

func donationItem(counterpartID int64, amount *int64) *Item {
	return &Item{
		Link:         &models.Link{Entity2ID: counterpartID, CategoryID: models.CategoryDonation},
		Relationship: &models.Relationship{CategoryID: models.CategoryDonation, Amount: amount},
	}
}

func positionItem(counterpartID int64, isCurrent *bool, startDate, endDate *string) *Item {
	return &Item{
		Link: &models.Link{Entity2ID: counterpartID, CategoryID: models.CategoryPosition},
		Relationship: &models.Relationship{
			CategoryID: models.CategoryPosition,
			IsCurrent:  isCurrent,
			StartDate:  startDate,
			EndDate:    endDate,
		},
	}
}

func TestNewGroup_DonationClustering(t *testing.T) {
	items := []*Item{
		donationItem(10, int64Ptr(500)),
		donationItem(20, int64Ptr(9000)),
		donationItem(10, int64Ptr(2500)),
		donationItem(30, nil),
	}

	g := NewGroup("donation_recipients", "Donation/Grant Recipients", models.CategoryDonation, items)

	require.Equal(t, 3, g.Count())

	// Counterpart 20 has the largest single donation, so its sub-group leads.
	assert.Equal(t, int64(20), g.Members[0][0].Link.Entity2ID)

	// Both donations to counterpart 10 collapse into one sub-group, largest
	// amount first.
	require.Len(t, g.Members[1], 2)
	assert.Equal(t, int64(10), g.Members[1][0].Link.Entity2ID)
	assert.Equal(t, int64(2500), *g.Members[1][0].Relationship.Amount)
	assert.Equal(t, int64(500), *g.Members[1][1].Relationship.Amount)

	// Nil amounts rank as zero and sort last.
	assert.Equal(t, int64(30), g.Members[2][0].Link.Entity2ID)
}

func TestNewGroup_PositionSameCounterpartNesting(t *testing.T) {
	// Three positions at the same counterpart render as one nested sub-group,
	// best-ordered tenure first.
	past := positionItem(42, boolPtr(false), strPtr("1990-01-01"), strPtr("1999-12-31"))
	unknown := positionItem(42, nil, strPtr("2005-01-01"), nil)
	current := positionItem(42, boolPtr(true), strPtr("2010-01-01"), nil)

	g := NewGroup("other_positions", "Other Positions", models.CategoryPosition, []*Item{past, unknown, current})

	require.Equal(t, 1, g.Count())
	require.Len(t, g.Members[0], 3)
	assert.Same(t, current, g.Members[0][0])
	assert.Same(t, unknown, g.Members[0][1])
	assert.Same(t, past, g.Members[0][2])
}

func TestNewGroup_PositionTemporalOrder(t *testing.T) {
	past := positionItem(1, boolPtr(false), strPtr("1990-01-01"), strPtr("1999-12-31"))
	unknown := positionItem(2, nil, strPtr("2005-01-01"), nil)
	current := positionItem(3, boolPtr(true), strPtr("2010-01-01"), nil)

	g := NewGroup("other_positions", "Other Positions", models.CategoryPosition, []*Item{past, unknown, current})

	require.Equal(t, 3, g.Count())
	assert.Same(t, current, g.Members[0][0])
	assert.Same(t, unknown, g.Members[1][0])
	assert.Same(t, past, g.Members[2][0])
}

func TestNewGroup_PositionTieBreaks(t *testing.T) {
	t.Run("open end date sorts before a closed one", func(t *testing.T) {
		open := positionItem(1, boolPtr(false), strPtr("2000-01-01"), nil)
		closed := positionItem(2, boolPtr(false), strPtr("2000-01-01"), strPtr("2020-06-30"))

		g := NewGroup("other_positions", "Other Positions", models.CategoryPosition, []*Item{closed, open})

		assert.Same(t, open, g.Members[0][0])
		assert.Same(t, closed, g.Members[1][0])
	})

	t.Run("later end date first", func(t *testing.T) {
		older := positionItem(1, boolPtr(false), nil, strPtr("2010-01-01"))
		newer := positionItem(2, boolPtr(false), nil, strPtr("2018-01-01"))

		g := NewGroup("other_positions", "Other Positions", models.CategoryPosition, []*Item{older, newer})

		assert.Same(t, newer, g.Members[0][0])
		assert.Same(t, older, g.Members[1][0])
	})

	t.Run("equal end dates fall back to later start date", func(t *testing.T) {
		earlier := positionItem(1, nil, strPtr("2001-01-01"), strPtr("2015-01-01"))
		later := positionItem(2, nil, strPtr("2008-01-01"), strPtr("2015-01-01"))

		g := NewGroup("other_positions", "Other Positions", models.CategoryPosition, []*Item{earlier, later})

		assert.Same(t, later, g.Members[0][0])
		assert.Same(t, earlier, g.Members[1][0])
	})
}

func TestNewGroup_GenericClustersByCounterpart(t *testing.T) {
	first := &Item{Link: &models.Link{Entity2ID: 7, CategoryID: models.CategoryGeneric}, Relationship: &models.Relationship{}}
	second := &Item{Link: &models.Link{Entity2ID: 8, CategoryID: models.CategoryGeneric}, Relationship: &models.Relationship{}}
	third := &Item{Link: &models.Link{Entity2ID: 7, CategoryID: models.CategoryGeneric}, Relationship: &models.Relationship{}}

	g := NewGroup("generic", "Other Affiliations", models.CategoryGeneric, []*Item{first, second, third})

	// Sub-groups keep first-seen order; repeated counterparts nest.
	require.Equal(t, 2, g.Count())
	require.Len(t, g.Members[0], 2)
	assert.Same(t, first, g.Members[0][0])
	assert.Same(t, third, g.Members[0][1])
	assert.Same(t, second, g.Members[1][0])
}

func TestHasCounterpartDefinition(t *testing.T) {
	item := &Item{CounterpartDefinitionIDs: []int{2, 5, 13}}

	assert.True(t, item.HasCounterpartDefinition(5))
	assert.False(t, item.HasCounterpartDefinition(1))
}
