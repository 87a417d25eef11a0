package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/extensions"
	"github.com/Ramsey-B/graft/pkg/models"
)

func linkItem(category int, isReverse bool, defIDs ...int) *Item {
	return &Item{
		Link:                     &models.Link{CategoryID: category, IsReverse: isReverse},
		Relationship:             &models.Relationship{CategoryID: category},
		CounterpartDefinitionIDs: defIDs,
	}
}

func groupKeys(groups []*Group) []string {
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	return keys
}

func TestSortedLinks_PositionPartitioning(t *testing.T) {
	business := linkItem(models.CategoryPosition, false, extensions.BusinessID)
	government := linkItem(models.CategoryPosition, false, extensions.GovernmentBodyID)
	office := linkItem(models.CategoryPosition, false, extensions.PersonID)
	other := linkItem(models.CategoryPosition, false, extensions.NonProfitID)
	staff := linkItem(models.CategoryPosition, true)

	groups := SortedLinks([]*Item{staff, other, office, government, business})

	require.Equal(t, []string{"business_positions", "government_positions", "office_positions", "other_positions", "staff"}, groupKeys(groups))
	assert.Same(t, business, groups[0].Members[0][0])
	assert.Same(t, government, groups[1].Members[0][0])
	assert.Same(t, office, groups[2].Members[0][0])
	assert.Same(t, other, groups[3].Members[0][0])
	assert.Same(t, staff, groups[4].Members[0][0])
}

func TestSortedLinks_FirstMatchingGroupWins(t *testing.T) {
	// A counterpart that is both a business and a government body lands in
	// the business group because it comes first in display order.
	both := linkItem(models.CategoryPosition, false, extensions.PrivateCompanyID, extensions.GovernmentBodyID)

	groups := SortedLinks([]*Item{both})

	require.Len(t, groups, 1)
	assert.Equal(t, "business_positions", groups[0].Key)
}

func TestSortedLinks_DirectionSplitsGroups(t *testing.T) {
	given := linkItem(models.CategoryDonation, false)
	received := linkItem(models.CategoryDonation, true)
	membership := linkItem(models.CategoryMembership, false)
	member := linkItem(models.CategoryMembership, true)

	groups := SortedLinks([]*Item{received, member, membership, given})

	assert.Equal(t, []string{"memberships", "members", "donation_recipients", "donors"}, groupKeys(groups))
}

func TestSortedLinks_UndirectedCategories(t *testing.T) {
	family := linkItem(models.CategoryFamily, true)
	friend := linkItem(models.CategorySocial, false)

	groups := SortedLinks([]*Item{friend, family})

	// Family and social groups ignore link direction.
	assert.Equal(t, []string{"family", "friendships"}, groupKeys(groups))
}

func TestSortedLinks_EmptyGroupsOmitted(t *testing.T) {
	groups := SortedLinks([]*Item{linkItem(models.CategoryOwnership, false)})

	require.Len(t, groups, 1)
	assert.Equal(t, "holdings", groups[0].Key)
	assert.Equal(t, "Holdings", groups[0].Heading)
}

func TestSortedLinks_SkipsNilLinks(t *testing.T) {
	groups := SortedLinks([]*Item{{Relationship: &models.Relationship{}}})

	assert.Empty(t, groups)
}
