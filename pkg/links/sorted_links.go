package links

import (
	"github.com/Ramsey-B/graft/pkg/extensions"
	"github.com/Ramsey-B/graft/pkg/models"
)

// groupSpec names one display partition and decides which items land in it.
type groupSpec struct {
	key      string
	heading  string
	category int
	match    func(*Item) bool
}

// displayOrder is the fixed ordering of named groups on an entity page.
// Partitioning runs top to bottom; the first matching group wins.
var displayOrder = []groupSpec{
	{"business_positions", "Business Positions", models.CategoryPosition, func(i *Item) bool {
		return !i.Link.IsReverse && (i.HasCounterpartDefinition(extensions.BusinessID) ||
			i.HasCounterpartDefinition(extensions.PrivateCompanyID) ||
			i.HasCounterpartDefinition(extensions.PublicCompanyID))
	}},
	{"government_positions", "Government Positions", models.CategoryPosition, func(i *Item) bool {
		return !i.Link.IsReverse && i.HasCounterpartDefinition(extensions.GovernmentBodyID)
	}},
	{"office_positions", "In the Office Of", models.CategoryPosition, func(i *Item) bool {
		return !i.Link.IsReverse && i.HasCounterpartDefinition(extensions.PersonID)
	}},
	{"other_positions", "Other Positions", models.CategoryPosition, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"staff", "Leadership & Staff", models.CategoryPosition, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"schools", "Education", models.CategoryEducation, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"students", "Students", models.CategoryEducation, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"memberships", "Memberships", models.CategoryMembership, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"members", "Members", models.CategoryMembership, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"family", "Family", models.CategoryFamily, nil},
	{"donation_recipients", "Donation/Grant Recipients", models.CategoryDonation, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"donors", "Donors", models.CategoryDonation, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"services_transactions", "Services & Transactions", models.CategoryTransaction, nil},
	{"lobbies", "Lobbying", models.CategoryLobbying, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"lobbied_by", "Lobbied By", models.CategoryLobbying, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"friendships", "Friends", models.CategorySocial, nil},
	{"professional_relationships", "Professional Associates", models.CategoryProfessional, nil},
	{"holdings", "Holdings", models.CategoryOwnership, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"owners", "Owners", models.CategoryOwnership, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"parent_orgs", "Parent Organizations", models.CategoryHierarchy, func(i *Item) bool {
		return !i.Link.IsReverse
	}},
	{"child_orgs", "Child Organizations", models.CategoryHierarchy, func(i *Item) bool {
		return i.Link.IsReverse
	}},
	{"generic", "Other Affiliations", models.CategoryGeneric, nil},
}

// SortedLinks partitions an entity's hydrated links into named, ordered
// groups. Empty groups are omitted.
func SortedLinks(items []*Item) []*Group {
	buckets := make(map[string][]*Item, len(displayOrder))

	for _, item := range items {
		if item.Link == nil {
			continue
		}
		for _, spec := range displayOrder {
			if spec.category != item.Link.CategoryID {
				continue
			}
			if spec.match != nil && !spec.match(item) {
				continue
			}
			buckets[spec.key] = append(buckets[spec.key], item)
			break
		}
	}

	var groups []*Group
	for _, spec := range displayOrder {
		bucket := buckets[spec.key]
		if len(bucket) == 0 {
			continue
		}
		groups = append(groups, NewGroup(spec.key, spec.heading, spec.category, bucket))
	}

	return groups
}
