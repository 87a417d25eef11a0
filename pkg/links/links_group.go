// Package links groups and orders an entity's relationship edges for
// display and duplicate inspection.
package links

import (
	"sort"

	"github.com/Ramsey-B/graft/pkg/models"
)

// Item pairs a link with its relationship and, when the caller hydrated it,
// the counterpart entity on the other end.
type Item struct {
	Link                     *models.Link
	Relationship             *models.Relationship
	Counterpart              *models.Entity
	CounterpartDefinitionIDs []int
}

// HasCounterpartDefinition reports whether the counterpart carries the
// extension definition.
func (i *Item) HasCounterpartDefinition(definitionID int) bool {
	for _, id := range i.CounterpartDefinitionIDs {
		if id == definitionID {
			return true
		}
	}
	return false
}

// Group is one named partition of an entity's links. Members is nested: one
// inner slice per counterpart, so several relationships with the same
// counterpart render as a single line.
type Group struct {
	Key      string
	Heading  string
	Category int
	Members  [][]*Item
}

// Count returns the number of counterpart sub-groups.
func (g *Group) Count() int {
	return len(g.Members)
}

// NewGroup clusters items per counterpart and orders them with the
// category's comparator: donation groups order by amount, position and
// membership groups by temporal status, and everything else keeps first-seen
// order.
func NewGroup(key, heading string, category int, items []*Item) *Group {
	g := &Group{Key: key, Heading: heading, Category: category}
	g.Members = clusterByCounterpart(items)

	switch category {
	case models.CategoryDonation:
		sortClusters(g.Members, func(a, b *Item) bool {
			return amountOf(a) > amountOf(b)
		})
	case models.CategoryPosition, models.CategoryMembership:
		sortClusters(g.Members, func(a, b *Item) bool {
			return temporalLess(a.Relationship, b.Relationship)
		})
	}

	return g
}

// clusterByCounterpart gathers items pointing at the same counterpart into
// one sub-group, preserving first-seen order.
func clusterByCounterpart(items []*Item) [][]*Item {
	index := make(map[int64]int)
	var members [][]*Item
	for _, item := range items {
		counterpartID := item.Link.Entity2ID
		if at, ok := index[counterpartID]; ok {
			members[at] = append(members[at], item)
			continue
		}
		index[counterpartID] = len(members)
		members = append(members, []*Item{item})
	}
	return members
}

// sortClusters orders the items inside each counterpart sub-group, then
// orders the sub-groups by their best-sorted member.
func sortClusters(members [][]*Item, less func(a, b *Item) bool) {
	for _, group := range members {
		group := group
		sort.SliceStable(group, func(a, b int) bool {
			return less(group[a], group[b])
		})
	}
	sort.SliceStable(members, func(a, b int) bool {
		return less(members[a][0], members[b][0])
	})
}

func amountOf(item *Item) int64 {
	if item.Relationship == nil || item.Relationship.Amount == nil {
		return 0
	}
	return *item.Relationship.Amount
}

// temporalLess orders positions and memberships: current before unknown
// before past; among equals, open-ended tenures first, then later end
// dates, then later start dates.
func temporalLess(a, b *models.Relationship) bool {
	ra, rb := currencyRank(a), currencyRank(b)
	if ra != rb {
		return ra < rb
	}

	if c := compareEndDates(a, b); c != 0 {
		return c < 0
	}

	return compareStartDates(a, b) < 0
}

// currencyRank: current = 0, unknown = 1, past = 2.
func currencyRank(r *models.Relationship) int {
	if r == nil || r.IsCurrent == nil {
		return 1
	}
	if *r.IsCurrent {
		return 0
	}
	return 2
}

// compareEndDates: nil end date (still ongoing) sorts first; otherwise
// later dates first. Dates are ISO strings, so lexical order is date order.
func compareEndDates(a, b *models.Relationship) int {
	ea, eb := endDate(a), endDate(b)
	switch {
	case ea == nil && eb == nil:
		return 0
	case ea == nil:
		return -1
	case eb == nil:
		return 1
	case *ea > *eb:
		return -1
	case *ea < *eb:
		return 1
	default:
		return 0
	}
}

// compareStartDates: later dates first; nil start dates last.
func compareStartDates(a, b *models.Relationship) int {
	sa, sb := startDate(a), startDate(b)
	switch {
	case sa == nil && sb == nil:
		return 0
	case sa == nil:
		return 1
	case sb == nil:
		return -1
	case *sa > *sb:
		return -1
	case *sa < *sb:
		return 1
	default:
		return 0
	}
}

func endDate(r *models.Relationship) *string {
	if r == nil {
		return nil
	}
	return r.EndDate
}

func startDate(r *models.Relationship) *string {
	if r == nil {
		return nil
	}
	return r.StartDate
}
