package groupgift

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mikepea/wishwell/pkg/wishwell/claims"
	"github.com/mikepea/wishwell/pkg/wishwell/models"
)

// OrderBy selects the member sort key
type OrderBy string

const (
	OrderNone      OrderBy = ""
	OrderName      OrderBy = "name"
	OrderClaimed   OrderBy = "claimed-gifts"
	OrderRequested OrderBy = "requested-gifts"
)

// OrderDir is the sort direction
type OrderDir string

const (
	Asc  OrderDir = "asc"
	Desc OrderDir = "desc"
)

// Refine narrows members by the state of their gifts
type Refine string

const (
	RefineNone      Refine = ""
	RefineAvailable Refine = "available"
	RefineClaimed   Refine = "claimed"
)

// MemberFilter narrows and orders the members of a group-gift view
type MemberFilter struct {
	Search   string
	Refine   Refine
	OrderBy  OrderBy
	OrderDir OrderDir
}

// DefaultMemberFilter keeps every member in load order
var DefaultMemberFilter = MemberFilter{OrderDir: Asc}

// ParseMemberFilter validates raw query values
func ParseMemberFilter(search, refine, orderBy, orderDir string) (MemberFilter, error) {
	f := MemberFilter{Search: search, Refine: Refine(refine), OrderBy: OrderBy(orderBy), OrderDir: OrderDir(orderDir)}

	switch f.Refine {
	case RefineNone, RefineAvailable, RefineClaimed:
	default:
		return f, fmt.Errorf("unknown refine %q", refine)
	}
	switch f.OrderBy {
	case OrderNone, OrderName, OrderClaimed, OrderRequested:
	default:
		return f, fmt.Errorf("unknown order_by %q", orderBy)
	}
	switch f.OrderDir {
	case "":
		f.OrderDir = Asc
	case Asc, Desc:
	default:
		return f, fmt.Errorf("unknown order_dir %q", orderDir)
	}
	return f, nil
}

// Toggle selects field as the sort key. Selecting the current key flips the
// direction; a new key starts ascending.
func (f MemberFilter) Toggle(field OrderBy) MemberFilter {
	if f.OrderBy == field {
		if f.OrderDir == Desc {
			f.OrderDir = Asc
		} else {
			f.OrderDir = Desc
		}
		return f
	}
	f.OrderBy = field
	f.OrderDir = Asc
	return f
}

func memberKey(by OrderBy) func(Member) int {
	switch by {
	case OrderClaimed:
		return func(m Member) int { return m.ClaimedCount() }
	case OrderRequested:
		return func(m Member) int { return len(m.Gifts) }
	}
	return nil
}

func refines(r Refine, gifts []Gift) bool {
	switch r {
	case RefineAvailable:
		return slices.ContainsFunc(gifts, func(g Gift) bool { return g.ClaimStatus.Status == claims.StateAvailable })
	case RefineClaimed:
		// every() over an empty list is true, so members without gifts stay in.
		return !slices.ContainsFunc(gifts, func(g Gift) bool { return g.ClaimStatus.Status == claims.StateAvailable })
	}
	return true
}

// ApplyMemberFilter returns the members matching f in the order f asks for.
// The input slice is left untouched and ties keep their input order.
func ApplyMemberFilter(f MemberFilter, members []Member) []Member {
	search := strings.ToLower(f.Search)
	result := make([]Member, 0, len(members))
	for _, m := range members {
		if !strings.Contains(strings.ToLower(m.User.DisplayName), search) {
			continue
		}
		if !refines(f.Refine, m.Gifts) {
			continue
		}
		result = append(result, m)
	}

	if f.OrderBy == OrderNone {
		return result
	}

	sign := 1
	if f.OrderDir == Desc {
		sign = -1
	}
	key := memberKey(f.OrderBy)
	slices.SortStableFunc(result, func(a, b Member) int {
		if key == nil {
			return sign * strings.Compare(a.User.DisplayName, b.User.DisplayName)
		}
		return sign * (key(a) - key(b))
	})
	return result
}

// GiftFilter narrows a single member's gifts. All set conditions must hold.
type GiftFilter struct {
	Search        string
	Available     bool
	ClaimedByUser bool
	Priority      bool
}

// ApplyGiftFilter returns the gifts matching f as seen by viewerID
func ApplyGiftFilter(f GiftFilter, gifts []Gift, viewerID string) []Gift {
	search := strings.ToLower(f.Search)
	result := make([]Gift, 0, len(gifts))
	for _, g := range gifts {
		if !strings.Contains(strings.ToLower(g.Name), search) {
			continue
		}
		if f.Available && g.ClaimStatus.Status != claims.StateAvailable {
			continue
		}
		if f.ClaimedByUser && !claimedBy(g, viewerID) {
			continue
		}
		if f.Priority && g.Priority != models.PriorityHigh {
			continue
		}
		result = append(result, g)
	}
	return result
}

func claimedBy(g Gift, userID string) bool {
	return g.ClaimStatus.ClaimedByMe || (g.ClaimStatus.ClaimedBy != "" && g.ClaimStatus.ClaimedBy == userID)
}
