package claims

import "github.com/mikepea/wishwell/pkg/wishwell/models"

// View is what a viewer may learn about a gift's claim
type View struct {
	Status        State  `json:"status"`
	ClaimedByMe   bool   `json:"claimed_by_me"`
	ClaimedBy     string `json:"claimed_by,omitempty"`
	ClaimedByName string `json:"claimed_by_name,omitempty"`
}

// Conceal builds the view of claim for viewer. The holder is revealed only
// to the holder themself, or when the holder belongs to the group being
// viewed (members is the member set of that group). Everyone else sees the
// status alone. Callers never pass claims on the viewer's own gifts.
func Conceal(viewer string, claim *models.ClaimedGift, members map[string]bool) View {
	v := View{Status: StateOf(claim)}
	if claim == nil {
		return v
	}

	if claim.ClaimedBy == viewer {
		v.ClaimedByMe = true
		v.ClaimedBy = viewer
		return v
	}
	if members[claim.ClaimedBy] {
		v.ClaimedBy = claim.ClaimedBy
		if claim.Claimant != nil {
			v.ClaimedByName = claim.Claimant.DisplayName
		}
	}
	return v
}
