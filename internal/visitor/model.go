package visitor

import "time"

// Need types recognised by the check-in desk. Anything else falls back to
// the generic visitor prefix.
const (
	NeedsMeeting    = "Meeting"
	NeedsDelivery   = "Delivery"
	NeedsContractor = "Contractor"
	NeedsSortir     = "Sortir"
)

// NeedsPrefix maps a need type to its visitor-id prefix.
func NeedsPrefix(needs string) string {
	switch needs {
	case NeedsMeeting:
		return "MT"
	case NeedsDelivery:
		return "DL"
	case NeedsContractor:
		return "CT"
	case NeedsSortir:
		return "ST"
	default:
		return "VG"
	}
}

// Visitor mirrors a row of the visitor table. The ID format is
// <PREFIX><YY><NNNN>: need prefix, two-digit year, zero-padded sequence
// unique within (prefix, year).
type Visitor struct {
	ID               string
	Date             time.Time
	Name             string
	From             *string
	BPCode           *string
	Host             string
	Needs            string
	Amount           *int
	Vehicle          *string
	PlanDeliveryTime *string
	Department       string
	CheckIn          time.Time
	CheckOut         *time.Time
}

// CheckedIn reports whether the visitor is currently on site.
func (v Visitor) CheckedIn() bool {
	return v.CheckOut == nil
}

// Counts carries the dashboard aggregation for a unified code set. Each
// field is an independent count over the same set.
type Counts struct {
	Total      int `json:"total_visitors"`
	Today      int `json:"today_visitors"`
	CheckedIn  int `json:"checked_in_visitors"`
	CheckedOut int `json:"checked_out_visitors"`
	Meeting    int `json:"meeting_visitors"`
	Delivery   int `json:"delivery_visitors"`
	Contractor int `json:"contractor_visitors"`
}
