package visitor

import "time"

// CheckInRequest is the POST /create body. visitor_date is validated but the
// stored visit date is always the server's today, matching the kiosk flow.
type CheckInRequest struct {
	VisitorName      string `json:"visitor_name" validate:"required,max=255"`
	VisitorDate      string `json:"visitor_date" validate:"required,datetime=2006-01-02"`
	VisitorFrom      string `json:"visitor_from" validate:"omitempty,max=255"`
	VisitorHost      string `json:"visitor_host" validate:"required,max=255"`
	VisitorNeeds     string `json:"visitor_needs" validate:"omitempty,max=255"`
	VisitorAmount    *int   `json:"visitor_amount" validate:"omitempty,gte=0"`
	VisitorVehicle   string `json:"visitor_vehicle" validate:"omitempty,max=10"`
	PlanDeliveryTime string `json:"plan_delivery_time" validate:"omitempty,max=8"`
	Department       string `json:"department"`
}

// Status filter values recognised by unified visitor listings. Any other
// value is ignored rather than rejected.
const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
)

// Filters enumerates the recognised unified-listing filters; all conditions
// AND together. Unknown query keys never reach this struct.
type Filters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Needs    string
	Status   string
}

// Response is the JSON shape for listing and check-in responses, with the
// display formatting the receipt frontend expects.
type Response struct {
	VisitorID        string  `json:"visitor_id"`
	VisitorDate      string  `json:"visitor_date"`
	VisitorName      string  `json:"visitor_name"`
	VisitorFrom      *string `json:"visitor_from"`
	VisitorHost      string  `json:"visitor_host"`
	VisitorNeeds     string  `json:"visitor_needs"`
	VisitorAmount    *int    `json:"visitor_amount"`
	VisitorVehicle   *string `json:"visitor_vehicle"`
	PlanDeliveryTime *string `json:"plan_delivery_time"`
	Department       string  `json:"department"`
	VisitorCheckin   string  `json:"visitor_checkin"`
	VisitorCheckout  *string `json:"visitor_checkout"`
}

const (
	dateLayout    = "2006-01-02"
	displayLayout = "02-01-2006 15:04"
)

// ToResponse formats a visitor row for the API.
func ToResponse(v Visitor) Response {
	resp := Response{
		VisitorID:        v.ID,
		VisitorDate:      v.Date.Format(dateLayout),
		VisitorName:      v.Name,
		VisitorFrom:      v.From,
		VisitorHost:      v.Host,
		VisitorNeeds:     v.Needs,
		VisitorAmount:    v.Amount,
		VisitorVehicle:   v.Vehicle,
		PlanDeliveryTime: v.PlanDeliveryTime,
		Department:       v.Department,
		VisitorCheckin:   v.CheckIn.Format(displayLayout),
	}
	if v.CheckOut != nil {
		out := v.CheckOut.Format(displayLayout)
		resp.VisitorCheckout = &out
	}
	return resp
}

// ToResponses formats a slice of visitor rows.
func ToResponses(visitors []Visitor) []Response {
	out := make([]Response, 0, len(visitors))
	for _, v := range visitors {
		out = append(out, ToResponse(v))
	}
	return out
}

// PrintData carries the raw visitor fields for receipt rendering; rendering
// itself happens in the frontend.
type PrintData struct {
	VisitorID        string     `json:"visitor_id"`
	VisitorDate      string     `json:"visitor_date"`
	VisitorName      string     `json:"visitor_name"`
	VisitorFrom      *string    `json:"visitor_from"`
	VisitorHost      string     `json:"visitor_host"`
	VisitorNeeds     string     `json:"visitor_needs"`
	VisitorAmount    *int       `json:"visitor_amount"`
	VisitorVehicle   *string    `json:"visitor_vehicle"`
	PlanDeliveryTime *string    `json:"plan_delivery_time"`
	Department       string     `json:"department"`
	VisitorCheckin   time.Time  `json:"visitor_checkin"`
	VisitorCheckout  *time.Time `json:"visitor_checkout"`
	BPCode           *string    `json:"bp_code"`
}

// ToPrintData exposes the raw fields for receipt rendering.
func ToPrintData(v Visitor) PrintData {
	return PrintData{
		VisitorID:        v.ID,
		VisitorDate:      v.Date.Format(dateLayout),
		VisitorName:      v.Name,
		VisitorFrom:      v.From,
		VisitorHost:      v.Host,
		VisitorNeeds:     v.Needs,
		VisitorAmount:    v.Amount,
		VisitorVehicle:   v.Vehicle,
		PlanDeliveryTime: v.PlanDeliveryTime,
		Department:       v.Department,
		VisitorCheckin:   v.CheckIn,
		VisitorCheckout:  v.CheckOut,
		BPCode:           v.BPCode,
	}
}
