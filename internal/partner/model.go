package partner

import "strings"

// Partner mirrors a row of the business_partner table in the partner master.
// Records are created and updated by an external feed; the only mutation this
// service performs is the parent-link backfill.
type Partner struct {
	Code       string  `json:"bp_code"`
	ParentCode *string `json:"parent_bp_code"`
	Name       string  `json:"bp_name"`
	StatusDesc *string `json:"bp_status_desc"`
	Currency   *string `json:"bp_currency"`
	Country    *string `json:"country"`
	AdrLine1   *string `json:"adr_line_1"`
	AdrLine2   *string `json:"adr_line_2"`
	AdrLine3   *string `json:"adr_line_3"`
	AdrLine4   *string `json:"adr_line_4"`
	Phone      *string `json:"bp_phone"`
	Fax        *string `json:"bp_fax"`
	Role       *string `json:"bp_role"`
	RoleDesc   *string `json:"bp_role_desc"`
}

const statusActive = "Active"

// BaseCode returns the code with any legacy suffix removed.
func (p Partner) BaseCode() string {
	return BaseCode(p.Code)
}

// IsParent reports whether this is a parent record (no parent pointer).
// Independently of the pointer, the code itself may still carry a legacy
// suffix; see the resolver precedence rule.
func (p Partner) IsParent() bool {
	return p.ParentCode == nil || *p.ParentCode == ""
}

// IsChild reports whether this record points at an explicit parent.
func (p Partner) IsChild() bool {
	return !p.IsParent()
}

// IsActive reports whether the partner master flags the record Active.
func (p Partner) IsActive() bool {
	return p.StatusDesc != nil && *p.StatusDesc == statusActive
}

// Address joins the populated address lines with commas.
func (p Partner) Address() string {
	parts := make([]string, 0, 4)
	for _, line := range []*string{p.AdrLine1, p.AdrLine2, p.AdrLine3, p.AdrLine4} {
		if line != nil && *line != "" {
			parts = append(parts, *line)
		}
	}
	return strings.Join(parts, ", ")
}

// SupplierOption is the dropdown shape the kiosk frontend consumes.
type SupplierOption struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

// ToSupplierOption flattens a partner row into the dropdown shape.
func (p Partner) ToSupplierOption() SupplierOption {
	phone := ""
	if p.Phone != nil {
		phone = *p.Phone
	}
	return SupplierOption{
		Value:   p.Code,
		Label:   p.Name,
		Code:    p.Code,
		Name:    p.Name,
		Address: p.Address(),
		Phone:   phone,
	}
}
