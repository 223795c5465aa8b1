package partner

// Detail is the enriched wire shape for a single partner: the raw row plus
// derived relationship fields. Parent and children are derived from the
// already-fetched unified family, not from extra lookups.
type Detail struct {
	Partner
	Status       string    `json:"status"`
	BaseBpCode   string    `json:"base_bp_code"`
	IsParentRec  bool      `json:"is_parent"`
	IsChildRec   bool      `json:"is_child"`
	ParentRecord *Partner  `json:"parent_record,omitempty"`
	ChildRecords []Partner `json:"child_records,omitempty"`
}

// NewDetail builds the detail shape for p given its unified family.
func NewDetail(p Partner, family []Partner) Detail {
	d := Detail{
		Partner:     p,
		Status:      "inactive",
		BaseBpCode:  p.BaseCode(),
		IsParentRec: p.IsParent(),
		IsChildRec:  p.IsChild(),
	}
	if p.IsActive() {
		d.Status = "active"
	}
	if p.IsChild() {
		for i := range family {
			if family[i].Code == *p.ParentCode {
				parent := family[i]
				d.ParentRecord = &parent
				break
			}
		}
	} else {
		for _, rel := range family {
			if rel.ParentCode != nil && *rel.ParentCode == p.Code {
				d.ChildRecords = append(d.ChildRecords, rel)
			}
		}
	}
	return d
}
