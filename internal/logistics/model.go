package logistics

// DeliveryPlan mirrors a row of the external dn_header table in the SCM
// database. Read-only from this service.
type DeliveryPlan struct {
	NoDN             string  `json:"no_dn"`
	DriverName       *string `json:"driver_name"`
	PlatNumber       *string `json:"plat_number"`
	PlanDeliveryTime *string `json:"plan_delivery_time"`
	SupplierName     *string `json:"supplier_name"`
	SupplierCode     *string `json:"supplier_code"`
	PlanDeliveryDate string  `json:"plan_delivery_date"`
}
