package logistics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads planned deliveries from the SCM dn_header table.
type Repository interface {
	ListForDate(ctx context.Context, day time.Time) ([]DeliveryPlan, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a logistics repository over the SCM pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// ListForDate returns the schedule for one day ordered by planned time.
// Rows without a driver or plate are gate-irrelevant and skipped upstream.
func (r *repository) ListForDate(ctx context.Context, day time.Time) ([]DeliveryPlan, error) {
	const query = `
SELECT no_dn, driver_name, plat_number, plan_delivery_time,
       supplier_name, supplier_code, plan_delivery_date
FROM dn_header
WHERE plan_delivery_date = $1
  AND driver_name IS NOT NULL
  AND plat_number IS NOT NULL
ORDER BY plan_delivery_time ASC`
	rows, err := r.pool.Query(ctx, query, day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []DeliveryPlan
	for rows.Next() {
		var p DeliveryPlan
		if err := rows.Scan(
			&p.NoDN, &p.DriverName, &p.PlatNumber, &p.PlanDeliveryTime,
			&p.SupplierName, &p.SupplierCode, &p.PlanDeliveryDate,
		); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
