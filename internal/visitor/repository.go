package visitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-app/gatehouse/internal/platform/db"
)

// ErrNotFound indicates the requested visitor record is missing.
var ErrNotFound = errors.New("visitor: record not found")

// CountFilter narrows a unified count query. Zero value counts everything.
type CountFilter struct {
	OnDate *time.Time
	Status string
	Needs  string
}

// Repository provides persistence for visitor check-in records.
type Repository interface {
	Get(ctx context.Context, id string) (*Visitor, error)
	// CreateCheckIn reserves the next sequence number for prefix and inserts
	// the record in a single transaction. The caller retries on duplicate-id
	// races, surfaced as unique violations or serialization conflicts.
	CreateCheckIn(ctx context.Context, prefix string, v Visitor) (*Visitor, error)
	SetCheckout(ctx context.Context, id string, at time.Time) (*Visitor, error)
	ListToday(ctx context.Context, day time.Time) ([]Visitor, error)
	ListAll(ctx context.Context) ([]Visitor, error)
	ListByCodes(ctx context.Context, codes []string, f Filters) ([]Visitor, error)
	CountByCodes(ctx context.Context, codes []string, f CountFilter) (int, error)
	ListUnlinkedDeliveries(ctx context.Context) ([]Visitor, error)
	Relink(ctx context.Context, id, from, bpCode string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a visitor repository over the visitor pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const visitorColumns = `visitor_id, visitor_date, visitor_name, visitor_from,
	bp_code, visitor_host, visitor_needs, visitor_amount, visitor_vehicle,
	plan_delivery_time, department, visitor_checkin, visitor_checkout`

func scanVisitor(row pgx.Row) (*Visitor, error) {
	var v Visitor
	err := row.Scan(
		&v.ID, &v.Date, &v.Name, &v.From,
		&v.BPCode, &v.Host, &v.Needs, &v.Amount, &v.Vehicle,
		&v.PlanDeliveryTime, &v.Department, &v.CheckIn, &v.CheckOut,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func collectVisitors(rows pgx.Rows) ([]Visitor, error) {
	defer rows.Close()
	var visitors []Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, err
		}
		visitors = append(visitors, *v)
	}
	return visitors, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (*Visitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM visitor WHERE visitor_id = $1`, visitorColumns)
	v, err := scanVisitor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// CreateCheckIn reads the highest existing id sharing (prefix, year) by
// lexicographic order on the fixed-width tail, increments it and inserts.
// Runs serializable so concurrent reservations conflict instead of
// silently duplicating.
func (r *repository) CreateCheckIn(ctx context.Context, prefix string, v Visitor) (*Visitor, error) {
	err := db.WithTx(ctx, r.pool, pgx.Serializable, func(tx pgx.Tx) error {
		var latest *string
		err := tx.QueryRow(ctx,
			`SELECT visitor_id FROM visitor WHERE visitor_id LIKE $1 || '%' ORDER BY visitor_id DESC LIMIT 1`,
			prefix,
		).Scan(&latest)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// Ceiling: past 9999 the %04d tail widens to five digits, which
		// sorts below "9999" in the max-read above, so one (prefix, year)
		// cannot advance beyond 10000. The yearly reset keeps desk volume
		// far under that.
		next := 1
		if latest != nil && len(*latest) > len(prefix) {
			tail, err := strconv.Atoi((*latest)[len(prefix):])
			if err != nil {
				return fmt.Errorf("visitor: malformed id %q: %w", *latest, err)
			}
			next = tail + 1
		}
		v.ID = fmt.Sprintf("%s%04d", prefix, next)

		_, err = tx.Exec(ctx, `
INSERT INTO visitor (visitor_id, visitor_date, visitor_name, visitor_from,
	bp_code, visitor_host, visitor_needs, visitor_amount, visitor_vehicle,
	plan_delivery_time, department, visitor_checkin, visitor_checkout)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL)`,
			v.ID, v.Date, v.Name, v.From,
			v.BPCode, v.Host, v.Needs, v.Amount, v.Vehicle,
			v.PlanDeliveryTime, v.Department, v.CheckIn,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repository) SetCheckout(ctx context.Context, id string, at time.Time) (*Visitor, error) {
	query := fmt.Sprintf(`UPDATE visitor SET visitor_checkout = $1 WHERE visitor_id = $2 RETURNING %s`, visitorColumns)
	v, err := scanVisitor(r.pool.QueryRow(ctx, query, at, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *repository) ListToday(ctx context.Context, day time.Time) ([]Visitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM visitor WHERE visitor_date = $1 ORDER BY visitor_checkin ASC`, visitorColumns)
	rows, err := r.pool.Query(ctx, query, day)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

func (r *repository) ListAll(ctx context.Context) ([]Visitor, error) {
	query := fmt.Sprintf(`SELECT %s FROM visitor`, visitorColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

// ListByCodes matches visitors against an entire unified code set: modern
// rows link via bp_code, legacy rows stored the raw code in visitor_from.
func (r *repository) ListByCodes(ctx context.Context, codes []string, f Filters) ([]Visitor, error) {
	conditions := []string{"(bp_code = ANY($1) OR visitor_from = ANY($1))"}
	args := []any{codes}
	argPos := 2

	if f.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("visitor_date >= $%d", argPos))
		args = append(args, *f.DateFrom)
		argPos++
	}
	if f.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("visitor_date <= $%d", argPos))
		args = append(args, *f.DateTo)
		argPos++
	}
	if f.Needs != "" {
		conditions = append(conditions, fmt.Sprintf("visitor_needs = $%d", argPos))
		args = append(args, f.Needs)
		argPos++
	}
	switch f.Status {
	case StatusCheckedIn:
		conditions = append(conditions, "visitor_checkin IS NOT NULL AND visitor_checkout IS NULL")
	case StatusCheckedOut:
		conditions = append(conditions, "visitor_checkout IS NOT NULL")
	}

	where := conditions[0]
	for _, c := range conditions[1:] {
		where += " AND " + c
	}

	query := fmt.Sprintf(`SELECT %s FROM visitor WHERE %s ORDER BY visitor_date DESC`, visitorColumns, where)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

func (r *repository) CountByCodes(ctx context.Context, codes []string, f CountFilter) (int, error) {
	where := "(bp_code = ANY($1) OR visitor_from = ANY($1))"
	args := []any{codes}
	argPos := 2

	if f.OnDate != nil {
		where += fmt.Sprintf(" AND visitor_date = $%d", argPos)
		args = append(args, *f.OnDate)
		argPos++
	}
	if f.Needs != "" {
		where += fmt.Sprintf(" AND visitor_needs = $%d", argPos)
		args = append(args, f.Needs)
		argPos++
	}
	switch f.Status {
	case StatusCheckedIn:
		where += " AND visitor_checkin IS NOT NULL AND visitor_checkout IS NULL"
	case StatusCheckedOut:
		where += " AND visitor_checkout IS NOT NULL"
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM visitor WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListUnlinkedDeliveries returns Delivery visitors whose bp_code was never
// resolved; candidates for the repair routine.
func (r *repository) ListUnlinkedDeliveries(ctx context.Context) ([]Visitor, error) {
	query := fmt.Sprintf(`
SELECT %s FROM visitor
WHERE visitor_needs = $1 AND visitor_from IS NOT NULL AND bp_code IS NULL`, visitorColumns)
	rows, err := r.pool.Query(ctx, query, NeedsDelivery)
	if err != nil {
		return nil, err
	}
	return collectVisitors(rows)
}

func (r *repository) Relink(ctx context.Context, id, from, bpCode string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE visitor SET visitor_from = $1, bp_code = $2 WHERE visitor_id = $3`,
		from, bpCode, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
