package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested business partner is missing.
var ErrNotFound = errors.New("partner: business partner not found")

// Repository provides storage-backed lookups over the business_partner table.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Partner, error)
	// FindUnified fetches every record of the family of base in one pass,
	// pushing the OR-of-conditions into the query layer.
	FindUnified(ctx context.Context, code, base string) ([]Partner, error)
	Search(ctx context.Context, term string, limit int) ([]Partner, error)
	SearchActiveSuppliers(ctx context.Context, term string, limit int) ([]Partner, error)
	ListActive(ctx context.Context) ([]Partner, error)
	ListByType(ctx context.Context, role string) ([]Partner, error)
	ListAll(ctx context.Context, limit, offset int) ([]Partner, int, error)
	BackfillParentLinks(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a partner repository over the SCM pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const partnerColumns = `bp_code, parent_bp_code, bp_name, bp_status_desc,
	bp_currency, country, adr_line_1, adr_line_2, adr_line_3, adr_line_4,
	bp_phone, bp_fax, bp_role, bp_role_desc`

func scanPartner(row pgx.Row) (*Partner, error) {
	var p Partner
	err := row.Scan(
		&p.Code, &p.ParentCode, &p.Name, &p.StatusDesc,
		&p.Currency, &p.Country, &p.AdrLine1, &p.AdrLine2, &p.AdrLine3, &p.AdrLine4,
		&p.Phone, &p.Fax, &p.Role, &p.RoleDesc,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPartners(rows pgx.Rows) ([]Partner, error) {
	defer rows.Close()
	var partners []Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

func (r *repository) FindByCode(ctx context.Context, code string) (*Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM business_partner WHERE bp_code = $1`, partnerColumns)
	p, err := scanPartner(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// FindUnified applies the family membership predicate in a single query:
// the literal code, the base record, modern children pointing at the base,
// and legacy children matched by the suffix pattern.
func (r *repository) FindUnified(ctx context.Context, code, base string) ([]Partner, error) {
	query := fmt.Sprintf(`
SELECT %s FROM business_partner
WHERE bp_code = $1
   OR bp_code = $2
   OR parent_bp_code = $2
   OR bp_code ~ $3`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, code, base, FamilyPattern(base))
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

func (r *repository) Search(ctx context.Context, term string, limit int) ([]Partner, error) {
	if term == "" {
		query := fmt.Sprintf(`SELECT %s FROM business_partner ORDER BY bp_name ASC LIMIT $1`, partnerColumns)
		rows, err := r.pool.Query(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return collectPartners(rows)
	}
	query := fmt.Sprintf(`
SELECT %s FROM business_partner
WHERE bp_code ILIKE $1 OR bp_name ILIKE $1
ORDER BY bp_name ASC
LIMIT $2`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

// SearchActiveSuppliers filters to Active records and excludes legacy-suffixed
// codes outright: suppliers are always presented canonically, never under a
// legacy alias.
func (r *repository) SearchActiveSuppliers(ctx context.Context, term string, limit int) ([]Partner, error) {
	query := fmt.Sprintf(`
SELECT %s FROM business_partner
WHERE bp_status_desc = $1
  AND bp_code !~ '-[0-9]+$'
  AND ($2 = '' OR bp_code ILIKE $3 OR bp_name ILIKE $3)
ORDER BY bp_name ASC
LIMIT $4`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, statusActive, term, "%"+term+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

func (r *repository) ListActive(ctx context.Context) ([]Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM business_partner WHERE bp_status_desc = $1 ORDER BY bp_name ASC`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, statusActive)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

func (r *repository) ListByType(ctx context.Context, role string) ([]Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM business_partner WHERE bp_role = $1 ORDER BY bp_name ASC`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	return collectPartners(rows)
}

func (r *repository) ListAll(ctx context.Context, limit, offset int) ([]Partner, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM business_partner`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`SELECT %s FROM business_partner ORDER BY bp_code ASC LIMIT $1 OFFSET $2`, partnerColumns)
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	partners, err := collectPartners(rows)
	if err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

// BackfillParentLinks sets parent_bp_code = base for every legacy-suffixed
// record whose base exists as a standalone record and whose pointer does not
// already match. Set-based and idempotent: a second run updates zero rows.
func (r *repository) BackfillParentLinks(ctx context.Context) (int, error) {
	const query = `
UPDATE business_partner AS child
SET parent_bp_code = regexp_replace(child.bp_code, '-[0-9]+$', '')
WHERE child.bp_code ~ '-[0-9]+$'
  AND EXISTS (
      SELECT 1 FROM business_partner p
      WHERE p.bp_code = regexp_replace(child.bp_code, '-[0-9]+$', '')
  )
  AND child.parent_bp_code IS DISTINCT FROM regexp_replace(child.bp_code, '-[0-9]+$', '')`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("partner: backfill parent links: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM business_partner`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
