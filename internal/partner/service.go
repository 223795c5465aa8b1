package partner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/gatehouse-app/gatehouse/internal/platform/cache"
	"github.com/gatehouse-app/gatehouse/internal/shared"
)

// Service implements code unification and partner lookups on top of the
// repository. The resolver is a pure function of (input code, storage
// snapshot); nothing about the current family is cached in-process, since
// relationships change under the backfill operation.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService constructs the partner service. cache may be nil.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// Resolve expands one partner code into the complete set of codes belonging
// to the same logical partner, across both generations of the scheme.
// Empty or whitespace-only input resolves to the empty set, never an error.
//
// When a record carries both a legacy suffix and a disagreeing parent
// pointer, the suffix-derived base wins: resolution always pivots on
// BaseCode(input), matching rule 4 of the membership predicate.
func (s *Service) Resolve(ctx context.Context, raw string) ([]string, error) {
	code := Normalize(raw)
	if code == "" {
		return nil, nil
	}
	base := BaseCode(code)

	family, err := s.repo.FindUnified(ctx, code, base)
	if err != nil {
		return nil, fmt.Errorf("partner: resolve %q: %w", code, err)
	}

	seen := map[string]struct{}{code: {}, base: {}}
	for _, p := range family {
		seen[p.Code] = struct{}{}
	}
	codes := make([]string, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

// GetPartner fetches a single record by exact code after normalization.
func (s *Service) GetPartner(ctx context.Context, raw string) (*Partner, error) {
	code := Normalize(raw)
	if code == "" {
		return nil, ErrNotFound
	}
	return s.repo.FindByCode(ctx, code)
}

// GetUnified fetches the full family of records for a code in one pass.
// An empty family is an empty slice, not an error.
func (s *Service) GetUnified(ctx context.Context, raw string) ([]Partner, error) {
	code := Normalize(raw)
	if code == "" {
		return nil, nil
	}
	return s.repo.FindUnified(ctx, code, BaseCode(code))
}

// Search matches term case-insensitively against code or name. An empty term
// returns an unfiltered page capped at limit, ordered by name.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]Partner, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.Search(ctx, Normalize(term), limit)
}

// ActiveSuppliers lists Active partners under canonical codes only. The
// unfiltered dropdown payload is cached briefly; search results are not.
func (s *Service) ActiveSuppliers(ctx context.Context, term string, limit int) ([]SupplierOption, error) {
	if limit <= 0 {
		limit = 100
	}
	term = Normalize(term)

	var cacheKey string
	if term == "" && s.cache != nil {
		key, err := s.cache.BuildKey(ctx, "suppliers", "all", strconv.Itoa(limit))
		if err == nil {
			cacheKey = key
			var cached []SupplierOption
			if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
				return cached, nil
			} else if !errors.Is(err, cache.ErrMiss) {
				s.logger.Warn("supplier cache read", slog.Any("error", err))
			}
		}
	}

	partners, err := s.repo.SearchActiveSuppliers(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	options := make([]SupplierOption, 0, len(partners))
	for _, p := range partners {
		options = append(options, p.ToSupplierOption())
	}

	if cacheKey != "" {
		if err := s.cache.SetJSON(ctx, cacheKey, options); err != nil {
			s.logger.Warn("supplier cache write", slog.Any("error", err))
		}
	}
	return options, nil
}

// SupplierByCode fetches one supplier under its canonical code. Legacy
// aliases and inactive records are not suppliers.
func (s *Service) SupplierByCode(ctx context.Context, raw string) (*SupplierOption, error) {
	code := Normalize(raw)
	if code == "" || IsLegacy(code) {
		return nil, ErrNotFound
	}
	p, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, ErrNotFound
	}
	opt := p.ToSupplierOption()
	return &opt, nil
}

// ActiveSupplierName resolves a code to its display name if it refers to an
// active partner. Used by delivery check-ins to rewrite visitor_from.
func (s *Service) ActiveSupplierName(ctx context.Context, raw string) (string, bool, error) {
	code := Normalize(raw)
	if code == "" {
		return "", false, nil
	}
	p, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if !p.IsActive() {
		return "", false, nil
	}
	return p.Name, true, nil
}

// ListActive returns active partners.
func (s *Service) ListActive(ctx context.Context) ([]Partner, error) {
	return s.repo.ListActive(ctx)
}

// ListByType returns partners filtered by role.
func (s *Service) ListByType(ctx context.Context, role string) ([]Partner, error) {
	return s.repo.ListByType(ctx, role)
}

// ListAll returns one page of partners with pagination metadata.
func (s *Service) ListAll(ctx context.Context, perPage, page int) ([]Partner, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	partners, total, err := s.repo.ListAll(ctx, p.PerPage, p.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return partners, shared.NewPagination(p.Page, p.PerPage, total), nil
}

// Backfill runs the one-time parent-link maintenance operation and drops the
// supplier cache when anything changed.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	updated, err := s.repo.BackfillParentLinks(ctx)
	if err != nil {
		return 0, err
	}
	if updated > 0 && s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("cache bump after backfill", slog.Any("error", err))
		}
	}
	s.logger.Info("parent link backfill", slog.Int("updated", updated))
	return updated, nil
}

// Ping verifies the partner master connection by counting records.
func (s *Service) Ping(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
