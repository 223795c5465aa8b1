package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gatehouse-app/gatehouse/internal/platform/db"
)

// PartnerDirectory resolves partner codes for delivery check-ins. Implemented
// by the partner service; declared here to keep the dependency one-way.
type PartnerDirectory interface {
	ActiveSupplierName(ctx context.Context, code string) (string, bool, error)
}

// sequenceRetries bounds the duplicate-id retry loop. Two concurrent
// check-ins sharing a prefix collide at most once per attempt, so a small
// budget is plenty.
const sequenceRetries = 3

// Service implements check-in, checkout and unified aggregation over
// visitor records.
type Service struct {
	repo     Repository
	partners PartnerDirectory
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the visitor service.
func NewService(repo Repository, partners PartnerDirectory, logger *slog.Logger) *Service {
	return &Service{repo: repo, partners: partners, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// today is the clock's calendar day at midnight in the clock's zone.
// Truncating the absolute time would shift early-morning check-ins onto
// the previous UTC day.
func (s *Service) today() time.Time {
	now := s.now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// CheckIn creates a visitor record with a freshly reserved id. For Delivery
// visitors whose visitor_from resolves to an active partner code, the code is
// stored durably in bp_code and visitor_from is rewritten to the partner's
// display name so the printed receipt stays human-readable.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest) (*Visitor, error) {
	now := s.now()
	prefix := NeedsPrefix(req.VisitorNeeds) + now.Format("06")

	from := strings.TrimSpace(req.VisitorFrom)
	var fromPtr, bpCode *string
	if from != "" {
		fromPtr = &from
	}
	if req.VisitorNeeds == NeedsDelivery && from != "" {
		name, ok, err := s.partners.ActiveSupplierName(ctx, from)
		if err != nil {
			return nil, fmt.Errorf("visitor: resolve supplier %q: %w", from, err)
		}
		if ok {
			code := strings.ToUpper(from)
			bpCode = &code
			fromPtr = &name
		}
	}

	v := Visitor{
		Date:       s.today(),
		Name:       req.VisitorName,
		From:       fromPtr,
		BPCode:     bpCode,
		Host:       req.VisitorHost,
		Needs:      req.VisitorNeeds,
		Amount:     req.VisitorAmount,
		Department: req.Department,
		CheckIn:    now,
	}
	if req.VisitorVehicle != "" {
		vehicle := req.VisitorVehicle
		v.Vehicle = &vehicle
	}
	if req.PlanDeliveryTime != "" {
		planned := req.PlanDeliveryTime
		v.PlanDeliveryTime = &planned
	}

	var created *Visitor
	var err error
	for attempt := 0; attempt < sequenceRetries; attempt++ {
		created, err = s.repo.CreateCheckIn(ctx, prefix, v)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err) && !db.IsSerializationFailure(err) {
			return nil, fmt.Errorf("visitor: check in: %w", err)
		}
		s.logger.Warn("check-in id conflict, retrying",
			slog.String("prefix", prefix), slog.Int("attempt", attempt+1))
	}
	return nil, fmt.Errorf("visitor: check in: %w", err)
}

// CheckOut stamps the checkout time. Re-checkout overwrites the previous
// stamp; the desk uses this to correct a premature checkout.
func (s *Service) CheckOut(ctx context.Context, id string) (*Visitor, error) {
	return s.repo.SetCheckout(ctx, id, s.now())
}

// Get fetches a single record for receipt printing.
func (s *Service) Get(ctx context.Context, id string) (*Visitor, error) {
	return s.repo.Get(ctx, id)
}

// ListToday returns today's visitors ordered by check-in time.
func (s *Service) ListToday(ctx context.Context) ([]Visitor, error) {
	return s.repo.ListToday(ctx, s.today())
}

// ListAll returns every record without ordering.
func (s *Service) ListAll(ctx context.Context) ([]Visitor, error) {
	return s.repo.ListAll(ctx)
}

// ListUnified filters visitors belonging to a unified code set. An empty
// set short-circuits to an empty list without touching storage.
func (s *Service) ListUnified(ctx context.Context, codes []string, f Filters) ([]Visitor, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return s.repo.ListByCodes(ctx, codes, f)
}

// DashboardCounts aggregates the seven dashboard figures over a unified
// code set. The counts are independent queries and run concurrently. An
// empty set returns all zeros without touching storage.
func (s *Service) DashboardCounts(ctx context.Context, codes []string) (Counts, error) {
	var counts Counts
	if len(codes) == 0 {
		return counts, nil
	}

	today := s.today()
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, f CountFilter) {
		g.Go(func() error {
			n, err := s.repo.CountByCodes(gctx, codes, f)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}

	count(&counts.Total, CountFilter{})
	count(&counts.Today, CountFilter{OnDate: &today})
	count(&counts.CheckedIn, CountFilter{Status: StatusCheckedIn})
	count(&counts.CheckedOut, CountFilter{Status: StatusCheckedOut})
	count(&counts.Meeting, CountFilter{Needs: NeedsMeeting})
	count(&counts.Delivery, CountFilter{Needs: NeedsDelivery})
	count(&counts.Contractor, CountFilter{Needs: NeedsContractor})

	if err := g.Wait(); err != nil {
		return Counts{}, fmt.Errorf("visitor: dashboard counts: %w", err)
	}
	return counts, nil
}

// looksLikeCode heuristically decides whether a stored visitor_from value is
// a raw partner code rather than a display name.
func looksLikeCode(from string) bool {
	return len(from) <= 10 &&
		from == strings.ToUpper(from) &&
		!strings.Contains(from, " ")
}

// RepairDeliveryLinks re-links historical Delivery visitors created before
// bp_code existed: rows whose visitor_from still holds a raw partner code
// get bp_code set and visitor_from rewritten to the partner name. Safe to
// re-run; already-linked rows are never candidates.
func (s *Service) RepairDeliveryLinks(ctx context.Context) (fixed, skipped int, err error) {
	candidates, err := s.repo.ListUnlinkedDeliveries(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("visitor: list unlinked deliveries: %w", err)
	}

	for _, v := range candidates {
		from := ""
		if v.From != nil {
			from = *v.From
		}
		if !looksLikeCode(from) {
			skipped++
			continue
		}
		name, ok, err := s.partners.ActiveSupplierName(ctx, from)
		if err != nil {
			return fixed, skipped, fmt.Errorf("visitor: repair %s: %w", v.ID, err)
		}
		if !ok {
			s.logger.Warn("repair: supplier not found", slog.String("visitor_id", v.ID), slog.String("bp_code", from))
			skipped++
			continue
		}
		if err := s.repo.Relink(ctx, v.ID, name, from); err != nil {
			return fixed, skipped, fmt.Errorf("visitor: relink %s: %w", v.ID, err)
		}
		fixed++
	}
	return fixed, skipped, nil
}
