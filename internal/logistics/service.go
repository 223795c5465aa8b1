package logistics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Service deduplicates the delivery schedule for the gate display. The SCM
// feed repeats a truck once per delivery note; the gate only cares about
// distinct truck arrivals.
type Service struct {
	repo   Repository
	folder cases.Caser
	now    func() time.Time
}

// NewService constructs the logistics service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, folder: cases.Fold(), now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) fold(v *string) string {
	if v == nil {
		return ""
	}
	return s.folder.String(strings.TrimSpace(*v))
}

// dedupKey is the delivery signature: date, time, and case-folded driver,
// plate and supplier name.
func (s *Service) dedupKey(p DeliveryPlan) string {
	planTime := ""
	if p.PlanDeliveryTime != nil {
		planTime = *p.PlanDeliveryTime
	}
	return strings.Join([]string{
		p.PlanDeliveryDate,
		planTime,
		s.fold(p.DriverName),
		s.fold(p.PlatNumber),
		s.fold(p.SupplierName),
	}, "|")
}

// TodayDeliveries returns today's planned deliveries with duplicate truck
// entries collapsed, preserving the time-ascending feed order.
func (s *Service) TodayDeliveries(ctx context.Context) ([]DeliveryPlan, error) {
	plans, err := s.repo.ListForDate(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("logistics: list deliveries: %w", err)
	}

	seen := make(map[string]struct{}, len(plans))
	unique := make([]DeliveryPlan, 0, len(plans))
	for _, p := range plans {
		key := s.dedupKey(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}
	return unique, nil
}
