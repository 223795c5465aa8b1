package logistics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubPlanRepo struct {
	plans []DeliveryPlan
	day   time.Time
}

func (r *stubPlanRepo) ListForDate(ctx context.Context, day time.Time) ([]DeliveryPlan, error) {
	r.day = day
	return r.plans, nil
}

func strptr(s string) *string { return &s }

func plan(noDN, driver, plate, planTime, supplier string) DeliveryPlan {
	return DeliveryPlan{
		NoDN:             noDN,
		DriverName:       strptr(driver),
		PlatNumber:       strptr(plate),
		PlanDeliveryTime: strptr(planTime),
		SupplierName:     strptr(supplier),
		PlanDeliveryDate: "2025-03-01",
	}
}

func TestTodayDeliveriesCollapsesDuplicateTrucks(t *testing.T) {
	repo := &stubPlanRepo{plans: []DeliveryPlan{
		plan("DN-001", "Budi", "B 1234 CD", "08:00", "Acme Co"),
		// Same truck, second delivery note, casing and spacing jitter.
		plan("DN-002", "BUDI", "b 1234 cd", "08:00", "ACME CO "),
		plan("DN-003", "Sari", "B 5678 EF", "09:30", "Beta Ltd"),
		// Same driver, later slot: a distinct arrival.
		plan("DN-004", "Budi", "B 1234 CD", "13:00", "Acme Co"),
	}}
	svc := NewService(repo).WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)
	})

	got, err := svc.TodayDeliveries(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "DN-001", got[0].NoDN)
	require.Equal(t, "DN-003", got[1].NoDN)
	require.Equal(t, "DN-004", got[2].NoDN)
	require.Equal(t, time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC), repo.day)
}

func TestTodayDeliveriesNilFieldsDoNotCollide(t *testing.T) {
	missing := DeliveryPlan{NoDN: "DN-010", PlanDeliveryDate: "2025-03-01"}
	sparse := DeliveryPlan{
		NoDN:             "DN-011",
		DriverName:       strptr(""),
		PlatNumber:       strptr(" "),
		PlanDeliveryTime: strptr(""),
		PlanDeliveryDate: "2025-03-01",
	}
	repo := &stubPlanRepo{plans: []DeliveryPlan{missing, sparse}}
	svc := NewService(repo)

	got, err := svc.TodayDeliveries(context.Background())
	require.NoError(t, err)
	// Nil and blank signatures fold to the same key; only the first survives.
	require.Len(t, got, 1)
	require.Equal(t, "DN-010", got[0].NoDN)
}
