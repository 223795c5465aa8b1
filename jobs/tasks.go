package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPartnerBackfill re-runs the parent-link backfill nightly so
	// partner-master feed updates get linked without operator action.
	TaskPartnerBackfill = "partner:backfill"
	// TaskVisitorRepair re-links historical Delivery visitors whose
	// visitor_from still holds a raw partner code.
	TaskVisitorRepair = "visitor:repair"
)

// NewPartnerBackfillTask constructs the backfill task. No payload.
func NewPartnerBackfillTask() *asynq.Task {
	return asynq.NewTask(TaskPartnerBackfill, nil)
}

// NewVisitorRepairTask constructs the repair task. No payload.
func NewVisitorRepairTask() *asynq.Task {
	return asynq.NewTask(TaskVisitorRepair, nil)
}

// PartnerBackfiller runs the parent-link maintenance operation.
type PartnerBackfiller interface {
	Backfill(ctx context.Context) (int, error)
}

// VisitorRepairer re-links unresolved delivery visitors.
type VisitorRepairer interface {
	RepairDeliveryLinks(ctx context.Context) (fixed, skipped int, err error)
}

// NewPartnerBackfillHandler returns the asynq handler for TaskPartnerBackfill.
func NewPartnerBackfillHandler(svc PartnerBackfiller, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		updated, err := svc.Backfill(ctx)
		if err != nil {
			logger.Error("partner backfill task", slog.Any("error", err))
			return err
		}
		logger.Info("partner backfill task done", slog.Int("updated", updated))
		return nil
	}
}

// NewVisitorRepairHandler returns the asynq handler for TaskVisitorRepair.
func NewVisitorRepairHandler(svc VisitorRepairer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		fixed, skipped, err := svc.RepairDeliveryLinks(ctx)
		if err != nil {
			logger.Error("visitor repair task", slog.Any("error", err))
			return err
		}
		logger.Info("visitor repair task done", slog.Int("fixed", fixed), slog.Int("skipped", skipped))
		return nil
	}
}
