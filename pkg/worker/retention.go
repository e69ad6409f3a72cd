package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/repository"
)

// RetentionWorker prunes audit logs and published outbox rows older than
// their retention windows.
type RetentionWorker struct {
	audits          repository.AuditRepository
	outbox          repository.OutboxRepository
	auditRetention  time.Duration
	outboxRetention time.Duration
	interval        time.Duration
	now             func() time.Time
}

func NewRetentionWorker(audits repository.AuditRepository, outbox repository.OutboxRepository,
	auditRetentionDays int, outboxRetention, interval time.Duration) *RetentionWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RetentionWorker{
		audits:          audits,
		outbox:          outbox,
		auditRetention:  time.Duration(auditRetentionDays) * 24 * time.Hour,
		outboxRetention: outboxRetention,
		interval:        interval,
		now:             time.Now,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce deletes expired rows. A zero retention disables that side.
func (w *RetentionWorker) RunOnce(ctx context.Context) {
	now := w.now()

	if w.auditRetention > 0 {
		n, err := w.audits.Cleanup(ctx, now.Add(-w.auditRetention))
		if err != nil {
			log.Error().Err(err).Msg("audit log cleanup failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Msg("pruned audit logs")
		}
	}

	if w.outboxRetention > 0 {
		n, err := w.outbox.DeleteProcessedBefore(ctx, now.Add(-w.outboxRetention))
		if err != nil {
			log.Error().Err(err).Msg("outbox cleanup failed")
		} else if n > 0 {
			log.Info().Int64("deleted", n).Msg("pruned processed outbox events")
		}
	}
}
