package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"

	"github.com/alferrante/tinykind/pkg/logger"
)

// Start launches the scheduled snapshot sweep when backups are enabled and
// a cron expression is usable. Returns a cancel func; callers get a no-op
// cancel when the scheduler is not running.
func (m *Manager) Start(ctx context.Context, cronExpr string) (context.CancelFunc, error) {
	if !m.opts.Enabled {
		logger.Log.Info("backup_scheduler_disabled")
		return func() {}, nil
	}
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Log.Error("backup_invalid_cron", zap.String("cron", cronExpr))
		return nil, fmt.Errorf("invalid backup cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go m.runScheduler(ctx2, cronExpr)
	logger.Log.Info("backup_scheduler_started", zap.String("cron", cronExpr), zap.String("dir", m.opts.Dir))
	return cancel, nil
}

// runScheduler computes the next cron tick and sleeps until it, snapshotting
// on each wake. Scheduled snapshots are best-effort like write-triggered
// ones.
func (m *Manager) runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("backup_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Log.Error("backup_nexttick_failed", zap.String("cron", cronExpr), zap.Error(err))
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			if _, _, err := m.ManualSnapshot(); err != nil {
				logger.Log.Warn("backup_scheduled_snapshot_failed", zap.Error(err))
			}
		case <-ctx.Done():
			logger.Log.Info("backup_scheduler_stopping")
			return
		}
	}
}
