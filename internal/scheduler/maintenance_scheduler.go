package scheduler

import (
	"context"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// reconcileTimeout bounds one scheduled reconcile run.
const reconcileTimeout = 5 * time.Minute

// Reconciler is the part of the rating service the scheduler drives.
type Reconciler interface {
	Reconcile(ctx context.Context) (*service.ReconcileReport, error)
}

// Cleanup is a named housekeeping task returning how many entries it removed.
type Cleanup struct {
	Name string
	Run  func() int
}

type Options struct {
	ReconcileSpec string
	CleanupSpec   string
}

// MaintenanceScheduler runs the reconcile job and in-memory cleanups on cron specs.
type MaintenanceScheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	cleanups   []Cleanup
	opts       Options
}

func NewMaintenanceScheduler(reconciler Reconciler, opts Options, cleanups ...Cleanup) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		reconciler: reconciler,
		cleanups:   cleanups,
		opts:       opts,
	}
}

func (s *MaintenanceScheduler) Start() error {
	if s.opts.ReconcileSpec != "" {
		if _, err := s.cron.AddFunc(s.opts.ReconcileSpec, s.runReconcile); err != nil {
			logger.Error("Failed to add cron job for reconcile", err, map[string]interface{}{
				"spec": s.opts.ReconcileSpec,
			})
			return err
		}
	}
	if s.opts.CleanupSpec != "" && len(s.cleanups) > 0 {
		if _, err := s.cron.AddFunc(s.opts.CleanupSpec, s.runCleanups); err != nil {
			logger.Error("Failed to add cron job for cleanup", err, map[string]interface{}{
				"spec": s.opts.CleanupSpec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"reconcile": s.opts.ReconcileSpec,
		"cleanup":   s.opts.CleanupSpec,
	})
	return nil
}

func (s *MaintenanceScheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	logger.Info("Starting scheduled reconcile")
	// the rating service logs and counts the outcome
	_, _ = s.reconciler.Reconcile(ctx)
}

func (s *MaintenanceScheduler) runCleanups() {
	for _, c := range s.cleanups {
		if removed := c.Run(); removed > 0 {
			logger.Debug("Cleanup removed entries", map[string]interface{}{
				"task":    c.Name,
				"removed": removed,
			})
		}
	}
}

// Stop waits for running jobs to finish.
func (s *MaintenanceScheduler) Stop() {
	logger.Info("Stopping maintenance scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Maintenance scheduler stopped")
}
