package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairycoop/internal/config"
	"github.com/mamadbah2/dairycoop/internal/domain/calendar"
	"github.com/mamadbah2/dairycoop/internal/domain/models"
	"github.com/mamadbah2/dairycoop/internal/service/reporting"
)

const jobTimeout = 2 * time.Minute

// ReportPublisher builds, stores and exports the daily report.
type ReportPublisher interface {
	PublishDailyReport(ctx context.Context, date time.Time) (models.DailyReport, error)
}

// Reconciler recomputes the cached inventory from the fact history.
type Reconciler interface {
	Reconcile(ctx context.Context) (models.InventorySnapshot, error)
}

// Notifier pushes a text message to a recipient.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reports  ReportPublisher
	ledger   Reconciler
	notifier Notifier
	cfg      config.Config
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler creates a new scheduler instance. Jobs fire in the cooperative timezone.
// notifier may be nil, in which case reports are stored but not sent.
func NewScheduler(cfg config.Config, reports ReportPublisher, ledger Reconciler, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc := cfg.Location()

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reports:  reports,
		ledger:   ledger,
		notifier: notifier,
		cfg:      cfg,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler. A malformed cron expression fails
// before anything runs.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("report_schedule", s.cfg.Reporting.CronSchedule),
		zap.String("reconcile_schedule", s.cfg.Reporting.ReconcileSchedule),
		zap.String("timezone", s.loc.String()))

	if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Reporting.ReconcileSchedule, s.runReconcile); err != nil {
		return fmt.Errorf("schedule inventory reconcile: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.SendDailyReport(ctx); err != nil {
		s.logger.Error("daily report job failed", zap.Error(err))
	}
}

// SendDailyReport publishes today's report and sends it to the manager when one is configured.
func (s *Scheduler) SendDailyReport(ctx context.Context) error {
	today := calendar.Today(s.now(), s.loc)
	s.logger.Info("generating daily report", zap.String("date", calendar.Format(today)))

	report, err := s.reports.PublishDailyReport(ctx, today)
	if err != nil {
		return fmt.Errorf("publish daily report: %w", err)
	}

	if s.notifier == nil || s.cfg.WhatsApp.ManagerID == "" {
		s.logger.Debug("no manager configured, daily report not sent")
		return nil
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ManagerID,
		Message: reporting.FormatDailyReport(report),
	}

	if err := s.notifier.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}

	s.logger.Info("daily report sent successfully")
	return nil
}

func (s *Scheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	snapshot, err := s.ledger.Reconcile(ctx)
	if err != nil {
		s.logger.Error("inventory reconcile failed", zap.Error(err))
		return
	}

	s.logger.Info("inventory reconciled", zap.Float64("current_stock", snapshot.CurrentStock))
}
