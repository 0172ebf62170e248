package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/shankarelec/stocktrack/internal/config"
	"github.com/shankarelec/stocktrack/internal/export/sheets"
	"github.com/shankarelec/stocktrack/internal/service/stock"
	"github.com/shankarelec/stocktrack/internal/service/views"
	"github.com/shankarelec/stocktrack/pkg/clients/notify"
)

// Scheduler manages the recurring export and overdue-stock jobs. Exporter
// and notifier are optional; a job whose collaborator is absent is simply
// not scheduled.
type Scheduler struct {
	cron      *cron.Cron
	store     *stock.Store
	projector *views.Projector
	exporter  sheets.Exporter
	notifier  notify.Client
	cfg       config.ReportingConfig
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the reporting
// timezone.
func NewScheduler(cfg config.ReportingConfig, loc *time.Location, store *stock.Store, projector *views.Projector, exporter sheets.Exporter, notifier notify.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:      c,
		store:     store,
		projector: projector,
		exporter:  exporter,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start registers and starts the scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportCronSchedule, s.exportWorkbook); err != nil {
			s.logger.Error("failed to schedule workbook export", zap.Error(err))
		}
	}

	if s.notifier != nil {
		if _, err := s.cron.AddFunc(s.cfg.OverdueCronSchedule, s.scanOverdue); err != nil {
			s.logger.Error("failed to schedule overdue scan", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) exportWorkbook() {
	s.logger.Info("running scheduled workbook export")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stockViews := s.projector.Project(s.store.Snapshot())
	if err := s.exporter.ExportWorkbook(ctx, stockViews); err != nil {
		s.logger.Error("scheduled export failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled export completed")
}

func (s *Scheduler) scanOverdue() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	current := s.projector.Project(s.store.Snapshot()).Current

	var overdue int
	for _, unit := range current {
		if s.projector.IsOverdue(unit) {
			overdue++
		}
	}
	if overdue == 0 {
		return
	}

	text := fmt.Sprintf("%d unit(s) in stock over %d days. Consider returning them to the supplier.", overdue, s.cfg.OverdueDays)
	if err := s.notifier.SendAlert(ctx, text); err != nil {
		s.logger.Error("failed to send overdue alert", zap.Error(err))
		return
	}
	s.logger.Info("overdue alert sent", zap.Int("units", overdue))
}
