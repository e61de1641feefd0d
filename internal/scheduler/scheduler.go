package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchlog/internal/config"
	"github.com/mamadbah2/hatchlog/internal/service/export"
)

const (
	dueCheckTimeout = 2 * time.Minute
	exportTimeout   = 5 * time.Minute
)

// Sweeper runs the lifecycle transition and due-today alerts for all users.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Exporter mirrors records to the spreadsheet.
type Exporter interface {
	Run(ctx context.Context) (export.Result, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	sweeper  Sweeper
	exporter Exporter
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. exporter may be nil when the
// spreadsheet export is disabled.
func NewScheduler(cfg config.SchedulerConfig, sweeper Sweeper, exporter Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	cronLogger := zapCronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(cfg.Location()),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		sweeper:  sweeper,
		exporter: exporter,
		logger:   logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler",
		zap.String("due_check", s.cfg.DueCheckSchedule),
		zap.String("export", s.cfg.ExportSchedule),
		zap.String("timezone", s.cfg.Location().String()))

	if _, err := s.cron.AddFunc(s.cfg.DueCheckSchedule, s.RunDueCheck); err != nil {
		return fmt.Errorf("schedule due check %q: %w", s.cfg.DueCheckSchedule, err)
	}
	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportSchedule, s.RunExport); err != nil {
			return fmt.Errorf("schedule export %q: %w", s.cfg.ExportSchedule, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunDueCheck completes due batches and raises today's alerts.
func (s *Scheduler) RunDueCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), dueCheckTimeout)
	defer cancel()

	if err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("due check failed", zap.Error(err))
		return
	}
	s.logger.Debug("due check finished")
}

// RunExport writes the daily spreadsheet export.
func (s *Scheduler) RunExport() {
	if s.exporter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()

	res, err := s.exporter.Run(ctx)
	if err != nil {
		s.logger.Error("export failed", zap.Error(err), zap.Int("users_exported", res.Users))
		return
	}
	s.logger.Info("export finished", zap.Int("users", res.Users))
}

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct {
	logger *zap.Logger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
