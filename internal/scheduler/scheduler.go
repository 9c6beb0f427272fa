// Package scheduler periodically re-simulates every stored property and
// writes the sensitivity tables to a CSV report.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/internal/store"
	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/output"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reportTimeLayout = "20060102-150405"
	runTimeout       = 2 * time.Minute
)

// Config defines when and where reports are written. An empty schedule
// disables the cron job; RunOnce still works.
type Config struct {
	Schedule  string `yaml:"schedule"`
	Directory string `yaml:"directory"`
}

// Scheduler owns the cron instance that drives report generation.
type Scheduler struct {
	cron   *cron.Cron
	store  store.Store
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// New validates the schedule and registers the report job.
func New(logger *zap.Logger, st store.Store, cfg Config) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if st == nil {
		return nil, fmt.Errorf("scheduler requires a store")
	}
	dir := cfg.Directory
	if dir == "" {
		dir = constants.DefaultReportDirectory
	}

	s := &Scheduler{
		cron:   cron.New(),
		store:  st,
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}

	schedule := strings.TrimSpace(cfg.Schedule)
	if schedule == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(schedule, s.runJob); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	logger.Info("report job scheduled",
		zap.String("op", "scheduler.New"),
		zap.String("schedule", schedule),
		zap.String("directory", dir),
	)
	return s, nil
}

// Enabled reports whether a cron job is registered.
func (s *Scheduler) Enabled() bool {
	return len(s.cron.Entries()) > 0
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop. The returned context is done once any running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled report failed",
			zap.String("op", "scheduler.runJob"),
			zap.Error(err),
		)
	}
}

// RunOnce simulates every stored property and writes one report. Snapshots
// that fail to decode or validate are logged and skipped. It returns the
// path of the written report.
func (s *Scheduler) RunOnce(ctx context.Context) (string, error) {
	snapshots, err := s.store.LoadAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load stored properties: %w", err)
	}

	results := make([]forecast.Forecast, 0, len(snapshots))
	for _, snap := range snapshots {
		property, err := config.PropertyFromSnapshot(snap)
		if err != nil {
			s.logger.Warn("skipping undecodable property",
				zap.String("op", "scheduler.RunOnce"),
				zap.String("property", snap.Name()),
				zap.Error(err),
			)
			continue
		}
		result, err := forecast.FromSnapshotProperty(s.logger, property, forecast.Options{})
		if err != nil {
			s.logger.Warn("skipping invalid property",
				zap.String("op", "scheduler.RunOnce"),
				zap.String("property", property.Name),
				zap.Error(err),
			)
			continue
		}
		results = append(results, result)
	}

	path, err := s.write(results)
	if err != nil {
		return "", err
	}
	s.logger.Info("report written",
		zap.String("op", "scheduler.RunOnce"),
		zap.String("path", path),
		zap.Int("properties", len(results)),
		zap.Int("skipped", len(snapshots)-len(results)),
	)
	return path, nil
}

func (s *Scheduler) write(results []forecast.Forecast) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("report-%s.csv", s.now().Format(reportTimeLayout)))

	tmp, err := os.CreateTemp(s.dir, "report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := output.CsvFormat(tmp, results); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("finalize report: %w", err)
	}
	return path, nil
}
