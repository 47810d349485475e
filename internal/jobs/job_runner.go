package jobs

import (
	"fmt"
	"sort"
	"time"

	"partytab-backend/internal/config"
	"partytab-backend/internal/logger"
	"partytab-backend/internal/metrics"
	"partytab-backend/internal/repository"
	"partytab-backend/internal/service"
)

const (
	JobReconcileAcknowledgements = "reconcile-acknowledgements"
	JobSendConfirmationReminders = "send-confirmation-reminders"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	tabs     repository.TabRepository
	services *Services
	config   *config.Config
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Settlement service.SettlementService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(tabs repository.TabRepository, services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		tabs:     tabs,
		services: services,
		config:   cfg,
		metrics:  m,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.JobRun(jobName, err)
	}()

	start := jr.now()
	logger.Info("Starting job", "job", jobName)
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration", time.Since(start))
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
	return nil
}

func (jr *JobRunner) registry() map[string]func() error {
	return map[string]func() error{
		JobReconcileAcknowledgements: jr.RunReconcileAcknowledgements,
		JobSendConfirmationReminders: jr.RunSendConfirmationReminders,
	}
}

// JobNames lists the jobs that can be run by name.
func (jr *JobRunner) JobNames() []string {
	names := make([]string, 0, 2)
	for name := range jr.registry() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunJob runs one job by name, or every job for "all".
func (jr *JobRunner) RunJob(name string) error {
	if name == "all" {
		return jr.RunAllJobs()
	}
	job, ok := jr.registry()[name]
	if !ok {
		return fmt.Errorf("unknown job %q (available: %v, all)", name, jr.JobNames())
	}
	return job()
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() error {
	var firstErr error
	for _, name := range jr.JobNames() {
		if err := jr.registry()[name](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
