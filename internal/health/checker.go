package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/kosta-developer/DEVELOPER-Back/common/metrics"
)

const checkTimeout = 2 * time.Second

// Check probes one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Checker runs the registered dependency checks and records their outcome.
type Checker struct {
	checks  []Check
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewChecker(m *metrics.Metrics, logger *slog.Logger, checks ...Check) *Checker {
	return &Checker{
		checks:  checks,
		metrics: m,
		logger:  logger,
	}
}

// Report maps each dependency name to its ping error, nil when healthy.
type Report map[string]error

func (r Report) Healthy() bool {
	for _, err := range r {
		if err != nil {
			return false
		}
	}
	return true
}

func (c *Checker) Run(ctx context.Context) Report {
	report := make(Report, len(c.checks))
	for _, check := range c.checks {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		start := time.Now()
		err := check.Ping(checkCtx)
		cancel()

		if c.metrics != nil && c.metrics.Health != nil {
			c.metrics.Health.RecordDependencyCheck(ctx, check.Name, time.Since(start), err)
		}
		if err != nil {
			c.logger.WarnContext(ctx, "dependency check failed", "dependency", check.Name, "error", err)
		}
		report[check.Name] = err
	}
	return report
}
