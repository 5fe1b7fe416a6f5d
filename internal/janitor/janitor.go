// Package janitor deletes expired sessions and reset requests on a cron
// schedule. Expired rows are already ignored by every read, so the janitor
// only reclaims space.
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/ErlanBelekov/admin-console/internal/repository"
	"github.com/robfig/cron/v3"
)

type Janitor struct {
	purgers  map[string]repository.Purger
	kinds    []string
	schedule cron.Schedule
	logger   *slog.Logger
	now      func() time.Time
}

// New parses spec as a standard five-field cron expression. purgers is keyed
// by the record kind used in logs and metrics.
func New(spec string, purgers map[string]repository.Purger, logger *slog.Logger) (*Janitor, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse purge schedule %q: %w", spec, err)
	}

	kinds := make([]string, 0, len(purgers))
	for k := range purgers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	return &Janitor{
		purgers:  purgers,
		kinds:    kinds,
		schedule: sched,
		logger:   logger.With("component", "janitor"),
		now:      time.Now,
	}, nil
}

// Next returns the first run strictly after t.
func (j *Janitor) Next(t time.Time) time.Time {
	return j.schedule.Next(t)
}

// Start runs a purge at every scheduled time until ctx is done.
func (j *Janitor) Start(ctx context.Context) {
	j.logger.Info("janitor started", "kinds", j.kinds, "next_run", j.Next(j.now()))

	for {
		wait := time.Until(j.Next(j.now()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			j.logger.Info("janitor shut down")
			return
		case <-timer.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce purges every kind once. A failing purger does not stop the others.
// Returns the total number of records removed.
func (j *Janitor) RunOnce(ctx context.Context) int64 {
	start := time.Now()
	defer func() {
		metrics.PurgeCycleDuration.Observe(time.Since(start).Seconds())
	}()

	cutoff := j.now()
	var total int64
	for _, kind := range j.kinds {
		n, err := j.purgers[kind].PurgeExpired(ctx, cutoff)
		if err != nil {
			j.logger.ErrorContext(ctx, "purge expired", "kind", kind, "error", err)
			continue
		}
		if n > 0 {
			metrics.PurgedTotal.WithLabelValues(kind).Add(float64(n))
			j.logger.InfoContext(ctx, "purged expired records", "kind", kind, "count", n)
		}
		total += n
	}
	return total
}
