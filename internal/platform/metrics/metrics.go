package metrics

import (
	"sync/atomic"
	"time"
)

// Collector keeps cheap in-process counters for the HTTP surface and the
// scheduled leave jobs. It is not a metrics backend; the snapshot endpoint
// exists for quick operational checks.
type Collector struct {
	requestsTotal   atomic.Uint64
	clientErrors    atomic.Uint64
	serverErrors    atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	accrualRuns  atomic.Uint64
	accrualFails atomic.Uint64
	yearEndRuns  atomic.Uint64
	yearEndFails atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordRequest(status int, duration time.Duration) {
	c.requestsTotal.Add(1)
	switch {
	case status == 429:
		c.rateLimited.Add(1)
		c.clientErrors.Add(1)
	case status >= 500:
		c.serverErrors.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordAccrualRun(failed bool) {
	c.accrualRuns.Add(1)
	if failed {
		c.accrualFails.Add(1)
	}
}

func (c *Collector) RecordYearEndRun(failed bool) {
	c.yearEndRuns.Add(1)
	if failed {
		c.yearEndFails.Add(1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := c.requestsTotal.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":     total,
		"clientErrorsTotal": c.clientErrors.Load(),
		"serverErrorsTotal": c.serverErrors.Load(),
		"rateLimitedTotal":  c.rateLimited.Load(),
		"avgDurationMs":     avg,
		"accrualRunsTotal":  c.accrualRuns.Load(),
		"accrualRunsFailed": c.accrualFails.Load(),
		"yearEndRunsTotal":  c.yearEndRuns.Load(),
		"yearEndRunsFailed": c.yearEndFails.Load(),
	}
}
