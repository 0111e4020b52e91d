// Package state owns the dashboard's application state: the current
// analytics snapshot and the refresh lifecycle around it. Aggregation
// itself is pure (internal/analytics); this controller decides when it
// runs and which result wins.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/analytics"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/db"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/logger"
	"github.com/przemyslawwywigaczcyfrowe/sylius-toolbox-dashboard/internal/models"
)

var tracer = otel.Tracer("toolbox-dashboard/state")

// ErrNoSnapshot is returned by reads before the first successful refresh.
var ErrNoSnapshot = errors.New("no snapshot computed yet")

// DefaultLiveInterval is the polling period of the live view.
const DefaultLiveInterval = 30 * time.Second

// EventSource fetches event records for a time window. *db.DB satisfies
// it; tests substitute fakes.
type EventSource interface {
	FetchEvents(ctx context.Context, filter db.EventFilter) ([]models.Event, error)
}

// Options configure a Controller.
type Options struct {
	// Location is the zone used for day bucketing and time patterns.
	// Nil means UTC.
	Location *time.Location
	// FetchLimit caps one fetch; 0 means db.MaxFetchEvents.
	FetchLimit int
	// LiveInterval overrides the polling period; 0 means the default.
	LiveInterval time.Duration
}

// Controller serializes snapshot replacement. Each fetch is numbered
// when it starts; a result is applied only if no later-numbered fetch
// has been applied already, so concurrent refreshes (manual click racing
// the live poller) resolve to an explicit latest-wins instead of
// whichever response happens to arrive last.
type Controller struct {
	source       EventSource
	loc          *time.Location
	fetchLimit   int
	liveInterval time.Duration

	nextSeq atomic.Uint64

	mu         sync.RWMutex
	snap       *analytics.Snapshot
	rangeDays  int
	appliedSeq uint64

	liveMu     sync.Mutex
	liveCancel context.CancelFunc
}

// NewController creates a controller with no snapshot yet.
func NewController(source EventSource, opts Options) *Controller {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	interval := opts.LiveInterval
	if interval <= 0 {
		interval = DefaultLiveInterval
	}
	return &Controller{
		source:       source,
		loc:          loc,
		fetchLimit:   opts.FetchLimit,
		liveInterval: interval,
	}
}

// Refresh fetches the event window and recomputes every aggregate.
// rangeDays limits the window to the last N days; 0 means all time. On
// fetch failure the previous snapshot stays in place and the error is
// returned for the caller to surface.
func (c *Controller) Refresh(ctx context.Context, rangeDays int) (*analytics.Snapshot, error) {
	seq := c.nextSeq.Add(1)

	ctx, span := tracer.Start(ctx, "state.refresh",
		trace.WithAttributes(
			attribute.Int64("refresh.seq", int64(seq)),
			attribute.Int("refresh.range_days", rangeDays),
		))
	defer span.End()

	filter := db.EventFilter{Limit: c.fetchLimit}
	if rangeDays > 0 {
		filter.Since = time.Now().In(c.loc).AddDate(0, 0, -rangeDays)
	}

	events, err := c.source.FetchEvents(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("refresh: %w", err)
	}

	snap := analytics.Compute(events, c.loc)

	c.mu.Lock()
	applied := seq > c.appliedSeq
	if applied {
		c.snap = snap
		c.rangeDays = rangeDays
		c.appliedSeq = seq
	}
	current := c.snap
	c.mu.Unlock()

	if !applied {
		logger.Info("refresh superseded by newer fetch", "seq", seq)
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))
	return current, nil
}

// Snapshot returns the current snapshot, or ErrNoSnapshot before the
// first successful refresh.
func (c *Controller) Snapshot() (*analytics.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, ErrNoSnapshot
	}
	return c.snap, nil
}

// RangeDays returns the date-range length of the current snapshot; 0
// means all time.
func (c *Controller) RangeDays() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rangeDays
}

// ROI projects ROI figures from the current snapshot. The snapshot's
// own date range fills params.RangeDays.
func (c *Controller) ROI(params analytics.ROIParams) (analytics.ROIReport, error) {
	c.mu.RLock()
	snap := c.snap
	params.RangeDays = c.rangeDays
	c.mu.RUnlock()
	if snap == nil {
		return analytics.ROIReport{}, ErrNoSnapshot
	}
	return analytics.ComputeROI(snap.TotalTimeSavedMinutes, snap.Daily, snap.Tools, params), nil
}

// UserDetail returns the drill-down view for one user of the current
// snapshot, matched by email key.
func (c *Controller) UserDetail(email string) (analytics.UserDetail, error) {
	snap, err := c.Snapshot()
	if err != nil {
		return analytics.UserDetail{}, err
	}
	for i := range snap.Users {
		if snap.Users[i].Email == email {
			return analytics.BuildUserDetail(snap.Users[i], c.loc), nil
		}
	}
	return analytics.UserDetail{}, fmt.Errorf("user %q not in current snapshot", email)
}

// StartLive begins the 30-second polling loop, replacing any previous
// one. The loop reuses the current range and stops when ctx is done or
// StopLive is called. In-flight fetches are not aborted; a stale result
// simply loses by sequence number.
func (c *Controller) StartLive(ctx context.Context) {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()

	if c.liveCancel != nil {
		c.liveCancel()
	}
	liveCtx, cancel := context.WithCancel(ctx)
	c.liveCancel = cancel

	go func() {
		ticker := time.NewTicker(c.liveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-liveCtx.Done():
				return
			case <-ticker.C:
				if _, err := c.Refresh(liveCtx, c.RangeDays()); err != nil {
					logger.Warn("live refresh failed", "error", err)
				}
			}
		}
	}()
	logger.Info("live refresh started", "interval", c.liveInterval)
}

// StopLive cancels the polling loop if one is running.
func (c *Controller) StopLive() {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	if c.liveCancel != nil {
		c.liveCancel()
		c.liveCancel = nil
		logger.Info("live refresh stopped")
	}
}

// LiveRunning reports whether the polling loop is active.
func (c *Controller) LiveRunning() bool {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	return c.liveCancel != nil
}
