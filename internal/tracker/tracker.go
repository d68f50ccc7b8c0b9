// Package tracker runs one recomputation loop per configured subject and
// keeps a read-optimized snapshot of every subject's current value for the
// REST layer.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/heliograph/heliograph/internal/metrics"
	"github.com/heliograph/heliograph/pkg/config"
	"github.com/heliograph/heliograph/pkg/ephemeris"
	"github.com/heliograph/heliograph/pkg/observer"
	"github.com/heliograph/heliograph/pkg/schedule"
	"github.com/heliograph/heliograph/pkg/sunphase"
	"go.uber.org/zap"
)

// solverRetries bounds retries of a transient solver failure before the
// subject waits for its fallback tick.
const solverRetries = 5

// fallbackRecheck is how long a subject sleeps after exhausting solver
// retries.
const fallbackRecheck = time.Minute

// SubjectSnapshot is one subject's last computed value, as served over
// the REST API.
type SubjectSnapshot struct {
	ID         uuid.UUID                `json:"id"`
	Location   string                   `json:"location"`
	Subject    string                   `json:"subject"`
	Rule       string                   `json:"rule"`
	Absent     bool                     `json:"absent"`
	EventAt    *time.Time               `json:"event_at,omitempty"`
	Elevation  *float64                 `json:"elevation,omitempty"`
	Sun        *sunphase.Classification `json:"sun,omitempty"`
	ComputedAt time.Time                `json:"computed_at"`
	NextDue    *time.Time               `json:"next_due,omitempty"`
}

// subject is one tracked subject: its observer, scheduling entry, and the
// goroutine state behind it.
type subject struct {
	location string
	observer *observer.Observer
	entry    *schedule.Entry
}

// Tracker owns the per-subject loops.
type Tracker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       *sync.WaitGroup
	logger   *zap.SugaredLogger
	subjects []*subject

	mu     sync.RWMutex
	states map[uuid.UUID]SubjectSnapshot
}

// New builds a Tracker from configuration. All observer geometry and rule
// parsing errors surface here; a Tracker that constructs will run.
func New(ctx context.Context, wg *sync.WaitGroup, locations []config.LocationData, logger *zap.SugaredLogger) (*Tracker, error) {
	trackerCtx, cancel := context.WithCancel(ctx)
	t := &Tracker{
		ctx:    trackerCtx,
		cancel: cancel,
		wg:     wg,
		logger: logger.Named("tracker"),
		states: make(map[uuid.UUID]SubjectSnapshot),
	}

	for _, loc := range locations {
		o, err := buildObserver(loc)
		if err != nil {
			cancel()
			return nil, err
		}
		for _, sub := range loc.Subjects {
			rule, err := parseRule(sub)
			if err != nil {
				cancel()
				return nil, fmt.Errorf("location %q: %w", loc.Name, err)
			}
			t.subjects = append(t.subjects, &subject{
				location: loc.Name,
				observer: o,
				entry:    schedule.NewEntry(sub.Name, rule),
			})
		}
	}
	return t, nil
}

// Start launches one loop per subject.
func (t *Tracker) Start() {
	t.logger.Infow("Starting subject tracking", "subjects", len(t.subjects))
	metrics.TrackedSubjects.Set(float64(len(t.subjects)))
	for _, s := range t.subjects {
		t.wg.Add(1)
		go t.run(s)
	}
}

// Stop cancels every subject loop.
func (t *Tracker) Stop() {
	t.cancel()
}

// Snapshots returns the current value of every tracked subject.
func (t *Tracker) Snapshots() []SubjectSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]SubjectSnapshot, 0, len(t.states))
	for _, s := range t.subjects {
		if snap, ok := t.states[s.entry.ID]; ok {
			out = append(out, snap)
		}
	}
	return out
}

// LocationSnapshots returns the snapshots for one location's subjects.
func (t *Tracker) LocationSnapshots(location string) []SubjectSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []SubjectSnapshot
	for _, s := range t.subjects {
		if s.location != location {
			continue
		}
		if snap, ok := t.states[s.entry.ID]; ok {
			out = append(out, snap)
		}
	}
	return out
}

// run is a subject's loop: recompute, publish, sleep until the next due
// instant, repeat.
func (t *Tracker) run(s *subject) {
	defer t.wg.Done()
	logger := t.logger.With("location", s.location, "subject", s.entry.Subject)

	for {
		wait := t.recompute(s, logger)

		timer := time.NewTimer(wait)
		select {
		case <-t.ctx.Done():
			timer.Stop()
			logger.Debug("Subject loop stopped")
			return
		case <-timer.C:
		}
	}
}

// recompute computes the subject's current value, publishes it, and returns
// how long to sleep before the next recomputation.
func (t *Tracker) recompute(s *subject, logger *zap.SugaredLogger) time.Duration {
	now := time.Now()
	metrics.Recomputations.WithLabelValues(s.location, s.entry.Subject).Inc()

	due, ok, err := t.nextDueWithRetry(s, now)
	if err != nil {
		metrics.SolverFailures.WithLabelValues(s.location, s.entry.Subject).Inc()
		logger.Errorw("Solver failed, will retry", "error", err)
		return fallbackRecheck
	}

	snap := SubjectSnapshot{
		ID:         s.entry.ID,
		Location:   s.location,
		Subject:    s.entry.Subject,
		Rule:       s.entry.Rule.String(),
		ComputedAt: now,
	}

	var wait time.Duration
	if ok {
		snap.NextDue = &due
		wait = time.Until(due)
		if wait < 0 {
			wait = 0
		}
		s.entry.Advance(now, due)
		metrics.NextDueTimestamp.WithLabelValues(s.location, s.entry.Subject).Set(float64(due.Unix()))
	} else {
		// The event does not occur within the search horizon. Render the
		// subject absent and recheck when the local date changes.
		snap.Absent = true
		midnight := nextLocalMidnight(s.observer, now)
		snap.NextDue = &midnight
		wait = time.Until(midnight)
		logger.Infow("Subject absent, rechecking at local midnight", "recheck", midnight)
	}

	t.fillValue(s, &snap, now)

	t.mu.Lock()
	t.states[s.entry.ID] = snap
	t.mu.Unlock()

	logger.Debugw("Recomputed subject", "absent", snap.Absent, "next_due", snap.NextDue)
	return wait
}

// nextDueWithRetry wraps schedule.NextDue with bounded exponential backoff
// on transient solver failures.
func (t *Tracker) nextDueWithRetry(s *subject, ref time.Time) (time.Time, bool, error) {
	var due time.Time
	var ok bool
	op := func() error {
		var err error
		due, ok, err = schedule.NextDue(s.entry, s.observer, ref)
		if err != nil && !errors.Is(err, ephemeris.ErrNoConvergence) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), solverRetries), t.ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return time.Time{}, false, err
	}
	return due, ok, nil
}

// fillValue attaches the rule-specific value to the snapshot: the upcoming
// instant for event and elevation rules, the current elevation and sun
// phase for midnight sample rules.
func (t *Tracker) fillValue(s *subject, snap *SubjectSnapshot, now time.Time) {
	switch s.entry.Rule.Kind {
	case schedule.RuleLocalMidnight:
		elev := ephemeris.ElevationAt(s.observer, now)
		rising := ephemeris.ElevationAt(s.observer, now.Add(30*time.Second)) > ephemeris.ElevationAt(s.observer, now.Add(-30*time.Second))
		cls := sunphase.Classify(elev, rising)
		snap.Elevation = &elev
		snap.Sun = &cls
	default:
		if !snap.Absent && snap.NextDue != nil {
			snap.EventAt = snap.NextDue
		}
	}
}

func nextLocalMidnight(o *observer.Observer, ref time.Time) time.Time {
	local := ref.In(o.Location())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, o.Location()).AddDate(0, 0, 1)
}
