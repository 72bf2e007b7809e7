package countdown

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/util/logging"
)

const DefaultPeriod = time.Second

type TimerArgs struct {
	Source      TimeSource
	WhenTicked  func(State)
	WhenReset   func(State)
	CycleLength int
	Period      time.Duration
}

func NewTimerArgs() *TimerArgs {
	return &TimerArgs{
		CycleLength: DefaultCycleLength,
		Period:      DefaultPeriod,
		WhenTicked:  func(State) {},
		WhenReset:   func(State) {},
	}
}

// Timer binds Counter to Lifecycle. WhenTicked runs in the firing of the time
// source; it must not call Deactivate synchronously.
type Timer struct {
	*logging.Logging
	args       *TimerArgs
	counter    *Counter
	lifecycle  *Lifecycle
	stopWatch  func() bool
	metrics    metrics
	activation uint64
	stateLock  sync.Mutex
	sync.Mutex
}

func NewTimer(i *TimerArgs) (*Timer, error) {
	if i == nil {
		return nil, ErrInvalidConfiguration.Errorf("empty timer args")
	}

	args := *i

	if args.Period < 1 {
		return nil, ErrInvalidConfiguration.Errorf("period should be positive, %v", args.Period)
	}

	counter, err := NewCounter(args.CycleLength)
	if err != nil {
		return nil, err
	}

	if args.Source == nil {
		args.Source = NewTickerSource()
	}

	if args.WhenTicked == nil {
		args.WhenTicked = func(State) {}
	}

	if args.WhenReset == nil {
		args.WhenReset = func(State) {}
	}

	lifecycle := NewLifecycle(args.Source)

	t := &Timer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "timer")
		}),
		args:      &args,
		counter:   counter,
		lifecycle: lifecycle,
		metrics:   newMetrics(lifecycle),
	}

	t.metrics.observe(counter.State())

	return t, nil
}

func (t *Timer) SetLogging(l *logging.Logging) *logging.Logging {
	_ = t.lifecycle.SetLogging(l)

	if s, ok := t.args.Source.(interface {
		SetLogging(*logging.Logging) *logging.Logging
	}); ok {
		_ = s.SetLogging(l)
	}

	return t.Logging.SetLogging(l)
}

// Activate starts ticking. When ctx is done, the timer deactivates itself.
func (t *Timer) Activate(ctx context.Context) error {
	t.Lock()
	defer t.Unlock()

	if err := t.lifecycle.Activate(t.args.Period, t.tick); err != nil {
		return err
	}

	t.activation++
	activation := t.activation

	if s, ok := t.applyPendingCycleLength(); ok {
		t.Log().Debug().Int("cycle_length", s.CycleLength).Msg("pending cycle length applied")
	}

	t.stopWatch = context.AfterFunc(ctx, func() {
		t.Lock()
		defer t.Unlock()

		if t.activation != activation {
			return
		}

		t.Log().Debug().Msg("context done; deactivating")

		t.deactivate()
	})

	t.metrics.Active.Set(1)

	t.Log().Debug().
		Stringer("period", t.args.Period).
		Int("cycle_length", t.counter.CycleLength()).
		Msg("activated")

	return nil
}

// Deactivate stops ticking; it can be called any number of times.
func (t *Timer) Deactivate() {
	t.Lock()
	defer t.Unlock()

	t.deactivate()
}

func (t *Timer) Start(ctx context.Context) error {
	return t.Activate(ctx)
}

func (t *Timer) Stop() error {
	t.Deactivate()

	return nil
}

func (t *Timer) IsActive() bool {
	return t.lifecycle.IsActive()
}

func (t *Timer) Reset() State {
	t.stateLock.Lock()

	s := t.counter.Reset()

	t.metrics.Resets.Inc()
	t.metrics.observe(s)

	t.stateLock.Unlock()

	t.args.WhenReset(s)

	return s
}

// SetCycleLength sets the cycle length, which comes into force at the next
// Reset or the next Activate.
func (t *Timer) SetCycleLength(n int) error {
	return t.counter.SetCycleLength(n)
}

func (t *Timer) State() State {
	return t.counter.State()
}

func (t *Timer) CountLeft() int {
	return t.counter.CountLeft()
}

func (t *Timer) Dropped() uint64 {
	return t.lifecycle.Dropped()
}

func (t *Timer) Metrics() []prometheus.Collector {
	return t.metrics.collectors()
}

func (t *Timer) tick() {
	t.stateLock.Lock()

	s := t.counter.Tick()

	t.metrics.Ticks.Inc()
	if s.Wrapped {
		t.metrics.Wraps.Inc()
	}

	t.metrics.observe(s)

	t.stateLock.Unlock()

	t.args.WhenTicked(s)
}

func (t *Timer) applyPendingCycleLength() (State, bool) {
	t.stateLock.Lock()
	defer t.stateLock.Unlock()

	s, ok := t.counter.ApplyPendingCycleLength()
	if ok {
		t.metrics.observe(s)
	}

	return s, ok
}

func (t *Timer) deactivate() {
	if t.stopWatch != nil {
		_ = t.stopWatch()
		t.stopWatch = nil
	}

	t.activation++

	if !t.lifecycle.IsActive() {
		return
	}

	t.lifecycle.Deactivate()

	t.metrics.Active.Set(0)

	t.Log().Debug().Msg("deactivated")
}
