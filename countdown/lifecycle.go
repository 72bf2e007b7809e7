package countdown

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/util"
	"github.com/spikeekips/cyclecount/util/logging"
	"go.uber.org/atomic"
)

// Lifecycle owns at most one registration of TimeSource at a time.
//
// Each activation has its own generation; a firing from a retired generation
// is dropped. The tick callback must not call Deactivate synchronously.
type Lifecycle struct {
	*logging.Logging
	source  TimeSource
	ticking Ticking
	dropped *atomic.Uint64
	id      string
	gen     uint64
	firing  sync.Mutex
	sync.RWMutex
}

func NewLifecycle(source TimeSource) *Lifecycle {
	return &Lifecycle{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "timer-lifecycle")
		}),
		source:  source,
		dropped: atomic.NewUint64(0),
	}
}

// Activate registers onTick to the source. It fails with ErrAlreadyActive
// when already bound and with ErrScheduling when the source refuses; in both
// cases nothing is registered.
func (l *Lifecycle) Activate(period time.Duration, onTick func()) error {
	if onTick == nil {
		return ErrInvalidConfiguration.Errorf("empty tick callback")
	}

	l.Lock()
	defer l.Unlock()

	if l.ticking != nil {
		return ErrAlreadyActive.Errorf("handle=%s", l.id)
	}

	l.gen++
	gen := l.gen

	ticking, err := l.source.Every(period, func() {
		l.fire(gen, onTick)
	})
	if err != nil {
		return ErrScheduling.Wrap(err)
	}

	l.ticking = ticking
	l.id = util.ULID().String()

	l.Log().Debug().
		Str("handle", l.id).
		Uint64("generation", gen).
		Stringer("period", period).
		Msg("activated")

	return nil
}

// Deactivate stops the registration. It is safe to call more than once; only
// the first call after Activate stops the handle.
func (l *Lifecycle) Deactivate() {
	l.Lock()

	ticking, id := l.ticking, l.id
	if ticking == nil {
		l.Unlock()

		return
	}

	l.ticking = nil
	l.id = ""
	l.gen++

	l.Unlock()

	ticking.Stop()

	l.Log().Debug().Str("handle", id).Msg("deactivated")
}

func (l *Lifecycle) IsActive() bool {
	l.RLock()
	defer l.RUnlock()

	return l.ticking != nil
}

// HandleID returns the id of the current registration; empty when not active.
func (l *Lifecycle) HandleID() string {
	l.RLock()
	defer l.RUnlock()

	return l.id
}

// Dropped returns the number of firings dropped after their activation was
// retired.
func (l *Lifecycle) Dropped() uint64 {
	return l.dropped.Load()
}

func (l *Lifecycle) fire(gen uint64, onTick func()) {
	l.RLock()
	defer l.RUnlock()

	if l.ticking == nil || l.gen != gen {
		l.dropped.Inc()

		l.Log().Trace().Uint64("generation", gen).Msg("tick of retired activation dropped")

		return
	}

	l.firing.Lock()
	defer l.firing.Unlock()

	onTick()
}
