package countdown

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

// ManualSource is driven by the host; ticks happen only when Fire is called.
// It fits hosts which already own a loop, like frame or event loops.
type ManualSource struct {
	refuse  error
	handles []*ManualTicking
	sync.Mutex
}

func NewManualSource() *ManualSource {
	return &ManualSource{}
}

// Refuse makes the next registrations fail with err; nil accepts them again.
func (s *ManualSource) Refuse(err error) {
	s.Lock()
	defer s.Unlock()

	s.refuse = err
}

func (s *ManualSource) Every(period time.Duration, f func()) (Ticking, error) {
	s.Lock()
	defer s.Unlock()

	switch {
	case s.refuse != nil:
		return nil, s.refuse
	case period < 1:
		return nil, errors.Errorf("too narrow period, %v", period)
	case f == nil:
		return nil, errors.Errorf("empty callback")
	}

	h := &ManualTicking{
		f:       f,
		period:  period,
		stopped: atomic.NewBool(false),
		stops:   atomic.NewInt64(0),
	}

	s.handles = append(s.handles, h)

	return h, nil
}

// Fire calls each live callback once and returns the number of called.
func (s *ManualSource) Fire() int {
	hs := s.live()

	for i := range hs {
		hs[i].f()
	}

	return len(hs)
}

// Live returns the number of registrations not yet stopped.
func (s *ManualSource) Live() int {
	return len(s.live())
}

// Handles returns all the registrations, including stopped ones.
func (s *ManualSource) Handles() []*ManualTicking {
	s.Lock()
	defer s.Unlock()

	hs := make([]*ManualTicking, len(s.handles))
	copy(hs, s.handles)

	return hs
}

func (s *ManualSource) live() []*ManualTicking {
	s.Lock()
	defer s.Unlock()

	var hs []*ManualTicking

	for i := range s.handles {
		if !s.handles[i].stopped.Load() {
			hs = append(hs, s.handles[i])
		}
	}

	return hs
}

type ManualTicking struct {
	f       func()
	stopped *atomic.Bool
	stops   *atomic.Int64
	period  time.Duration
}

func (h *ManualTicking) Stop() {
	_ = h.stopped.CAS(false, true)
	h.stops.Inc()
}

// Deliver calls the callback even after Stop, like a firing which was queued
// before the cancellation.
func (h *ManualTicking) Deliver() {
	h.f()
}

func (h *ManualTicking) Period() time.Duration {
	return h.period
}

func (h *ManualTicking) IsStopped() bool {
	return h.stopped.Load()
}

// Stops returns how many times Stop was called.
func (h *ManualTicking) Stops() int64 {
	return h.stops.Load()
}
