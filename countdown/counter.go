package countdown

import (
	"sync"
)

const DefaultCycleLength = 60

// State is the snapshot of Counter.
type State struct {
	CountLeft   int    `json:"count_left"`
	CycleLength int    `json:"cycle_length"`
	Cycles      uint64 `json:"cycles"`
	Ticks       uint64 `json:"ticks"`
	Resets      uint64 `json:"resets"`
	// Wrapped is true when the last transition was a tick which completed a
	// cycle.
	Wrapped bool `json:"wrapped,omitempty"`
}

// Counter counts down from the cycle length to 1 and wraps to the cycle
// length again; 0 is never observed. Counter is safe for concurrent use.
type Counter struct {
	state   State
	pending int
	sync.RWMutex
}

func NewCounter(cycleLength int) (*Counter, error) {
	if err := checkCycleLength(cycleLength); err != nil {
		return nil, err
	}

	return &Counter{
		state: State{CountLeft: cycleLength, CycleLength: cycleLength},
	}, nil
}

func NewDefaultCounter() *Counter {
	c, _ := NewCounter(DefaultCycleLength)

	return c
}

// Tick decrements the current count. When it reaches 0, the count is set to
// the cycle length in the same step.
func (c *Counter) Tick() State {
	c.Lock()
	defer c.Unlock()

	s := c.state
	s.Ticks++
	s.Wrapped = false

	if s.CountLeft--; s.CountLeft < 1 {
		s.CountLeft = s.CycleLength
		s.Cycles++
		s.Wrapped = true
	}

	c.state = s

	return s
}

// Reset sets the count to the cycle length. The pending cycle length by
// SetCycleLength comes into force here.
func (c *Counter) Reset() State {
	c.Lock()
	defer c.Unlock()

	if c.pending > 0 {
		c.state.CycleLength = c.pending
		c.pending = 0
	}

	c.state.CountLeft = c.state.CycleLength
	c.state.Resets++
	c.state.Wrapped = false

	return c.state
}

// SetCycleLength keeps the new cycle length as pending until the next Reset or
// ApplyPendingCycleLength.
func (c *Counter) SetCycleLength(n int) error {
	if err := checkCycleLength(n); err != nil {
		return err
	}

	c.Lock()
	defer c.Unlock()

	c.pending = n

	return nil
}

// ApplyPendingCycleLength brings the pending cycle length into force and
// starts a new cycle with it. It does nothing without pending one.
func (c *Counter) ApplyPendingCycleLength() (State, bool) {
	c.Lock()
	defer c.Unlock()

	if c.pending < 1 {
		return c.state, false
	}

	c.state.CycleLength = c.pending
	c.state.CountLeft = c.pending
	c.state.Wrapped = false
	c.pending = 0

	return c.state, true
}

func (c *Counter) PendingCycleLength() (int, bool) {
	c.RLock()
	defer c.RUnlock()

	return c.pending, c.pending > 0
}

func (c *Counter) State() State {
	c.RLock()
	defer c.RUnlock()

	return c.state
}

func (c *Counter) CountLeft() int {
	return c.State().CountLeft
}

func (c *Counter) CycleLength() int {
	return c.State().CycleLength
}

func checkCycleLength(n int) error {
	if n < 1 {
		return ErrInvalidConfiguration.Errorf("cycle length should be positive, %d", n)
	}

	return nil
}
