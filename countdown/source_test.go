package countdown

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"
	"go.uber.org/goleak"
)

type testTickerSource struct {
	suite.Suite
}

func (t *testTickerSource) TestInvalid() {
	s := NewTickerSource()

	_, err := s.Every(0, func() {})
	t.ErrorContains(err, "too narrow period")

	_, err = s.Every(-time.Second, func() {})
	t.ErrorContains(err, "too narrow period")

	_, err = s.Every(time.Second, nil)
	t.ErrorContains(err, "empty callback")
}

func (t *testTickerSource) TestTicks() {
	s := NewTickerSource()

	ticked := atomic.NewInt64(0)

	h, err := s.Every(time.Millisecond*10, func() { ticked.Inc() })
	t.NoError(err)

	<-time.After(time.Millisecond * 200)

	h.Stop()

	stopped := ticked.Load()
	t.True(stopped > 3, "%d > 3", stopped)

	<-time.After(time.Millisecond * 50)
	t.Equal(stopped, ticked.Load())

	t.NotPanics(h.Stop)
}

func (t *testTickerSource) TestStopWaitsFiring() {
	s := NewTickerSource()

	entered := make(chan struct{}, 1)
	finished := atomic.NewBool(false)

	h, err := s.Every(time.Millisecond*10, func() {
		select {
		case entered <- struct{}{}:
		default:
		}

		<-time.After(time.Millisecond * 100)
		finished.Store(true)
	})
	t.NoError(err)

	<-entered

	h.Stop()
	t.True(finished.Load())
}

func TestTickerSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testTickerSource))
}

type testManualSource struct {
	suite.Suite
}

func (t *testManualSource) TestFire() {
	s := NewManualSource()

	a := atomic.NewInt64(0)
	b := atomic.NewInt64(0)

	ha, err := s.Every(time.Second, func() { a.Inc() })
	t.NoError(err)

	_, err = s.Every(time.Second, func() { b.Inc() })
	t.NoError(err)

	t.Equal(2, s.Fire())
	t.Equal(2, s.Live())

	ha.Stop()

	t.Equal(1, s.Fire())
	t.Equal(1, s.Live())

	t.Equal(int64(1), a.Load())
	t.Equal(int64(2), b.Load())
	t.Equal(2, len(s.Handles()))
}

func (t *testManualSource) TestRefuse() {
	s := NewManualSource()

	s.Refuse(errors.Errorf("full"))

	_, err := s.Every(time.Second, func() {})
	t.ErrorContains(err, "full")
	t.Equal(0, len(s.Handles()))

	s.Refuse(nil)

	_, err = s.Every(time.Second, func() {})
	t.NoError(err)
}

func (t *testManualSource) TestStops() {
	s := NewManualSource()

	h, err := s.Every(time.Second, func() {})
	t.NoError(err)

	mh := h.(*ManualTicking)
	t.False(mh.IsStopped())

	h.Stop()
	h.Stop()

	t.True(mh.IsStopped())
	t.Equal(int64(2), mh.Stops())
}

func TestManualSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testManualSource))
}
