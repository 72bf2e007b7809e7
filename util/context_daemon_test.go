package util

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type testContextDaemon struct {
	suite.Suite
}

func (t *testContextDaemon) TestStartStop() {
	stoppedch := make(chan time.Time, 2)

	ed := NewContextDaemon("test", func(ctx context.Context) error {
		<-ctx.Done()

		stoppedch <- time.Now()

		return nil
	})

	t.NoError(ed.Start(context.Background()))
	t.True(ed.IsStarted())

	err := ed.Start(context.Background())
	t.True(errors.Is(err, ErrDaemonAlreadyStarted))

	stopping := time.Now()
	t.NoError(ed.Stop())
	t.False(ed.IsStarted())

	select {
	case stopped := <-stoppedch:
		t.True(stopped.After(stopping))
	default:
		t.Fail("Stop returned before callback finished")
	}

	t.True(errors.Is(ed.Stop(), ErrDaemonAlreadyStopped))
}

func (t *testContextDaemon) TestCallbackReturned() {
	ed := NewContextDaemon("test", func(context.Context) error {
		<-time.After(time.Millisecond * 100)

		return errors.Errorf("show me")
	})

	t.NoError(ed.Start(context.Background()))
	t.True(ed.IsStarted())

	t.Eventually(func() bool {
		return !ed.IsStarted()
	}, time.Second, time.Millisecond*10)

	t.True(errors.Is(ed.Stop(), ErrDaemonAlreadyStopped))
}

func (t *testContextDaemon) TestStartAgain() {
	startedch := make(chan struct{}, 1)

	ed := NewContextDaemon("test", func(ctx context.Context) error {
		startedch <- struct{}{}

		<-ctx.Done()

		return nil
	})

	for i := 0; i < 3; i++ {
		t.NoError(ed.Start(context.Background()))
		<-startedch
		t.True(ed.IsStarted())

		t.NoError(ed.Stop())
		t.False(ed.IsStarted())
	}
}

func (t *testContextDaemon) TestWait() {
	ed := NewContextDaemon("test", func(context.Context) error {
		return errors.Errorf("show me")
	})

	err := <-ed.Wait(context.Background())
	t.ErrorContains(err, "show me")
	t.True(errors.Is(ed.Stop(), ErrDaemonAlreadyStopped))

	t.Run("already started", func() {
		ed := NewContextDaemon("test", func(ctx context.Context) error {
			<-ctx.Done()

			return nil
		})

		t.NoError(ed.Start(context.Background()))
		defer ed.Stop()

		err := <-ed.Wait(context.Background())
		t.True(errors.Is(err, ErrDaemonAlreadyStarted))
	})
}

func (t *testContextDaemon) TestParentContextCanceled() {
	ed := NewContextDaemon("test", func(ctx context.Context) error {
		<-ctx.Done()

		return errors.Errorf("canceled")
	})

	ctx, cancel := context.WithCancel(context.Background())

	ch := ed.Wait(ctx)

	cancel()

	t.ErrorContains(<-ch, "canceled")
	t.False(ed.IsStarted())
}

func (t *testContextDaemon) TestStopInGoroutines() {
	ed := NewContextDaemon("test", func(ctx context.Context) error {
		<-ctx.Done()

		return nil
	})

	t.NoError(ed.Start(context.Background()))

	var wg sync.WaitGroup
	var l sync.Mutex
	var stopped int

	wg.Add(4)

	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()

			if err := ed.Stop(); err == nil {
				l.Lock()
				stopped++
				l.Unlock()
			}
		}()
	}

	wg.Wait()

	t.False(ed.IsStarted())
	t.Equal(1, stopped)
}

func TestContextDaemon(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testContextDaemon))
}
