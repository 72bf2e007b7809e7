package util

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/util/logging"
)

// ContextDaemon runs a callback in its own goroutine until the callback
// returns or the daemon is stopped. It can be started again after it stops.
type ContextDaemon struct {
	*logging.Logging
	callback func(context.Context) error
	run      *contextDaemonRun
	sync.Mutex
}

type contextDaemonRun struct {
	cancel func()
	done   chan struct{}
}

func NewContextDaemon(name string, startfunc func(context.Context) error) *ContextDaemon {
	return &ContextDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "context-daemon").Str("daemon", name)
		}),
		callback: startfunc,
	}
}

func (dm *ContextDaemon) IsStarted() bool {
	dm.Lock()
	defer dm.Unlock()

	return dm.run != nil
}

func (dm *ContextDaemon) Start(ctx context.Context) error {
	if _, err := dm.start(ctx); err != nil {
		return err
	}

	dm.Log().Debug().Msg("started")

	return nil
}

// Wait starts the daemon and returns the channel which receives the result of
// callback.
func (dm *ContextDaemon) Wait(ctx context.Context) <-chan error {
	ch, err := dm.start(ctx)
	if err != nil {
		ch = make(chan error, 1)
		ch <- err
		close(ch)
	}

	return ch
}

// Stop cancels the callback context and waits until the callback returns.
func (dm *ContextDaemon) Stop() error {
	dm.Lock()

	r := dm.run
	if r == nil {
		dm.Unlock()

		return ErrDaemonAlreadyStopped.Call()
	}

	dm.run = nil
	dm.Unlock()

	r.cancel()
	<-r.done

	dm.Log().Debug().Msg("stopped")

	return nil
}

func (dm *ContextDaemon) start(ctx context.Context) (chan error, error) {
	dm.Lock()
	defer dm.Unlock()

	if dm.run != nil {
		return nil, ErrDaemonAlreadyStarted.Call()
	}

	cctx, cancel := context.WithCancel(ctx)
	r := &contextDaemonRun{cancel: cancel, done: make(chan struct{})}
	dm.run = r

	ch := make(chan error, 1)

	go func() {
		err := dm.callback(cctx)

		dm.Lock()
		if dm.run == r {
			dm.run = nil
		}
		dm.Unlock()

		cancel()
		close(r.done)

		ch <- err
		close(ch)
	}()

	return ch, nil
}
