package launchcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/cyclecount/countdown"
	"github.com/spikeekips/cyclecount/launch"
	"github.com/spikeekips/cyclecount/util"
	"github.com/spikeekips/cyclecount/util/logging"
	"golang.org/x/sync/errgroup"
)

type RunCommand struct { //nolint:govet //...
	BaseCommand
	DesignFlags `embed:""`
	Output      string               `name:"output" enum:"text, json" default:"text" help:"output format: {${enum}}"`
	For         time.Duration        `name:"for" help:"stop after the duration; 0 runs until interrupted"`
	Source      countdown.TimeSource `kong:"-"`
}

func (cmd *RunCommand) Run(pctx context.Context, log *logging.Logging) error {
	cmd.prepare(log)

	design, err := cmd.DesignFlags.load()
	if err != nil {
		return err
	}

	cmd.Log.Log().Debug().Interface("design", design).Msg("design loaded")

	out := newStateWriter(cmd.Stdout, cmd.Output)

	args := design.TimerArgs()
	args.Source = cmd.Source
	args.WhenTicked = func(s countdown.State) {
		if err := out.write("tick", s); err != nil {
			cmd.Log.Log().Error().Err(err).Msg("failed to write state")
		}
	}
	args.WhenReset = func(s countdown.State) {
		if err := out.write("reset", s); err != nil {
			cmd.Log.Log().Error().Err(err).Msg("failed to write state")
		}
	}

	timer, err := countdown.NewTimer(args)
	if err != nil {
		return err
	}

	_ = timer.SetLogging(cmd.Log)

	ctx, stop := signal.NotifyContext(pctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cmd.For > 0 {
		var cancel func()

		ctx, cancel = context.WithTimeout(ctx, cmd.For)
		defer cancel()
	}

	var metricsServer *launch.MetricsServer

	if design.Metrics.Enabled() {
		metricsServer, err = launch.NewMetricsServer(design.Metrics.Bind, timer.Metrics()...)
		if err != nil {
			return err
		}

		_ = metricsServer.SetLogging(cmd.Log)

		if err := metricsServer.Listen(); err != nil {
			return err
		}
	}

	if err := out.write("start", timer.State()); err != nil {
		return err
	}

	if err := timer.Activate(ctx); err != nil {
		return err
	}

	defer timer.Deactivate()

	cmd.Log.Log().Info().
		Int("cycle_length", design.CycleLength).
		Stringer("period", design.Period).
		Msg("timer started")

	eg, ectx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return resetBySignal(ectx, timer)
	})

	eg.Go(func() error {
		return resetByInput(ectx, cmd.Stdin, timer)
	})

	if metricsServer != nil {
		eg.Go(func() error {
			return metricsServer.Serve(ectx)
		})
	}

	err = eg.Wait()

	timer.Deactivate()

	cmd.Log.Log().Info().Interface("state", timer.State()).Msg("timer stopped")

	return err
}

func resetBySignal(ctx context.Context, timer *countdown.Timer) error {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGHUP)

	defer signal.Stop(sigch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigch:
			_ = timer.Reset()
		}
	}
}

// resetByInput resets the timer at each empty line of r. The reading goroutine
// can not be interrupted and lasts until r is closed.
func resetByInput(ctx context.Context, r io.Reader, timer *countdown.Timer) error {
	if r == nil {
		return nil
	}

	linech := make(chan string)

	go func() {
		defer close(linech)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			case linech <- scanner.Text():
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-linech:
			if !ok {
				<-ctx.Done()

				return nil
			}

			if len(strings.TrimSpace(line)) < 1 {
				_ = timer.Reset()
			}
		}
	}
}

type stateWriter struct {
	w      io.Writer
	jw     *util.JSONLineWriter
	isjson bool
	sync.Mutex
}

func newStateWriter(w io.Writer, format string) *stateWriter {
	return &stateWriter{
		w:      w,
		jw:     util.NewJSONLineWriter(w),
		isjson: format == "json",
	}
}

func (w *stateWriter) write(event string, s countdown.State) error {
	w.Lock()
	defer w.Unlock()

	if w.isjson {
		return w.jw.Write(stateLine{
			Event: event,
			At:    time.Now(),
			State: s,
		})
	}

	_, err := fmt.Fprintf(w.w, "%-5s %d/%d cycles=%d\n", event, s.CountLeft, s.CycleLength, s.Cycles)

	return errors.WithStack(err)
}

type stateLine struct {
	At    time.Time       `json:"at"`
	Event string          `json:"event"`
	State countdown.State `json:"state"`
}
