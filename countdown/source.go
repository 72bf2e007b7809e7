package countdown

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/util"
	"github.com/spikeekips/cyclecount/util/logging"
)

// TimeSource registers a repeating callback. Every must not call f before it
// returns.
type TimeSource interface {
	Every(period time.Duration, f func()) (Ticking, error)
}

// Ticking is the handle of a registered callback. After Stop returns, the
// source does not start new calls of the callback.
type Ticking interface {
	Stop()
}

// TickerSource runs one time.Ticker loop per registration.
type TickerSource struct {
	*logging.Logging
}

func NewTickerSource() *TickerSource {
	return &TickerSource{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "ticker-source")
		}),
	}
}

func (s *TickerSource) Every(period time.Duration, f func()) (Ticking, error) {
	switch {
	case period < 1:
		return nil, errors.Errorf("too narrow period, %v", period)
	case f == nil:
		return nil, errors.Errorf("empty callback")
	}

	d := util.NewContextDaemon("ticker", func(ctx context.Context) error {
		ticker := time.NewTicker(period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if ctx.Err() != nil {
					return nil
				}

				f()
			}
		}
	})
	_ = d.SetLogging(s.Logging)

	if err := d.Start(context.Background()); err != nil {
		return nil, err
	}

	return tickerTicking{d: d}, nil
}

type tickerTicking struct {
	d *util.ContextDaemon
}

// Stop waits until the ticker loop exits.
func (t tickerTicking) Stop() {
	_ = t.d.Stop()
}
