package launchcmd

import (
	"io"
	"os"
	"time"

	"github.com/spikeekips/cyclecount/launch"
	"github.com/spikeekips/cyclecount/util/logging"
)

type BaseCommand struct {
	Log    *logging.Logging `kong:"-"`
	Stdin  io.Reader        `kong:"-"`
	Stdout io.Writer        `kong:"-"`
}

func (cmd *BaseCommand) prepare(log *logging.Logging) {
	if cmd.Log == nil {
		cmd.Log = log
	}

	if cmd.Log == nil {
		cmd.Log = logging.NewLogging(nil)
	}

	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}

	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
}

// DesignFlags overrides the values of design file.
type DesignFlags struct {
	//revive:disable:struct-tag
	Design      string        `name:"design" help:"design file" group:"design"`
	CycleLength int           `name:"cycle-length" help:"cycle length, default ${default_cycle_length}" group:"design"`
	Period      time.Duration `name:"period" help:"tick period, default ${default_period}" group:"design"`
	MetricsBind string        `name:"metrics-bind" help:"prometheus metrics bind address, eg) 127.0.0.1:9090" group:"design"`
	//revive:enable:struct-tag
}

func (f DesignFlags) load() (launch.Design, error) {
	d := launch.DefaultDesign()

	if len(f.Design) > 0 {
		i, _, err := launch.DesignFromFile(f.Design)
		if err != nil {
			return d, err
		}

		d = i
	}

	if f.CycleLength != 0 {
		d.CycleLength = f.CycleLength
	}

	if f.Period != 0 {
		d.Period = f.Period
	}

	if len(f.MetricsBind) > 0 {
		d.Metrics.Bind = f.MetricsBind
	}

	return d, d.IsValid(nil)
}
