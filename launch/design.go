package launch

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/cyclecount/countdown"
	"github.com/spikeekips/cyclecount/util"
	"gopkg.in/yaml.v3"
)

// Design is the configuration of the countdown timer.
type Design struct {
	Metrics     MetricsDesign
	CycleLength int
	Period      time.Duration
}

func DefaultDesign() Design {
	return Design{
		CycleLength: countdown.DefaultCycleLength,
		Period:      countdown.DefaultPeriod,
	}
}

func DesignFromFile(f string) (d Design, _ []byte, _ error) {
	b, err := os.ReadFile(filepath.Clean(f))
	if err != nil {
		return d, nil, errors.Wrap(err, "failed to load design from file")
	}

	if err := d.DecodeYAML(b); err != nil {
		return d, b, errors.WithMessage(err, "failed to load design from file")
	}

	if err := d.IsValid(nil); err != nil {
		return d, b, err
	}

	return d, b, nil
}

func (d *Design) IsValid([]byte) error {
	e := util.ErrInvalid.Errorf("invalid Design")

	switch {
	case d.CycleLength < 1:
		return e.Wrap(countdown.ErrInvalidConfiguration.Errorf("cycle length should be positive, %d", d.CycleLength))
	case d.Period < 1:
		return e.Wrap(countdown.ErrInvalidConfiguration.Errorf("period should be positive, %v", d.Period))
	}

	if err := util.CheckIsValid(nil, false, d.Metrics); err != nil {
		return e.Wrap(err)
	}

	return nil
}

// TimerArgs returns countdown.TimerArgs from the design.
func (d Design) TimerArgs() *countdown.TimerArgs {
	args := countdown.NewTimerArgs()
	args.CycleLength = d.CycleLength
	args.Period = d.Period

	return args
}

type DesignYAMLMarshaler struct {
	Metrics     MetricsDesign `yaml:"metrics,omitempty"`
	Period      string        `yaml:"period"`
	CycleLength int           `yaml:"cycle_length"`
}

type DesignYAMLUnmarshaler struct {
	CycleLength *int          `yaml:"cycle_length"`
	Period      *string       `yaml:"period"`
	Metrics     MetricsDesign `yaml:"metrics"`
}

func (d Design) MarshalYAML() (interface{}, error) {
	return DesignYAMLMarshaler{
		CycleLength: d.CycleLength,
		Period:      d.Period.String(),
		Metrics:     d.Metrics,
	}, nil
}

// DecodeYAML decodes design; missing values are filled by DefaultDesign.
func (d *Design) DecodeYAML(b []byte) error {
	e := util.ErrInvalid.Errorf("failed to decode design")

	var u DesignYAMLUnmarshaler

	if err := yaml.Unmarshal(b, &u); err != nil {
		return e.Wrap(err)
	}

	n := DefaultDesign()

	if u.CycleLength != nil {
		n.CycleLength = *u.CycleLength
	}

	if u.Period != nil {
		p, err := time.ParseDuration(strings.TrimSpace(*u.Period))
		if err != nil {
			return e.Wrapf(err, "period")
		}

		n.Period = p
	}

	n.Metrics = u.Metrics

	*d = n

	return nil
}

// MetricsDesign enables the prometheus metrics endpoint when Bind is set.
type MetricsDesign struct {
	Bind string `yaml:"bind,omitempty"`
}

func (d MetricsDesign) IsValid([]byte) error {
	if len(d.Bind) < 1 {
		return nil
	}

	if _, _, err := net.SplitHostPort(d.Bind); err != nil {
		return util.ErrInvalid.Wrapf(err, "invalid metrics bind, %q", d.Bind)
	}

	return nil
}

func (d MetricsDesign) Enabled() bool {
	return len(d.Bind) > 0
}
