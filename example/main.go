package main

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spikeekips/cyclecount/countdown"
	"github.com/spikeekips/cyclecount/launch"
	launchcmd "github.com/spikeekips/cyclecount/launch/cmd"
	"github.com/spikeekips/cyclecount/util"
	"github.com/spikeekips/cyclecount/util/logging"
)

var version = "v0.0.0"

func main() {
	var cli struct { //nolint:govet //...
		launch.BaseFlags `embed:""`
		Run              launchcmd.RunCommand     `cmd:"" help:"run countdown timer"`
		Version          launchcmd.VersionCommand `cmd:"" help:"version"`
	}

	vars := kong.Vars{
		"default_cycle_length": strconv.Itoa(countdown.DefaultCycleLength),
		"default_period":       countdown.DefaultPeriod.String(),
	}

	for k, v := range launch.LoggingVars {
		vars[k] = v
	}

	kctx := kong.Parse(&cli, kong.Name("cyclecount"), kong.Description("cyclic countdown timer"), vars)

	log, err := launch.SetupLoggingFromFlags(cli.LoggingFlags)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}

	mlog := logging.NewLogging(func(lctx zerolog.Context) zerolog.Context {
		return lctx.Str("module", "main")
	}).SetLogging(log).Log()

	v, err := util.ParseVersion(version)
	if err != nil {
		kctx.FatalIfErrorf(errors.WithMessage(err, "invalid build version"))
	}

	cli.Version.Version = v

	mlog.Debug().Str("command", kctx.Command()).Stringer("version", v).Msg("start command")

	kctx.BindTo(context.Background(), (*context.Context)(nil))
	kctx.Bind(log)

	if err := kctx.Run(); err != nil {
		mlog.Error().Err(err).Msg("stopped by error")

		kctx.FatalIfErrorf(err)
	}
}
