package launchcmd

import (
	"fmt"
	"runtime"

	"github.com/spikeekips/cyclecount/util"
)

type VersionCommand struct {
	BaseCommand
	Version util.Version `kong:"-"`
}

func (cmd *VersionCommand) Run() error {
	cmd.prepare(nil)

	v := cmd.Version
	if v.IsEmpty() {
		v = util.EnsureParseVersion("v0.0.0")
	}

	_, err := fmt.Fprintf(cmd.Stdout, "%s (%s %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)

	return err
}
