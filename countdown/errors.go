package countdown

import "github.com/spikeekips/cyclecount/util"

var (
	ErrInvalidConfiguration = util.NewError("invalid configuration")
	ErrAlreadyActive        = util.NewError("already active")
	ErrScheduling           = util.NewError("failed to schedule ticks")
)
