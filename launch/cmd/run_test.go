package launchcmd

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/spikeekips/cyclecount/countdown"
	"github.com/spikeekips/cyclecount/util"
	"github.com/stretchr/testify/suite"
)

type testRunCommand struct {
	suite.Suite
}

func (t *testRunCommand) run(cmd *RunCommand) (string, error) {
	var buf bytes.Buffer

	cmd.Stdout = &buf

	if cmd.Stdin == nil {
		cmd.Stdin = strings.NewReader("")
	}

	err := cmd.Run(context.Background(), nil)

	return buf.String(), err
}

func (t *testRunCommand) TestJSON() {
	cmd := &RunCommand{
		DesignFlags: DesignFlags{CycleLength: 3, Period: time.Millisecond * 10},
		Output:      "json",
		For:         time.Millisecond * 300,
	}
	cmd.Stdin = strings.NewReader("\n")

	out, err := t.run(cmd)
	t.NoError(err)

	var events []stateLine

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var l stateLine
		t.NoError(util.UnmarshalJSON(scanner.Bytes(), &l))

		events = append(events, l)
	}

	t.True(len(events) > 3, "%d > 3", len(events))

	t.Equal("start", events[0].Event)
	t.Equal(3, events[0].State.CountLeft)

	var ticks, resets int

	for i := range events {
		s := events[i].State

		t.True(s.CountLeft > 0 && s.CountLeft <= 3, "%+v", s)

		switch events[i].Event {
		case "tick":
			ticks++
		case "reset":
			resets++

			t.Equal(3, s.CountLeft)
		}
	}

	t.True(ticks > 0)
	t.Equal(1, resets)
}

func (t *testRunCommand) TestText() {
	src := countdown.NewManualSource()

	cmd := &RunCommand{
		DesignFlags: DesignFlags{CycleLength: 5},
		For:         time.Millisecond * 100,
		Output:      "text",
		Source:      src,
	}

	out, err := t.run(cmd)
	t.NoError(err)

	t.Equal("start 5/5 cycles=0\n", out)
	t.Equal(0, src.Live())
	t.Equal(int64(1), src.Handles()[0].Stops())
}

func (t *testRunCommand) TestInvalidDesign() {
	cmd := &RunCommand{
		DesignFlags: DesignFlags{CycleLength: -1},
		For:         time.Millisecond * 100,
	}

	_, err := t.run(cmd)
	t.True(errors.Is(err, countdown.ErrInvalidConfiguration))
}

func (t *testRunCommand) TestDesignNotFound() {
	cmd := &RunCommand{
		DesignFlags: DesignFlags{Design: "/not/found.yml"},
		For:         time.Millisecond * 100,
	}

	_, err := t.run(cmd)
	t.ErrorContains(err, "failed to load design")
}

func (t *testRunCommand) TestSchedulingError() {
	src := countdown.NewManualSource()
	src.Refuse(errors.Errorf("busy"))

	cmd := &RunCommand{
		DesignFlags: DesignFlags{CycleLength: 5},
		For:         time.Millisecond * 100,
		Source:      src,
	}

	_, err := t.run(cmd)
	t.True(errors.Is(err, countdown.ErrScheduling))
}

func TestRunCommand(t *testing.T) {
	suite.Run(t, new(testRunCommand))
}

type testVersionCommand struct {
	suite.Suite
}

func (t *testVersionCommand) TestRun() {
	var buf bytes.Buffer

	cmd := &VersionCommand{Version: util.EnsureParseVersion("v1.2.3")}
	cmd.Stdout = &buf

	t.NoError(cmd.Run())
	t.True(strings.HasPrefix(buf.String(), "v1.2.3 ("), buf.String())
}

func TestVersionCommand(t *testing.T) {
	suite.Run(t, new(testVersionCommand))
}
