package util

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// Error is a sentinel-able error. Package level sentinels are created by
// NewError and must be instantiated with Call(), Wrap() or Errorf() before
// they are returned, so the returned error carries the stack of the caller.
type Error struct {
	wrapped error
	id      string
	msg     string
	extra   string
	stack   []uintptr
}

func NewError(s string, a ...interface{}) Error {
	var pcs [1]uintptr
	_ = runtime.Callers(2, pcs[:])
	f := errors.Frame(pcs[0])

	return Error{
		id:  fmt.Sprintf("%n:%d", f, f),
		msg: strings.TrimSpace(fmt.Sprintf(s, a...)),
	}
}

func (er Error) Call() Error {
	er.stack = callers()

	return er
}

func (er Error) Wrap(err error) Error {
	er.stack = callers()
	er.wrapped = err

	return er
}

func (er Error) Wrapf(err error, s string, a ...interface{}) Error {
	er.stack = callers()
	er.extra = fmt.Sprintf(s, a...)
	er.wrapped = err

	return er
}

// Errorf adds formatted detail to the message. `%w` is not supported; use
// Wrapf.
func (er Error) Errorf(s string, a ...interface{}) Error {
	er.stack = callers()
	er.extra = fmt.Sprintf(s, a...)

	return er
}

func (er Error) Unwrap() error {
	return er.wrapped
}

// Is matches any Error created from the same NewError call.
func (er Error) Is(err error) bool {
	var e Error
	if errors.As(err, &e) && e.id == er.id {
		return true
	}

	if er.wrapped == nil {
		return false
	}

	return errors.Is(er.wrapped, err)
}

func (er Error) Error() string {
	if er.stack == nil {
		panic(fmt.Errorf("Error, %q should not be used as error directly without Call()", er.msg))
	}

	s := er.message()

	if er.wrapped != nil {
		if w := er.wrapped.Error(); len(w) > 0 {
			s += "; " + w
		}
	}

	return s
}

func (er Error) Format(st fmt.State, verb rune) {
	switch verb {
	case 'v':
		if st.Flag('+') {
			_, _ = io.WriteString(st, er.message())

			for i := range er.stack {
				_, _ = fmt.Fprintf(st, "\n%+v", errors.Frame(er.stack[i]))
			}

			if er.wrapped != nil {
				_, _ = fmt.Fprintf(st, "\n%+v", er.wrapped)
			}

			return
		}

		fallthrough
	case 's':
		_, _ = io.WriteString(st, er.Error())
	case 'q':
		_, _ = fmt.Fprintf(st, "%q", er.Error())
	}
}

func (er Error) StackTrace() errors.StackTrace {
	if er.stack == nil {
		return nil
	}

	st := make(errors.StackTrace, len(er.stack))
	for i := range er.stack {
		st[i] = errors.Frame(er.stack[i])
	}

	return st
}

func (er Error) message() string {
	if len(er.extra) < 1 {
		return er.msg
	}

	return er.msg + " - " + er.extra
}

func callers() []uintptr {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	return pcs[:n]
}
