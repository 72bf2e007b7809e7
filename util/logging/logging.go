package logging

import (
	"sync"

	"github.com/rs/zerolog"
)

// Logging is embedded into components to give them a zerolog.Logger with
// their own context fields. The logger is nop until SetLogging or SetLogger is
// called.
type Logging struct {
	l *zerolog.Logger
	c func(zerolog.Context) zerolog.Context
	sync.RWMutex
}

func NewLogging(f func(zerolog.Context) zerolog.Context) *Logging {
	l := zerolog.Nop()

	return &Logging{l: &l, c: f}
}

func (l *Logging) Log() *zerolog.Logger {
	l.RLock()
	defer l.RUnlock()

	return l.l
}

// SetLogging inherits the logger of the given Logging and applies the own
// context fields on top of it.
func (l *Logging) SetLogging(p *Logging) *Logging {
	return l.SetLogger(*p.Log())
}

func (l *Logging) SetLogger(z zerolog.Logger) *Logging {
	l.Lock()
	defer l.Unlock()

	if l.c != nil {
		z = l.c(z.With()).Logger()
	}

	l.l = &z

	return l
}
