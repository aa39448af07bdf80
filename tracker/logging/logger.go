// Package logging provides the small leveled wrapper around the standard
// library logger that every tracker component logs through. No
// third-party logging library is introduced — see DESIGN.md.
package logging

import (
	"io"
	"log"
)

// Logger wraps a standard library *log.Logger with Info/Warn/Error
// helpers so call sites read consistently across the module.
type Logger struct {
	*log.Logger
}

// New returns a Logger writing to w with the given prefix, e.g. a
// bracketed component tag ahead of each line ("[udp] ").
func New(w io.Writer, prefix string) *Logger {
	return &Logger{Logger: log.New(w, prefix, log.LstdFlags)}
}

func (l *Logger) Info(format string, args ...any) {
	l.Printf("INFO "+format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.Printf("ERROR "+format, args...)
}
