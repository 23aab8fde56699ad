// Package logging builds the process logger.
//
// Lines are logfmt with a timestamp, and the message is the event name:
//
//	time=2026-01-02T15:04:05Z level=info msg=startup component=http addr=0.0.0.0:8080
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a logfmt logger writing to w at the named level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       log.LogfmtFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	}), nil
}

// Component derives a child logger tagged with the owning component.
func Component(parent *log.Logger, name string) *log.Logger {
	if parent == nil {
		parent = Discard()
	}
	return parent.With("component", name)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
