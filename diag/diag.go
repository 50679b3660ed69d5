// Package diag provides source locations and a structured diagnostics sink
// shared by every compiler stage (lexer, parser, resolver, VM).
package diag

import (
	"fmt"
	"io"
)

// Location identifies a point in a source file.
type Location struct {
	Path   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}

// Severity distinguishes fatal diagnostics from informational follow-ups.
type Severity int

const (
	Error Severity = iota
	Info
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "ERROR"
	case Info:
		return "INFO"
	default:
		return "DIAG"
	}
}

// Diagnostic is a single located message.
type Diagnostic struct {
	Loc      Location
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Loc, d.Severity, d.Message)
}

// Sink collects diagnostics and reports whether compilation must stop.
// Every stage (lexer, parser, resolver) writes through the same sink so the
// driver sees one ordered stream no matter which stage failed.
type Sink struct {
	w        io.Writer
	reported []Diagnostic
	failed   bool
}

// NewSink creates a sink that writes each diagnostic to w as it is reported.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Errorf reports a located error and marks the sink as failed.
func (s *Sink) Errorf(loc Location, format string, args ...interface{}) {
	s.report(Diagnostic{Loc: loc, Severity: Error, Message: fmt.Sprintf(format, args...)})
	s.failed = true
}

// Infof reports a located informational follow-up (e.g. "defined here").
// It never marks the sink as failed by itself.
func (s *Sink) Infof(loc Location, format string, args ...interface{}) {
	s.report(Diagnostic{Loc: loc, Severity: Info, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) report(d Diagnostic) {
	s.reported = append(s.reported, d)
	if s.w != nil {
		fmt.Fprintln(s.w, d.String())
	}
}

// Failed reports whether any Error-severity diagnostic has been emitted.
func (s *Sink) Failed() bool {
	return s.failed
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic {
	return s.reported
}
