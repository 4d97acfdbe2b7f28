// Package diag defines the diagnostic types shared by every pipeline
// stage. Diagnostics are reported, never thrown: a Sink accumulates or
// forwards them and the producing stage degrades (returns Undefined,
// skips a node, aborts one call site) rather than aborting the whole
// compilation. Grounded on the teacher's internal/errors.SentraError,
// generalized to a reported-not-thrown event instead of a Go error
// value, per spec.md §7.
package diag

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// Severity classifies a Diagnostic for sinks that color or filter
// output (cmd/cadc uses this to pick the diagnostic's color).
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Kind names the pipeline stage or error category that produced a
// Diagnostic, matching spec.md §7's error kinds.
type Kind string

const (
	KindParse     Kind = "parse"
	KindName      Kind = "name"
	KindRecursion Kind = "recursion"
	KindBackend   Kind = "backend"
	KindCache     Kind = "cache"
)

// SourceLocation is an optional position for diagnostics that can be
// attributed to a line/column in the original script. The core never
// parses, so most diagnostics it originates leave this zeroed; it
// exists so a caller-supplied Parser can attach locations that survive
// into the compile pipeline's diagnostics.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one reported event.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Message  string
	Location SourceLocation
	Cause    error
}

func (d Diagnostic) String() string {
	loc := d.Location.String()
	if loc != "" {
		loc = " (" + loc + ")"
	}
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s%s: %v", d.Severity, d.Message, loc, d.Cause)
	}
	return fmt.Sprintf("%s: %s%s", d.Severity, d.Message, loc)
}

// Sink receives diagnostics as they occur. Implementations must not
// block the evaluator for long: the teacher's progress callback re-
// entrancy note (spec.md §9) applies here too — a Sink may be invoked
// deep inside recursive evaluation and must not itself trigger more
// evaluation.
type Sink interface {
	Report(Diagnostic)
}

// CollectingSink accumulates diagnostics in order, for
// CompilationResult.Diagnostics.
type CollectingSink struct {
	items []Diagnostic
}

func NewCollectingSink() *CollectingSink { return &CollectingSink{} }

func (s *CollectingSink) Report(d Diagnostic) { s.items = append(s.items, d) }

func (s *CollectingSink) Items() []Diagnostic { return s.items }

func (s *CollectingSink) HasErrors() bool {
	for _, d := range s.items {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnf reports a warning with the given message and an optional
// wrapped cause, matching the teacher's fmt.Sprintf-based message
// construction.
func Warnf(sink Sink, kind Kind, cause error, format string, args ...interface{}) {
	if sink == nil {
		return
	}
	sink.Report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	})
}

// Errorf reports an error-severity diagnostic.
func Errorf(sink Sink, kind Kind, cause error, format string, args ...interface{}) {
	if sink == nil {
		return
	}
	sink.Report(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Cause:    cause,
	})
}

// TeeSink reports every diagnostic to each of Sinks in order, letting
// a caller both accumulate diagnostics (CollectingSink, for
// CompilationResult.Diagnostics) and stream them to a logger
// (LogSink) from the same evaluation pass.
type TeeSink struct {
	Sinks []Sink
}

func (t TeeSink) Report(d Diagnostic) {
	for _, s := range t.Sinks {
		if s != nil {
			s.Report(d)
		}
	}
}

// LogSink forwards every diagnostic to a structured logger instead of
// (or alongside) accumulating it, so a CLI or long-running service
// sees diagnostics as they're produced (SPEC_FULL.md §1.2's leveled-
// logging requirement for internal/compile). Warnings log at Warn,
// errors at Error, each with kind/message/cause as key/value fields.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{"kind", string(d.Kind), "location", d.Location.String()}
	if d.Cause != nil {
		attrs = append(attrs, "cause", d.Cause)
	}
	if d.Severity == SeverityError {
		logger.Error(d.Message, attrs...)
		return
	}
	logger.Warn(d.Message, attrs...)
}

// Wrap adapts a plain Go error into one with stack context, for
// diagnostics that originate from a backend failure rather than from
// the evaluator itself (spec.md §7, "Backend failure").
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}
