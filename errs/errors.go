// Package errs provides the error taxonomy shared by the loader, parser,
// and evaluator. Every fallible operation in implish returns a Go error
// built from this package rather than panicking or printing directly.
package errs

import (
	"fmt"
	"strings"
)

// Kind classifies an Error the way spec.md §7 enumerates error kinds.
type Kind string

const (
	KindLoad     Kind = "LoadError"
	KindLookup   Kind = "LookupError"
	KindType     Kind = "TypeError"
	KindArity    Kind = "ArityError"
	KindIO       Kind = "IOError"
	KindUser     Kind = "UserError"
	KindInternal Kind = "InternalError"
)

// Position is a 1-indexed line/column pair, used when the failing token's
// location is known (the loader always knows it; the evaluator does not,
// since Value carries no position once built).
type Position struct {
	Line   int
	Column int
}

// Error is the single error type every implish package returns.
type Error struct {
	Kind    Kind
	Message string
	Pos     Position  // zero value means "unknown"
	Source  string    // full source text, for caret rendering; optional
	Wrapped error      // underlying cause, if any
}

func (e *Error) Error() string {
	return e.Format(false)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Format renders the error the way the reference DWScript implementation's
// CompilerError.Format does: a header, the offending source line, and a
// caret pointing at the column, optionally in color.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if e.Pos.Line > 0 {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d: ", e.Kind, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s: ", e.Kind))
	}
	sb.WriteString(e.Message)

	if e.Source != "" && e.Pos.Line > 0 {
		line := sourceLine(e.Source, e.Pos.Line)
		if line != "" {
			sb.WriteString("\n")
			prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(prefix)+max0(e.Pos.Column-1)))
			if color {
				sb.WriteString("\033[1;31m")
			}
			sb.WriteString("^")
			if color {
				sb.WriteString("\033[0m")
			}
		}
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func sourceLine(source string, lineNum int) string {
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// New builds a bare Error with no position information (most evaluator
// errors — the evaluator walks Values, which carry no source position).
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// At builds an Error with a known source position (loader errors).
func At(kind Kind, pos Position, source string, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos, Source: source}
}

// Wrap attaches an underlying cause (e.g. an os.PathError from a file
// capability) to an IOError.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: cause}
}
