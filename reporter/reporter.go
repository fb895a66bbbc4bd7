// Package reporter accumulates warnings and errors produced while
// preprocessing a file. Unlike the teacher library's reporter, which can
// abort a parse the moment its configured ErrorReporter returns a non-nil
// error, this Handler never aborts: every diagnostic is accumulated, and
// the run is judged successful or not only once processing is complete
// (Handler.HasErrors), matching the accumulate-don't-throw error model.
package reporter

import (
	"fmt"
	"sync"

	"github.com/unrealscript-tools/upp/token"
)

// Severity distinguishes a Diagnostic that merely warns from one that
// fails the run.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one accumulated warning or error.
type Diagnostic struct {
	Severity Severity
	Pos      token.Pos
	Kind     string
	Message  string
}

// Error implements the error interface, along with ErrorWithPos.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// GetPosition implements ErrorWithPos.
func (d Diagnostic) GetPosition() token.Pos {
	return d.Pos
}

// Unwrap implements ErrorWithPos, exposing the diagnostic's message as a
// plain error so callers can use errors.As/errors.Is against the taxonomy
// tag rather than parsing rendered text; see ErrorWithPos.
func (d Diagnostic) Unwrap() error {
	return kindError{kind: d.Kind, message: d.Message}
}

// kindError lets callers match on Diagnostic.Kind via errors.As without
// this package exporting one type per taxonomy entry.
type kindError struct {
	kind    string
	message string
}

func (e kindError) Error() string { return e.message }

// Kind returns the taxonomy tag of an error produced by Diagnostic.Unwrap.
func Kind(err error) (string, bool) {
	if ke, ok := err.(kindError); ok {
		return ke.kind, true
	}
	return "", false
}

// ErrorWithPos is the interface every Diagnostic satisfies, adapted
// directly from the teacher library's reporter package: it lets an
// embedder use errors.As/errors.Is against the underlying error kind
// while a driver renders the fixed one-line or caret-snippet format.
type ErrorWithPos interface {
	error
	GetPosition() token.Pos
	Unwrap() error
}

// Handler accumulates diagnostics. The zero Handler is empty and ready to
// use. A Handler is safe for concurrent use, since the resolver's
// directory-probing goroutines may need to report I/O diagnostics
// alongside the single preprocessing goroutine's own.
type Handler struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Errorf records an error-severity diagnostic of the given taxonomy kind
// and returns it.
func (h *Handler) Errorf(pos token.Pos, kind, format string, args ...any) Diagnostic {
	return h.record(Error, pos, kind, format, args...)
}

// Warnf records a warning-severity diagnostic of the given taxonomy kind
// and returns it.
func (h *Handler) Warnf(pos token.Pos, kind, format string, args ...any) Diagnostic {
	return h.record(Warning, pos, kind, format, args...)
}

func (h *Handler) record(sev Severity, pos token.Pos, kind, format string, args ...any) Diagnostic {
	d := Diagnostic{Severity: sev, Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
	h.mu.Lock()
	h.diags = append(h.diags, d)
	h.mu.Unlock()
	return d
}

// Diagnostics returns every diagnostic recorded so far, in recording
// order.
func (h *Handler) Diagnostics() []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Diagnostic, len(h.diags))
	copy(out, h.diags)
	return out
}

// Errors returns only the error-severity diagnostics, in recording order.
func (h *Handler) Errors() []Diagnostic {
	return h.filter(Error)
}

// Warnings returns only the warning-severity diagnostics, in recording
// order.
func (h *Handler) Warnings() []Diagnostic {
	return h.filter(Warning)
}

func (h *Handler) filter(sev Severity) []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Diagnostic
	for _, d := range h.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error-severity diagnostic has been
// recorded. The run is successful iff this is false at termination.
func (h *Handler) HasErrors() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, d := range h.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}
