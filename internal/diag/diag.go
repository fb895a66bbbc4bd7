// Package diag renders accumulated reporter.Diagnostics for the driver:
// the fixed one-line §6 format by default, or a three-line caret
// snippet under --verbose.
//
// Grounded on SPEC_FULL.md §4.7's prescription to use
// github.com/rivo/uniseg grapheme segmentation (uniseg.StepString) for
// caret placement, carried over
// from the teacher's go.mod (protocompile depends on uniseg for its own
// diagnostic column math over UTF-8 source); reused here for the same
// reason, generalized from protobuf source text to this dialect's
// "bytes above 127 are just whitespace" lexical model (§4.1), which
// still means a diagnostic's byte column can fall strictly inside a
// multi-byte grapheme cluster that started before it.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/unrealscript-tools/upp/reporter"
)

// WriteLine renders d in the fixed "{file}({line},{column}): {message}"
// format of §6, terminated by a newline.
func WriteLine(w io.Writer, d reporter.Diagnostic) error {
	_, err := io.WriteString(w, reporter.Format(d))
	return err
}

// WriteVerbose renders d as a three-line snippet: the offending source
// line, a caret line, and the message, using source (the full contents
// of d.Pos.File) to recover the offending line's text.
func WriteVerbose(w io.Writer, d reporter.Diagnostic, source []byte) error {
	line := sourceLine(source, d.Pos.Line)
	caretCol := caretColumn(line, d.Pos.Column)

	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	if caretCol > 0 {
		b.WriteString(strings.Repeat(" ", caretCol-1))
	}
	b.WriteString("^\n")
	fmt.Fprintf(&b, "%s: %s\n", d.Severity, d.Message)

	_, err := io.WriteString(w, b.String())
	return err
}

// sourceLine returns the text of the 1-based nth line of source, with
// no trailing line terminator, or "" if source has fewer lines.
func sourceLine(source []byte, n int) string {
	start := len(source)
	line := 1
	for i := 0; i < len(source); i++ {
		if line == n {
			start = i
			break
		}
		if source[i] == '\n' {
			line++
		}
	}
	if line != n {
		return ""
	}
	end := start
	for end < len(source) && source[end] != '\n' && source[end] != '\r' {
		end++
	}
	return string(source[start:end])
}

// caretColumn walks line grapheme cluster by grapheme cluster,
// accumulating one terminal column per cluster, until it has consumed
// byteCol-1 bytes of line — i.e. it converts a byte offset into the
// visual column a terminal would place the caret under, so a
// multi-byte cluster preceding the diagnostic's byte doesn't shift the
// caret off the intended character.
func caretColumn(line string, byteCol int) int {
	col := 0
	consumed := 0
	state := -1
	rest := line
	for len(rest) > 0 && consumed < byteCol-1 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		consumed += len(cluster)
		col++
	}
	return col + 1
}
