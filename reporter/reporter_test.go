package reporter_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unrealscript-tools/upp/reporter"
	"github.com/unrealscript-tools/upp/token"
)

func TestAccumulatesBothSeverities(t *testing.T) {
	t.Parallel()

	var h reporter.Handler
	pos := token.Pos{File: "a.uc", Line: 1, Column: 1}

	h.Errorf(pos, "unclosed-string", "unclosed string")
	h.Warnf(pos, "undefined-macro", "undefined macro, substituting 0")

	assert.True(t, h.HasErrors())
	assert.Len(t, h.Errors(), 1)
	assert.Len(t, h.Warnings(), 1)
	assert.Len(t, h.Diagnostics(), 2)
}

func TestNoErrorsUntilOneRecorded(t *testing.T) {
	t.Parallel()

	var h reporter.Handler
	assert.False(t, h.HasErrors())

	h.Warnf(token.Pos{File: "a.uc", Line: 1, Column: 1}, "k", "just a warning")
	assert.False(t, h.HasErrors())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	d := reporter.Diagnostic{
		Severity: reporter.Error,
		Pos:      token.Pos{File: "a.uc", Line: 3, Column: 7},
		Kind:     "unclosed-string",
		Message:  "unclosed string",
	}
	assert.Equal(t, "a.uc(3,7): unclosed string\n", reporter.Format(d))
}

func TestUnwrapKind(t *testing.T) {
	t.Parallel()

	var h reporter.Handler
	d := h.Errorf(token.Pos{File: "a.uc", Line: 1, Column: 1}, "spurious-endif", "spurious endif")

	var ewp reporter.ErrorWithPos = d
	kind, ok := reporter.Kind(errors.Unwrap(ewp))
	assert.True(t, ok)
	assert.Equal(t, "spurious-endif", kind)
}

func TestSortByPosition(t *testing.T) {
	t.Parallel()

	diags := []reporter.Diagnostic{
		{Pos: token.Pos{File: "b.uc", Line: 1, Column: 1}},
		{Pos: token.Pos{File: "a.uc", Line: 2, Column: 1}},
		{Pos: token.Pos{File: "a.uc", Line: 1, Column: 5}},
		{Pos: token.Pos{File: "a.uc", Line: 1, Column: 1}},
	}
	reporter.SortByPosition(diags)

	assert.Equal(t, "a.uc", diags[0].Pos.File)
	assert.Equal(t, 1, diags[0].Pos.Line)
	assert.Equal(t, 1, diags[0].Pos.Column)
	assert.Equal(t, 5, diags[1].Pos.Column)
	assert.Equal(t, 2, diags[2].Pos.Line)
	assert.Equal(t, "b.uc", diags[3].Pos.File)
}
