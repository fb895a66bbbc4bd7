package macro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrealscript-tools/upp/macro"
	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

func TestDefineLookupUndef(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "FOO", Replacement: []token.Lexeme{
		{Kind: token.Decimal, Text: "1"},
	}})

	assert.True(t, table.Defined("FOO"))
	d, ok := table.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "1", d.Replacement[0].Text)

	assert.True(t, table.Undef("FOO"))
	assert.False(t, table.Defined("FOO"))
	assert.False(t, table.Undef("FOO"))
}

func TestRedefinitionReplaces(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "X", Replacement: []token.Lexeme{{Kind: token.Decimal, Text: "1"}}})
	table.Define(&macro.Definition{Name: "X", Replacement: []token.Lexeme{{Kind: token.Decimal, Text: "2"}}})

	d, ok := table.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, "2", d.Replacement[0].Text)
	assert.Equal(t, 1, table.Len())
}

func TestDumpIsNameOrdered(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "ZEBRA"})
	table.Define(&macro.Definition{Name: "APPLE"})
	table.Define(&macro.Definition{Name: "MANGO"})

	dump := table.Dump()
	require.Len(t, dump, 3)
	assert.Equal(t, []string{"APPLE", "MANGO", "ZEBRA"}, []string{dump[0].Name, dump[1].Name, dump[2].Name})
}

func TestIdenticalReplacementTextIsInterned(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "A", Replacement: []token.Lexeme{{Kind: token.Decimal, Text: "0"}}})
	table.Define(&macro.Definition{Name: "B", Replacement: []token.Lexeme{{Kind: token.Decimal, Text: "0"}}})

	a, _ := table.Lookup("A")
	b, _ := table.Lookup("B")
	assert.Equal(t, "0", a.Replacement[0].Text)
	assert.Equal(t, a.Replacement[0].Text, b.Replacement[0].Text)
}

func buildList(kinds []token.Kind, texts []string) (*stream.List, *token.Lexeme) {
	var list stream.List
	for i, k := range kinds {
		list.PushBack(token.Lexeme{Kind: k, Text: texts[i]})
	}
	return &list, list.Front()
}

// drain runs e's dispatch over list to completion, the way
// directive.Machine's own loop does, and returns the residual kinds
// left in the list once every expansion and MetaUsedDefinePop marker
// has been fully processed.
func drain(e *macro.Expander, list *stream.List) []token.Kind {
	cur := list.Front()
	for cur != nil {
		cur = e.Step(list, cur)
	}
	var out []token.Kind
	for n := list.Front(); n != nil; n = n.Next {
		out = append(out, n.Kind)
	}
	return out
}

func TestExpandObjectLikeMacro(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "FOO", Replacement: []token.Lexeme{
		{Kind: token.Decimal, Text: "1"},
		{Kind: token.Plus, Text: "+"},
		{Kind: token.Decimal, Text: "2"},
	}})

	list, _ := buildList([]token.Kind{token.Identifier}, []string{"FOO"})
	e := macro.NewExpander(&table)

	assert.Equal(t, []token.Kind{token.Decimal, token.Plus, token.Decimal}, drain(e, list))
	assert.Equal(t, 0, e.Stack.Depth())
}

func TestSelfReferentialMacroDoesNotRecurse(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{Name: "FOO", Replacement: []token.Lexeme{
		{Kind: token.Identifier, Text: "FOO"},
	}})

	list, _ := buildList([]token.Kind{token.Identifier}, []string{"FOO"})
	e := macro.NewExpander(&table)

	// The inner FOO is spliced in while the outer activation is still
	// on the stack, so it must survive unexpanded: exactly one residual
	// identifier, not an infinite or repeated substitution.
	assert.Equal(t, []token.Kind{token.Identifier}, drain(e, list))
	assert.Equal(t, "FOO", list.Front().Text)
	assert.Equal(t, 0, e.Stack.Depth())
}

func TestUndefinedIdentifierPassesThroughUnchanged(t *testing.T) {
	t.Parallel()

	var table macro.Table
	list, _ := buildList([]token.Kind{token.Identifier}, []string{"BAR"})
	e := macro.NewExpander(&table)

	assert.Equal(t, []token.Kind{token.Identifier}, drain(e, list))
}

func TestFunctionLikeMacroNeverExpands(t *testing.T) {
	t.Parallel()

	var table macro.Table
	table.Define(&macro.Definition{
		Name:          "FOO",
		HasParameters: true,
		Replacement:   []token.Lexeme{{Kind: token.Decimal, Text: "1"}},
	})

	list, _ := buildList([]token.Kind{token.Identifier}, []string{"FOO"})
	e := macro.NewExpander(&table)

	assert.Equal(t, []token.Kind{token.Identifier}, drain(e, list))
}
