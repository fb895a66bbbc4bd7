package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unrealscript-tools/upp/token"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind token.Kind
		want string
	}{
		{token.Identifier, "IDENTIFIER"},
		{token.Ushr, ">>>"},
		{token.MetaUsedDefinePop, "META_USED_DEFINE_POP"},
		{token.EOF, "EOF"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.kind.String())
	}
}

func TestKindIsNumeric(t *testing.T) {
	t.Parallel()

	for _, k := range []token.Kind{token.Octal, token.Decimal, token.Hexadecimal, token.Float} {
		assert.True(t, k.IsNumeric(), "%v should be numeric", k)
	}
	for _, k := range []token.Kind{token.Identifier, token.Whitespace, token.Plus} {
		assert.False(t, k.IsNumeric(), "%v should not be numeric", k)
	}
}

func TestPosString(t *testing.T) {
	t.Parallel()

	pos := token.Pos{File: "a.uc", Line: 3, Column: 7}
	assert.Equal(t, "a.uc(3,7)", pos.String())
}

func TestLexemeIsSignificant(t *testing.T) {
	t.Parallel()

	ws := &token.Lexeme{Kind: token.Whitespace}
	id := &token.Lexeme{Kind: token.Identifier, Text: "FOO"}
	assert.False(t, ws.IsSignificant())
	assert.True(t, id.IsSignificant())
}

func TestLexemeClone(t *testing.T) {
	t.Parallel()

	prev := &token.Lexeme{Kind: token.Identifier, Text: "prev"}
	next := &token.Lexeme{Kind: token.Identifier, Text: "next"}
	l := &token.Lexeme{Kind: token.Identifier, Text: "X", Prev: prev, Next: next}

	c := l.Clone()
	assert.Equal(t, token.Identifier, c.Kind)
	assert.Equal(t, "X", c.Text)
	assert.Nil(t, c.Next)
	assert.Nil(t, c.Prev)
}
