package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unrealscript-tools/upp/stream"
	"github.com/unrealscript-tools/upp/token"
)

func collect(l *stream.List) []string {
	var out []string
	for n := l.Front(); n != nil; n = n.Next {
		out = append(out, n.Text)
	}
	return out
}

func TestPushBackOrder(t *testing.T) {
	t.Parallel()

	var l stream.List
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "b"})
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})

	assert.Equal(t, []string{"a", "b", "c"}, collect(&l))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "a", l.Front().Text)
	assert.Equal(t, "c", l.Back().Text)
}

func TestInsertBeforeStableAddress(t *testing.T) {
	t.Parallel()

	var l stream.List
	a := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})
	c := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})

	b := l.InsertBefore(c, token.Lexeme{Kind: token.Identifier, Text: "b"})

	assert.Equal(t, []string{"a", "b", "c"}, collect(&l))
	assert.Same(t, a, l.Front())
	assert.Same(t, b, a.Next)
	assert.Same(t, c, b.Next)

	// Addresses handed out earlier remain valid after more allocation and
	// linking elsewhere in the same list.
	for i := range 64 {
		l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "x"})
		_ = i
	}
	assert.Equal(t, "a", a.Text)
	assert.Equal(t, "b", b.Text)
	assert.Equal(t, "c", c.Text)
}

func TestErase(t *testing.T) {
	t.Parallel()

	var l stream.List
	a := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})
	b := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "b"})
	c := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})

	l.Erase(b)
	assert.Equal(t, []string{"a", "c"}, collect(&l))
	assert.Equal(t, 2, l.Len())
	assert.Same(t, c, a.Next)
	assert.Same(t, a, c.Prev)

	l.Erase(a)
	assert.Equal(t, []string{"c"}, collect(&l))
	assert.Same(t, c, l.Front())
	assert.Same(t, c, l.Back())

	l.Erase(c)
	assert.Equal(t, 0, l.Len())
	assert.Nil(t, l.Front())
	assert.Nil(t, l.Back())
}

func TestEraseRange(t *testing.T) {
	t.Parallel()

	var l stream.List
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})
	b := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "b"})
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "d"})
	e := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "e"})

	l.EraseRange(b, e)
	assert.Equal(t, []string{"a", "e"}, collect(&l))

	l.EraseRange(e, nil)
	assert.Equal(t, []string{"a"}, collect(&l))
}

func TestSpliceBeforeMiddle(t *testing.T) {
	t.Parallel()

	var l stream.List
	a := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})
	d := l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "d"})

	var inc stream.List
	inc.PushBack(token.Lexeme{Kind: token.Identifier, Text: "b"})
	inc.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})

	l.SpliceBefore(d, &inc)

	assert.Equal(t, []string{"a", "b", "c", "d"}, collect(&l))
	assert.Equal(t, 4, l.Len())
	assert.Equal(t, 0, inc.Len())
	require.Nil(t, inc.Front())
	assert.Same(t, a, l.Front())
}

func TestSpliceBeforeEnd(t *testing.T) {
	t.Parallel()

	var l stream.List
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})

	var tail stream.List
	tail.PushBack(token.Lexeme{Kind: token.Identifier, Text: "b"})
	tail.PushBack(token.Lexeme{Kind: token.Identifier, Text: "c"})

	l.SpliceBefore(nil, &tail)

	assert.Equal(t, []string{"a", "b", "c"}, collect(&l))
	assert.Same(t, l.Back(), l.Back())
	assert.Equal(t, "c", l.Back().Text)
}

func TestSpliceEmptyOtherIsNoop(t *testing.T) {
	t.Parallel()

	var l stream.List
	l.PushBack(token.Lexeme{Kind: token.Identifier, Text: "a"})

	var empty stream.List
	l.SpliceBefore(nil, &empty)

	assert.Equal(t, []string{"a"}, collect(&l))
}
