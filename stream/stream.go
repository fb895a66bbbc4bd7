// Package stream implements the lexeme list: an intrusive doubly-linked
// list of *token.Lexeme that serves, in turn, as the lexer's output
// buffer, the directive state machine's input/output buffer, and the
// serializer's input. Every lexeme is allocated from the arena of the
// List that created it and keeps that address when spliced into another
// List, so node addresses are stable across arbitrary inserts and
// erasures performed anywhere else in the same list — the property the
// macro expander's cursor-park-and-resume (see upp/macro) depends on.
package stream

import (
	"github.com/unrealscript-tools/upp/internal/arena"
	"github.com/unrealscript-tools/upp/internal/onethread"
	"github.com/unrealscript-tools/upp/token"
)

// List is a doubly-linked list of lexemes with O(1) insert/erase at any
// node and O(1) splice of another List's nodes into this one.
//
// A zero List is empty and ready to use.
type List struct {
	head, tail *token.Lexeme
	length     int
	pool       arena.Arena[token.Lexeme]
	guard      onethread.Guard
}

// Len returns the number of lexemes currently linked into l. This is O(1);
// it is tracked incrementally rather than by walking the list.
func (l *List) Len() int {
	return l.length
}

// Front returns the first lexeme in the list, or nil if it is empty.
func (l *List) Front() *token.Lexeme {
	return l.head
}

// Back returns the last lexeme in the list, or nil if it is empty.
func (l *List) Back() *token.Lexeme {
	return l.tail
}

// Alloc allocates a new, unlinked lexeme from l's arena. The returned
// pointer is stable for the lifetime of l regardless of further
// allocation, linking, or unlinking elsewhere in the list.
func (l *List) Alloc(v token.Lexeme) *token.Lexeme {
	l.guard.Check()
	v.Next, v.Prev = nil, nil
	return l.pool.Alloc(v)
}

// PushBack allocates a copy of v, appends it to the end of the list, and
// returns the new node.
func (l *List) PushBack(v token.Lexeme) *token.Lexeme {
	n := l.Alloc(v)
	l.linkBefore(nil, n)
	return n
}

// InsertBefore allocates a copy of v, links it immediately before at (or
// at the end of the list if at is nil), and returns the new node.
func (l *List) InsertBefore(at *token.Lexeme, v token.Lexeme) *token.Lexeme {
	n := l.Alloc(v)
	l.linkBefore(at, n)
	return n
}

// linkBefore links the already-allocated, unlinked node n immediately
// before at (or at the tail if at is nil). It does not allocate.
func (l *List) linkBefore(at, n *token.Lexeme) {
	l.guard.Check()
	if at == nil {
		n.Prev = l.tail
		n.Next = nil
		if l.tail != nil {
			l.tail.Next = n
		} else {
			l.head = n
		}
		l.tail = n
	} else {
		n.Prev = at.Prev
		n.Next = at
		if at.Prev != nil {
			at.Prev.Next = n
		} else {
			l.head = n
		}
		at.Prev = n
	}
	l.length++
}

// Erase unlinks n from the list. n's own Next/Prev are left pointing at
// their old neighbors (stale but harmless, since n is never touched again
// except by whatever still holds the pointer — e.g. a parked expansion
// cursor that is about to be restored to a different node anyway).
func (l *List) Erase(n *token.Lexeme) {
	l.guard.Check()
	if n.Prev != nil {
		n.Prev.Next = n.Next
	} else {
		l.head = n.Next
	}
	if n.Next != nil {
		n.Next.Prev = n.Prev
	} else {
		l.tail = n.Prev
	}
	l.length--
}

// EraseRange unlinks every node in [from, to), i.e. from up to but not
// including to. to may be nil to erase through the end of the list. This
// is how the directive state machine removes a directive's own tokens in
// one pass (see upp/directive).
func (l *List) EraseRange(from, to *token.Lexeme) {
	for n := from; n != to; {
		next := n.Next
		l.Erase(n)
		n = next
	}
}

// SpliceBefore unlinks every node of other and relinks them, in order,
// immediately before at (or at the end of l if at is nil). other is left
// empty. This is O(1): only the links at the two ends of the spliced run
// are rewired, and no reallocation or copy ever occurs — the nodes keep
// the addresses they were allocated with, even though they now belong to
// l's traversal order. This is how #include splices an included file's lexemes in
// place of the directive that named it.
func (l *List) SpliceBefore(at *token.Lexeme, other *List) {
	l.guard.Check()
	if other.head == nil {
		return
	}

	first, last := other.head, other.tail
	n := other.Len()

	if at == nil {
		first.Prev = l.tail
		if l.tail != nil {
			l.tail.Next = first
		} else {
			l.head = first
		}
		l.tail = last
	} else {
		first.Prev = at.Prev
		last.Next = at
		if at.Prev != nil {
			at.Prev.Next = first
		} else {
			l.head = first
		}
		at.Prev = last
	}

	l.length += n
	other.head, other.tail, other.length = nil, nil, 0
}

// Absorb merges other's arena allocations into l, so that nodes allocated
// by other (but not yet linked into l) remain valid for l's lifetime too.
// It is not called anywhere in this module; #include relies on
// SpliceBefore alone.
func (l *List) Absorb(other *List) {
	// Nothing to do: a spliced node points into the arena storage it was
	// allocated from, which keeps that storage reachable for as long as
	// the node is. Absorb exists so callers can express intent ("this
	// sub-list's storage is now owned by the parent") without the parent
	// needing to know the arena's internal representation.
	_ = other
}
