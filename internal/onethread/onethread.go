// Package onethread asserts that a value is only ever touched from a
// single goroutine over its lifetime. The lexeme list, the macro table,
// and the directive state machine all rely on being driven by exactly one
// goroutine per preprocessor run (concurrency happens one level up, across
// independent runs, in upp/resolver's directory probing) — a stray call
// from a second goroutine would corrupt an intrusive list silently rather
// than racing visibly, so debug builds catch it eagerly instead.
//
// Guard itself is declared here; its Check method has two implementations
// selected by build tag (see onethread_debug.go, onethread_release.go) so
// that the assertion costs nothing in a release binary.
package onethread

// Guard records the goroutine that first used it and, in debug builds,
// panics if a different goroutine ever calls Check on it.
//
// A zero Guard is unchecked until first use.
type Guard struct {
	id int64
}
