//go:build onethread_release

package onethread

// Check is a no-op in release builds.
func (g *Guard) Check() {}
