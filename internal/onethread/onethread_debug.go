//go:build !onethread_release

package onethread

import (
	"fmt"

	"github.com/petermattis/goid"
)

// Check panics if g has previously been used by a different goroutine than
// the one calling Check now.
func (g *Guard) Check() {
	cur := goid.Get()
	if g.id == 0 {
		g.id = cur
		return
	}
	if g.id != cur {
		panic(fmt.Sprintf("onethread: value used from goroutine %d after being bound to goroutine %d", cur, g.id))
	}
}
