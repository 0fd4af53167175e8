package threads

import (
	"context"
)

// Stopper is implemented by anything with an external shutdown path. Peer.Stop uses this to tear
// down its connection the same way the rest of this codebase tears down a long-running component.
type Stopper interface {
	Stop(context.Context)
}
