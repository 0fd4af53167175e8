package threads

import (
	"github.com/pkg/errors"
)

// Interrupted means the function was interrupted by the interrupt channel and the function
// did not finish. It can be used to ensure that if a calling function uses the caller's
// interrupt channel then the calling function will still return if it receives the interrupt
// and the child function is interrupted.
var Interrupted = errors.New("Interrupted")
