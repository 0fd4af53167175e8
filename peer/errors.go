package peer

import "github.com/pkg/errors"

// Sentinel errors for the peer error taxonomy. Use errors.Cause(err) to recover one of these from
// a wrapped error returned by this package, mirroring the ErrXxx sentinels in spynode/client.
var (
	// ErrDataCorruption means a wire encode or decode failure, a checksum mismatch, or a length
	// mismatch. The peer may still be usable if the reader survived.
	ErrDataCorruption = errors.New("Data Corruption")

	// ErrInvalidResponse means a mailbox returned a message inconsistent with the request: wrong
	// filter type, or a variant other than the one awaited.
	ErrInvalidResponse = errors.New("Invalid Response")

	// ErrTimeout means recv returned nothing before its deadline where the caller required a
	// value.
	ErrTimeout = errors.New("Timeout")

	// ErrNotConnected names the state after the reader observed a socket error and cleared the
	// connected flag. Send and Recv do not return it: after a disconnect Send fails with the
	// underlying write error and Recv waits until its timeout.
	ErrNotConnected = errors.New("Not Connected")

	// ErrSystemTime means the local clock read before the Unix epoch during handshake.
	ErrSystemTime = errors.New("System Time Invalid")
)
