// Package peer implements a single Bitcoin P2P connection: handshake, full-duplex framed message
// multiplexing between a synchronous request/response API and a background reader, and the
// compact-filter and inventory exchanges built on top of it.
package peer

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/tokenized/spvpeer/logger"
	"github.com/tokenized/spvpeer/mailbox"
	"github.com/tokenized/spvpeer/mempool"
	"github.com/tokenized/spvpeer/threads"

	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// SubSystem is used by the logger package.
const SubSystem = "Peer"

// Peer owns the writer half of a single Bitcoin P2P connection, the response mailbox registry,
// the shared connected flag, the shared mempool, the reader worker, and the negotiated version.
// The reader worker owns the read half exclusively; see reader.go.
type Peer struct {
	network Network
	conn    net.Conn

	// sessionID correlates every log line for this connection, across the reader goroutine and
	// every caller goroutine, the way a request trace id does.
	sessionID string

	writerMutex sync.Mutex

	registry  *mailbox.Registry
	mempool   *mempool.Mempool
	connected *threads.AtomicFlag

	readerThread *threads.Thread

	versionMutex sync.Mutex
	version      *wire.MsgVersion
}

// newPeer constructs a Peer around an already-open connection. It does not write anything to the
// wire or start the reader; callers use fromStream to do both in the right order.
func newPeer(conn net.Conn, mempool *mempool.Mempool, network Network) *Peer {
	return &Peer{
		network:   network,
		conn:      conn,
		registry:  mailbox.NewRegistry(),
		mempool:   mempool,
		connected: threads.NewAtomicFlag(),
	}
}

// GetVersion returns the remote peer's negotiated VersionMessage. Only valid after a successful
// handshake.
func (p *Peer) GetVersion() *wire.MsgVersion {
	p.versionMutex.Lock()
	defer p.versionMutex.Unlock()
	return p.version
}

func (p *Peer) setVersion(version *wire.MsgVersion) {
	p.versionMutex.Lock()
	defer p.versionMutex.Unlock()
	p.version = version
}

// SessionID returns the connection's log trace id, assigned once at connect time.
func (p *Peer) SessionID() string {
	return p.sessionID
}

// GetNetwork returns the Network tag this peer was configured with.
func (p *Peer) GetNetwork() Network {
	return p.network
}

// GetMempool returns the mempool handle shared by this peer.
func (p *Peer) GetMempool() *mempool.Mempool {
	return p.mempool
}

// IsConnected reports whether the reader worker is still running. It flips to false at most once,
// irreversibly, when the reader exits.
func (p *Peer) IsConnected() bool {
	return p.connected.IsSet()
}

// Stop closes the underlying connection, which unblocks the reader worker's pending read with an
// error and clears the connected flag. Peer implements threads.Stopper so it can be torn down the
// same way the rest of this codebase tears down a long-running component, even though the reader
// itself still has no separate stop signal: it only ever terminates via a socket failure, and this
// just causes one locally instead of waiting for the remote end to cause one.
func (p *Peer) Stop(ctx context.Context) {
	ctx = logger.ContextWithLogTrace(ctx, p.sessionID)
	if err := p.conn.Close(); err != nil {
		logger.Warn(ctx, "Close: %s", err)
	}
}

// Send frames msg under this peer's network magic and writes it to the socket, holding the writer
// lock for the duration of the single frame write. Callers must never hold the writer lock while
// calling Recv: the reader may need it to auto-reply to a Ping before it can deliver the awaited
// message.
func (p *Peer) Send(ctx context.Context, msg wire.Message) error {
	return p.send(ctx, msg)
}

func (p *Peer) send(ctx context.Context, msg wire.Message) error {
	p.writerMutex.Lock()
	defer p.writerMutex.Unlock()

	ctx = logger.ContextWithLogTrace(ctx, p.sessionID)
	logger.VerboseWithFields(ctx, []logger.Field{logger.String("command", msg.Command())},
		"Sending message")

	if err := wire.WriteMessage(p.conn, msg, wire.ProtocolVersion, p.network); err != nil {
		if _, encodeFailure := err.(*wire.MessageError); encodeFailure {
			return errors.Wrap(ErrDataCorruption, err.Error())
		}
		return errors.Wrap(err, "write")
	}

	return nil
}

// Recv obtains the mailbox for command, creating it if absent, and waits for a message or for
// timeout to elapse. A zero timeout waits forever. Returns (nil, false) on timeout.
func (p *Peer) Recv(command string, timeout time.Duration) (wire.Message, bool) {
	box := p.registry.Get(command)
	return box.Recv(timeout)
}
