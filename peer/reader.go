package peer

import (
	"context"
	"io"

	"github.com/tokenized/spvpeer/logger"
	"github.com/tokenized/spvpeer/threads"

	"github.com/btcsuite/btcd/wire"
)

// startReader spawns the reader worker. It has no external cancellation: per the handshake
// contract the reader terminates only when the socket fails, never on request.
func (p *Peer) startReader(ctx context.Context) {
	p.readerThread = threads.NewThreadWithoutStop("Reader", func(ctx context.Context) error {
		return p.readLoop(ctx)
	})
	p.readerThread.Start(ctx)
}

// readLoop is the reader worker's body. It owns the read half of the connection for the peer's
// entire lifetime.
func (p *Peer) readLoop(ctx context.Context) error {
	defer p.connected.Clear()
	p.connected.Set()

	for {
		msg, _, err := wire.ReadMessage(p.conn, wire.ProtocolVersion, p.network)
		if err != nil {
			if err == io.EOF {
				logger.Info(ctx, "Connection closed by peer")
			} else {
				logger.Warn(ctx, "Read failed: %s", err)
			}
			return err
		}

		if err := p.handleMessage(ctx, msg); err != nil {
			logger.Warn(ctx, "Write during auto-reply failed: %s", err)
			return err
		}
	}
}

// handleMessage applies transparent auto-handling before routing, per the reader worker's
// handling table: Ping gets an immediate Pong, Alert is dropped, GetData is served out of the
// mempool. Everything else is pushed to the mailbox keyed by its own command name.
func (p *Peer) handleMessage(ctx context.Context, msg wire.Message) error {
	switch m := msg.(type) {
	case *wire.MsgPing:
		return p.send(ctx, wire.NewMsgPong(m.Nonce))

	case *wire.MsgAlert:
		return nil

	case *wire.MsgGetData:
		return p.serveGetData(ctx, m)

	default:
		p.registry.Get(msg.Command()).Push(msg)
		return nil
	}
}

// serveGetData partitions the requested inventory into what the mempool has and what it doesn't,
// sending one Tx message per found transaction (in input order) followed by a single NotFound for
// the rest, if any. Block-kind items always land in not-found since the mempool only stores
// transactions.
func (p *Peer) serveGetData(ctx context.Context, m *wire.MsgGetData) error {
	var notFound []*wire.InvVect

	for _, item := range m.InvList {
		tx, ok := p.mempool.GetTx(item)
		if !ok {
			notFound = append(notFound, item)
			continue
		}

		if err := p.send(ctx, tx); err != nil {
			return err
		}
	}

	if len(notFound) == 0 {
		return nil
	}

	reply := wire.NewMsgNotFound()
	reply.InvList = notFound
	return p.send(ctx, reply)
}
