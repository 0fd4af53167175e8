package peer

import (
	"context"
	"time"

	"github.com/tokenized/spvpeer/mempool"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
)

// blockRequestTimeout bounds GetBlock.
const blockRequestTimeout = 30 * time.Second

// mempoolInvTimeout bounds the initial Inv reply to AskForMempool; it is shorter than the other
// request timeouts because an empty remote mempool produces no reply at all.
const mempoolInvTimeout = 5 * time.Second

// mempoolTxTimeout bounds each individual Tx reply AskForMempool collects after the Inv.
const mempoolTxTimeout = 30 * time.Second

// GetBlock requests the full block identified by hash and awaits the "block" mailbox.
func (p *Peer) GetBlock(ctx context.Context, hash chainhash.Hash) (*wire.MsgBlock, error) {
	getData := wire.NewMsgGetData()
	getData.AddInvVect(wire.NewInvVect(wire.InvTypeWitnessBlock, &hash))

	if err := p.send(ctx, getData); err != nil {
		return nil, err
	}

	reply, ok := p.Recv(wire.CmdBlock, blockRequestTimeout)
	if !ok {
		return nil, errors.Wrap(ErrTimeout, "block")
	}

	block, ok := reply.(*wire.MsgBlock)
	if !ok {
		return nil, errors.Wrap(ErrInvalidResponse, "expected block")
	}

	return block, nil
}

// AskForMempool announces MemPool, then drains every transaction the remote has that the local
// mempool doesn't, inserting each into the mempool as it arrives. A remote with an empty mempool
// never replies at all, so the initial Inv wait uses a short timeout and a miss there is not an
// error.
func (p *Peer) AskForMempool(ctx context.Context) error {
	if err := p.send(ctx, wire.NewMsgMemPool()); err != nil {
		return err
	}

	invMsg, ok := p.Recv(wire.CmdInv, mempoolInvTimeout)
	if !ok {
		return nil // Empty remote mempool, nothing more to do.
	}

	inv, ok := invMsg.(*wire.MsgInv)
	if !ok {
		return errors.Wrap(ErrInvalidResponse, "expected inv")
	}

	var want []*wire.InvVect
	for _, item := range inv.InvList {
		if !mempool.IsTransactionInv(item.Type) {
			continue
		}
		if p.mempool.HasTx(item.Hash) {
			continue
		}
		want = append(want, item)
	}

	if len(want) == 0 {
		return nil
	}

	getData := wire.NewMsgGetData()
	getData.InvList = want
	if err := p.send(ctx, getData); err != nil {
		return err
	}

	for range want {
		txMsg, ok := p.Recv(wire.CmdTx, mempoolTxTimeout)
		if !ok {
			return errors.Wrap(ErrTimeout, "tx")
		}

		tx, ok := txMsg.(*wire.MsgTx)
		if !ok {
			return errors.Wrap(ErrInvalidResponse, "expected tx")
		}

		p.mempool.AddTx(tx)
	}

	return nil
}

// BroadcastTx inserts tx into the local mempool before announcing it, so a subsequent GetData from
// the remote peer can be served out of the mempool.
func (p *Peer) BroadcastTx(ctx context.Context, tx *wire.MsgTx) error {
	p.mempool.AddTx(tx)
	return p.send(ctx, tx)
}
