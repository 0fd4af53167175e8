// Package mempool holds the process-wide set of unconfirmed transactions a
// peer has learned about. A single Mempool is shared across every Peer in a
// process: any peer's reader worker may insert into it, and any peer's
// inventory handling may serve a GetData out of it.
package mempool

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// IsTransactionInv reports whether t names a transaction (witness or not), as opposed to a block
// or filtered-block item. wire.InvType is defined in an upstream package, so this can't be a
// method on it the way the old in-tree InvType was.
func IsTransactionInv(t wire.InvType) bool {
	switch t {
	case wire.InvTypeTx, wire.InvTypeWitnessTx:
		return true
	default:
		return false
	}
}

// Mempool is a concurrent mapping from transaction id to transaction body.
// It is add-only from the perspective of the peer package: nothing in this
// module ever removes an entry. An external collaborator that wants to
// prune it is responsible for its own synchronization against concurrent
// readers.
type Mempool struct {
	mutex sync.RWMutex
	txs   map[chainhash.Hash]*wire.MsgTx
}

// NewMempool returns an empty, ready to use Mempool.
func NewMempool() *Mempool {
	return &Mempool{
		txs: make(map[chainhash.Hash]*wire.MsgTx),
	}
}

// AddTx inserts tx under its Txid. Inserting a transaction whose Txid is
// already present overwrites the existing entry; since Txid is content
// addressed this is semantically a no-op.
func (p *Mempool) AddTx(tx *wire.MsgTx) {
	if tx == nil {
		return
	}

	txid := tx.TxHash()

	p.mutex.Lock()
	p.txs[txid] = tx
	p.mutex.Unlock()
}

// GetTx returns the transaction referenced by item if item names a
// transaction (by txid or wtxid, reinterpreting a wtxid's bytes directly as
// a txid) and that transaction is present. Block-kind items always miss.
func (p *Mempool) GetTx(item *wire.InvVect) (*wire.MsgTx, bool) {
	if item == nil || !IsTransactionInv(item.Type) {
		return nil, false
	}

	p.mutex.RLock()
	tx, ok := p.txs[item.Hash]
	p.mutex.RUnlock()
	return tx, ok
}

// HasTx reports whether txid is present in the mempool.
func (p *Mempool) HasTx(txid chainhash.Hash) bool {
	p.mutex.RLock()
	_, ok := p.txs[txid]
	p.mutex.RUnlock()
	return ok
}

// IterTxs returns a snapshot copy of every transaction currently held, in
// unspecified order. Callers can range over the result without holding any
// internal lock.
func (p *Mempool) IterTxs() []*wire.MsgTx {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	result := make([]*wire.MsgTx, 0, len(p.txs))
	for _, tx := range p.txs {
		result = append(result, tx)
	}
	return result
}

// Len returns the number of transactions currently held.
func (p *Mempool) Len() int {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return len(p.txs)
}
