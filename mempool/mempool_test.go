package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
)

func TestMempoolAddAndGet(t *testing.T) {
	pool := NewMempool()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.LockTime = 1
	txid := tx.TxHash()

	pool.AddTx(tx)

	if !pool.HasTx(txid) {
		t.Fatal("HasTx = false after AddTx")
	}

	got, ok := pool.GetTx(wire.NewInvVect(wire.InvTypeTx, &txid))
	if !ok {
		t.Fatal("GetTx = not found after AddTx")
	}
	if got != tx {
		t.Errorf("GetTx returned a different transaction than inserted")
	}
}

func TestMempoolWitnessAliasing(t *testing.T) {
	pool := NewMempool()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.LockTime = 2
	txid := tx.TxHash()
	pool.AddTx(tx)

	// A WitnessTransaction item whose bytes equal the txid must still hit:
	// the mempool does not distinguish wtxid from txid.
	got, ok := pool.GetTx(wire.NewInvVect(wire.InvTypeWitnessTx, &txid))
	if !ok {
		t.Fatal("GetTx(WitnessTransaction) = not found, want hit via txid aliasing")
	}
	if got != tx {
		t.Errorf("GetTx(WitnessTransaction) returned wrong transaction")
	}
}

func TestMempoolBlockItemNeverHits(t *testing.T) {
	pool := NewMempool()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.LockTime = 3
	txid := tx.TxHash()
	pool.AddTx(tx)

	if _, ok := pool.GetTx(wire.NewInvVect(wire.InvTypeBlock, &txid)); ok {
		t.Error("GetTx(Block(_)) unexpectedly hit; block items must always miss")
	}
}

func TestMempoolIdempotentInsert(t *testing.T) {
	pool := NewMempool()
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.LockTime = 4
	pool.AddTx(tx)
	pool.AddTx(tx)

	if pool.Len() != 1 {
		t.Errorf("Len() = %d after repeated identical insert, want 1", pool.Len())
	}
}

func TestMempoolIterSnapshot(t *testing.T) {
	pool := NewMempool()
	tx1 := wire.NewMsgTx(wire.TxVersion)
	tx1.LockTime = 5
	tx2 := wire.NewMsgTx(wire.TxVersion)
	tx2.LockTime = 6
	pool.AddTx(tx1)
	pool.AddTx(tx2)

	snap := pool.IterTxs()
	if len(snap) != 2 {
		t.Fatalf("IterTxs returned %d transactions, want 2", len(snap))
	}

	tx3 := wire.NewMsgTx(wire.TxVersion)
	tx3.LockTime = 7
	pool.AddTx(tx3)
	if len(snap) != 2 {
		t.Errorf("snapshot mutated after later AddTx, len = %d", len(snap))
	}
}
