package bitcoindrpc

import (
	"testing"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/wire"
)

// TestMempoolReemitsAfterReorgLowersTip exercises invariant 2(a) from
// spec.md §8: a transaction is re-emitted if a reorg lowers last_mempool_tip
// below the height at which it originally entered the mempool.
func TestMempoolReemitsAfterReorgLowersTip(t *testing.T) {
	node := newFakeNode()
	node.mine(5, 0xAA)

	e := NewFromHeight(node, 1)
	for {
		_, _, ok, _ := e.NextBlock()
		if !ok {
			break
		}
	}

	txA := &wire.MsgTx{Version: 1}
	txidA := txA.TxHash()
	node.mempoolTxs[txidA.String()] = txA
	node.mempool[txidA.String()] = btcjson.GetRawMempoolVerboseResult{
		Time:   100,
		Height: 4,
	}

	first, err := e.Mempool()
	if err != nil {
		t.Fatalf("Mempool: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected tx to be emitted once, got %d", len(first))
	}

	if again, err := e.Mempool(); err != nil || len(again) != 0 {
		t.Fatalf("expected no re-emission before reorg, got %v err=%v", again, err)
	}

	// Reorg depth 3 brings the tip back below height 4, the tx's
	// originally-seen height. Re-sync the block stream first, the way a
	// real caller would.
	node.reorg(3, 0xBB)
	for {
		_, _, ok, _ := e.NextBlock()
		if !ok {
			break
		}
	}

	reemitted, err := e.Mempool()
	if err != nil {
		t.Fatalf("Mempool after reorg: %v", err)
	}
	if len(reemitted) != 1 {
		t.Fatalf("expected tx to be re-emitted after reorg, got %d", len(reemitted))
	}
}
