package chain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// AnchorTx pairs an anchor with the txid it confirms, mirroring the
// (anchor, txid) tuples the transaction graph update is defined as a set of.
type AnchorTx struct {
	Anchor TxAnchor
	Txid   chainhash.Hash
}

// TxGraphUpdate is the update a producer (block emitter or Electrum scanner)
// builds for the caller's transaction graph: a txid-keyed set of
// transactions, a set of (anchor, txid) tuples, and an optional
// outpoint-to-spent-output mapping used for fee visibility. All insertions
// are idempotent.
type TxGraphUpdate struct {
	Txs     map[chainhash.Hash]*wire.MsgTx
	Anchors []AnchorTx
	TxOuts  map[wire.OutPoint]*wire.TxOut
}

// NewTxGraphUpdate returns an empty update.
func NewTxGraphUpdate() *TxGraphUpdate {
	return &TxGraphUpdate{
		Txs:    make(map[chainhash.Hash]*wire.MsgTx),
		TxOuts: make(map[wire.OutPoint]*wire.TxOut),
	}
}

// InsertTx idempotently adds tx to the update and returns its txid.
func (g *TxGraphUpdate) InsertTx(tx *wire.MsgTx) chainhash.Hash {
	txid := tx.TxHash()
	if _, ok := g.Txs[txid]; !ok {
		g.Txs[txid] = tx
	}
	return txid
}

// InsertAnchor idempotently adds the (anchor, txid) tuple, reporting whether
// a new tuple was added.
func (g *TxGraphUpdate) InsertAnchor(txid chainhash.Hash, anchor TxAnchor) bool {
	for _, existing := range g.Anchors {
		if existing.Txid == txid && existing.Anchor.AnchorBlock() == anchor.AnchorBlock() {
			return false
		}
	}
	g.Anchors = append(g.Anchors, AnchorTx{Anchor: anchor, Txid: txid})
	return true
}

// InsertTxOut idempotently records the output spent by outpoint.
func (g *TxGraphUpdate) InsertTxOut(op wire.OutPoint, txOut *wire.TxOut) {
	if _, ok := g.TxOuts[op]; !ok {
		g.TxOuts[op] = txOut
	}
}

// AllAnchors returns every (anchor, txid) tuple recorded in the update.
func (g *TxGraphUpdate) AllAnchors() []AnchorTx {
	return g.Anchors
}

// ChainTip is the minimal surface a checkpoint chain tip must expose for the
// purposes of this package. It is satisfied by *checkpoint.Checkpoint
// without this package needing to import checkpoint (which itself depends on
// chain for BlockID).
type ChainTip interface {
	Height() uint32
	Hash() chainhash.Hash
	BlockID() BlockID
}

// FullScanResult is returned by a keychain-aware Electrum scan: a graph
// update, a chain update, and the highest active script index observed per
// keychain.
type FullScanResult[K comparable] struct {
	GraphUpdate       *TxGraphUpdate
	ChainUpdate       ChainTip
	LastActiveIndices map[K]uint32
}

// SyncResult is returned by a targeted (non-keychain) Electrum sync: a graph
// update and a chain update.
type SyncResult struct {
	GraphUpdate *TxGraphUpdate
	ChainUpdate ChainTip
}
