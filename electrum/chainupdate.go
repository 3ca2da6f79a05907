package electrum

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet-chainsync/chain"
	"github.com/btcsuite/btcwallet-chainsync/checkpoint"
)

// chainUpdate inserts a checkpoint for every anchor height at or below tip's
// height that does not already have one, preferring the hash observed in
// recentBlocks (the atomically-fetched window from fetchTipAndLatestBlocks)
// and falling back to the anchor's own Merkle-verified block hash when the
// height falls outside that window. See spec §4.5.
func chainUpdate(tip *checkpoint.Checkpoint, recentBlocks map[uint32]chainhash.Hash, anchors []chain.AnchorTx) *checkpoint.Checkpoint {
	for _, a := range anchors {
		block := a.Anchor.AnchorBlock()
		if block.Height > tip.Height() {
			continue
		}
		if _, ok := tip.Get(block.Height); ok {
			continue
		}

		hash, ok := recentBlocks[block.Height]
		if !ok {
			hash = block.Hash
		}
		tip = tip.Insert(chain.BlockID{Height: block.Height, Hash: hash})
	}
	return tip
}
