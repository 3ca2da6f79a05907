// Package bitcoindrpc implements the reorg-resilient block emitter (C2) and
// the deduplicating mempool emitter (C3) that together walk a full node
// forward, keeping a checkpoint chain as the stateful point of resumption.
package bitcoindrpc

import (
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcwallet-chainsync/checkpoint"
	"github.com/btcsuite/btcwallet-chainsync/metrics"
)

// Emitter is a stateful, pull-based producer of "next block (or header) in
// the node's best chain above the emitter's current view". Repeated calls
// after the chain tip is reached return (0, nil, false, nil) until the node
// produces a new block. A single Emitter drives both the block/header
// stream (NextBlock/NextHeader) and the mempool snapshot stream (Mempool);
// they share the running checkpoint view because mempool de-duplication
// needs to know how far the block stream has progressed.
type Emitter struct {
	client NodeClient

	startHeight uint32

	// lastCP is the tip of the emitter's own running view of the best
	// chain, as of the most recent successful poll.
	lastCP *checkpoint.Checkpoint

	// lastBlock caches the node's metadata for the last emitted block.
	// It is cleared whenever the next call must re-discover the
	// emitter's position instead of following nextblockhash.
	lastBlock *btcjson.GetBlockVerboseResult

	// lastMempoolTime is the maximum first-seen time across every
	// mempool transaction emitted by any previous call to Mempool.
	lastMempoolTime uint64

	// lastMempoolTip is last_cp's height as of the end of the previous
	// Mempool call, used to bound which transactions are assumed already
	// seen by a receiver that filters on confirmed ancestors.
	lastMempoolTip *uint32

	// metrics is nil unless the caller opts in with UseMetrics, in which
	// case poll/mempool events increment its counters.
	metrics *metrics.Collectors
}

// UseMetrics wires a Collectors instance into the emitter; blocks emitted,
// reorgs observed, and mempool transactions emitted are then counted
// against it. Safe to call at most once, before the emitter's first poll.
func (e *Emitter) UseMetrics(m *metrics.Collectors) {
	e.metrics = m
}

// NewFromHeight constructs an Emitter that starts scanning from startHeight:
// the first call to NextBlock/NextHeader resolves startHeight to a hash via
// the node and emits from there.
func NewFromHeight(client NodeClient, startHeight uint32) *Emitter {
	return &Emitter{
		client:      client,
		startHeight: startHeight,
	}
}

// NewFromCheckpoint constructs an Emitter that resumes above cp: the emitter
// walks cp tip-to-genesis to find the highest checkpoint still in the node's
// best chain, and emits blocks above it.
func NewFromCheckpoint(client NodeClient, cp *checkpoint.Checkpoint) *Emitter {
	return &Emitter{
		client: client,
		lastCP: cp,
	}
}
