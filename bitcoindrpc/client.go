package bitcoindrpc

import (
	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
)

// NodeClient is the subset of a full-node RPC client the emitter consumes.
// It is deliberately narrow and is satisfied structurally (no explicit
// assertion needed) by *rpcclient.Client from
// github.com/btcsuite/btcd/rpcclient, the way chain.BitcoindClient wraps the
// same client in lnd's bitcoindnotify package. Tests satisfy it with an
// in-memory fake instead of standing up a node.
type NodeClient interface {
	// GetBlockHash returns the hash of the block at height in the node's
	// current best-chain view.
	GetBlockHash(height int64) (*chainhash.Hash, error)

	// GetBlockVerbose returns metadata for the block identified by hash,
	// including its negative-on-reorg confirmations count and
	// previous/next block hash linkage.
	GetBlockVerbose(hash *chainhash.Hash) (*btcjson.GetBlockVerboseResult, error)

	// GetBlockHeader returns the header for the block identified by hash.
	GetBlockHeader(hash *chainhash.Hash) (*wire.BlockHeader, error)

	// GetBlock returns the full block identified by hash.
	GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error)

	// GetRawMempoolVerbose returns every mempool transaction keyed by
	// txid, with first-seen time and originating height.
	GetRawMempoolVerbose() (map[string]btcjson.GetRawMempoolVerboseResult, error)

	// GetRawTransaction fetches a transaction by txid. It returns an
	// error satisfying IsNotFound if the node no longer has the
	// transaction (confirmed-and-pruned-from-mempool-index, or evicted).
	GetRawTransaction(txHash *chainhash.Hash) (*btcutil.Tx, error)
}
