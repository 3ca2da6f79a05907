package electrum

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet-chainsync/chain"
)

// txCache is a process-wide, mutex-guarded memo of fetched transactions
// keyed by txid. The lock is never held across a network fetch: a
// concurrent miss may fetch the same txid twice, and the second insert just
// replaces the first, which is fine since transactions are immutable given
// their txid. Eviction is not implemented; the cache is bounded by the
// caller's working set, as spec.md §4.6 allows.
type txCache struct {
	mu  sync.Mutex
	txs map[chainhash.Hash]*wire.MsgTx
}

func newTxCache() *txCache {
	return &txCache{txs: make(map[chainhash.Hash]*wire.MsgTx)}
}

func (c *txCache) get(txid chainhash.Hash) (*wire.MsgTx, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[txid]
	return tx, ok
}

func (c *txCache) put(txid chainhash.Hash, tx *wire.MsgTx) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txid] = tx
}

func (c *txCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.txs)
}

// populate seeds the cache from an existing graph update, e.g. one the
// caller's transaction graph already holds, so a rescan doesn't refetch
// transactions it already has.
func (c *txCache) populate(update *chain.TxGraphUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for txid, tx := range update.Txs {
		c.txs[txid] = tx
	}
}
