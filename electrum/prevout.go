package electrum

import "github.com/btcsuite/btcwallet-chainsync/chain"

// fetchPrevTxOuts walks every input of every transaction already present in
// graphUpdate and, for each previous outpoint not already resolved, fetches
// the referenced transaction to recover its spent output. Coinbase inputs
// (a transaction's sole input with an all-zero previous txid) have nothing
// to fetch and are skipped. See spec §4.7, grounded on
// bdk_electrum_client.rs's fetch_prev_txout.
func (c *Client) fetchPrevTxOuts(graphUpdate *chain.TxGraphUpdate) error {
	for _, tx := range graphUpdate.Txs {
		for _, txIn := range tx.TxIn {
			op := txIn.PreviousOutPoint
			if op.Index == ^uint32(0) {
				// Coinbase input: no previous output exists.
				continue
			}
			if _, ok := graphUpdate.TxOuts[op]; ok {
				continue
			}

			prevTx, err := c.fetchTx(op.Hash)
			if err != nil {
				return err
			}
			if int(op.Index) >= len(prevTx.TxOut) {
				continue
			}
			graphUpdate.InsertTxOut(op, prevTx.TxOut[op.Index])
		}
	}
	return nil
}
