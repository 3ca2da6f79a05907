package electrum

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet-chainsync/chain"
)

// populateWithSpks runs the gap-limit loop over spks (already in the
// caller's intended enumeration order), inserting every discovered
// transaction and anchor into graphUpdate. It returns the highest active
// index observed, if any. See spec §4.4.
func (c *Client) populateWithSpks(
	graphUpdate *chain.TxGraphUpdate,
	spks []IndexedSpk,
	stopGap int,
	batchSize int,
) (lastActiveIndex uint32, active bool, err error) {

	unusedSpkCount := 0
	pos := 0

	for pos < len(spks) {
		end := pos + batchSize
		if end > len(spks) {
			end = len(spks)
		}
		batch := spks[pos:end]
		pos = end

		scripts := make([][]byte, len(batch))
		for i, s := range batch {
			scripts[i] = s.Spk
		}

		histories, err := c.API.BatchScriptGetHistory(scripts)
		if err != nil {
			return 0, false, wrapTransportErr("blockchain.scripthash.get_history (batch)", err)
		}

		// Histories must be processed in request order: unusedSpkCount
		// is only well-defined if we preserve the input order here.
		for i, history := range histories {
			if len(history) == 0 {
				unusedSpkCount++
				if c.metrics != nil {
					c.metrics.ScanGapPosition.Set(float64(unusedSpkCount))
				}
				if unusedSpkCount > stopGap {
					return lastActiveIndex, active, nil
				}
				continue
			}

			lastActiveIndex = batch[i].Index
			active = true
			unusedSpkCount = 0

			for _, entry := range history {
				tx, err := c.fetchTx(entry.TxHash)
				if err != nil {
					return 0, false, wrapTransportErr("blockchain.transaction.get", err)
				}
				graphUpdate.InsertTx(tx)
				if err := c.validateMerkleForAnchor(graphUpdate, entry.TxHash, heightForProof(entry.Height)); err != nil {
					return 0, false, wrapTransportErr("validate merkle anchor", err)
				}
			}
		}
	}

	return lastActiveIndex, active, nil
}

// heightForProof clamps a history entry's signed height (0 or negative for
// unconfirmed) down to the only value a Merkle-proof request can sensibly
// use. An unconfirmed entry has no proof to request; callers that see
// height <= 0 should not expect an anchor to result.
func heightForProof(height int32) uint32 {
	if height <= 0 {
		return 0
	}
	return uint32(height)
}

// populateWithOutpoints resolves, for each outpoint, the transaction in
// which it resides and (if found) the transaction that spends it. See
// spec §4.4's "Outpoint-targeted scan".
func (c *Client) populateWithOutpoints(graphUpdate *chain.TxGraphUpdate, outpoints []wire.OutPoint) error {
	for _, outpoint := range outpoints {
		opTx, err := c.fetchTx(outpoint.Hash)
		if err != nil {
			return wrapTransportErr("blockchain.transaction.get(outpoint)", err)
		}
		if int(outpoint.Index) >= len(opTx.TxOut) {
			continue
		}
		spk := opTx.TxOut[outpoint.Index].PkScript

		history, err := c.API.ScriptGetHistory(spk)
		if err != nil {
			return wrapTransportErr("blockchain.scripthash.get_history(outpoint)", err)
		}

		hasResiding := false
		hasSpending := false
		for _, res := range history {
			if hasResiding && hasSpending {
				break
			}

			if !hasResiding && res.TxHash == outpoint.Hash {
				hasResiding = true
				graphUpdate.InsertTx(opTx)
				if err := c.validateMerkleForAnchor(graphUpdate, res.TxHash, heightForProof(res.Height)); err != nil {
					return wrapTransportErr("validate merkle anchor(outpoint)", err)
				}
			}

			if !hasSpending && res.TxHash != outpoint.Hash {
				resTx, err := c.fetchTx(res.TxHash)
				if err != nil {
					return wrapTransportErr("blockchain.transaction.get(spending)", err)
				}
				spends := false
				for _, in := range resTx.TxIn {
					if in.PreviousOutPoint == outpoint {
						spends = true
						break
					}
				}
				if !spends {
					continue
				}
				hasSpending = true
				graphUpdate.InsertTx(resTx)
				if err := c.validateMerkleForAnchor(graphUpdate, res.TxHash, heightForProof(res.Height)); err != nil {
					return wrapTransportErr("validate merkle anchor(spending)", err)
				}
			}
		}
	}
	return nil
}

// populateWithTxids resolves confirmation status for a set of specific
// txids via their first output's script history (the only way the Electrum
// protocol exposes confirmation status directly). A txid the server does
// not recognize is skipped, not an error. See spec §4.4's "Txid-targeted
// scan".
func (c *Client) populateWithTxids(graphUpdate *chain.TxGraphUpdate, txids []chainhash.Hash) error {
	for _, txid := range txids {
		tx, err := c.fetchTx(txid)
		if err != nil {
			if IsProtocolError(err) {
				continue
			}
			return wrapTransportErr("blockchain.transaction.get(txid)", err)
		}

		if len(tx.TxOut) == 0 {
			graphUpdate.InsertTx(tx)
			continue
		}
		spk := tx.TxOut[0].PkScript

		history, err := c.API.ScriptGetHistory(spk)
		if err != nil {
			return wrapTransportErr("blockchain.scripthash.get_history(txid)", err)
		}
		for _, res := range history {
			if res.TxHash == txid {
				if err := c.validateMerkleForAnchor(graphUpdate, txid, heightForProof(res.Height)); err != nil {
					return wrapTransportErr("validate merkle anchor(txid)", err)
				}
				break
			}
		}

		graphUpdate.InsertTx(tx)
	}
	return nil
}
