package bitcoindrpc

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// MempoolTx pairs a mempool transaction with the first-seen time bitcoind
// recorded for it.
type MempoolTx struct {
	Tx        *wire.MsgTx
	FirstSeen uint64
}

// Mempool emits each mempool transaction at most once across calls, except
// when the caller cannot yet have seen the block confirming one of the
// transaction's ancestors — in that case the transaction is re-emitted until
// that block has been emitted by NextBlock/NextHeader. See spec §4.2.
func (e *Emitter) Mempool() ([]MempoolTx, error) {
	prevTip := uint32(0)
	if e.lastMempoolTip != nil {
		prevTip = *e.lastMempoolTip
	} else if e.startHeight > 0 {
		prevTip = e.startHeight - 1
	}
	prevTime := e.lastMempoolTime
	latestTime := prevTime

	entries, err := e.client.GetRawMempoolVerbose()
	if err != nil {
		return nil, wrapTransportErr("get_raw_mempool_verbose", err)
	}

	var out []MempoolTx
	for txidStr, entry := range entries {
		seenTime := uint64(entry.Time)
		if seenTime > latestTime {
			latestTime = seenTime
		}

		alreadyEmitted := seenTime <= prevTime && uint32(entry.Height) <= prevTip
		if alreadyEmitted {
			continue
		}

		txid, err := chainhash.NewHashFromStr(txidStr)
		if err != nil {
			return nil, wrapTransportErr("parse mempool txid", err)
		}

		tx, err := e.client.GetRawTransaction(txid)
		if err != nil {
			if IsNotFound(err) {
				// Confirmed or evicted since
				// get_raw_mempool_verbose; drop silently.
				continue
			}
			return nil, wrapTransportErr("get_raw_transaction(mempool)", err)
		}

		out = append(out, MempoolTx{Tx: tx.MsgTx(), FirstSeen: seenTime})
	}

	e.lastMempoolTime = latestTime
	if e.lastCP != nil {
		h := e.lastCP.Height()
		e.lastMempoolTip = &h
	}

	if e.metrics != nil && len(out) > 0 {
		e.metrics.MempoolTxEmitted.Add(float64(len(out)))
	}

	return out, nil
}
