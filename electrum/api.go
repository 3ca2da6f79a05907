// Package electrum implements the Electrum-backed tip sync (C4), the
// gap-limit script-pubkey scan with Merkle-verified anchoring (C5), a
// process-wide transaction cache (C6), and previous-output hydration for
// fee visibility (C7).
package electrum

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// HeaderNotification is the result of subscribing to tip notifications.
type HeaderNotification struct {
	Height uint32
	Header *wire.BlockHeader
}

// HistoryEntry is one entry in a script pubkey's confirmed/unconfirmed
// history, as returned by ScriptGetHistory/BatchScriptGetHistory.
// Height is signed to match the Electrum protocol convention of 0 for
// unconfirmed and negative for unconfirmed-with-unconfirmed-parent.
type HistoryEntry struct {
	TxHash chainhash.Hash
	Height int32
}

// MerkleProof is the result of a transaction_get_merkle call: the branch
// connecting a txid to the Merkle root of the block at BlockHeight.
type MerkleProof struct {
	BlockHeight uint32
	Position    uint32
	Merkle      []chainhash.Hash
}

// API is the subset of an Electrum-style index server this package
// consumes. Out of scope per spec.md §1: the transport and authentication
// underlying this interface. A real implementation (TCP/TLS JSON-RPC,
// framing, reconnect) is the caller's concern; tests satisfy API with an
// in-memory fake.
type API interface {
	// BlockHeadersSubscribe subscribes to tip notifications and returns
	// the server's current height and header.
	BlockHeadersSubscribe() (*HeaderNotification, error)

	// BlockHeaders returns count consecutive headers starting at
	// startHeight.
	BlockHeaders(startHeight, count uint32) ([]*wire.BlockHeader, error)

	// BlockHeader returns the header at height.
	BlockHeader(height uint32) (*wire.BlockHeader, error)

	// BatchScriptGetHistory requests the history of every script in a
	// single round trip, returning one history slice per input script in
	// the same order.
	BatchScriptGetHistory(scripts [][]byte) ([][]HistoryEntry, error)

	// ScriptGetHistory requests the history of a single script.
	ScriptGetHistory(script []byte) ([]HistoryEntry, error)

	// TransactionGet fetches a transaction by txid.
	TransactionGet(txid chainhash.Hash) (*wire.MsgTx, error)

	// TransactionGetMerkle requests a Merkle proof for txid, which the
	// server claims confirmed at height.
	TransactionGetMerkle(txid chainhash.Hash, height uint32) (*MerkleProof, error)

	// TransactionBroadcast submits tx to the network via the server.
	TransactionBroadcast(tx *wire.MsgTx) (chainhash.Hash, error)
}
