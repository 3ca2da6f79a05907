// Package chain holds the data types shared between the RPC block emitter
// and the Electrum-backed scanner: block identifiers, transaction anchors,
// and the graph/chain update structures both producers build for the
// caller's local chain and transaction graph.
package chain

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// BlockID identifies a block by height and hash. Two BlockIDs are equal iff
// both fields match.
type BlockID struct {
	Height uint32
	Hash   chainhash.Hash
}

// IsEmpty reports whether b is the zero value.
func (b BlockID) IsEmpty() bool {
	return b == BlockID{}
}

// TxAnchor is evidence that a transaction was included in a specific block.
type TxAnchor interface {
	// AnchorBlock returns the block this anchor ties its transaction to.
	AnchorBlock() BlockID
}

// BlockAnchor is an anchor produced by the RPC block emitter: the block is
// known in full, so no further confirmation evidence is required.
type BlockAnchor struct {
	Block BlockID
}

// AnchorBlock implements TxAnchor.
func (a BlockAnchor) AnchorBlock() BlockID {
	return a.Block
}

// ConfirmationTimeHeightAnchor is an anchor produced by the Electrum scanner
// after validating a Merkle proof against a header fetched at the claimed
// height. The index server is not trusted for the confirmation claim itself;
// this anchor only exists once the proof has checked out against the header
// chain.
type ConfirmationTimeHeightAnchor struct {
	ConfirmationHeight uint32
	ConfirmationTime   uint64
	Block              BlockID
}

// AnchorBlock implements TxAnchor.
func (a ConfirmationTimeHeightAnchor) AnchorBlock() BlockID {
	return a.Block
}
