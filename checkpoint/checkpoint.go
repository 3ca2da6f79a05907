// Package checkpoint implements the client's running view of the best
// chain: a singly linked, oldest-first-rooted sequence of (height, hash)
// checkpoints. Forks that share an old prefix share the same predecessor
// pointers rather than copying them, the way bdk_chain's local_chain
// CheckPoint shares Arc'd prefixes — ordinary Go pointer sharing plus the
// garbage collector gives us that for free, no refcounting required.
//
// A *Checkpoint is immutable once constructed: Push and Insert never mutate
// the receiver, they return a new tip that (possibly) points at all or part
// of the old chain.
package checkpoint

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet-chainsync/chain"
)

// Checkpoint is one node in the chain, the tip of everything beneath it.
type Checkpoint struct {
	block chain.BlockID
	prev  *Checkpoint
}

// New returns a single-element chain rooted (and tipped) at block.
func New(block chain.BlockID) *Checkpoint {
	return &Checkpoint{block: block}
}

// Height returns this checkpoint's height.
func (c *Checkpoint) Height() uint32 {
	if c == nil {
		return 0
	}
	return c.block.Height
}

// Hash returns this checkpoint's block hash.
func (c *Checkpoint) Hash() chainhash.Hash {
	if c == nil {
		return chainhash.Hash{}
	}
	return c.block.Hash
}

// BlockID returns this checkpoint's (height, hash) pair.
func (c *Checkpoint) BlockID() chain.BlockID {
	if c == nil {
		return chain.BlockID{}
	}
	return c.block
}

// Iter walks the chain tip-to-genesis, returning the checkpoints from
// highest height to lowest (inclusive of c itself). The chain is small
// enough in practice (bounded by reorg depth plus a short window) that a
// materialized slice is simpler and just as idiomatic here as a lazy
// iterator would be.
func (c *Checkpoint) Iter() []*Checkpoint {
	var out []*Checkpoint
	for cur := c; cur != nil; cur = cur.prev {
		out = append(out, cur)
	}
	return out
}

// Get returns the checkpoint at height, if one exists in this chain.
func (c *Checkpoint) Get(height uint32) (*Checkpoint, bool) {
	for cur := c; cur != nil; cur = cur.prev {
		if cur.block.Height == height {
			return cur, true
		}
		if cur.block.Height < height {
			break
		}
	}
	return nil, false
}

// ErrNonIncreasingHeight is returned by Push when the pushed height does not
// strictly exceed the current tip's height.
var ErrNonIncreasingHeight = fmt.Errorf("checkpoint: pushed height must exceed current tip height")

// Push extends the chain with a new tip above the current one. It fails only
// if block's height does not strictly exceed c's height.
func (c *Checkpoint) Push(block chain.BlockID) (*Checkpoint, error) {
	if c != nil && block.Height <= c.block.Height {
		return nil, ErrNonIncreasingHeight
	}
	return &Checkpoint{block: block, prev: c}, nil
}

// Insert splices block into the chain at its height, replacing any existing
// checkpoint at that height, and returns the new tip. Heights above block's
// height are preserved (re-pushed on top of the spliced-in checkpoint);
// heights below are left untouched as the shared prefix. If block's height
// exceeds the current tip's height, Insert is equivalent to Push.
func (c *Checkpoint) Insert(block chain.BlockID) *Checkpoint {
	if c == nil || block.Height > c.block.Height {
		out, err := c.Push(block)
		if err != nil {
			// c != nil and block.Height > c.block.Height was just
			// checked above, so Push cannot fail here.
			panic(err)
		}
		return out
	}

	// Collect every checkpoint strictly above block's height; these will
	// be re-pushed on top of the spliced-in node in the same order.
	var above []chain.BlockID
	cur := c
	for cur != nil && cur.block.Height > block.Height {
		above = append(above, cur.block)
		cur = cur.prev
	}

	// cur is now either nil, or sitting at block's height (replaced) or
	// below it (the shared prefix to splice onto).
	var base *Checkpoint
	if cur != nil && cur.block.Height == block.Height {
		base = cur.prev
	} else {
		base = cur
	}

	result := &Checkpoint{block: block, prev: base}
	for i := len(above) - 1; i >= 0; i-- {
		result = &Checkpoint{block: above[i], prev: result}
	}
	return result
}
