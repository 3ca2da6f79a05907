package electrum

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet-chainsync/chain"
	"github.com/btcsuite/btcwallet-chainsync/checkpoint"
)

// headerAt returns a distinct, deterministic header for height, and
// registers it with api so BlockHeader/BlockHeaders can find it later.
// Its real BlockHash() (not a fabricated one) is what every check in these
// tests compares against, since tipsync.go only ever deals in hashes
// produced by hdr.BlockHash().
func headerAt(api *fakeAPI, height uint32) *wire.BlockHeader {
	hdr := &wire.BlockHeader{Nonce: height}
	api.headers[height] = hdr
	return hdr
}

// cpChain builds a checkpoint chain whose hash at each height is the real
// BlockHash() of the header registered with api at that height.
func cpChain(api *fakeAPI, heights ...uint32) *checkpoint.Checkpoint {
	var tip *checkpoint.Checkpoint
	for _, h := range heights {
		hdr := headerAt(api, h)
		id := chain.BlockID{Height: h, Hash: hdr.BlockHash()}
		if tip == nil {
			tip = checkpoint.New(id)
			continue
		}
		var err error
		tip, err = tip.Push(id)
		if err != nil {
			panic(err)
		}
	}
	return tip
}

func TestFetchTipAndLatestBlocksExtendsWithoutReorg(t *testing.T) {
	api := newFakeAPI()

	prevTip := cpChain(api, 8, 9, 10)

	api.tipHeight = 12
	for _, h := range []uint32{5, 6, 7, 11, 12} {
		headerAt(api, h)
	}

	c := NewClient(api)
	newTip, recent, err := c.fetchTipAndLatestBlocks(prevTip)
	if err != nil {
		t.Fatalf("fetchTipAndLatestBlocks: %v", err)
	}
	if newTip.Height() != 12 {
		t.Fatalf("expected new tip height 12, got %d", newTip.Height())
	}
	if len(recent) == 0 {
		t.Fatalf("expected a non-empty recent-blocks window")
	}
	got10, ok := newTip.Get(10)
	if !ok || got10.Hash() != prevTip.Hash() {
		t.Fatalf("expected height 10 to survive into new tip with prevTip's hash")
	}
	got8, ok := newTip.Get(8)
	if !ok || got8.Hash() != api.headers[8].BlockHash() {
		t.Fatalf("expected shared prefix at height 8 preserved")
	}
}

func TestFetchTipAndLatestBlocksNoUpdateWhenServerBehind(t *testing.T) {
	api := newFakeAPI()
	prevTip := cpChain(api, 5, 6, 7)

	api.tipHeight = 3
	headerAt(api, 3)

	c := NewClient(api)
	newTip, recent, err := c.fetchTipAndLatestBlocks(prevTip)
	if err != nil {
		t.Fatalf("fetchTipAndLatestBlocks: %v", err)
	}
	if newTip != prevTip {
		t.Fatalf("expected tip unchanged when server is behind client")
	}
	if len(recent) != 0 {
		t.Fatalf("expected no recent blocks reported when server is behind")
	}
}

func TestFetchTipAndLatestBlocksHandlesReorg(t *testing.T) {
	api := newFakeAPI()
	prevTip := cpChain(api, 8, 9, 10)

	for _, h := range []uint32{4, 5, 6, 7} {
		headerAt(api, h)
	}

	// Reorg: heights 9 and 10 get replaced with different headers, and the
	// server's new tip is 11.
	api.headers[9] = &wire.BlockHeader{Nonce: 900}
	api.headers[10] = &wire.BlockHeader{Nonce: 1000}
	api.tipHeight = 11
	headerAt(api, 11)

	c := NewClient(api)
	newTip, _, err := c.fetchTipAndLatestBlocks(prevTip)
	if err != nil {
		t.Fatalf("fetchTipAndLatestBlocks: %v", err)
	}
	if newTip.Height() != 11 {
		t.Fatalf("expected new tip height 11, got %d", newTip.Height())
	}
	got9, ok := newTip.Get(9)
	if !ok {
		t.Fatalf("expected height 9 present after reorg")
	}
	if got9.Hash() != api.headers[9].BlockHash() {
		t.Fatalf("expected height 9 to carry the reorged-to hash")
	}
	got8, ok := newTip.Get(8)
	if !ok || got8.Hash() != api.headers[8].BlockHash() {
		t.Fatalf("expected height 8 (agreement point) to survive the reorg untouched")
	}
}
