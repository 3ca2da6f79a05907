package electrum

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet-chainsync/chain"
)

// fakeAPI is an in-memory stand-in for an Electrum-style index server,
// enough to drive FullScan/Sync/tip-sync without any network.
type fakeAPI struct {
	tipHeight uint32
	headers   map[uint32]*wire.BlockHeader

	// history maps a script's hex-ish key (we just use string(script)) to
	// its entries.
	history map[string][]HistoryEntry

	txs map[chainhash.Hash]*wire.MsgTx

	merkle map[chainhash.Hash]*MerkleProof

	broadcastErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		headers: make(map[uint32]*wire.BlockHeader),
		history: make(map[string][]HistoryEntry),
		txs:     make(map[chainhash.Hash]*wire.MsgTx),
		merkle:  make(map[chainhash.Hash]*MerkleProof),
	}
}

func (f *fakeAPI) setHeader(height uint32, hash byte) *wire.BlockHeader {
	hdr := &wire.BlockHeader{Nonce: uint32(hash)}
	f.headers[height] = hdr
	return hdr
}

func (f *fakeAPI) BlockHeadersSubscribe() (*HeaderNotification, error) {
	hdr := f.headers[f.tipHeight]
	return &HeaderNotification{Height: f.tipHeight, Header: hdr}, nil
}

func (f *fakeAPI) BlockHeaders(startHeight, count uint32) ([]*wire.BlockHeader, error) {
	out := make([]*wire.BlockHeader, 0, count)
	for h := startHeight; h < startHeight+count; h++ {
		hdr, ok := f.headers[h]
		if !ok {
			break
		}
		out = append(out, hdr)
	}
	return out, nil
}

func (f *fakeAPI) BlockHeader(height uint32) (*wire.BlockHeader, error) {
	hdr, ok := f.headers[height]
	if !ok {
		return nil, errors.New("fakeAPI: no header at height")
	}
	return hdr, nil
}

func (f *fakeAPI) BatchScriptGetHistory(scripts [][]byte) ([][]HistoryEntry, error) {
	out := make([][]HistoryEntry, len(scripts))
	for i, s := range scripts {
		out[i] = f.history[string(s)]
	}
	return out, nil
}

func (f *fakeAPI) ScriptGetHistory(script []byte) ([]HistoryEntry, error) {
	return f.history[string(script)], nil
}

func (f *fakeAPI) TransactionGet(txid chainhash.Hash) (*wire.MsgTx, error) {
	tx, ok := f.txs[txid]
	if !ok {
		return nil, &ProtocolError{Err: errors.New("fakeAPI: unknown txid")}
	}
	return tx, nil
}

func (f *fakeAPI) TransactionGetMerkle(txid chainhash.Hash, height uint32) (*MerkleProof, error) {
	proof, ok := f.merkle[txid]
	if !ok {
		return nil, errors.New("fakeAPI: no merkle proof")
	}
	return proof, nil
}

func (f *fakeAPI) TransactionBroadcast(tx *wire.MsgTx) (chainhash.Hash, error) {
	if f.broadcastErr != nil {
		return chainhash.Hash{}, f.broadcastErr
	}
	return tx.TxHash(), nil
}

// txWithSpk builds a single-output transaction paying to spk, with a value
// distinguishing it from other fixture transactions.
func txWithSpk(spk []byte, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(value, spk))
	return tx
}

func TestFullScanStopsAtGapLimit(t *testing.T) {
	api := newFakeAPI()
	api.tipHeight = 10
	api.setHeader(10, 0xAA)

	const stopGap = 3
	spks := make([]IndexedSpk, 0, 6)
	for i := uint32(0); i < 6; i++ {
		spk := []byte{byte(i)}
		spks = append(spks, IndexedSpk{Index: i, Spk: spk})
	}
	// Only index 1 has history; everything else is unused. Gap limit 3
	// means the scan gives up once more than 3 consecutive indices above
	// the last active one come back empty (here at index 5).
	tx := txWithSpk(spks[1].Spk, 1000)
	api.txs[tx.TxHash()] = tx
	api.history[string(spks[1].Spk)] = []HistoryEntry{{TxHash: tx.TxHash(), Height: 0}}

	c := NewClient(api)
	res, err := FullScan(c, nil, map[string][]IndexedSpk{"external": spks}, stopGap, 100, false)
	if err != nil {
		t.Fatalf("FullScan: %v", err)
	}

	lastActive, ok := res.LastActiveIndices["external"]
	if !ok || lastActive != 1 {
		t.Fatalf("expected last active index 1, got %v (ok=%v)", lastActive, ok)
	}
	if _, ok := res.GraphUpdate.Txs[tx.TxHash()]; !ok {
		t.Fatalf("expected discovered tx in graph update")
	}
}

func TestFullScanRejectsNonPositiveStopGap(t *testing.T) {
	api := newFakeAPI()
	api.tipHeight = 0
	api.setHeader(0, 1)
	c := NewClient(api)

	_, err := FullScan(c, nil, map[string][]IndexedSpk{}, 0, 10, false)
	if err == nil {
		t.Fatalf("expected error for stop_gap=0")
	}
}

func TestFetchTxUsesCacheBeforeNetwork(t *testing.T) {
	api := newFakeAPI()
	tx := txWithSpk([]byte{1, 2, 3}, 42)
	api.txs[tx.TxHash()] = tx

	c := NewClient(api)
	first, err := c.fetchTx(tx.TxHash())
	if err != nil {
		t.Fatalf("fetchTx: %v", err)
	}
	if first != tx {
		t.Fatalf("expected fetched tx to match fixture")
	}

	// Remove from the fake network entirely; a cache hit must still
	// succeed.
	delete(api.txs, tx.TxHash())
	second, err := c.fetchTx(tx.TxHash())
	if err != nil {
		t.Fatalf("fetchTx from cache: %v", err)
	}
	if second != tx {
		t.Fatalf("expected cached tx to match fixture")
	}
}

func TestSyncResolvesOutpointAndTxid(t *testing.T) {
	api := newFakeAPI()
	api.tipHeight = 5
	api.setHeader(5, 0x55)

	spk := []byte{9, 9}
	residingTx := txWithSpk(spk, 500)
	api.txs[residingTx.TxHash()] = residingTx

	spendingTx := wire.NewMsgTx(wire.TxVersion)
	spendingTx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: residingTx.TxHash(), Index: 0},
	})
	api.txs[spendingTx.TxHash()] = spendingTx

	api.history[string(spk)] = []HistoryEntry{
		{TxHash: residingTx.TxHash(), Height: 3},
		{TxHash: spendingTx.TxHash(), Height: 4},
	}

	c := NewClient(api)
	op := wire.OutPoint{Hash: residingTx.TxHash(), Index: 0}
	res, err := c.Sync(nil, nil, []wire.OutPoint{op}, []chainhash.Hash{residingTx.TxHash()}, 50, true)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if _, ok := res.GraphUpdate.Txs[residingTx.TxHash()]; !ok {
		t.Fatalf("expected residing tx in graph update")
	}
	if _, ok := res.GraphUpdate.Txs[spendingTx.TxHash()]; !ok {
		t.Fatalf("expected spending tx in graph update")
	}
}

func TestBroadcastPropagatesError(t *testing.T) {
	api := newFakeAPI()
	api.broadcastErr = errors.New("boom")
	c := NewClient(api)

	_, err := c.Broadcast(wire.NewMsgTx(wire.TxVersion))
	if err == nil {
		t.Fatalf("expected broadcast error to propagate")
	}
}

func TestPopulateTxCacheAvoidsRefetch(t *testing.T) {
	api := newFakeAPI()
	tx := txWithSpk([]byte{7}, 1)
	update := chain.NewTxGraphUpdate()
	update.InsertTx(tx)

	c := NewClient(api)
	c.PopulateTxCache(update)

	got, err := c.fetchTx(tx.TxHash())
	if err != nil {
		t.Fatalf("fetchTx: %v", err)
	}
	if got.TxHash() != tx.TxHash() {
		t.Fatalf("unexpected tx returned from seeded cache")
	}
}
