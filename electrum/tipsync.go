package electrum

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcwallet-chainsync/chain"
	"github.com/btcsuite/btcwallet-chainsync/checkpoint"
)

// fetchTipAndLatestBlocks atomically fetches the server's current tip and a
// dense height->hash mapping for the most recent chainSuffixLength blocks,
// then reconciles that against prevTip to produce the new tip. See spec
// §4.3.
func (c *Client) fetchTipAndLatestBlocks(prevTip *checkpoint.Checkpoint) (*checkpoint.Checkpoint, map[uint32]chainhash.Hash, error) {
	notif, err := c.API.BlockHeadersSubscribe()
	if err != nil {
		return nil, nil, wrapTransportErr("blockchain.headers.subscribe", err)
	}
	serverHeight := notif.Height

	if prevTip != nil && serverHeight < prevTip.Height() {
		// The client considers itself ahead of the server; no update.
		return prevTip, map[uint32]chainhash.Hash{}, nil
	}

	startHeight := uint32(0)
	if serverHeight+1 > chainSuffixLength {
		startHeight = serverHeight - chainSuffixLength + 1
	}
	headers, err := c.API.BlockHeaders(startHeight, chainSuffixLength)
	if err != nil {
		return nil, nil, wrapTransportErr("blockchain.block.headers", err)
	}

	recentBlocks := make(map[uint32]chainhash.Hash, len(headers))
	for i, hdr := range headers {
		recentBlocks[startHeight+uint32(i)] = hdr.BlockHash()
	}

	var agreementCP *checkpoint.Checkpoint
	if prevTip != nil {
		for _, cp := range prevTip.Iter() {
			height := cp.Height()
			hash, ok := recentBlocks[height]
			if !ok {
				hdr, err := c.API.BlockHeader(height)
				if err != nil {
					return nil, nil, wrapTransportErr("blockchain.block.header", err)
				}
				hash = hdr.BlockHash()
				recentBlocks[height] = hash
			}
			if hash == cp.Hash() {
				agreementCP = cp
				break
			}
		}
	}

	var agreementHeight uint32
	haveAgreement := agreementCP != nil
	if haveAgreement {
		agreementHeight = agreementCP.Height()
	}

	newTip := agreementCP
	for height := startHeight; height <= serverHeight; height++ {
		if haveAgreement && height <= agreementHeight {
			continue
		}
		hash := recentBlocks[height]
		id := chain.BlockID{Height: height, Hash: hash}
		if newTip == nil {
			newTip = checkpoint.New(id)
			continue
		}
		pushed, err := newTip.Push(id)
		if err != nil {
			return nil, nil, wrapTransportErr("checkpoint push", err)
		}
		newTip = pushed
	}

	if newTip == nil {
		// No agreement point and no blocks in range: only possible if
		// the server reports a height below 0, which cannot happen.
		// Guard anyway rather than returning a nil tip.
		return nil, nil, errNoCheckpointsProduced
	}

	return newTip, recentBlocks, nil
}
