// Package metrics wires a small set of Prometheus collectors for the
// sync core: blocks emitted, mempool transactions emitted, reorgs
// observed, and the active gap-limit scan position. The caller registers
// these into its own prometheus.Registerer; this package never starts an
// HTTP listener of its own, unlike the gRPC-bound exporter it is adapted
// from.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups every metric this module exports. The zero value is
// not usable; construct with New.
type Collectors struct {
	BlocksEmitted    prometheus.Counter
	MempoolTxEmitted prometheus.Counter
	ReorgsObserved   prometheus.Counter
	ScanGapPosition  prometheus.Gauge
	TxCacheSize      prometheus.Gauge
}

// New constructs a Collectors with every metric under the given namespace
// (e.g. "btcwallet_chainsync") and registers them all with reg.
func New(reg prometheus.Registerer, namespace string) (*Collectors, error) {
	c := &Collectors{
		BlocksEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_emitted_total",
			Help:      "Number of blocks emitted by the RPC block emitter, including reorg re-emissions.",
		}),
		MempoolTxEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mempool_tx_emitted_total",
			Help:      "Number of mempool transactions emitted, including reorg-triggered re-emissions.",
		}),
		ReorgsObserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorgs_observed_total",
			Help:      "Number of times the block emitter resolved an agreement point against the node (after a reorg, and also on each re-sync from its checkpoint once caught up).",
		}),
		ScanGapPosition: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_gap_position",
			Help:      "Number of consecutive unused script indices seen by the most recent gap-limit scan.",
		}),
		TxCacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_cache_size",
			Help:      "Number of transactions currently held in the Electrum client's transaction cache.",
		}),
	}

	for _, collector := range []prometheus.Collector{
		c.BlocksEmitted, c.MempoolTxEmitted, c.ReorgsObserved,
		c.ScanGapPosition, c.TxCacheSize,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}

	return c, nil
}
