package electrum

import "github.com/btcsuite/btclog"

// log is the package-scoped logger, silent until a caller wires one in via
// UseLogger — the same convention used throughout the btcsuite/lnd stack
// (see bitcoindrpc.UseLogger).
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by the Electrum client.
func UseLogger(logger btclog.Logger) {
	log = logger
}
