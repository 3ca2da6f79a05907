package bitcoindrpc

import "github.com/btcsuite/btclog"

// log is the package-scoped logger used by the emitter. It defaults to a
// no-op so the package is silent until a caller wires in a real logger, the
// same convention chainntnfs and every other btcsuite/lnd subsystem follows.
var log btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by the emitter.
func UseLogger(logger btclog.Logger) {
	log = logger
}
