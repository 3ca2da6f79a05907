package electrum

// Config is the set of configuration data needed to dial an Electrum-style
// index server. It follows the same `long`/`description` struct-tag
// convention as bitcoindrpc.Config and monitoring.PrometheusConfig, for the
// caller's flag parser to embed.
type Config struct {
	// ServerAddr is the host:port of the Electrum server to connect to.
	ServerAddr string `long:"serveraddr" description:"the host:port of the Electrum server to connect to"`

	// DisableTLS connects in plaintext instead of over TLS.
	DisableTLS bool `long:"notls" description:"disable TLS for the Electrum server connection"`

	// StopGap is a gap limit for the caller to pass as FullScan's stopGap
	// argument; FullScan itself does not read Config.
	StopGap int `long:"stopgap" description:"number of consecutive unused script indices before a keychain's scan stops"`

	// BatchSize is a number of scripts per
	// blockchain.scripthash.get_history request, for the caller to pass as
	// FullScan's or Sync's batchSize argument; neither reads Config.
	BatchSize int `long:"batchsize" description:"number of scripts to request history for per batch"`
}
