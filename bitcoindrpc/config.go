package bitcoindrpc

import "github.com/btcsuite/btcd/rpcclient"

// Config is the set of configuration data needed to dial a full node's RPC
// server and locate the emitter's starting position. It follows the
// `long`/`description` struct-tag convention monitoring.PrometheusConfig
// uses for the caller's flag parser; this package never calls flags.Parse
// itself.
type Config struct {
	// RPCHost is the host:port of the full node's RPC listener.
	RPCHost string `long:"rpchost" description:"the host:port of the bitcoind RPC server to connect to"`

	// RPCUser is the username for RPC authentication.
	RPCUser string `long:"rpcuser" description:"username for RPC connections"`

	// RPCPass is the password for RPC authentication.
	RPCPass string `long:"rpcpass" description:"password for RPC connections"`

	// DisableTLS disables TLS for the RPC connection, e.g. for a node
	// listening on localhost only.
	DisableTLS bool `long:"norpctls" description:"disable TLS for the RPC connection"`

	// StartHeight is the height NewFromHeight resolves its first poll
	// against when no prior checkpoint chain is available.
	StartHeight uint32 `long:"startheight" description:"block height to begin emitting from when no checkpoint is available"`
}

// Dial opens an HTTP POST-mode RPC connection per cfg, in the style
// bitcoindnotify.New configures rpcclient.ConnConfig before handing it to
// rpcclient.New: no websocket notification handlers, connection established
// immediately rather than deferred to a separate Start call, since this
// package is pull-based and has no Start/Stop lifecycle of its own.
func Dial(cfg *Config) (*rpcclient.Client, error) {
	connCfg := &rpcclient.ConnConfig{
		Host:         cfg.RPCHost,
		User:         cfg.RPCUser,
		Pass:         cfg.RPCPass,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}
	return rpcclient.New(connCfg, nil)
}
