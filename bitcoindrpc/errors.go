package bitcoindrpc

import (
	"github.com/btcsuite/btcd/btcjson"
	goerrors "github.com/go-errors/errors"
)

// errCodeNotFound is bitcoind's RPC_INVALID_ADDRESS_OR_KEY code, overloaded
// by getrawtransaction to mean "no such mempool or blockchain transaction".
// It is the only error code the emitter treats specially: a race in the
// mempool path where a transaction confirmed or was evicted between
// get_raw_mempool_verbose and get_raw_transaction.
const errCodeNotFound btcjson.RPCErrorCode = -5

// IsNotFound reports whether err is bitcoind's "tx/block not found" signal.
// It is only ever used to silently drop a mempool race; it must never be
// used to suppress errors from the block/header poll path, where a
// not-found response is not expected and should propagate like any other
// transport error.
func IsNotFound(err error) bool {
	rpcErr, ok := asRPCError(err)
	return ok && rpcErr.Code == errCodeNotFound
}

func asRPCError(err error) (*btcjson.RPCError, bool) {
	for err != nil {
		if rpcErr, ok := err.(*btcjson.RPCError); ok {
			return rpcErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// wrapTransportErr annotates a transport failure with a stack trace and the
// operation that failed, so a caller debugging a stuck emitter can tell
// where in the poll loop the RPC call broke down. Not-found comparisons
// (IsNotFound) are always performed on the original error before wrapping,
// so wrapping never changes error-classification behavior.
func wrapTransportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return goerrors.WrapPrefix(err, op, 1)
}
