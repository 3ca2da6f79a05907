package electrum

import (
	"errors"

	goerrors "github.com/go-errors/errors"
)

// errNoCheckpointsProduced indicates a bug in fetchTipAndLatestBlocks: the
// recent-blocks window is never empty, so this should be unreachable.
var errNoCheckpointsProduced = errors.New("electrum: tip sync produced no checkpoints")

// ProtocolError wraps a server-side Electrum protocol error (as opposed to a
// transport failure). It is used by the txid-targeted scan to distinguish
// "this txid is simply unknown to the server" from a genuine I/O failure.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return "electrum protocol error: " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsProtocolError reports whether err is a server-side protocol error.
func IsProtocolError(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr)
}

// wrapTransportErr annotates a transport or protocol failure with a stack
// trace and the operation that failed, the same convention bitcoindrpc's
// wrapTransportErr follows. Any IsProtocolError/IsNotFound-style
// classification must happen on the original error before this is called;
// wrapping must never change classification behavior.
func wrapTransportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return goerrors.WrapPrefix(err, op, 1)
}
