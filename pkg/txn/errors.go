package txn

import "errors"

var (
	ErrNoInstructions      = errors.New("transaction requires at least one instruction")
	ErrMissingSigner       = errors.New("missing required signer")
	ErrNetworkUnavailable  = errors.New("network unavailable")
	ErrSubmissionRejected  = errors.New("transaction submission rejected")
	ErrConfirmationTimeout = errors.New("timed out waiting for transaction confirmation")
)
