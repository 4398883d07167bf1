// internal/chain/errors.go
package chain

import "errors"

var (
	// ErrNoSigner is returned before any network call when no signing agent
	// is configured for an execute.
	ErrNoSigner = errors.New("no signing agent configured")

	// ErrMalformedResponse marks a contract response that failed schema
	// validation at the boundary.
	ErrMalformedResponse = errors.New("malformed contract response")

	// ErrExecuteRejected marks an execute the contract or the chain refused.
	// The contract is the final arbiter; callers must not retry.
	ErrExecuteRejected = errors.New("execute rejected")
)
