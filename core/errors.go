package core

import "errors"

var (
	// ErrWrongNetwork is returned for requests signed for another deployment.
	ErrWrongNetwork = errors.New("core: request network mismatch")
	// ErrNonceMismatch is returned when a request nonce is not the next
	// expected nonce of its signer.
	ErrNonceMismatch = errors.New("core: nonce mismatch")
	// ErrUnknownRequestType is returned for unsupported request types.
	ErrUnknownRequestType = errors.New("core: unknown request type")
	// ErrInvalidPayload wraps payload decoding and field parsing failures.
	ErrInvalidPayload = errors.New("core: invalid request payload")
	// ErrNilRequest is returned when no request is supplied.
	ErrNilRequest = errors.New("core: nil request")
)
