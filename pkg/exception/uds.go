package exception

import "errors"

// UDS errors
var (
	ErrEmptyPathUDS     = errors.New("uds: empty path")
	ErrListeningUDS     = errors.New("uds: already listening")
	ErrNotListeningUDS  = errors.New("uds: not listening")
	ErrPathNotSocketUDS = errors.New("uds: path exists and is not a socket")

	// ErrFrameTooLarge is returned when a frame exceeds the size limit of the
	// reading side.
	ErrFrameTooLarge = errors.New("uds: frame too large")
)

// Relay errors
var (
	ErrRelayUnknownRequest = errors.New("relay: unknown request type")
	ErrRelayClosed         = errors.New("relay: connection closed")
	ErrRelayResponse       = errors.New("relay: request rejected")
)

// Store errors
var (
	ErrStoreUnknownDriver = errors.New("store: unknown driver")
	ErrStoreClosed        = errors.New("store: closed")
)
