package darksim

import "errors"

// Sentinel errors for configuration.
var (
	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidBiasFactor indicates the GET/PUT bias factor is outside [0, 1].
	ErrInvalidBiasFactor = errors.New("bias factor outside [0, 1]")
)

// Sentinel errors for overlay construction.
var (
	// ErrUnknownPeer indicates a peer handle that does not name a peer
	// in the arena.
	ErrUnknownPeer = errors.New("unknown peer")

	// ErrSelfLink indicates an attempt to make a peer its own neighbor.
	ErrSelfLink = errors.New("peer cannot neighbor itself")
)

// Sentinel errors for message handling.
var (
	// ErrUnknownMessageType indicates a message whose type matches no
	// protocol handler.
	ErrUnknownMessageType = errors.New("unknown message type")
)
