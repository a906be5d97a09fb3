package bridge

import "errors"

// Domain-specific errors for bridge operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnknownKind is returned when a device kind is not one the bridge
	// handles. Command publishing rejects the kind before anything reaches
	// the broker.
	ErrUnknownKind = errors.New("bridge: unknown device kind")

	// ErrInvalidMessage is returned when an inbound payload fails to decode
	// or fails validation. The message is dropped; nothing is recorded.
	ErrInvalidMessage = errors.New("bridge: invalid message")

	// ErrInvalidRoom is returned when a room identifier is empty.
	ErrInvalidRoom = errors.New("bridge: room cannot be empty")
)
