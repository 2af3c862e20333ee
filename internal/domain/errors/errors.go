package errors

import "errors"

var (
	// ErrUnknownTile — mutation references a connection that has no tile in the room
	ErrUnknownTile = errors.New("unknown tile")
	// ErrMalformedPayload — message is missing required fields or does not parse
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUndefinedTransform — region transform cannot be computed for the inputs
	ErrUndefinedTransform = errors.New("undefined transform")

	ErrConnNotFound  = errors.New("connection not found")
	ErrNotJoined     = errors.New("connection has not joined")
	ErrAlreadyJoined = errors.New("connection already joined")
	ErrForbidden     = errors.New("event not allowed for role")
	ErrUnknownType   = errors.New("unknown message type")
	ErrWrongFanout   = errors.New("event dispatched with wrong fan-out")
)
