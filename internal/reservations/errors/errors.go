package errors

import "errors"

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID indicates the supplied id is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid document ID format")

	// ErrDuplicateID indicates an insert collided with an existing
	// document ID.
	ErrDuplicateID = errors.New("document ID already in use")

	// ErrReferenceTaken indicates a booking insert hit the unique index
	// on the reference code. The engine regenerates and retries.
	ErrReferenceTaken = errors.New("booking reference already in use")

	// ErrStatusConflict indicates an optimistic status update matched no
	// document: the booking moved out of the expected status between the
	// read and the write. Retried a bounded number of times.
	ErrStatusConflict = errors.New("booking status changed concurrently")
)
