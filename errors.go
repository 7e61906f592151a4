package remotemandel

import "errors"

var (
	// ErrNoWorkers is returned when the process group has no rank besides the
	// coordinator. Nothing is dispatched in that case.
	ErrNoWorkers = errors.New("remotemandel: process group has no workers")

	// ErrProtocol reports a desynchronized peer: an unexpected message type,
	// a reply for a chunk that was never dispatched, or an invalid assignment.
	ErrProtocol = errors.New("remotemandel: protocol desynchronization")

	ErrRowWritten = errors.New("remotemandel: row already written")
	ErrOutOfRange = errors.New("remotemandel: row range out of grid")
)

var errClosed = errors.New("remotemandel: endpoint closed")
