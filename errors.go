package workrange

import "errors"

const Namespace = "workrange"

var (
	ErrInvalidConfig     = errors.New(Namespace + ": invalid configuration")
	ErrCallbackPanicked  = errors.New(Namespace + ": callback panicked")
	ErrSchedulerMismatch = errors.New(Namespace + ": scheduler does not match the call's type parameters")
	ErrWorkerOutOfRange  = errors.New(Namespace + ": worker id out of range")
)
