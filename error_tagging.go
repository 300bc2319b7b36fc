package workrange

import (
	"errors"
	"fmt"
)

// Phase identifies the stage of a worker's execution in which a failure occurred.
type Phase int

const (
	// PhaseRun is a failure while processing an assigned range.
	PhaseRun Phase = iota
	// PhaseSetup is a failure while constructing the worker's workspace.
	PhaseSetup
)

func (p Phase) String() string {
	switch p {
	case PhaseRun:
		return "run"
	case PhaseSetup:
		return "setup"
	default:
		return fmt.Sprintf("invalid phase: %d", p)
	}
}

// WorkerError tags a failure with the worker and range it originated from.
//
// Error returns the original message when it describes itself. When it does not (an empty
// message, or a recovered panic whose value is not an error) the message names the worker.
// Use %+v to always print the metadata.
type WorkerError struct {
	Worker int
	Phase  Phase
	// Start and Length describe the range being processed; both are zero for setup failures.
	Start  uint64
	Length uint64
	Err    error
}

func newWorkerError(err error, worker int, phase Phase, start, length uint64) error {
	if err == nil {
		return nil
	}
	return &WorkerError{Worker: worker, Phase: phase, Start: start, Length: length, Err: err}
}

func (e *WorkerError) Error() string {
	msg := e.Err.Error()
	if msg == "" {
		return fmt.Sprintf("%s: worker %d failed during %s", Namespace, e.Worker, e.Phase)
	}
	var pe *PanicError
	if errors.As(e.Err, &pe) && pe.Unwrap() == nil {
		return fmt.Sprintf("%s: worker %d: %s", Namespace, e.Worker, msg)
	}
	return msg
}

func (e *WorkerError) Unwrap() error { return e.Err }

// WorkerIndex returns the id of the worker that failed.
func (e *WorkerError) WorkerIndex() (int, bool) { return e.Worker, true }

func (e *WorkerError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			if e.Phase == PhaseSetup {
				_, _ = fmt.Fprintf(s, "worker(%d,%s): %+v", e.Worker, e.Phase, e.Err)
				return
			}
			_, _ = fmt.Fprintf(s, "worker(%d,%s,[%d,%d)): %+v",
				e.Worker, e.Phase, e.Start, e.Start+e.Length, e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractWorker returns the id of the worker that produced err, if err carries one.
func ExtractWorker(err error) (int, bool) {
	var we *WorkerError
	if errors.As(err, &we) {
		return we.WorkerIndex()
	}
	return 0, false
}

// ExtractPhase returns the phase in which err was produced, if err carries one.
func ExtractPhase(err error) (Phase, bool) {
	var we *WorkerError
	if errors.As(err, &we) {
		return we.Phase, true
	}
	return PhaseRun, false
}
