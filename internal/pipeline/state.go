package pipeline

import (
	"fmt"
	"sync/atomic"
)

// State tracks where the orchestrator is in a run.
type State int32

const (
	StateIdle State = iota
	StatePhase1Extracting
	StatePhase2Extracting
	StateMerged
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePhase1Extracting:
		return "phase1_extracting"
	case StatePhase2Extracting:
		return "phase2_extracting"
	case StateMerged:
		return "merged"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// stateMachine serializes runs: a run starts only from idle or done, and a
// failed run drops back to idle.
type stateMachine struct {
	v atomic.Int32
}

func (m *stateMachine) current() State { return State(m.v.Load()) }

func (m *stateMachine) begin() error {
	if m.v.CompareAndSwap(int32(StateIdle), int32(StatePhase1Extracting)) {
		return nil
	}
	if m.v.CompareAndSwap(int32(StateDone), int32(StatePhase1Extracting)) {
		return nil
	}
	return fmt.Errorf("%w: run already in progress (%s)", ErrBusy, m.current())
}

func (m *stateMachine) advance(from, to State) error {
	if !m.v.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: expected %s, found %s", ErrBadTransition, from, m.current())
	}
	return nil
}

func (m *stateMachine) fail() { m.v.Store(int32(StateIdle)) }
