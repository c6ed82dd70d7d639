package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// Phase is the coarse lifecycle position of an engine.
type Phase string

const (
	// PhaseEditing means no valid snapshot is held.
	PhaseEditing Phase = "editing"
	// PhaseSubmitted means the most recent submit produced a snapshot.
	PhaseSubmitted Phase = "submitted"
)

const (
	eventAccept     = "accept"
	eventInvalidate = "invalidate"
	eventReset      = "reset"
)

type lifecycle struct {
	machine *fsm.FSM
}

func newLifecycle() *lifecycle {
	phases := []string{string(PhaseEditing), string(PhaseSubmitted)}
	return &lifecycle{
		machine: fsm.NewFSM(
			string(PhaseEditing),
			fsm.Events{
				{Name: eventAccept, Src: phases, Dst: string(PhaseSubmitted)},
				{Name: eventInvalidate, Src: phases, Dst: string(PhaseEditing)},
				{Name: eventReset, Src: phases, Dst: string(PhaseEditing)},
			},
			fsm.Callbacks{},
		),
	}
}

func (l *lifecycle) phase() Phase {
	return Phase(l.machine.Current())
}

// fire applies event. Self transitions are not errors here.
func (l *lifecycle) fire(event string) error {
	err := l.machine.Event(context.Background(), event)
	if err == nil {
		return nil
	}
	var noTransition fsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return fmt.Errorf("engine: lifecycle %s: %w", event, err)
}
