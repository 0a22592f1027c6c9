package npm

import (
	"github.com/felixgeelhaar/statekit"
)

// State is the lifecycle state of one npm invocation.
type State string

// Invocation states.
const (
	StateIdle      State = idle
	StatePreparing State = preparing
	StateRunning   State = running
	StateCompleted State = completed
	StateFailed    State = failed
	StateCancelled State = cancelled
)

const (
	idle      = "idle"
	preparing = "preparing"
	running   = "running"
	completed = "completed"
	failed    = "failed"
	cancelled = "cancelled"
)

// Lifecycle events.
const (
	EventPrepare = "PREPARE"
	EventLaunch  = "LAUNCH"
	EventExit    = "EXIT"
	EventFail    = "FAIL"
	EventCancel  = "CANCEL"
)

// invocation is the statekit context of the lifecycle machine.
type invocation struct {
	transitions int
}

// lifecycle tracks an invocation through preparation, launch and exit.
// Events that are not valid in the current state are ignored.
type lifecycle struct {
	interp *statekit.Interpreter[invocation]
}

func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[invocation]("npm-invocation").
		WithInitial(idle).
		WithContext(invocation{}).
		WithAction("count", func(c *invocation, _ statekit.Event) {
			c.transitions++
		}).
		State(idle).
		On(EventPrepare).Target(preparing).Done().
		State(preparing).
		OnEntry("count").
		On(EventLaunch).Target(running).
		On(EventFail).Target(failed).
		On(EventCancel).Target(cancelled).Done().
		State(running).
		OnEntry("count").
		On(EventExit).Target(completed).
		On(EventFail).Target(failed).
		On(EventCancel).Target(cancelled).Done().
		State(completed).OnEntry("count").Done().
		State(failed).OnEntry("count").Done().
		State(cancelled).OnEntry("count").Done().
		Build()
	if err != nil {
		return nil, err
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}, nil
}

func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *lifecycle) state() State {
	return State(l.interp.State().Value)
}

func (l *lifecycle) stop() {
	l.interp.Stop()
}
