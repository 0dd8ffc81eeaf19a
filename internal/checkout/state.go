package checkout

type State string

const (
	StateIdle                 State = "IDLE"
	StateValidating           State = "VALIDATING"
	StateSubmitting           State = "SUBMITTING"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateConfirming           State = "CONFIRMING"
	StateConfirmed            State = "CONFIRMED"
	StateFailed               State = "FAILED"
)

var validNext = map[State]map[State]bool{
	StateIdle:                 {StateValidating: true, StateConfirming: true},
	StateValidating:           {StateIdle: true, StateSubmitting: true},
	StateSubmitting:           {StateIdle: true, StateAwaitingConfirmation: true},
	StateAwaitingConfirmation: {StateConfirming: true, StateValidating: true},
	StateConfirming:           {StateConfirmed: true, StateFailed: true},
	StateConfirmed:            {StateIdle: true},
	StateFailed:               {StateIdle: true},
}

func CanTransition(from, to State) bool {
	return validNext[from][to]
}

// busy states have a request outstanding.
func (s State) busy() bool {
	return s == StateValidating || s == StateSubmitting || s == StateConfirming
}
