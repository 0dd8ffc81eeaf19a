package orders

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus is what the simulated payment page reports back.
type PaymentStatus string

const (
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentFailed     PaymentStatus = "FAILED"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentAuthorized || p == PaymentFailed
}

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// OutcomeStatus maps a payment outcome to the order status it produces.
func OutcomeStatus(p PaymentStatus) Status {
	if p == PaymentAuthorized {
		return StatusCompleted
	}
	return StatusCancelled
}
