package orders

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCooking   Status = "COOKING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCooking: true, StatusCancelled: true},
	StatusCooking:   {StatusReady: true, StatusCancelled: true},
	StatusReady:     {StatusCompleted: true},
	StatusCompleted: {},
	StatusCancelled: {},
}

func ValidStatus(s Status) bool {
	_, ok := validNext[s]
	return ok
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
	PaymentRejected  PaymentStatus = "REJECTED"
)

// PENDING -> PENDING is an accepted no-op so that repeated submissions from
// the admin UI do not error; CONFIRMED and REJECTED are terminal.
var validPaymentNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending:   {PaymentPending: true, PaymentConfirmed: true, PaymentRejected: true},
	PaymentConfirmed: {},
	PaymentRejected:  {},
}

func ValidPaymentStatus(s PaymentStatus) bool {
	_, ok := validPaymentNext[s]
	return ok
}

func CanPaymentTransition(from, to PaymentStatus) bool {
	return validPaymentNext[from][to]
}
