package sim

import "fmt"

// ValidationError is a caller-correctable rejection surfaced
// synchronously at submission time; the order never enters the book.
// Simulated rejections are not errors: they land on the order itself
// as a terminal rejected status with a reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "order rejected: " + e.Reason
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Terminal rejection reasons set by the execution simulator.
const (
	reasonNoMarketData = "no market data"
	reasonSimulated    = "simulated exchange rejection"
)
