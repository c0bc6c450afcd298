package scheduling

import (
	"github.com/go-faster/errors"
)

// Error categories. Every failure returned by the scheduling operations
// either is one of these or wraps one of them.
var (
	ErrNotFound                 = errors.New("not found")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrCapacityExceeded         = errors.New("no free workstation in the requested window")
	ErrEmployeeUnavailable      = errors.New("employee is not available in the requested window")
	ErrInvalidServiceSelection  = errors.New("invalid service selection")
	ErrInvalidPaymentStatus     = errors.New("invalid payment status")
	ErrInvalidStatus            = errors.New("invalid order status")
	ErrAlreadyPaid              = errors.New("order is already paid")
	ErrDocumentGenerationFailed = errors.New("document generation failed")
	ErrInvalidTransition        = errors.New("invalid order status transition")
	ErrInvalidInput             = errors.New("invalid input")
	ErrDuplicate                = errors.New("conflicts with an existing record")
)

// Specific errors, each wrapping its category.
var (
	ErrOrderNotFound       = errors.Wrap(ErrNotFound, "order")
	ErrClientNotFound      = errors.Wrap(ErrNotFound, "client")
	ErrVehicleNotFound     = errors.Wrap(ErrNotFound, "vehicle")
	ErrEmployeeNotFound    = errors.Wrap(ErrNotFound, "employee")
	ErrPartNotFound        = errors.Wrap(ErrNotFound, "part")
	ErrProtocolNotFound    = errors.Wrap(ErrNotFound, "protocol")
	ErrVehicleNotOwned     = errors.Wrap(ErrUnauthorized, "vehicle does not belong to client")
	ErrNotAssignedEmployee = errors.Wrap(ErrUnauthorized, "caller is not the assigned employee")
	ErrAlreadyRegistered   = errors.Wrap(ErrDuplicate, "account already registered")
	ErrVehicleExists       = errors.Wrap(ErrDuplicate, "vehicle with this VIN or registration number exists")
)

// DocumentError reports a failed document generation. It matches
// ErrDocumentGenerationFailed and unwraps to the underlying cause.
type DocumentError struct {
	Kind string
	Err  error
}

func (e *DocumentError) Error() string {
	return "generate " + e.Kind + ": " + e.Err.Error()
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrDocumentGenerationFailed) hold
func (e *DocumentError) Is(target error) bool {
	return target == ErrDocumentGenerationFailed
}
