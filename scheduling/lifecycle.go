package scheduling

import (
	"github.com/go-faster/errors"

	"github.com/warsztat/workshop-api/models"
)

// next lists the single forward transition allowed from each status.
var next = map[models.OrderStatus]models.OrderStatus{
	models.StatusPending:   models.StatusConfirmed,
	models.StatusConfirmed: models.StatusCompleted,
}

// CanTransition reports whether from -> to is a forward step of the
// lifecycle. Staying in the same status is not a transition.
func CanTransition(from, to models.OrderStatus) bool {
	n, ok := next[from]
	return ok && n == to
}

// CanAssign checks that an order may receive an employee. Completed orders
// are closed; Pending orders move to Confirmed, Confirmed ones are reassigned.
func CanAssign(order *models.Order) error {
	switch order.Status {
	case models.StatusPending, models.StatusConfirmed:
		return nil
	default:
		return errors.Wrapf(ErrInvalidTransition, "cannot assign employee to %s order %d", order.Status, order.ID)
	}
}

// CanAssignEmployee checks the target employee itself. Managers are never
// assigned to repair work.
func CanAssignEmployee(employee *models.Employee) error {
	if employee.IsManager {
		return errors.Wrapf(ErrEmployeeUnavailable, "employee %d is a manager", employee.ID)
	}
	return nil
}

// CanComplete checks that the caller may complete the order.
func CanComplete(id models.Identity, order *models.Order) error {
	if err := Authorize(id, CapCompleteOrder); err != nil {
		return err
	}
	if !order.IsAssignedTo(id.UserID) {
		return ErrNotAssignedEmployee
	}
	if !CanTransition(order.Status, models.StatusCompleted) {
		return errors.Wrapf(ErrInvalidTransition, "cannot complete %s order %d", order.Status, order.ID)
	}
	return nil
}

// CanMarkPaid checks the payment flag. Marking twice is rejected so the
// caller learns the second call changed nothing.
func CanMarkPaid(order *models.Order) error {
	if order.PaymentStatus == models.PaymentPaid {
		return ErrAlreadyPaid
	}
	return nil
}

// OrderUpdate is a partial update applied by staff. Nil fields are left alone.
type OrderUpdate struct {
	Status        *string
	Comment       *string
	PaymentStatus *int
	InvoiceKey    *string
}

// ApplyUpdate validates the update against the current order and returns
// the columns to persist. The order itself is not modified.
func ApplyUpdate(order *models.Order, u OrderUpdate) (map[string]interface{}, error) {
	changes := make(map[string]interface{})

	if u.PaymentStatus != nil {
		payment, ok := models.ParsePaymentStatus(*u.PaymentStatus)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidPaymentStatus, "payment status %d", *u.PaymentStatus)
		}
		changes["payment_status"] = payment
	}

	if u.Comment != nil && *u.Comment != "" {
		changes["comment"] = *u.Comment
	}

	invoiceKey := order.InvoiceKey
	if u.InvoiceKey != nil && *u.InvoiceKey != "" {
		invoiceKey = u.InvoiceKey
		changes["invoice_key"] = *u.InvoiceKey
	}

	if u.Status != nil && *u.Status != "" {
		status, ok := models.ParseOrderStatus(*u.Status)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidStatus, "status %q", *u.Status)
		}
		if status != order.Status {
			if !CanTransition(order.Status, status) {
				return nil, errors.Wrapf(ErrInvalidTransition, "%s -> %s", order.Status, status)
			}
			switch status {
			case models.StatusConfirmed:
				if order.EmployeeID == nil {
					return nil, errors.Wrap(ErrInvalidTransition, "order has no assigned employee")
				}
			case models.StatusCompleted:
				if invoiceKey == nil {
					return nil, errors.Wrap(ErrInvalidTransition, "completed orders need an invoice")
				}
			}
			changes["status"] = status
		}
	}

	return changes, nil
}
