package scheduling

import (
	"github.com/go-faster/errors"

	"github.com/warsztat/workshop-api/models"
)

// Capability is an action a caller may be permitted to perform.
type Capability int

const (
	CapBookReservation Capability = iota + 1
	CapManageVehicles
	CapViewSchedule
	CapUpdateOrder
	CapManageParts
	CapManageProtocol
	CapAssignEmployee
	CapCompleteOrder
	CapMarkPaid
)

var capabilityNames = map[Capability]string{
	CapBookReservation: "book reservation",
	CapManageVehicles:  "manage vehicles",
	CapViewSchedule:    "view schedule",
	CapUpdateOrder:     "update order",
	CapManageParts:     "manage parts",
	CapManageProtocol:  "manage protocol",
	CapAssignEmployee:  "assign employee",
	CapCompleteOrder:   "complete order",
	CapMarkPaid:        "mark order paid",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown capability"
}

var roleCapabilities = map[models.Role][]Capability{
	models.RoleClient: {
		CapBookReservation,
		CapManageVehicles,
	},
	models.RoleEmployee: {
		CapViewSchedule,
		CapUpdateOrder,
		CapManageParts,
		CapManageProtocol,
		CapCompleteOrder,
	},
	models.RoleManager: {
		CapViewSchedule,
		CapUpdateOrder,
		CapManageParts,
		CapManageProtocol,
		CapAssignEmployee,
		CapMarkPaid,
	},
}

// Can reports whether the identity holds the capability.
func Can(id models.Identity, c Capability) bool {
	for _, granted := range roleCapabilities[id.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Authorize returns an error wrapping ErrUnauthorized when the identity
// lacks the capability.
func Authorize(id models.Identity, c Capability) error {
	if Can(id, c) {
		return nil
	}
	return errors.Wrapf(ErrUnauthorized, "role %q cannot %s", id.Role, c)
}
