package scheduling

import (
	"github.com/warsztat/workshop-api/models"
)

// MaxWorkstations is the default size of the shared repair bay pool.
const MaxWorkstations = 3

// OverlapCount counts the existing intervals overlapping candidate.
func OverlapCount(candidate Interval, existing []Interval) int {
	count := 0
	for _, e := range existing {
		if e.Overlaps(candidate) {
			count++
		}
	}
	return count
}

// HasWorkstationCapacity reports whether one more order fits into candidate.
// Bays are fungible: only the number of overlapping orders matters.
func HasWorkstationCapacity(candidate Interval, existing []Interval, maxWorkstations int) bool {
	if maxWorkstations <= 0 {
		maxWorkstations = MaxWorkstations
	}
	return OverlapCount(candidate, existing) < maxWorkstations
}

// IsEmployeeFree reports whether none of the employee's assigned orders
// overlaps candidate. Orders assigned to other employees are ignored.
// Windows include the protocol overhead, same as the capacity check.
func IsEmployeeFree(employeeID uint, candidate Interval, orders []models.Order) bool {
	for i := range orders {
		if !orders[i].IsAssignedTo(employeeID) {
			continue
		}
		if Window(&orders[i]).Overlaps(candidate) {
			return false
		}
	}
	return true
}
