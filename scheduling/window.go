// Package scheduling holds the pure reservation logic: repair windows,
// workstation capacity, employee availability and the order lifecycle.
// Nothing in here performs I/O.
package scheduling

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warsztat/workshop-api/models"
)

// ProtocolOverhead is the fixed vehicle hand-over time added to every order.
const ProtocolOverhead = 15 * time.Minute

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"estimated_end_date"`
}

// Overlaps reports whether two half-open intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// RepairMinutes sums the repair time of the given services.
func RepairMinutes(services []models.Service) int {
	total := 0
	for _, s := range services {
		total += s.RepairTime
	}
	return total
}

// TotalMinutes is the repair time plus the protocol overhead.
func TotalMinutes(services []models.Service) int {
	return RepairMinutes(services) + int(ProtocolOverhead/time.Minute)
}

// EstimatedEnd derives when an order starting at start finishes.
// An empty service set still occupies the protocol overhead.
func EstimatedEnd(start time.Time, services []models.Service) time.Time {
	return start.Add(time.Duration(TotalMinutes(services)) * time.Minute)
}

// Window returns the interval an order occupies, recomputed from its
// current service associations.
func Window(order *models.Order) Interval {
	return Interval{
		Start: order.StartDate,
		End:   EstimatedEnd(order.StartDate, order.Services),
	}
}

// Windows maps orders to their intervals.
func Windows(orders []models.Order) []Interval {
	out := make([]Interval, len(orders))
	for i := range orders {
		out[i] = Window(&orders[i])
	}
	return out
}

// ServicesCost sums service prices.
func ServicesCost(services []models.Service) decimal.Decimal {
	total := decimal.Zero
	for _, s := range services {
		total = total.Add(s.Price)
	}
	return total
}

// TotalCost is the sum of service prices plus every part's line total.
func TotalCost(services []models.Service, parts []models.Part) decimal.Decimal {
	total := ServicesCost(services)
	for _, p := range parts {
		total = total.Add(p.LineTotal())
	}
	return total.Round(2)
}
