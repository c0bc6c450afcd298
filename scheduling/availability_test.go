package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warsztat/workshop-api/models"
)

func TestHasWorkstationCapacity(t *testing.T) {
	full := []Interval{
		{at(9, 0), at(11, 0)},
		{at(9, 0), at(11, 0)},
		{at(9, 0), at(11, 0)},
	}

	tests := []struct {
		name      string
		existing  []Interval
		candidate Interval
		want      bool
	}{
		{
			name:      "empty schedule",
			existing:  nil,
			candidate: Interval{at(10, 0), at(10, 30)},
			want:      true,
		},
		{
			name:      "pool full",
			existing:  full,
			candidate: Interval{at(10, 0), at(10, 30)},
			want:      false,
		},
		{
			name:      "pool full but candidate starts when bays free up",
			existing:  full,
			candidate: Interval{at(11, 0), at(11, 30)},
			want:      true,
		},
		{
			name:      "two overlapping leaves one bay",
			existing:  full[:2],
			candidate: Interval{at(10, 0), at(10, 30)},
			want:      true,
		},
		{
			name: "non-overlapping orders do not count",
			existing: []Interval{
				{at(7, 0), at(8, 0)},
				{at(8, 0), at(9, 0)},
				{at(12, 0), at(13, 0)},
				{at(9, 30), at(10, 0)},
			},
			candidate: Interval{at(9, 0), at(12, 0)},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasWorkstationCapacity(tt.candidate, tt.existing, MaxWorkstations))
		})
	}
}

func TestHasWorkstationCapacity_DefaultsWhenLimitUnset(t *testing.T) {
	existing := []Interval{{at(9, 0), at(10, 0)}, {at(9, 0), at(10, 0)}}
	assert.True(t, HasWorkstationCapacity(Interval{at(9, 0), at(9, 30)}, existing, 0))

	existing = append(existing, Interval{at(9, 0), at(10, 0)})
	assert.False(t, HasWorkstationCapacity(Interval{at(9, 0), at(9, 30)}, existing, 0))
}

func TestOverlapCount(t *testing.T) {
	existing := []Interval{
		{at(9, 0), at(10, 0)},
		{at(9, 30), at(11, 0)},
		{at(11, 0), at(12, 0)},
	}
	assert.Equal(t, 2, OverlapCount(Interval{at(9, 45), at(10, 15)}, existing))
	assert.Equal(t, 0, OverlapCount(Interval{at(12, 0), at(13, 0)}, existing))
}

func TestIsEmployeeFree(t *testing.T) {
	employeeID := uint(5)
	otherID := uint(6)

	// 45 minutes of work plus protocol: [09:00, 10:00)
	assigned := models.Order{
		ID:         1,
		StartDate:  at(9, 0),
		EmployeeID: &employeeID,
		Services:   []models.Service{svc(45, "80")},
	}
	// other employee busy all morning
	foreign := models.Order{
		ID:         2,
		StartDate:  at(8, 0),
		EmployeeID: &otherID,
		Services:   []models.Service{svc(240, "300")},
	}
	unassigned := models.Order{ID: 3, StartDate: at(8, 0), Services: []models.Service{svc(240, "300")}}
	orders := []models.Order{assigned, foreign, unassigned}

	t.Run("overlapping assignment", func(t *testing.T) {
		assert.False(t, IsEmployeeFree(employeeID, Interval{at(9, 30), at(10, 15)}, orders))
	})

	t.Run("back to back", func(t *testing.T) {
		assert.True(t, IsEmployeeFree(employeeID, Interval{at(10, 0), at(10, 30)}, orders))
	})

	t.Run("other employees orders ignored", func(t *testing.T) {
		assert.True(t, IsEmployeeFree(otherID+1, Interval{at(8, 0), at(12, 0)}, orders))
	})

	t.Run("protocol overhead counts", func(t *testing.T) {
		// 09:50 is after the 45 minutes of work but inside the protocol time
		assert.False(t, IsEmployeeFree(employeeID, Interval{at(9, 50), at(10, 20)}, orders))
	})
}
