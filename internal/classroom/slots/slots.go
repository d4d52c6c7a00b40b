// Package slots derives the fixed-capacity slot view from a student's
// classroom list. The derivation is pure; callers recompute it after every
// join instead of caching it.
package slots

import (
	"github.com/ahmadsobohhh/UnityPlatform/internal/classroom/models"
)

// Capacity is the number of classroom slots a student has.
const Capacity = 8

// State of a single slot.
type State string

const (
	// StateOccupied slots are bound to a joined classroom.
	StateOccupied State = "occupied"
	// StateOpen marks the single slot through which the next join happens.
	StateOpen State = "open"
	// StateLocked slots reject interaction until earlier slots fill.
	StateLocked State = "locked"
)

// Slot is one position in the view. Classroom is set only for occupied slots.
type Slot struct {
	Index     int                       `json:"index"`
	State     State                     `json:"state"`
	Classroom *models.StudentClassEntry `json:"classroom,omitempty"`
}

// View derives the slot list from the student's classrooms, which must
// already be ordered by joinedAt ascending. Slots [0,n) are occupied, slot n
// is open when n < Capacity, and everything after is locked. Entries beyond
// Capacity are truncated.
func View(classrooms []models.StudentClassEntry) []Slot {
	n := len(classrooms)
	if n > Capacity {
		n = Capacity
	}

	view := make([]Slot, Capacity)
	for i := range view {
		switch {
		case i < n:
			entry := classrooms[i]
			view[i] = Slot{Index: i, State: StateOccupied, Classroom: &entry}
		case i == n:
			view[i] = Slot{Index: i, State: StateOpen}
		default:
			view[i] = Slot{Index: i, State: StateLocked}
		}
	}
	return view
}
