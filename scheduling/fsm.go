package scheduling

import (
	"fmt"
	"time"

	"github.com/kanuma/frontdesk/models"
)

// Legal system-driven transitions. Staff overrides bypass this table but are
// flagged on the record so reconciliation can tell drift from corruption.
var transitions = map[models.TableStatus][]models.TableStatus{
	models.TableAvailable: {models.TableBooked, models.TableOccupied},
	models.TableBooked:    {models.TableOccupied, models.TableAvailable},
	models.TableOccupied:  {models.TableAvailable},
}

type InvalidTransitionError struct {
	From models.TableStatus
	To   models.TableStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid table transition %s -> %s", e.From, e.To)
}

func CanTransition(from, to models.TableStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves a table to the target status. System transitions must
// follow the transition table; override transitions are last-writer-wins and
// set the ManualOverride marker. Seating stamps OccupiedSince, freeing the
// table clears it along with any staff ETA.
func Transition(t *models.Table, to models.TableStatus, override bool, now time.Time) error {
	if t.Status == to {
		return nil
	}
	if !override && !CanTransition(t.Status, to) {
		return &InvalidTransitionError{From: t.Status, To: to}
	}

	t.Status = to
	t.ManualOverride = override

	switch to {
	case models.TableOccupied:
		if t.OccupiedSince == nil {
			occupiedAt := now
			t.OccupiedSince = &occupiedAt
		}
	case models.TableAvailable:
		t.OccupiedSince = nil
		t.AvailableInMinutes = nil
	}
	return nil
}
