// Package admission decides whether a user may register for an event.
package admission

import "eventscape/internal/models"

// Rejection messages returned to clients.
const (
	MsgCapacityReached   = "Event has reached capacity"
	MsgAlreadyRegistered = "Already registered for this event"
)

// Decide applies the admission rules in order: a full event rejects before a
// duplicate registration is reported. A nil capacity never rejects.
func Decide(capacity *int, confirmed int64, alreadyRegistered bool) error {
	if capacity != nil && confirmed >= int64(*capacity) {
		return models.NewConflictError(MsgCapacityReached)
	}
	if alreadyRegistered {
		return models.NewConflictError(MsgAlreadyRegistered)
	}
	return nil
}
