package booking

// Status is the reservation lifecycle state.
//
// DRAFT -> PENDING -> CONFIRMED, with CANCELLED reachable from any of the
// three and COMPLETED reachable from CONFIRMED after stay completion.
// CANCELLED and COMPLETED are terminal.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPending || next == StatusCancelled
	case StatusPending:
		return next == StatusPending || next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	default:
		return false
	}
}
