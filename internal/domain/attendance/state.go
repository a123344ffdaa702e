package attendance

// DayState is the attendance state of one user within one business day.
type DayState string

const (
	DayStateNotStarted DayState = "NOT_STARTED"
	DayStateCheckedIn  DayState = "CHECKED_IN"
	DayStateCheckedOut DayState = "CHECKED_OUT"
)

// Transition applies an action to the current state. It is the only place the
// alternation rule is enforced: a day starts with CHECK_IN and the two types
// strictly alternate afterwards.
func Transition(state DayState, action SessionType) (DayState, error) {
	switch action {
	case SessionTypeCheckIn:
		if state == DayStateCheckedIn {
			return state, ErrAlreadyCheckedIn
		}
		return DayStateCheckedIn, nil
	case SessionTypeCheckOut:
		switch state {
		case DayStateNotStarted:
			return state, ErrNoCheckInYet
		case DayStateCheckedOut:
			return state, ErrAlreadyCheckedOut
		}
		return DayStateCheckedOut, nil
	default:
		return state, ErrInvalidSessionType
	}
}

// ReplayState folds a day's ordered sessions into the resulting state.
func ReplayState(sessions []Session) (DayState, error) {
	state := DayStateNotStarted
	for _, s := range sessions {
		next, err := Transition(state, s.Type)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// CanCheckIn and CanCheckOut describe which actions the state accepts.
func (s DayState) CanCheckIn() bool {
	return s != DayStateCheckedIn
}

func (s DayState) CanCheckOut() bool {
	return s == DayStateCheckedIn
}
