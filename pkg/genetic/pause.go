package genetic

// PauseState tracks, along consecutive timeslots, whether an entity has had a class and whether a gap is open
type PauseState int

const (
	Initial   PauseState = iota // No class seen yet
	HasBefore                   // Inside a busy run
	HasPause                    // Idle since the last class
)

// Next advances the state by one timeslot and returns the gap penalty charged by the transition.
// A gap is charged once, when a busy timeslot closes it; idle time before the first and after the last class is free
func (state PauseState) Next(busy bool) (PauseState, int) {
	if busy {
		if state == HasPause {
			return HasBefore, PausePenalty
		}
		return HasBefore, 0
	}

	switch state {
	case HasBefore, HasPause:
		return HasPause, 0
	default:
		return Initial, 0
	}
}

func (state PauseState) String() string {
	switch state {
	case Initial:
		return "Initial"
	case HasBefore:
		return "HasBefore"
	case HasPause:
		return "HasPause"
	default:
		return "Unknown"
	}
}
