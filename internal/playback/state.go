package playback

import "fmt"

// State is the controller's playback state.
type State int

const (
	// Idle: nothing playing and no sequence to continue in this session.
	Idle State = iota
	// Speaking: a sequence is running; Status.Index is the entry being read.
	Speaking
	// Stopped: the user stopped a sequence; its index was saved.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Button labels.
const (
	LabelContinue = "▶ Continue"
	LabelReadAll  = "🔊 Read All"
)

// Status is a snapshot of the controller.
type Status struct {
	State State

	// Index is the highlighted entry, or -1 when nothing is highlighted.
	Index int

	// Resumable reports whether a saved index exists for the current list.
	Resumable bool
}

// Label returns the text of the read-all/continue button.
func (s Status) Label() string {
	if s.Resumable {
		return LabelContinue
	}
	return LabelReadAll
}

func (s Status) String() string {
	if s.State == Speaking {
		return fmt.Sprintf("%s(%d)", s.State, s.Index)
	}
	return s.State.String()
}

// Event reports a state change or a speech failure.
type Event struct {
	Status Status

	// Err is set when an utterance failed for a reason other than
	// cancellation.
	Err error
}
