package live

// State is the live session status.
type State int

const (
	StateConnecting State = iota
	StateListening
	StateSpeaking
	StateError
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateListening:
		return "listening"
	case StateSpeaking:
		return "speaking"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions happen from s.
func (s State) Terminal() bool {
	return s == StateError || s == StateClosed
}

type eventKind int

const (
	evOpened eventKind = iota
	evAudio
	evTranscript
	evTurnComplete
	evInterrupted
	evInputDone
	evClose
	evRemoteClosed
	evFailure
)

type event struct {
	kind eventKind
	data []byte
	text string
	err  error
}

// transition returns the state after ev. Terminal states never change.
func transition(s State, ev eventKind) State {
	if s.Terminal() {
		return s
	}

	switch ev {
	case evOpened:
		if s == StateConnecting {
			return StateListening
		}
	case evAudio:
		if s == StateListening {
			return StateSpeaking
		}
	case evTurnComplete, evInterrupted:
		if s == StateSpeaking {
			return StateListening
		}
	case evClose, evRemoteClosed:
		return StateClosed
	case evFailure:
		return StateError
	}
	return s
}
