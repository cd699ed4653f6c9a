package mml

type EventType int

const (
	EventNote EventType = iota + 1
	EventRest
)

func (t EventType) String() string {
	switch t {
	case EventNote:
		return "note"
	case EventRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Event is a note or rest with an absolute start time. Times and durations
// are in quarter-note units (quarter note = 1.0).
type Event struct {
	Type       EventType
	Pitch      byte // c d e f g a b; zero for rests
	Accidental int  // -1, 0 or +1
	Octave     int
	Duration   float64
	Tied       bool
	Start      float64
}

// End is the time at which the event stops sounding.
func (e Event) End() float64 { return e.Start + e.Duration }

// Score is the result of one Parse call. Tempo, Volume, Octave and
// DefaultDuration hold the context values in effect when scanning finished.
type Score struct {
	Events          []Event
	EndTime         float64
	Tempo           int
	Volume          int
	Octave          int
	DefaultDuration float64
	OpenLoops       int
}

// Notes returns only the note events, in order.
func (s *Score) Notes() []Event {
	out := make([]Event, 0, len(s.Events))
	for _, e := range s.Events {
		if e.Type == EventNote {
			out = append(out, e)
		}
	}
	return out
}

// LoopMode selects how loops nested inside another loop are replayed.
type LoopMode int

const (
	// LoopExpand repeats inner loops on every repetition of the outer loop.
	LoopExpand LoopMode = iota
	// LoopFlat plays an inner loop body once on each replay of the outer
	// loop; only the first pass repeats it.
	LoopFlat
)

func (m LoopMode) String() string {
	if m == LoopFlat {
		return "flat"
	}
	return "expand"
}

type ParserConfig struct {
	DefaultOctave   int
	MinOctave       int
	MaxOctave       int
	DefaultDuration float64
	DefaultTempo    int
	MinTempo        int
	MaxTempo        int
	DefaultVolume   int
	MinVolume       int
	MaxVolume       int
	DefaultRepeat   int
	MinRepeat       int
	MaxRepeat       int
	NestedLoops     LoopMode
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		DefaultOctave:   4,
		MinOctave:       0,
		MaxOctave:       8,
		DefaultDuration: 0.25,
		DefaultTempo:    120,
		MinTempo:        20,
		MaxTempo:        300,
		DefaultVolume:   100,
		MinVolume:       0,
		MaxVolume:       127,
		DefaultRepeat:   2,
		MinRepeat:       1,
		MaxRepeat:       100,
		NestedLoops:     LoopExpand,
	}
}
