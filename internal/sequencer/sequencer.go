package sequencer

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/mmlmidi-go/internal/mml"
)

// DefaultVelocity is used for every note-on; the score's v command does not
// change it.
const DefaultVelocity = 100

type SignalKind int

const (
	SignalOn SignalKind = iota + 1
	SignalOff
)

func (k SignalKind) String() string {
	switch k {
	case SignalOn:
		return "on"
	case SignalOff:
		return "off"
	default:
		return "unknown"
	}
}

// Signal is a note-on or note-off at an absolute time in quarter-note units.
type Signal struct {
	Time     float64
	Kind     SignalKind
	Key      uint8
	Velocity uint8
}

// Message converts the signal to a channel voice message.
func (s Signal) Message(channel uint8) midi.Message {
	if s.Kind == SignalOff {
		return midi.NoteOff(channel, s.Key)
	}
	return midi.NoteOn(channel, s.Key, s.Velocity)
}

func (s Signal) String() string {
	return fmt.Sprintf("%.4f %s key=%d vel=%d", s.Time, s.Kind, s.Key, s.Velocity)
}

type Sequence []Signal

// End returns the time of the last signal.
func (q Sequence) End() float64 {
	var end float64
	for _, s := range q {
		if s.Time > end {
			end = s.Time
		}
	}
	return end
}

// Count returns the number of on and off signals.
func (q Sequence) Count() (on, off int) {
	for _, s := range q {
		if s.Kind == SignalOn {
			on++
		} else {
			off++
		}
	}
	return on, off
}

// Build turns note events into time-ordered signals. Rests emit nothing and
// a tied note has no off signal. Signals at equal times keep emission order.
// The input is not modified.
func Build(events []mml.Event) Sequence {
	out := make(Sequence, 0, len(events)*2)
	for _, ev := range events {
		if ev.Type != mml.EventNote {
			continue
		}
		key := uint8(clampInt(mml.KeyNumber(ev.Pitch, ev.Accidental, ev.Octave), 0, 127))
		out = append(out, Signal{Time: ev.Start, Kind: SignalOn, Key: key, Velocity: DefaultVelocity})
		if !ev.Tied {
			out = append(out, Signal{Time: ev.End(), Kind: SignalOff, Key: key})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// Fallback is the stand-in sequence used when a score produces no signals:
// eight rising semitones from middle C, half a quarter apart, each sounding
// for 0.4.
func Fallback() Sequence {
	out := make(Sequence, 0, 16)
	for i := 0; i < 8; i++ {
		key := uint8(60 + i)
		on := float64(i) * 0.5
		out = append(out,
			Signal{Time: on, Kind: SignalOn, Key: key, Velocity: DefaultVelocity},
			Signal{Time: on + 0.4, Kind: SignalOff, Key: key},
		)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
