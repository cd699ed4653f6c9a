package mml

import "math"

var noteOffsets = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

// digitCap bounds digit runs so long inputs saturate instead of wrapping.
const digitCap = math.MaxInt32

// Semitone returns the offset of a pitch letter above C.
func Semitone(pitch byte) (int, bool) {
	v, ok := noteOffsets[pitch]
	return v, ok
}

// KeyNumber maps a pitch to a MIDI key number, C4 = 60.
func KeyNumber(pitch byte, accidental, octave int) int {
	return noteOffsets[pitch] + accidental + (octave+1)*12
}

// length is the duration part of a note or rest token. denom 0 means no
// digits were given (or a literal 0) and the default length applies.
type length struct {
	denom  int
	dotted bool
}

func (l length) resolve(def float64) float64 {
	d := def
	if l.denom > 0 {
		d = 4.0 / float64(l.denom)
	}
	if l.dotted {
		d *= 1.5
	}
	return d
}

// modifiers groups everything that may follow a note letter.
type modifiers struct {
	accidental int
	length     length
	tied       bool
}

func scanDigits(s string, at int) (int, int, bool) {
	i, v := at, 0
	for i < len(s) && isDigit(s[i]) {
		if v <= digitCap/10 {
			v = v*10 + int(s[i]-'0')
		} else {
			v = digitCap
		}
		i++
	}
	if v > digitCap {
		v = digitCap
	}
	return v, i, i > at
}

func scanLength(s string, at int) (length, int) {
	var l length
	denom, i, _ := scanDigits(s, at)
	l.denom = denom
	if i < len(s) && s[i] == '.' {
		l.dotted = true
		i++
	}
	return l, i
}

func scanNoteModifiers(s string, at int) (modifiers, int) {
	var m modifiers
	i := at
	if i < len(s) {
		switch s[i] {
		case '+', '#':
			m.accidental = 1
			i++
		case '-':
			m.accidental = -1
			i++
		}
	}
	m.length, i = scanLength(s, i)
	if i < len(s) && (s[i] == '&' || s[i] == '^') {
		m.tied = true
		i++
	}
	return m, i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isSpace(b byte) bool { return b == ' ' || b == '\n' || b == '\r' || b == '\t' || b == '\f' || b == '\v' }
func isNote(b byte) bool  { _, ok := noteOffsets[b]; return ok }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
