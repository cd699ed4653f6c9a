package mml

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	ErrKindEmptyInput ErrorKind = iota + 1
	ErrKindInvalidOctave
	ErrKindInvalidDuration
	ErrKindInvalidTempo
	ErrKindInvalidVolume
	ErrKindTempoOutOfRange
	ErrKindVolumeOutOfRange
	ErrKindLoopCountOutOfRange
	ErrKindUnmatchedLoopEnd
)

var (
	ErrEmptyInput          = errors.New("empty MML text")
	ErrInvalidOctave       = errors.New("invalid octave")
	ErrInvalidDuration     = errors.New("invalid duration")
	ErrInvalidTempo        = errors.New("invalid tempo")
	ErrInvalidVolume       = errors.New("invalid volume")
	ErrTempoOutOfRange     = errors.New("tempo out of range")
	ErrVolumeOutOfRange    = errors.New("volume out of range")
	ErrLoopCountOutOfRange = errors.New("loop count out of range")
	ErrUnmatchedLoopEnd    = errors.New("unmatched loop end")
)

var kindErrors = map[ErrorKind]error{
	ErrKindEmptyInput:          ErrEmptyInput,
	ErrKindInvalidOctave:       ErrInvalidOctave,
	ErrKindInvalidDuration:     ErrInvalidDuration,
	ErrKindInvalidTempo:        ErrInvalidTempo,
	ErrKindInvalidVolume:       ErrInvalidVolume,
	ErrKindTempoOutOfRange:     ErrTempoOutOfRange,
	ErrKindVolumeOutOfRange:    ErrVolumeOutOfRange,
	ErrKindLoopCountOutOfRange: ErrLoopCountOutOfRange,
	ErrKindUnmatchedLoopEnd:    ErrUnmatchedLoopEnd,
}

func (k ErrorKind) String() string {
	if err, ok := kindErrors[k]; ok {
		return err.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError reports why a parse was aborted. Pos is the 0-based byte offset
// of the command character that raised it (0 for empty input).
type ParseError struct {
	Kind   ErrorKind
	Pos    int
	Detail string
}

func (e *ParseError) Error() string {
	if e.Kind == ErrKindEmptyInput {
		return e.Kind.String()
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s) at position %d", e.Kind, e.Detail, e.Pos)
	}
	return fmt.Sprintf("%s at position %d", e.Kind, e.Pos)
}

func (e *ParseError) Unwrap() error { return kindErrors[e.Kind] }

func newParseError(kind ErrorKind, pos int) *ParseError {
	return &ParseError{Kind: kind, Pos: pos}
}

func rangeError(kind ErrorKind, pos, lo, hi int) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Detail: fmt.Sprintf("%d-%d", lo, hi)}
}
