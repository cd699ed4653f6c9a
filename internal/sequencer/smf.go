package sequencer

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

type ExportOptions struct {
	Resolution int     // ticks per quarter note
	Tempo      float64 // beats per minute written as the track tempo
	Channel    uint8
	TrackName  string
}

func DefaultExportOptions() ExportOptions {
	return ExportOptions{Resolution: 480, Tempo: 120}
}

func (o ExportOptions) validate() error {
	if o.Resolution <= 0 || o.Resolution > math.MaxInt16 {
		return fmt.Errorf("resolution %d out of range (1-%d)", o.Resolution, math.MaxInt16)
	}
	if o.Tempo <= 0 {
		return errors.New("tempo must be positive")
	}
	if o.Channel > 15 {
		return fmt.Errorf("channel %d out of range (0-15)", o.Channel)
	}
	return nil
}

// Track renders the sequence as a single SMF track. Quarter-note times are
// rounded to the nearest tick.
func Track(seq Sequence, opts ExportOptions) (smf.Track, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	var tr smf.Track
	if opts.TrackName != "" {
		tr.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	tr.Add(0, smf.MetaTempo(opts.Tempo))
	var last uint32
	for _, s := range seq {
		tick := toTicks(s.Time, opts.Resolution)
		if tick < last {
			tick = last
		}
		tr.Add(tick-last, s.Message(opts.Channel))
		last = tick
	}
	tr.Close(0)
	return tr, nil
}

// WriteSMF writes seq as a single-track Standard MIDI File.
func WriteSMF(w io.Writer, seq Sequence, opts ExportOptions) error {
	tr, err := Track(seq, opts)
	if err != nil {
		return err
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(opts.Resolution)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

func toTicks(t float64, resolution int) uint32 {
	if t <= 0 {
		return 0
	}
	v := math.Round(t * float64(resolution))
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
