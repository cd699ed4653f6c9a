package sequencer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestWriteSMFRoundTripsNotes(t *testing.T) {
	seq := mustBuild(t, "l8 c d. r e&g")
	opts := DefaultExportOptions()
	opts.Tempo = 90
	opts.Channel = 3
	opts.TrackName = "melody"

	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, seq, opts))

	file, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, file.Tracks, 1)
	assert.Equal(t, smf.MetricTicks(480), file.TimeFormat)

	var (
		abs      uint32
		bpm      float64
		name     string
		onTicks  []uint32
		offTicks []uint32
	)
	for _, ev := range file.Tracks[0] {
		abs += ev.Delta
		var ch, key, vel uint8
		switch {
		case ev.Message.GetMetaTempo(&bpm):
		case ev.Message.GetMetaTrackName(&name):
		case ev.Message.GetNoteOn(&ch, &key, &vel):
			assert.Equal(t, uint8(3), ch)
			onTicks = append(onTicks, abs)
		case ev.Message.GetNoteOff(&ch, &key, &vel):
			offTicks = append(offTicks, abs)
		}
	}
	assert.InDelta(t, 90, bpm, 0.01)
	assert.Equal(t, "melody", name)
	// c at 0, d. at 240, then an eighth rest; the tied e and g share 840.
	assert.Equal(t, []uint32{0, 240, 840, 840}, onTicks)
	assert.Equal(t, []uint32{240, 600, 1080}, offTicks)
}

func TestTrackRejectsBadOptions(t *testing.T) {
	seq := mustBuild(t, "c")
	_, err := Track(seq, ExportOptions{Resolution: 0, Tempo: 120})
	assert.Error(t, err)
	_, err = Track(seq, ExportOptions{Resolution: 480, Tempo: 0})
	assert.Error(t, err)
	_, err = Track(seq, ExportOptions{Resolution: 480, Tempo: 120, Channel: 16})
	assert.Error(t, err)
}

func TestToTicksRounds(t *testing.T) {
	assert.Equal(t, uint32(0), toTicks(-1, 480))
	assert.Equal(t, uint32(160), toTicks(1.0/3.0, 480))
	assert.Equal(t, uint32(1920), toTicks(4, 480))
}
