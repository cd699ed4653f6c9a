package mmlmidi

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	intmml "github.com/cbegin/mmlmidi-go/internal/mml"
)

func TestConvertMiddleC(t *testing.T) {
	res, err := NewConverter().Convert("c")
	require.NoError(t, err)
	require.Len(t, res.Sequence, 2)
	assert.Equal(t, uint8(60), res.Sequence[0].Key)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Generated 2 MIDI events", res.Summary())
}

func TestConvertWrapsParseError(t *testing.T) {
	_, err := NewConverter().Convert("c t400")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "mml error: "))
	assert.True(t, errors.Is(err, intmml.ErrTempoOutOfRange))

	perr, ok := AsParseError(err)
	require.True(t, ok)
	assert.Equal(t, intmml.ErrKindTempoOutOfRange, perr.Kind)
	assert.Equal(t, 2, perr.Pos)

	_, ok = AsParseError(errors.New("other"))
	assert.False(t, ok)
}

func TestConvertEmptyInputNoFallback(t *testing.T) {
	_, err := NewConverter(WithFallbackScale(true)).Convert("")
	assert.ErrorIs(t, err, intmml.ErrEmptyInput)
}

func TestConvertFallbackOnlyWhenEnabled(t *testing.T) {
	res, err := NewConverter().Convert("r4 t90")
	require.NoError(t, err)
	assert.Empty(t, res.Sequence)
	assert.False(t, res.Fallback)

	res, err = NewConverter(WithFallbackScale(true)).Convert("r4 t90")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Len(t, res.Sequence, 16)
	assert.Equal(t, "Generated 16 MIDI events (fallback)", res.Summary())
}

func TestConvertNestedLoopOption(t *testing.T) {
	expand, err := NewConverter().Convert("[c[d]3]2")
	require.NoError(t, err)
	flat, err := NewConverter(WithNestedLoops(LoopFlat)).Convert("[c[d]3]2")
	require.NoError(t, err)
	assert.Len(t, expand.Sequence, 16)
	assert.Len(t, flat.Sequence, 12)
}

func TestConvertWidthFolding(t *testing.T) {
	src := "ｏ５ ［ｃｄ］３"
	res, err := NewConverter().Convert(src)
	require.NoError(t, err)
	assert.Empty(t, res.Score.Events)

	res, err = NewConverter(WithWidthFolding(true)).Convert(src)
	require.NoError(t, err)
	require.Len(t, res.Score.Events, 6)
	assert.Equal(t, 5, res.Score.Events[0].Octave)
}

func TestResultLength(t *testing.T) {
	res, err := NewConverter().Convert("l4 cdef")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, res.Length(120))
	assert.Equal(t, 4*time.Second, res.Length(60))
	assert.Equal(t, time.Duration(0), res.Length(0))
	assert.Contains(t, res.Describe(120), "Generated 8 MIDI events")
}

func TestConverterConcurrentUse(t *testing.T) {
	c := NewConverter()
	inputs := []string{"[cdefgab]8", "o3 l8 [c e g]4", "t200 v30 [c&d e]3", "r"}
	var wg sync.WaitGroup
	results := make([]int, len(inputs)*8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Convert(inputs[i%len(inputs)])
			if err == nil {
				results[i] = len(res.Sequence)
			}
		}(i)
	}
	wg.Wait()
	for i, n := range results {
		want, err := c.Convert(inputs[i%len(inputs)])
		require.NoError(t, err)
		assert.Equal(t, len(want.Sequence), n)
	}
}

func TestWriteMIDIFile(t *testing.T) {
	res, err := NewConverter().Convert("l4 c e g")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.mid")
	require.NoError(t, WriteMIDIFile(path, res, DefaultExportOptions()))

	file, err := smf.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, file.Tracks, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteMIDI(&buf, res, DefaultExportOptions()))
	assert.NotZero(t, buf.Len())
}
