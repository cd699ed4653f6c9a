package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/mmlmidi-go/internal/config"
)

func testOptions() options {
	cfg := config.Default()
	return options{cfg: &cfg, jobs: 2}
}

func TestRunInlineDefault(t *testing.T) {
	var out bytes.Buffer
	failed := run(testOptions(), &out)
	assert.Equal(t, 0, failed)
	assert.Contains(t, out.String(), "<inline>: Generated 16 MIDI events")
}

func TestRunInlineDump(t *testing.T) {
	opts := testOptions()
	opts.inline = "c"
	opts.dump = true
	var out bytes.Buffer
	require.Equal(t, 0, run(opts, &out))
	assert.Contains(t, out.String(), "0.0000 on key=60 vel=100")
	assert.Contains(t, out.String(), "0.2500 off key=60 vel=0")
}

func TestRunFilesInOrderWithFailures(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i, body := range []string{"l4 cde", "t999", "[ce]3", "]"} {
		path := filepath.Join(dir, string(rune('a'+i))+".mml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		files = append(files, path)
	}
	opts := testOptions()
	opts.files = files
	opts.midi = true
	var out bytes.Buffer
	failed := run(opts, &out)
	assert.Equal(t, 2, failed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	var status []string
	for _, l := range lines {
		if !strings.HasPrefix(l, "  ") {
			status = append(status, l)
		}
	}
	require.Len(t, status, 4)
	assert.Contains(t, status[0], "Generated 6 MIDI events")
	assert.Contains(t, status[1], "tempo out of range")
	assert.Contains(t, status[2], "Generated 12 MIDI events")
	assert.Contains(t, status[3], "unmatched loop end")

	file, err := smf.ReadFile(filepath.Join(dir, "a.mid"))
	require.NoError(t, err)
	assert.Len(t, file.Tracks, 1)
	_, err = os.Stat(filepath.Join(dir, "b.mid"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunInlineWritesScoreTempo(t *testing.T) {
	opts := testOptions()
	opts.inline = "t90 c"
	opts.cfg.Export.UseScoreTempo = true
	opts.out = filepath.Join(t.TempDir(), "inline.mid")
	var out bytes.Buffer
	require.Equal(t, 0, run(opts, &out))
	assert.Contains(t, out.String(), "at 90 bpm")

	file, err := smf.ReadFile(opts.out)
	require.NoError(t, err)
	var bpm float64
	for _, ev := range file.Tracks[0] {
		if ev.Message.GetMetaTempo(&bpm) {
			break
		}
	}
	assert.InDelta(t, 90, bpm, 0.01)
}

func TestRunMissingFile(t *testing.T) {
	opts := testOptions()
	opts.files = []string{filepath.Join(t.TempDir(), "missing.mml")}
	var out bytes.Buffer
	assert.Equal(t, 1, run(opts, &out))
}
