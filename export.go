package mmlmidi

import (
	"fmt"
	"io"
	"os"

	intseq "github.com/cbegin/mmlmidi-go/internal/sequencer"
)

type ExportOptions = intseq.ExportOptions

func DefaultExportOptions() ExportOptions { return intseq.DefaultExportOptions() }

// WriteMIDI writes the result's sequence as a Standard MIDI File.
func WriteMIDI(w io.Writer, res *Result, opts ExportOptions) error {
	return intseq.WriteSMF(w, res.Sequence, opts)
}

// WriteMIDIFile writes the result to path, replacing any existing file.
func WriteMIDIFile(path string, res *Result, opts ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMIDI(f, res, opts); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
