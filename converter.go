package mmlmidi

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/tliron/commonlog"
	"golang.org/x/text/width"

	intmml "github.com/cbegin/mmlmidi-go/internal/mml"
	intseq "github.com/cbegin/mmlmidi-go/internal/sequencer"
)

type (
	Score      = intmml.Score
	Event      = intmml.Event
	ParseError = intmml.ParseError
	ErrorKind  = intmml.ErrorKind
	LoopMode   = intmml.LoopMode
	Signal     = intseq.Signal
	Sequence   = intseq.Sequence
)

const (
	LoopExpand = intmml.LoopExpand
	LoopFlat   = intmml.LoopFlat
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

type ConverterOption func(*converterConfig)

type converterConfig struct {
	nestedLoops LoopMode
	fallback    bool
	foldWidth   bool
	log         commonlog.Logger
}

func defaultConverterConfig() converterConfig {
	return converterConfig{nestedLoops: LoopExpand}
}

// WithNestedLoops selects how loops inside loops are repeated.
func WithNestedLoops(mode LoopMode) ConverterOption {
	return func(cfg *converterConfig) {
		cfg.nestedLoops = mode
	}
}

// WithFallbackScale substitutes a short rising pattern from middle C when a
// score parses but yields no notes.
func WithFallbackScale(enabled bool) ConverterOption {
	return func(cfg *converterConfig) {
		cfg.fallback = enabled
	}
}

// WithWidthFolding maps full-width characters to their ASCII forms before
// parsing. Error positions then refer to the folded text.
func WithWidthFolding(enabled bool) ConverterOption {
	return func(cfg *converterConfig) {
		cfg.foldWidth = enabled
	}
}

func WithLogger(log commonlog.Logger) ConverterOption {
	return func(cfg *converterConfig) {
		cfg.log = log
	}
}

// Converter compiles MML text into note signals. It holds no per-call state
// and is safe for concurrent use.
type Converter struct {
	parser    *intmml.Parser
	fallback  bool
	foldWidth bool
	log       commonlog.Logger
}

func NewConverter(opts ...ConverterOption) *Converter {
	cfg := defaultConverterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = commonlog.GetLogger("mmlmidi")
	}
	pcfg := intmml.DefaultParserConfig()
	pcfg.NestedLoops = cfg.nestedLoops
	return &Converter{
		parser:    intmml.NewParser(pcfg),
		fallback:  cfg.fallback,
		foldWidth: cfg.foldWidth,
		log:       cfg.log,
	}
}

type Result struct {
	Score    *Score
	Sequence Sequence
	// Fallback is set when Sequence is the stand-in pattern rather than
	// the score's own notes.
	Fallback bool
}

func Compile(mmlText string) (*Score, error) {
	return intmml.Parse(mmlText)
}

func (c *Converter) Convert(mmlText string) (*Result, error) {
	if c.foldWidth {
		mmlText = width.Fold.String(mmlText)
	}
	score, err := c.parser.Parse(mmlText)
	if err != nil {
		c.log.Debugf("parse failed: %s", err)
		return nil, fmt.Errorf("mml error: %w", err)
	}
	if score.OpenLoops > 0 {
		c.log.Warningf("%d loop(s) opened with '[' were never closed", score.OpenLoops)
	}
	res := &Result{Score: score, Sequence: intseq.Build(score.Events)}
	if len(res.Sequence) == 0 && c.fallback {
		c.log.Infof("score has no notes, using fallback pattern")
		res.Sequence = intseq.Fallback()
		res.Fallback = true
	}
	c.log.Debugf("built %d signals from %d events", len(res.Sequence), len(score.Events))
	return res, nil
}

// Summary is the one-line status shown after a successful conversion.
func (r *Result) Summary() string {
	s := fmt.Sprintf("Generated %s MIDI events", humanize.Comma(int64(len(r.Sequence))))
	if r.Fallback {
		s += " (fallback)"
	}
	return s
}

// Length is the playing time of the sequence at bpm quarter notes per minute.
func (r *Result) Length(bpm float64) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(r.Sequence.End() * 60 / bpm * float64(time.Second))
}

// Describe extends Summary with the playing time at bpm.
func (r *Result) Describe(bpm float64) string {
	d := r.Length(bpm)
	return fmt.Sprintf("%s, %s at %s bpm", r.Summary(), durafmt.Parse(d).LimitFirstN(2).Format(shortUnits), humanize.Ftoa(bpm))
}

// AsParseError extracts the parse failure from an error returned by Convert.
func AsParseError(err error) (*ParseError, bool) {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}
