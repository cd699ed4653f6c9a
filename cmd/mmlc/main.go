package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/remeh/sizedwaitgroup"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/cbegin/mmlmidi-go"
	"github.com/cbegin/mmlmidi-go/internal/config"
)

const defaultMML = "t120 o4 l8 cdefgab>c"

type options struct {
	cfg      *config.Config
	inline   string
	out      string
	midi     bool
	dump     bool
	jobs     int
	files    []string
	failFast bool
}

func main() {
	var (
		cfgPath    = flag.String("config", "", "path to "+config.FileName+" (default: look in the working directory)")
		mmlInline  = flag.String("mml", "", "inline MML string (used when no files are given)")
		out        = flag.String("o", "", "write inline input as a MIDI file to this path")
		midi       = flag.Bool("midi", false, "write <name>.mid next to each input file")
		dump       = flag.Bool("dump", false, "print every note signal")
		jobs       = flag.Int("jobs", runtime.NumCPU(), "files compiled in parallel")
		tempo      = flag.Float64("tempo", 0, "export tempo in bpm (overrides config)")
		scoreTempo = flag.Bool("score-tempo", false, "export with the score's final t value")
		nested     = flag.String("nested", "", "nested loop replay: expand|flat (overrides config)")
		fallback   = flag.Bool("fallback", true, "substitute a fallback pattern for scores without notes")
		fold       = flag.Bool("fold", false, "fold full-width characters to ASCII before parsing")
		verbosity  = flag.Int("v", 0, "log verbosity (0=notice, 1=info, 2=debug)")
		failFast   = flag.Bool("fail-fast", false, "exit non-zero on the first failing file")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tempo":
			cfg.Export.Tempo = *tempo
		case "score-tempo":
			cfg.Export.UseScoreTempo = *scoreTempo
		case "nested":
			cfg.Compile.NestedLoops = *nested
		case "fallback":
			cfg.Compile.FallbackScale = *fallback
		case "fold":
			cfg.Compile.FoldWidth = *fold
		case "v":
			cfg.Log.Verbosity = *verbosity
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	commonlog.Configure(cfg.Log.Verbosity, nil)

	opts := options{
		cfg:      cfg,
		inline:   *mmlInline,
		out:      *out,
		midi:     *midi,
		dump:     *dump,
		jobs:     *jobs,
		files:    flag.Args(),
		failFast: *failFast,
	}
	if failed := run(opts, os.Stdout); failed > 0 {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.Load(path, false)
	}
	return config.FindAndLoad(".")
}

func newConverter(cfg *config.Config) *mmlmidi.Converter {
	mode := mmlmidi.LoopExpand
	if cfg.FlatLoops() {
		mode = mmlmidi.LoopFlat
	}
	return mmlmidi.NewConverter(
		mmlmidi.WithNestedLoops(mode),
		mmlmidi.WithFallbackScale(cfg.Compile.FallbackScale),
		mmlmidi.WithWidthFolding(cfg.Compile.FoldWidth),
		mmlmidi.WithLogger(commonlog.GetLogger("mmlc")),
	)
}

type job struct {
	name string
	text string
	out  string
}

type outcome struct {
	job    job
	result *mmlmidi.Result
	err    error
}

// run compiles every job and prints one status line per job in input order.
// It returns the number of jobs that failed.
func run(opts options, w io.Writer) int {
	logger := commonlog.GetLogger("mmlc")
	jobs, err := collectJobs(opts)
	if err != nil {
		fmt.Fprintf(w, "%v\n", err)
		return 1
	}
	conv := newConverter(opts.cfg)
	outcomes := make([]outcome, len(jobs))
	limit := opts.jobs
	if limit < 1 {
		limit = 1
	}
	wg := sizedwaitgroup.New(limit)
	for i := range jobs {
		wg.Add()
		go func(i int) {
			defer wg.Done()
			outcomes[i] = compile(conv, jobs[i], opts.cfg)
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, oc := range outcomes {
		if oc.err != nil {
			failed++
			logger.Errorf("%s: %s", oc.job.name, oc.err)
			fmt.Fprintf(w, "%s: %v\n", oc.job.name, oc.err)
			if opts.failFast {
				return failed
			}
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", oc.job.name, oc.result.Describe(exportTempo(opts.cfg, oc.result)))
		if oc.job.out != "" {
			fmt.Fprintf(w, "  wrote %s\n", oc.job.out)
		}
		if opts.dump {
			for _, s := range oc.result.Sequence {
				fmt.Fprintf(w, "  %s\n", s)
			}
		}
	}
	return failed
}

func collectJobs(opts options) ([]job, error) {
	if len(opts.files) == 0 {
		text := opts.inline
		if strings.TrimSpace(text) == "" {
			text = defaultMML
		}
		return []job{{name: "<inline>", text: text, out: opts.out}}, nil
	}
	jobs := make([]job, 0, len(opts.files))
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		j := job{name: path, text: string(data)}
		if opts.midi {
			j.out = strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func compile(conv *mmlmidi.Converter, j job, cfg *config.Config) outcome {
	res, err := conv.Convert(j.text)
	if err != nil {
		return outcome{job: j, err: err}
	}
	if j.out != "" {
		if err := mmlmidi.WriteMIDIFile(j.out, res, exportOptions(cfg, res)); err != nil {
			return outcome{job: j, err: err}
		}
	}
	return outcome{job: j, result: res}
}

func exportTempo(cfg *config.Config, res *mmlmidi.Result) float64 {
	if cfg.Export.UseScoreTempo && res.Score != nil {
		return float64(res.Score.Tempo)
	}
	return cfg.Export.Tempo
}

func exportOptions(cfg *config.Config, res *mmlmidi.Result) mmlmidi.ExportOptions {
	opts := mmlmidi.DefaultExportOptions()
	opts.Tempo = exportTempo(cfg, res)
	opts.Resolution = cfg.Export.Resolution
	opts.Channel = uint8(cfg.Export.Channel)
	opts.TrackName = cfg.Export.TrackName
	return opts
}
