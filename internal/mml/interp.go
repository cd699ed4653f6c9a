package mml

// parseContext is the mutable musical state threaded through one run.
type parseContext struct {
	cfg             ParserConfig
	octave          int
	defaultDuration float64
	tempo           int
	volume          int
	currentTime     float64
	events          []Event
}

func newContext(cfg ParserConfig) *parseContext {
	return &parseContext{
		cfg:             cfg,
		octave:          cfg.DefaultOctave,
		defaultDuration: cfg.DefaultDuration,
		tempo:           cfg.DefaultTempo,
		volume:          cfg.DefaultVolume,
		events:          make([]Event, 0, 64),
	}
}

// run executes cmds in order. replay is set while repeating a loop body
// after its first pass.
func (c *parseContext) run(cmds []command, replay bool) {
	for i := range cmds {
		cmd := &cmds[i]
		switch cmd.op {
		case opNote:
			c.note(cmd)
		case opRest:
			dur := cmd.mods.length.resolve(c.defaultDuration)
			c.events = append(c.events, Event{Type: EventRest, Duration: dur, Start: c.currentTime})
			c.currentTime += dur
		case opOctave:
			c.octave = clampInt(cmd.value, c.cfg.MinOctave, c.cfg.MaxOctave)
		case opOctaveUp:
			c.octave = clampInt(c.octave+1, c.cfg.MinOctave, c.cfg.MaxOctave)
		case opOctaveDown:
			c.octave = clampInt(c.octave-1, c.cfg.MinOctave, c.cfg.MaxOctave)
		case opLength:
			c.defaultDuration = cmd.mods.length.resolve(c.defaultDuration)
		case opTempo:
			c.tempo = cmd.value
		case opVolume:
			c.volume = cmd.value
		case opLoop:
			c.loop(cmd, replay)
		}
	}
}

func (c *parseContext) note(cmd *command) {
	dur := cmd.mods.length.resolve(c.defaultDuration)
	c.events = append(c.events, Event{
		Type:       EventNote,
		Pitch:      cmd.pitch,
		Accidental: cmd.mods.accidental,
		Octave:     c.octave,
		Duration:   dur,
		Tied:       cmd.mods.tied,
		Start:      c.currentTime,
	})
	if !cmd.mods.tied {
		c.currentTime += dur
	}
}

// loop plays the body count times. Every pass re-applies the body's context
// changes, so an octave shift inside a loop compounds per repetition.
func (c *parseContext) loop(cmd *command, replay bool) {
	repeat := cmd.value
	if replay && c.cfg.NestedLoops == LoopFlat {
		repeat = 1
	}
	for i := 0; i < repeat; i++ {
		c.run(cmd.body, replay || i > 0)
	}
}
