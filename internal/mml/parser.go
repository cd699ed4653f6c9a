package mml

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser { return &Parser{cfg: cfg} }

// Parse compiles input with the default configuration.
func Parse(input string) (*Score, error) {
	return NewParser(DefaultParserConfig()).Parse(input)
}

// Parse scans input once into a command list and then runs it. Any error
// aborts the whole parse; no partial score is returned.
func (p *Parser) Parse(input string) (*Score, error) {
	if len(input) == 0 {
		return nil, newParseError(ErrKindEmptyInput, 0)
	}
	prog, err := p.tokenize(input)
	if err != nil {
		return nil, err
	}
	ctx := newContext(p.cfg)
	ctx.run(prog.commands, false)
	return &Score{
		Events:          ctx.events,
		EndTime:         ctx.currentTime,
		Tempo:           ctx.tempo,
		Volume:          ctx.volume,
		Octave:          ctx.octave,
		DefaultDuration: ctx.defaultDuration,
		OpenLoops:       prog.openLoops,
	}, nil
}

type opKind int

const (
	opNote opKind = iota + 1
	opRest
	opOctave
	opOctaveUp
	opOctaveDown
	opLength
	opTempo
	opVolume
	opLoop
)

// command is one recognized token. Loop bodies are parsed once and kept as
// child commands so repetitions replay commands rather than text.
type command struct {
	op    opKind
	pos   int
	pitch byte
	mods  modifiers
	value int
	body  []command
}

type program struct {
	commands  []command
	openLoops int
}

// loopFrame is an open '[' waiting for its ']'.
type loopFrame struct {
	start int
	body  []command
}

func (p *Parser) tokenize(s string) (program, error) {
	var (
		top   []command
		stack []*loopFrame
	)
	emit := func(c command) {
		if n := len(stack); n > 0 {
			stack[n-1].body = append(stack[n-1].body, c)
			return
		}
		top = append(top, c)
	}
	i := 0
	for i < len(s) {
		ch := s[i]
		if isSpace(ch) {
			i++
			continue
		}
		switch {
		case isNote(ch):
			mods, next := scanNoteModifiers(s, i+1)
			emit(command{op: opNote, pos: i, pitch: ch, mods: mods})
			i = next
		case ch == 'r':
			l, next := scanLength(s, i+1)
			emit(command{op: opRest, pos: i, mods: modifiers{length: l}})
			i = next
		case ch == 'o':
			if i+1 >= len(s) || !isDigit(s[i+1]) {
				return program{}, newParseError(ErrKindInvalidOctave, i)
			}
			emit(command{op: opOctave, pos: i, value: int(s[i+1] - '0')})
			i += 2
		case ch == '>':
			emit(command{op: opOctaveUp, pos: i})
			i++
		case ch == '<':
			emit(command{op: opOctaveDown, pos: i})
			i++
		case ch == 'l':
			if i+1 >= len(s) || !isDigit(s[i+1]) {
				return program{}, newParseError(ErrKindInvalidDuration, i)
			}
			l, next := scanLength(s, i+1)
			emit(command{op: opLength, pos: i, mods: modifiers{length: l}})
			i = next
		case ch == 't':
			val, next, ok := scanDigits(s, i+1)
			if !ok {
				return program{}, newParseError(ErrKindInvalidTempo, i)
			}
			if val < p.cfg.MinTempo || val > p.cfg.MaxTempo {
				return program{}, rangeError(ErrKindTempoOutOfRange, i, p.cfg.MinTempo, p.cfg.MaxTempo)
			}
			emit(command{op: opTempo, pos: i, value: val})
			i = next
		case ch == 'v':
			val, next, ok := scanDigits(s, i+1)
			if !ok {
				return program{}, newParseError(ErrKindInvalidVolume, i)
			}
			if val < p.cfg.MinVolume || val > p.cfg.MaxVolume {
				return program{}, rangeError(ErrKindVolumeOutOfRange, i, p.cfg.MinVolume, p.cfg.MaxVolume)
			}
			emit(command{op: opVolume, pos: i, value: val})
			i = next
		case ch == '[':
			stack = append(stack, &loopFrame{start: i + 1})
			i++
		case ch == ']':
			if len(stack) == 0 {
				return program{}, newParseError(ErrKindUnmatchedLoopEnd, i)
			}
			count, next := p.parseRepeat(s, i+1)
			if count < p.cfg.MinRepeat || count > p.cfg.MaxRepeat {
				return program{}, rangeError(ErrKindLoopCountOutOfRange, i, p.cfg.MinRepeat, p.cfg.MaxRepeat)
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emit(command{op: opLoop, pos: frame.start - 1, value: count, body: frame.body})
			i = next
		default:
			i++
		}
	}
	// An unterminated '[' is legal; its body has already played once.
	open := len(stack)
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		emit(command{op: opLoop, pos: frame.start - 1, value: 1, body: frame.body})
	}
	return program{commands: top, openLoops: open}, nil
}

// parseRepeat reads the count after ']': "*N", "N", or nothing.
func (p *Parser) parseRepeat(s string, at int) (int, int) {
	if at+1 < len(s) && s[at] == '*' && isDigit(s[at+1]) {
		v, next, _ := scanDigits(s, at+1)
		return v, next
	}
	if v, next, ok := scanDigits(s, at); ok {
		return v, next
	}
	return p.cfg.DefaultRepeat, at
}
