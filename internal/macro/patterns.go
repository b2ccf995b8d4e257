package macro

import (
	"fmt"
	"strings"

	"rmspp/internal/diag"
	"rmspp/internal/token"
)

// argError points at the argument that made a generator fail.
type argError struct {
	index int
	msg   string
}

func (e *argError) Error() string { return e.msg }

func badArg(index int, format string, args ...any) error {
	return &argError{index: index, msg: fmt.Sprintf(format, args...)}
}

// pattern describes one macro. Exactly one of lines and lands is set.
type pattern struct {
	minArgs, maxArgs int
	// lines generates plain script lines.
	lines func(a []float64) ([]string, error)
	// lands generates land centers; each becomes a create_land command
	// carrying the optional { attrs } block.
	lands func(a []float64) ([]Point, error)
}

// pointSet builds the 100 candidate player positions from the first
// macro argument.
type pointSet func(size float64) ([]Point, error)

var patterns = map[string]pattern{}

func init() {
	sets := map[string]pointSet{
		"CIRCLE": circleSet,
		"SQUARE": squareSet(5),
		"MIGRA":  squareSet(0),
	}
	for prefix, set := range sets {
		patterns[prefix+"_LABELS"] = pattern{minArgs: 2, maxArgs: 2, lines: labelsFor(set)}
		patterns[prefix+"_POSITION_P1"] = pattern{minArgs: 1, maxArgs: 1, lines: p1For(set)}
		patterns[prefix+"_POSITION_P2"] = pattern{minArgs: 2, maxArgs: 2, lines: p2For(set)}
	}
	patterns["CIRCLE_LANDS"] = pattern{minArgs: 2, maxArgs: 4, lands: circleLands}
	patterns["SQUARE_LANDS"] = pattern{minArgs: 2, maxArgs: 2, lands: squareLands}
	patterns["POSITION_LABELS"] = pattern{lines: slotLabels}
	patterns["POSITION_P1"] = pattern{lines: slotP1}
	patterns["POSITION_P2"] = pattern{lines: slotP2}
}

// IsPattern reports whether name (upper-case, without '#') is a pattern macro.
func IsPattern(name string) bool {
	_, ok := patterns[name]
	return ok
}

func circleSet(radius float64) ([]Point, error) {
	if radius <= 0 || radius >= mapCenter {
		return nil, badArg(0, "radius %g must be between 0 and %d", radius, mapCenter)
	}
	points, ok := Select100(RingPoints(radius))
	if !ok {
		return nil, badArg(0, "radius %g is too small to place 100 positions", radius)
	}
	return points, nil
}

func squareSet(cut int) pointSet {
	return func(inset float64) ([]Point, error) {
		n := int(inset)
		if float64(n) != inset || n < 0 || n >= mapCenter-cut {
			return nil, badArg(0, "inset %g must be an integer between 0 and %d", inset, mapCenter-cut-1)
		}
		points, ok := Select100(SquarePoints(n, cut))
		if !ok {
			return nil, badArg(0, "inset %g leaves too few positions", inset)
		}
		return points, nil
	}
}

func checkAngle(v float64) (int, error) {
	angle := int(v)
	if float64(angle) != v || angle < 90 || angle > 135 {
		return 0, badArg(1, "angle %g must be an integer in 90..135", v)
	}
	return angle, nil
}

// p2Range returns the offsets player two may take relative to player one.
func p2Range(points []Point, v float64) (left, right int, err error) {
	angle, err := checkAngle(v)
	if err != nil {
		return 0, 0, err
	}
	left, right, ok := PointOffsets(points, angle)
	if !ok {
		return 0, 0, badArg(1, "no positions are %d degrees apart", angle)
	}
	return left, right, nil
}

// labelsFor: one random block choosing player one's slot uniformly and one
// choosing player two's offset with Gaussian weights.
func labelsFor(set pointSet) func([]float64) ([]string, error) {
	return func(a []float64) ([]string, error) {
		points, err := set(a[0])
		if err != nil {
			return nil, err
		}
		left, right, err := p2Range(points, a[1])
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, 204)
		lines = append(lines, "start_random")
		for i := range 100 {
			lines = append(lines, fmt.Sprintf("percent_chance 1 #define P1_POINT_%d", i))
		}
		lines = append(lines, "end_random", "start_random")
		for i, p := range Probabilities(left, right) {
			if p > 0 {
				lines = append(lines, fmt.Sprintf("percent_chance %d #define P2_OFFSET_%d", p, i))
			}
		}
		return append(lines, "end_random"), nil
	}
}

func p1For(set pointSet) func([]float64) ([]string, error) {
	return func(a []float64) ([]string, error) {
		points, err := set(a[0])
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, 2*len(points)+1)
		delim := "if"
		for i, p := range points {
			lines = append(lines,
				fmt.Sprintf("%s P1_POINT_%d", delim, i),
				fmt.Sprintf("land_position %d %d", p.X, p.Y))
			delim = "elseif"
		}
		return append(lines, "endif"), nil
	}
}

func p2For(set pointSet) func([]float64) ([]string, error) {
	return func(a []float64) ([]string, error) {
		points, err := set(a[0])
		if err != nil {
			return nil, err
		}
		left, right, err := p2Range(points, a[1])
		if err != nil {
			return nil, err
		}
		var lines []string
		outer := "if"
		for i := range points {
			lines = append(lines, fmt.Sprintf("%s P1_POINT_%d", outer, i))
			inner := "if"
			for j := left; j <= right; j++ {
				p := points[(i+j)%len(points)]
				lines = append(lines,
					fmt.Sprintf("%s P2_OFFSET_%d", inner, j),
					fmt.Sprintf("land_position %d %d", p.X, p.Y))
				inner = "elseif"
			}
			lines = append(lines, "endif")
			outer = "elseif"
		}
		return append(lines, "endif"), nil
	}
}

func landCount(v float64) (int, error) {
	n := int(v)
	if float64(n) != v || n < 1 || n > 1000 {
		return 0, badArg(0, "land count %g must be an integer in 1..1000", v)
	}
	return n, nil
}

func circleLands(a []float64) ([]Point, error) {
	n, err := landCount(a[0])
	if err != nil {
		return nil, err
	}
	if a[1] <= 0 {
		return nil, badArg(1, "radius %g must be positive", a[1])
	}
	cx, cy := float64(mapCenter), float64(mapCenter)
	switch len(a) {
	case 3:
		return nil, badArg(2, "center needs both x and y")
	case 4:
		cx, cy = a[2], a[3]
	}
	return CirclePoints(n, a[1], cx, cy), nil
}

func squareLands(a []float64) ([]Point, error) {
	n, err := landCount(a[0])
	if err != nil {
		return nil, err
	}
	if a[1] < 0 || a[1] >= mapCenter {
		return nil, badArg(1, "inset %g must be in 0..%d", a[1], mapCenter-1)
	}
	return PerimeterPoints(n, a[1]), nil
}

// expandPattern replaces one invocation. It returns the generated tokens
// and the index of the first token after the invocation.
func (x *expander) expandPattern(toks []token.Token, i int, p pattern) ([]token.Token, int) {
	open := toks[i]
	args, next, hasParens, ok := x.parseArgs(toks, i)
	if !ok {
		return nil, next
	}
	if (!hasParens && p.maxArgs > 0) || len(args) < p.minArgs || len(args) > p.maxArgs {
		want := fmt.Sprintf("%d", p.minArgs)
		if p.maxArgs != p.minArgs {
			want = fmt.Sprintf("%d to %d", p.minArgs, p.maxArgs)
		}
		diag.ReportErrorf(x.reporter, diag.MacBadArgument, open.Span,
			"%s takes %s arguments, got %d", open.Text, want, len(args)).Emit()
		return nil, next
	}
	c := call{Open: open, Args: args, Span: open.Span}

	values := make([]float64, len(args))
	for k, a := range args {
		values[k] = a.Value
	}

	if p.lines != nil {
		lines, err := p.lines(values)
		if err != nil {
			x.reportArgError(c, err)
			return nil, next
		}
		return generated(strings.Join(lines, "\n"), open), next
	}

	attrs, after, ok := parseAttrs(toks, next)
	if !ok {
		diag.ReportError(x.reporter, diag.MacBadArgument, toks[next].Span,
			"unclosed attribute block of "+open.Text).Emit()
		return nil, next
	}
	c.Attrs = attrs
	points, err := p.lands(values)
	if err != nil {
		x.reportArgError(c, err)
		return nil, after
	}
	for _, pt := range points {
		if !InMap(pt) {
			diag.ReportErrorf(x.reporter, diag.MacCoordOutOfRange, open.Span,
				"%s places a land at (%d, %d), outside the map", open.Text, pt.X, pt.Y).Emit()
			return nil, after
		}
	}
	return landCommands(c, points), after
}

func (x *expander) reportArgError(c call, err error) {
	sp := c.Span
	if ae, ok := err.(*argError); ok && ae.index < len(c.Args) {
		sp = c.Args[ae.index].Span
	}
	diag.ReportError(x.reporter, diag.MacBadArgument, sp, err.Error()).Emit()
}

// landCommands renders one create_land per point:
//
//	create_land {
//	land_position X Y
//	<attrs>
//	}
func landCommands(c call, points []Point) []token.Token {
	var out []token.Token
	for k, pt := range points {
		lead := c.Open.Leading
		if k > 0 {
			lead = newlineTrivia(c.Open.Span)
		}
		out = append(out, generatedWithLeading(
			fmt.Sprintf("create_land {\nland_position %d %d", pt.X, pt.Y), c.Open, lead)...)
		if len(c.Attrs) > 0 {
			attrs := token.CloneTokens(c.Attrs)
			if !attrs[0].NewlineBefore() {
				attrs[0].Leading = newlineTrivia(c.Open.Span)
			}
			out = append(out, attrs...)
		}
		closeBrace := token.Synth(token.RBrace, "}", c.Open.Span)
		closeBrace.Leading = newlineTrivia(c.Open.Span)
		out = append(out, closeBrace)
	}
	return out
}

// patterns replaces pattern macro invocations in a token run. Any other
// directive that is neither consumed by the preprocessor nor understood by
// the engine is reported as unknown, with or without an argument list.
func (x *expander) patterns(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.Directive {
			out = append(out, t)
			continue
		}
		name := t.DirectiveName()
		if p, ok := patterns[name]; ok {
			gen, next := x.expandPattern(toks, i, p)
			out = append(out, gen...)
			i = next - 1
			continue
		}
		if t.Directive() == token.DirNative && !token.IsNativeDirective(name) {
			diag.ReportErrorf(x.reporter, diag.MacUnknownMacro, t.Span,
				"unknown macro %s", t.Text).Emit()
		}
		out = append(out, t)
	}
	return out
}
