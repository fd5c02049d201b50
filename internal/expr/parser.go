package expr

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/tgis/internal/relation"
)

// temporalKeywords maps the relation keywords of the operator language to
// the relations they select. Canonical relation names are accepted too.
var temporalKeywords = map[string]relation.Set{
	"equal":      relation.NewSet(relation.Equal),
	"follows":    relation.NewSet(relation.MetBy),
	"precedes":   relation.NewSet(relation.Meets),
	"overlaps":   relation.NewSet(relation.Overlaps),
	"overlapped": relation.NewSet(relation.OverlappedBy),
	"during":     relation.NewSet(relation.During),
	"starts":     relation.NewSet(relation.Starts),
	"finishes":   relation.NewSet(relation.Finishes),
	"contains":   relation.NewSet(relation.Contains),
	"started":    relation.NewSet(relation.StartedBy),
	"finished":   relation.NewSet(relation.FinishedBy),
	"over":       relation.Over,
}

var spatialKeywords = map[string]relation.SpatialRelation{
	"equivalent": relation.Equivalent,
	"cover":      relation.Cover,
	"covered":    relation.Covered,
	"overlap":    relation.Overlap,
	"in":         relation.In,
	"contain":    relation.Contain,
	"meet":       relation.Meet,
}

type mode uint8

const (
	modePlain mode = iota
	modeComparison
)

// Parse parses a plain operator such as "{equal|during,+!:}".
func Parse(text string) (*Expression, error) {
	return parse(text, modePlain)
}

// ParseComparison parses a comparison operator such as "{equal|during,&&}".
func ParseComparison(text string) (*Expression, error) {
	return parse(text, modeComparison)
}

// MustParse is like Parse but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParse(text string) *Expression {
	e, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	src  string
	toks []token
	i    int
	mode mode
	fold cases.Caser
}

func parse(text string, m mode) (*Expression, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{src: text, toks: toks, mode: m, fold: cases.Fold()}

	if _, err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	e, err := p.body()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBrace); err != nil {
		return nil, err
	}
	if _, err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(pos int, format string, args ...any) error {
	return &ParseError{Input: p.src, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t.pos, "expected %s, found %s", kind, describe(t))
	}
	return t, nil
}

func describe(t token) string {
	if t.kind == tokIdent || t.kind == tokSymbol {
		return fmt.Sprintf("%q", t.text)
	}
	return t.kind.String()
}

// body := relation_list [ "," tail ] | tail
func (p *parser) body() (*Expression, error) {
	e := &Expression{}
	switch p.peek().kind {
	case tokIdent:
		if err := p.relationList(e); err != nil {
			return nil, err
		}
		if p.peek().kind != tokComma {
			return e, nil
		}
		p.next()
		if err := p.tail(e); err != nil {
			return nil, err
		}
	case tokSymbol:
		if err := p.tail(e); err != nil {
			return nil, err
		}
	default:
		t := p.peek()
		return nil, p.errorf(t.pos, "expected relation or function, found %s", describe(t))
	}
	if len(e.Terms) == 0 {
		e.Terms = []Term{equalTerm()}
	}
	return e, nil
}

// relation_list := relation ( "|" relation )*
func (p *parser) relationList(e *Expression) error {
	for {
		t, err := p.expect(tokIdent)
		if err != nil {
			return err
		}
		if err := p.relation(e, t); err != nil {
			return err
		}
		if sep := p.peek(); sep.kind != tokSymbol || sep.text != "|" {
			return nil
		}
		p.next()
		if t := p.peek(); t.kind != tokIdent {
			return p.errorf(t.pos, "expected relation after '|', found %s", describe(t))
		}
	}
}

func (p *parser) relation(e *Expression, t token) error {
	name := p.fold.String(t.text)
	if s, ok := temporalKeywords[name]; ok {
		e.Terms = append(e.Terms, Term{Name: name, Relations: s})
		return nil
	}
	if r, ok := spatialKeywords[name]; ok {
		e.Spatial = append(e.Spatial, r)
		return nil
	}
	if r, err := relation.Parse(name); err == nil {
		e.Terms = append(e.Terms, Term{Name: name, Relations: relation.NewSet(r)})
		return nil
	}
	return p.errorf(t.pos, "unknown relation %q", t.text)
}

// tail := [ temporal_op ] function
func (p *parser) tail(e *Expression) error {
	start := p.peek().pos
	var b strings.Builder
	for p.peek().kind == tokSymbol {
		b.WriteString(p.next().text)
	}
	sym := b.String()
	if sym == "" {
		t := p.peek()
		return p.errorf(t.pos, "expected function, found %s", describe(t))
	}

	fns := plainFunctions
	if p.mode == modeComparison {
		fns = comparisonFunctions
	}
	if fn, ok := fns[sym]; ok {
		e.Temporal, e.Function = TemporalEqual, fn
		return nil
	}
	if len(sym) > 1 {
		op, opOK := temporalOps[sym[0]]
		fn, fnOK := fns[sym[1:]]
		if opOK && fnOK {
			e.Temporal, e.Function = op, fn
			return nil
		}
	}
	if p.mode == modeComparison {
		return p.errorf(start, "invalid comparison function %q: expected [=|&+] followed by && or ||", sym)
	}
	return p.errorf(start, "invalid function %q", sym)
}
