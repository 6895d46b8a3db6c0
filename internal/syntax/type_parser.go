package syntax

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

var primitiveKinds = func() map[string]TypeKind {
	m := make(map[string]TypeKind, len(primitiveNames))
	for kind, name := range primitiveNames {
		m[name] = kind
	}

	return m
}()

// ParseType parses a printed type such as "Int", "Qubit[]", "(Int, Double)",
// "(Qubit => Unit is Adj + Ctl)" or "Microsoft.Quantum.Math.Complex".
func ParseType(s string) (*Type, error) {
	p := &typeParser{src: s}

	t, err := p.parse()
	if err != nil {
		return nil, err
	}

	return t, nil
}

// ParseTypeAt parses a type written on a single source line starting at
// start, and records the source range of every nested type. Columns count
// UTF-16 code units.
func ParseTypeAt(s string, start Position) (*Type, error) {
	p := &typeParser{src: s, start: &start}

	return p.parse()
}

type typeParser struct {
	src   string
	pos   int
	start *Position
}

func (p *typeParser) parse() (*Type, error) {
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q at offset %d in type %q", p.src[p.pos:], p.pos, p.src)
	}

	return t, nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek(tok string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], tok)
}

func (p *typeParser) accept(tok string) bool {
	if p.peek(tok) {
		p.pos += len(tok)
		return true
	}

	return false
}

func (p *typeParser) mark(t *Type, from int) *Type {
	if p.start != nil {
		r := Range{
			Start: Position{Line: p.start.Line, Column: p.start.Column + p.column(from)},
			End:   Position{Line: p.start.Line, Column: p.start.Column + p.column(p.pos)},
		}
		t.Range = &r
	}

	return t
}

// column converts a byte offset into src to UTF-16 code units.
func (p *typeParser) column(offset int) int {
	units := 0
	for _, r := range p.src[:offset] {
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
	}

	return units
}

func (p *typeParser) parseType() (*Type, error) {
	p.skipSpace()
	from := p.pos

	t, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.accept("[]") {
		t = p.mark(ArrayOf(t), from)
	}

	return t, nil
}

func (p *typeParser) parsePrimary() (*Type, error) {
	p.skipSpace()
	from := p.pos

	switch {
	case p.accept("("):
		return p.parseParenthesized(from)
	case p.accept("'"):
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("missing type parameter name in %q", p.src)
		}

		return p.mark(&Type{Kind: TypeParameter, Param: name}, from), nil
	}

	name := p.qualifiedIdent()
	if name == "" {
		return nil, fmt.Errorf("expected a type at offset %d in %q", p.pos, p.src)
	}

	if name == "_" {
		return p.mark(&Type{Kind: TypeMissing}, from), nil
	}

	if kind, ok := primitiveKinds[name]; ok {
		return p.mark(Primitive(kind), from), nil
	}

	return p.mark(UserDefined(ParseQualifiedName(name)), from), nil
}

func (p *typeParser) parseParenthesized(from int) (*Type, error) {
	if p.accept(")") {
		return p.mark(Primitive(TypeUnit), from), nil
	}

	first, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.peek("=>") || p.peek("->") {
		kind := TypeFunction
		if p.accept("=>") {
			kind = TypeOperation
		} else {
			p.accept("->")
		}

		out, err := p.parseType()
		if err != nil {
			return nil, err
		}

		t := &Type{Kind: kind, Items: []*Type{first, out}}

		if p.accept("is") {
			for {
				switch {
				case p.accept("Adj"):
					t.Functors = append(t.Functors, Adjoint)
				case p.accept("Ctl"):
					t.Functors = append(t.Functors, Controlled)
				default:
					return nil, fmt.Errorf("unknown characteristic in %q", p.src)
				}

				if !p.accept("+") {
					break
				}
			}
		}

		if !p.accept(")") {
			return nil, fmt.Errorf("missing ')' in %q", p.src)
		}

		return p.mark(t, from), nil
	}

	items := []*Type{first}
	for p.accept(",") {
		item, err := p.parseType()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if !p.accept(")") {
		return nil, fmt.Errorf("missing ')' in %q", p.src)
	}

	if len(items) == 1 {
		return first, nil
	}

	return p.mark(TupleOf(items...), from), nil
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		p.pos += size
	}

	return p.src[start:p.pos]
}

func (p *typeParser) qualifiedIdent() string {
	p.skipSpace()
	start := p.pos

	for {
		if p.ident() == "" {
			break
		}

		if p.pos < len(p.src) && p.src[p.pos] == '.' {
			p.pos++
			continue
		}

		break
	}

	return strings.TrimSuffix(p.src[start:p.pos], ".")
}
