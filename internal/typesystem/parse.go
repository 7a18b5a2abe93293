package typesystem

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseType parses a type expression:
//
//	type    := primary [ "->" type ]
//	primary := ident { "." ident } | "(" [ element { "," element } ] ")"
//	element := [ label ":" ] type
//
// Every identifier becomes a TCon; a dotted path becomes nested TAssoc
// projections. A parenthesised single unlabelled type is the type itself.
func ParseType(input string) (Type, error) {
	p := newTypeParser(input)
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return t, nil
}

// MustParseType is ParseType for literals known to be well formed.
func MustParseType(input string) Type {
	t, err := ParseType(input)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseRequirements parses one where-clause entry. A conformance to a
// composition ("T: A & B") yields one requirement per trait.
//
//	requirement := type ":" ident { "&" ident } | type "==" type
func ParseRequirements(input string) ([]Requirement, error) {
	p := newTypeParser(input)
	subject, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var reqs []Requirement
	switch p.tok.kind {
	case tokColon:
		for {
			p.next()
			if p.tok.kind != tokIdent {
				return nil, p.errorf("expected trait name")
			}
			reqs = append(reqs, ConformsTo(subject, p.tok.text))
			p.next()
			if p.tok.kind != tokAmp {
				break
			}
		}
	case tokEq:
		p.next()
		other, err := p.parseType()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, SameTypeAs(subject, other))
	default:
		return nil, p.errorf("expected ':' or '=='")
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return reqs, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLParen
	tokRParen
	tokComma
	tokColon
	tokArrow
	tokDot
	tokAmp
	tokEq
	tokIllegal
)

type typeToken struct {
	kind   tokenKind
	text   string
	offset int
}

type typeParser struct {
	input string
	pos   int
	tok   typeToken
	peek  typeToken
}

func newTypeParser(input string) *typeParser {
	p := &typeParser{input: input}
	p.tok = p.scan()
	p.peek = p.scan()
	return p
}

func (p *typeParser) next() {
	p.tok = p.peek
	p.peek = p.scan()
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.input, Offset: p.tok.offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) scan() typeToken {
	for p.pos < len(p.input) {
		r, w := utf8.DecodeRuneInString(p.input[p.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		p.pos += w
	}
	start := p.pos
	if p.pos >= len(p.input) {
		return typeToken{kind: tokEOF, offset: start}
	}
	r, w := utf8.DecodeRuneInString(p.input[p.pos:])
	switch {
	case r == '(':
		p.pos += w
		return typeToken{kind: tokLParen, text: "(", offset: start}
	case r == ')':
		p.pos += w
		return typeToken{kind: tokRParen, text: ")", offset: start}
	case r == ',':
		p.pos += w
		return typeToken{kind: tokComma, text: ",", offset: start}
	case r == ':':
		p.pos += w
		return typeToken{kind: tokColon, text: ":", offset: start}
	case r == '.':
		p.pos += w
		return typeToken{kind: tokDot, text: ".", offset: start}
	case r == '&':
		p.pos += w
		return typeToken{kind: tokAmp, text: "&", offset: start}
	case r == '-' && strings.HasPrefix(p.input[p.pos:], "->"):
		p.pos += 2
		return typeToken{kind: tokArrow, text: "->", offset: start}
	case r == '=' && strings.HasPrefix(p.input[p.pos:], "=="):
		p.pos += 2
		return typeToken{kind: tokEq, text: "==", offset: start}
	case isIdentRune(r):
		for p.pos < len(p.input) {
			r, w := utf8.DecodeRuneInString(p.input[p.pos:])
			if !isIdentRune(r) {
				break
			}
			p.pos += w
		}
		return typeToken{kind: tokIdent, text: p.input[start:p.pos], offset: start}
	}
	p.pos += w
	return typeToken{kind: tokIllegal, text: string(r), offset: start}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *typeParser) parseType() (Type, error) {
	var primary Type
	var group []TupleElement
	isGroup := false

	switch p.tok.kind {
	case tokIdent:
		primary = p.parseNamed()
	case tokLParen:
		elems, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		group, isGroup = elems, true
	default:
		if p.tok.kind == tokEOF {
			return nil, p.errorf("unexpected end of type")
		}
		return nil, p.errorf("unexpected %q", p.tok.text)
	}

	if p.tok.kind == tokArrow {
		p.next()
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		var params []Type
		if isGroup {
			for _, el := range group {
				params = append(params, el.Type)
			}
		} else {
			params = []Type{primary}
		}
		return TFunc{Params: params, ReturnType: ret}, nil
	}

	if !isGroup {
		return primary, nil
	}
	if len(group) == 1 && group[0].Label == "" {
		return group[0].Type, nil
	}
	return TTuple{Elements: group}, nil
}

func (p *typeParser) parseNamed() Type {
	var t Type = TCon{Name: p.tok.text}
	p.next()
	for p.tok.kind == tokDot && p.peek.kind == tokIdent {
		p.next()
		t = TAssoc{Base: t, Name: p.tok.text}
		p.next()
	}
	return t
}

func (p *typeParser) parseGroup() ([]TupleElement, error) {
	p.next() // consume '('
	elems := []TupleElement{}
	if p.tok.kind == tokRParen {
		p.next()
		return elems, nil
	}
	for {
		el := TupleElement{}
		if p.tok.kind == tokIdent && p.peek.kind == tokColon {
			el.Label = p.tok.text
			p.next()
			p.next()
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		el.Type = t
		elems = append(elems, el)

		switch p.tok.kind {
		case tokComma:
			p.next()
		case tokRParen:
			p.next()
			return elems, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}
