package expr

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLBrace
	tokRBrace
	tokComma
	tokSymbol
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "relation"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokComma:
		return "','"
	default:
		return "symbol"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// symbols is the closed alphabet of operator characters.
const symbols = "|&+=^~:!#"

func isSymbol(r rune) bool {
	for _, s := range symbols {
		if r == s {
			return true
		}
	}
	return false
}

// lex splits src into tokens. The token list always ends with tokEOF.
func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
		case r == '{':
			toks = append(toks, token{kind: tokLBrace, text: "{", pos: i})
			i += w
		case r == '}':
			toks = append(toks, token{kind: tokRBrace, text: "}", pos: i})
			i += w
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i += w
		case isSymbol(r):
			toks = append(toks, token{kind: tokSymbol, text: string(r), pos: i})
			i += w
		case unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, w = utf8.DecodeRuneInString(src[i:])
				if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
					break
				}
				i += w
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			return nil, &ParseError{Input: src, Pos: i, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}
