// Package expr compiles a compact expression syntax into logic rules so form
// authors can write visibility conditions inline:
//
//	plan == "pro" && (seats > 5 || !trial)
//
// Supported forms:
//   - truthiness: `enabled`, `!enabled`
//   - equality: `field == "value"`, `field != 3`, `field == null`
//   - ordering: `count > 3`, `count <= 10`
//   - composition: `&&`, `||` and parentheses
//
// The result is an ordinary logic.Rule and serialises to the JSON wire form.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formlogic/pkg/logic"
)

// Compile parses src into a rule.
func Compile(src string) (logic.Rule, error) {
	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return logic.Rule{}, errors.New("logic/expr: empty expression")
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return logic.Rule{}, err
	}

	stream := &tokenStream{tokens: tokens}
	rule, err := parseOr(stream)
	if err != nil {
		return logic.Rule{}, err
	}
	if stream.pos < len(stream.tokens) {
		return logic.Rule{}, fmt.Errorf("logic/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return rule, nil
}

// MustCompile is Compile for static expressions; it panics on error.
func MustCompile(src string) logic.Rule {
	rule, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return rule
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseOr(stream *tokenStream) (logic.Rule, error) {
	first, err := parseAnd(stream)
	if err != nil {
		return logic.Rule{}, err
	}
	operands := []logic.Rule{first}
	for stream.match(tokenOr) {
		next, err := parseAnd(stream)
		if err != nil {
			return logic.Rule{}, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return logic.Or(operands...), nil
}

func parseAnd(stream *tokenStream) (logic.Rule, error) {
	first, err := parseUnary(stream)
	if err != nil {
		return logic.Rule{}, err
	}
	operands := []logic.Rule{first}
	for stream.match(tokenAnd) {
		next, err := parseUnary(stream)
		if err != nil {
			return logic.Rule{}, err
		}
		operands = append(operands, next)
	}
	if len(operands) == 1 {
		return first, nil
	}
	return logic.And(operands...), nil
}

func parseUnary(stream *tokenStream) (logic.Rule, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return logic.Rule{}, err
		}
		return logic.Not(inner), nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (logic.Rule, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return logic.Rule{}, err
		}
		if !stream.match(tokenRParen) {
			return logic.Rule{}, errors.New("logic/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return logic.Rule{}, errors.New("logic/expr: unexpected end of expression")
		}
		return logic.Rule{}, fmt.Errorf("logic/expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}
	field := ident.raw

	op, ok := stream.comparison()
	if !ok {
		return logic.Var(field), nil
	}

	value, err := stream.consumeLiteral()
	if err != nil {
		return logic.Rule{}, err
	}

	switch op {
	case tokenEq:
		return logic.Equals(field, value), nil
	case tokenNeq:
		return logic.NotEquals(field, value), nil
	}

	n, isNumber := value.(float64)
	if !isNumber {
		return logic.Rule{}, fmt.Errorf("logic/expr: %s %s expects a number", field, op)
	}
	switch op {
	case tokenGt:
		return logic.GreaterThan(field, n), nil
	case tokenLt:
		return logic.LessThan(field, n), nil
	case tokenGte:
		return logic.GreaterThanOrEqual(field, n), nil
	default:
		return logic.LessThanOrEqual(field, n), nil
	}
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) comparison() (tokenKind, bool) {
	if s.pos >= len(s.tokens) {
		return 0, false
	}
	switch kind := s.tokens[s.pos].kind; kind {
	case tokenEq, tokenNeq, tokenGt, tokenLt, tokenGte, tokenLte:
		s.pos++
		return kind, true
	default:
		return 0, false
	}
}

func (s *tokenStream) consumeLiteral() (any, error) {
	if s.pos >= len(s.tokens) {
		return nil, errors.New("logic/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return tok.raw, nil
	case tokenNumber:
		n, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("logic/expr: invalid number literal %q", tok.raw)
		}
		return n, nil
	case tokenBool:
		return tok.raw == "true", nil
	case tokenNull:
		return nil, nil
	case tokenIdentifier:
		// Bare words on the right-hand side read as strings: `plan == pro`.
		return tok.raw, nil
	default:
		return nil, fmt.Errorf("logic/expr: expected literal, got %q", tok.raw)
	}
}
