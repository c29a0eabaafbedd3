package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenGt
	tokenLt
	tokenGte
	tokenLte
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenEq:
		return "=="
	case tokenNeq:
		return "!="
	case tokenGt:
		return ">"
	case tokenLt:
		return "<"
	case tokenGte:
		return ">="
	case tokenLte:
		return "<="
	case tokenAnd:
		return "&&"
	case tokenOr:
		return "||"
	case tokenNot:
		return "!"
	default:
		return "?"
	}
}

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '!', '=', '&', '|', '<', '>', '"', '\'':
		return true
	default:
		return isSpace(ch)
	}
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string, width int) {
		tokens = append(tokens, token{kind: kind, raw: raw})
		i += width
	}

	for i < len(input) {
		ch := input[i]
		if isSpace(ch) {
			i++
			continue
		}

		switch ch {
		case '(':
			emit(tokenLParen, "(", 1)
		case ')':
			emit(tokenRParen, ")", 1)
		case '!':
			if peek(1) == '=' {
				emit(tokenNeq, "!=", 2)
			} else {
				emit(tokenNot, "!", 1)
			}
		case '=':
			if peek(1) != '=' {
				return nil, errors.New("logic/expr: unexpected '='; use '=='")
			}
			emit(tokenEq, "==", 2)
		case '>':
			if peek(1) == '=' {
				emit(tokenGte, ">=", 2)
			} else {
				emit(tokenGt, ">", 1)
			}
		case '<':
			if peek(1) == '=' {
				emit(tokenLte, "<=", 2)
			} else {
				emit(tokenLt, "<", 1)
			}
		case '&':
			if peek(1) != '&' {
				return nil, errors.New("logic/expr: unexpected '&'; use '&&'")
			}
			emit(tokenAnd, "&&", 2)
		case '|':
			if peek(1) != '|' {
				return nil, errors.New("logic/expr: unexpected '|'; use '||'")
			}
			emit(tokenOr, "||", 2)
		case '"', '\'':
			value, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			emit(tokenString, value, width)
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}

	return tokens, nil
}

// scanString reads a quoted literal at the start of input and returns the
// unquoted value and the number of bytes consumed.
func scanString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for idx := 1; idx < len(input); idx++ {
		c := input[idx]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[1:idx]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("logic/expr: invalid string literal: %w", err)
		}
		return value, idx + 1, nil
	}
	return "", 0, errors.New("logic/expr: unterminated string literal")
}

func classifyWord(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(raw)}
	case "null", "nil", "undefined":
		return token{kind: tokenNull, raw: "null"}
	}
	if looksLikeNumber(raw) {
		return token{kind: tokenNumber, raw: raw}
	}
	return token{kind: tokenIdentifier, raw: raw}
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	if ch == '-' || ch == '+' {
		return len(raw) > 1 && raw[1] >= '0' && raw[1] <= '9'
	}
	return ch >= '0' && ch <= '9'
}
