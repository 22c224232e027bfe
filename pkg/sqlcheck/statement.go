// Package sqlcheck provides lightweight checks on user-supplied SQL text and
// identifiers before they reach a database driver.
package sqlcheck

import (
	"errors"
	"strings"
)

// ErrMultipleStatements indicates the text holds more than one SQL statement.
var ErrMultipleStatements = errors.New("multiple SQL statements not allowed; only single statements are permitted")

// ErrEmptyStatement indicates the text holds no SQL after normalization.
var ErrEmptyStatement = errors.New("SQL statement is required")

// NormalizeStatement trims whitespace and a trailing semicolon, then rejects
// text that still contains a statement separator. A semicolon followed only by
// whitespace and comments is trailing; the comments are dropped with it.
//
// Semicolons inside quoted strings, quoted identifiers, comments and
// PostgreSQL dollar-quoted bodies do not count as separators. Backslash escapes
// inside quoted strings are honoured only when backslashEscapes is set (MySQL).
func NormalizeStatement(text string, backslashEscapes bool) (string, error) {
	text = strings.TrimSpace(text)
	if i := separatorIndex(text, backslashEscapes); i >= 0 {
		if !onlyTrivia(text[i+1:]) {
			return "", ErrMultipleStatements
		}
		text = strings.TrimSpace(text[:i])
	}
	if text == "" {
		return "", ErrEmptyStatement
	}
	return text, nil
}

// onlyTrivia reports whether s holds nothing but whitespace and comments.
func onlyTrivia(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return true
			}
			i += end
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return true
			}
			i += end + 3
		default:
			return false
		}
	}
	return true
}

// separatorIndex returns the offset of the first semicolon outside literals
// and comments, or -1.
func separatorIndex(s string, backslashEscapes bool) int {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateBacktick
		stateLineComment
		stateBlockComment
		stateDollar
	)

	state := stateNormal
	dollarTag := ""

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateNormal:
			switch {
			case c == ';':
				return i
			case c == '\'':
				state = stateSingleQuote
			case c == '"':
				state = stateDoubleQuote
			case c == '`':
				state = stateBacktick
			case c == '-' && i+1 < len(s) && s[i+1] == '-':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(s) && s[i+1] == '*':
				state = stateBlockComment
				i++
			case c == '$':
				if tag, ok := dollarQuoteTag(s[i:]); ok {
					dollarTag = tag
					state = stateDollar
					i += len(tag) - 1
				}
			}
		case stateSingleQuote:
			// '' re-enters the literal on the next iteration.
			if c == '\\' && backslashEscapes {
				i++
			} else if c == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if c == '\\' && backslashEscapes {
				i++
			} else if c == '"' {
				state = stateNormal
			}
		case stateBacktick:
			if c == '`' {
				state = stateNormal
			}
		case stateLineComment:
			if c == '\n' {
				state = stateNormal
			}
		case stateBlockComment:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				state = stateNormal
				i++
			}
		case stateDollar:
			if strings.HasPrefix(s[i:], dollarTag) {
				state = stateNormal
				i += len(dollarTag) - 1
			}
		}
	}
	return -1
}

// dollarQuoteTag returns the opening tag ($$ or $name$) at the start of s.
func dollarQuoteTag(s string) (string, bool) {
	for j := 1; j < len(s); j++ {
		c := s[j]
		if c == '$' {
			return s[:j+1], true
		}
		if !(c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || j > 1 && c >= '0' && c <= '9') {
			return "", false
		}
	}
	return "", false
}
