package recovery

import (
	"fmt"
	"strings"
)

// repair rewrites the most common generator mistakes into valid JSON:
// trailing commas, unquoted object keys, raw control characters and stray
// quotes inside string values.
func repair(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/16)

	inString := false
	escaped := false
	lastSignificant := byte(0)

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(c)
			case c == '\\':
				escaped = true
				b.WriteByte(c)
			case c == '"':
				if closesString(text, i+1) {
					inString = false
					lastSignificant = '"'
					b.WriteByte(c)
				} else {
					b.WriteString(`\"`)
				}
			case c == '\n':
				b.WriteString(`\n`)
			case c == '\r':
				b.WriteString(`\r`)
			case c == '\t':
				b.WriteString(`\t`)
			case c < 0x20:
				fmt.Fprintf(&b, `\u%04x`, c)
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			b.WriteByte(c)
		case c == ',':
			if next := nextSignificant(text, i+1); next == '}' || next == ']' {
				continue
			}
			lastSignificant = c
			b.WriteByte(c)
		case isIdentStart(c) && (lastSignificant == '{' || lastSignificant == ','):
			end := i + 1
			for end < len(text) && isIdentPart(text[end]) {
				end++
			}
			word := text[i:end]
			if nextSignificant(text, end) == ':' {
				b.WriteByte('"')
				b.WriteString(word)
				b.WriteByte('"')
			} else {
				b.WriteString(word)
			}
			lastSignificant = word[len(word)-1]
			i = end - 1
		default:
			if !isSpace(c) {
				lastSignificant = c
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}

// closesString reports whether a quote at position i-1 terminates the string,
// judged by the next significant character.
func closesString(text string, i int) bool {
	switch nextSignificant(text, i) {
	case ',', '}', ']', ':', 0:
		return true
	}
	return false
}

func nextSignificant(text string, i int) byte {
	for ; i < len(text); i++ {
		if !isSpace(text[i]) {
			return text[i]
		}
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
