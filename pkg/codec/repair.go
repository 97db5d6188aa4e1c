package codec

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// needsRepair reports whether an encoded string may contain the extended
// non-finite float tokens. This is a fast substring check: a false positive
// (the token text inside a string literal) just triggers a re-parse that
// changes nothing semantically.
func needsRepair(s string) bool {
	return strings.Contains(s, "NaN") || strings.Contains(s, "Infinity")
}

// parseLoose parses a JSON document that may additionally contain the bare
// tokens NaN, Infinity, and -Infinity, substituting null for each. It exists
// because the built-in emitter can only reject non-finite floats or pass
// them through as tokens; re-parse-and-substitute is the composition that
// turns permissive output into strict JSON.
func parseLoose(s string) (any, error) {
	p := &looseParser{s: s}
	p.skipSpace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i != len(p.s) {
		return nil, p.errorf("unexpected trailing data")
	}
	return v, nil
}

type looseParser struct {
	s string
	i int
}

func (p *looseParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.i, fmt.Sprintf(format, args...))
}

func (p *looseParser) skipSpace() {
	for p.i < len(p.s) {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *looseParser) parseValue() (any, error) {
	if p.i >= len(p.s) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.s[p.i]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		return p.parseString()
	case c == 't':
		if err := p.literal("true"); err != nil {
			return nil, err
		}
		return true, nil
	case c == 'f':
		if err := p.literal("false"); err != nil {
			return nil, err
		}
		return false, nil
	case c == 'n':
		if err := p.literal("null"); err != nil {
			return nil, err
		}
		return nil, nil
	case c == 'N':
		if err := p.literal("NaN"); err != nil {
			return nil, err
		}
		return nil, nil
	case c == 'I':
		if err := p.literal("Infinity"); err != nil {
			return nil, err
		}
		return nil, nil
	case c == '-' && strings.HasPrefix(p.s[p.i:], "-Infinity"):
		p.i += len("-Infinity")
		return nil, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return nil, p.errorf("unexpected character %q", c)
	}
}

func (p *looseParser) literal(lit string) error {
	if !strings.HasPrefix(p.s[p.i:], lit) {
		return p.errorf("invalid literal")
	}
	p.i += len(lit)
	return nil
}

func (p *looseParser) parseObject() (any, error) {
	p.i++ // '{'
	out := make(map[string]any)
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == '}' {
		p.i++
		return out, nil
	}
	for {
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] != '"' {
			return nil, p.errorf("expected object key")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] != ':' {
			return nil, p.errorf("expected ':' after object key")
		}
		p.i++
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out[key] = val
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated object")
		}
		switch p.s[p.i] {
		case ',':
			p.i++
		case '}':
			p.i++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or '}' in object")
		}
	}
}

func (p *looseParser) parseArray() (any, error) {
	p.i++ // '['
	out := []any{}
	p.skipSpace()
	if p.i < len(p.s) && p.s[p.i] == ']' {
		p.i++
		return out, nil
	}
	for {
		p.skipSpace()
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.skipSpace()
		if p.i >= len(p.s) {
			return nil, p.errorf("unterminated array")
		}
		switch p.s[p.i] {
		case ',':
			p.i++
		case ']':
			p.i++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or ']' in array")
		}
	}
}

func (p *looseParser) parseString() (string, error) {
	p.i++ // '"'
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		switch {
		case c == '"':
			p.i++
			return b.String(), nil
		case c == '\\':
			p.i++
			if p.i >= len(p.s) {
				return "", p.errorf("unterminated escape")
			}
			switch esc := p.s[p.i]; esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
				p.i++
			case 'b':
				b.WriteByte('\b')
				p.i++
			case 'f':
				b.WriteByte('\f')
				p.i++
			case 'n':
				b.WriteByte('\n')
				p.i++
			case 'r':
				b.WriteByte('\r')
				p.i++
			case 't':
				b.WriteByte('\t')
				p.i++
			case 'u':
				r, err := p.parseUnicodeEscape()
				if err != nil {
					return "", err
				}
				b.WriteRune(r)
			default:
				return "", p.errorf("invalid escape character %q", esc)
			}
		case c < 0x20:
			return "", p.errorf("unescaped control character in string")
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return "", p.errorf("unterminated string")
}

// parseUnicodeEscape consumes a \uXXXX sequence (the leading 'u' is the
// current character), combining surrogate pairs.
func (p *looseParser) parseUnicodeEscape() (rune, error) {
	p.i++ // 'u'
	r, err := p.hex4()
	if err != nil {
		return 0, err
	}
	if utf16.IsSurrogate(r) {
		if strings.HasPrefix(p.s[p.i:], `\u`) {
			p.i += 2
			r2, err := p.hex4()
			if err != nil {
				return 0, err
			}
			if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
				return combined, nil
			}
			return utf8.RuneError, nil
		}
		return utf8.RuneError, nil
	}
	return r, nil
}

func (p *looseParser) hex4() (rune, error) {
	if p.i+4 > len(p.s) {
		return 0, p.errorf("truncated unicode escape")
	}
	n, err := strconv.ParseUint(p.s[p.i:p.i+4], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid unicode escape")
	}
	p.i += 4
	return rune(n), nil
}

func (p *looseParser) parseNumber() (any, error) {
	start := p.i
	if p.i < len(p.s) && p.s[p.i] == '-' {
		p.i++
	}
	integral := true
	for p.i < len(p.s) {
		c := p.s[p.i]
		if c >= '0' && c <= '9' {
			p.i++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-' {
			integral = false
			p.i++
			continue
		}
		break
	}
	text := p.s[start:p.i]
	if integral {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.i = start
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}
