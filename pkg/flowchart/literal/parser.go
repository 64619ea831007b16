package literal

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) errorf(format string, args ...any) error {
	line, col := 1, 1
	for i := 0; i < p.pos && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// skipSpace skips whitespace, comments and backslash line continuations.
func (p *parser) skipSpace() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			p.pos++
		case c == '#':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		case c == '\\' && p.peekAt(1) == '\n':
			p.pos += 2
		case c == '\\' && p.peekAt(1) == '\r' && p.peekAt(2) == '\n':
			p.pos += 3
		default:
			return
		}
	}
}

func (p *parser) value() (any, error) {
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.peek()
	switch {
	case c == '[':
		p.pos++
		items, _, err := p.sequence(']')
		if err != nil {
			return nil, err
		}
		return List(items), nil

	case c == '(':
		p.pos++
		items, comma, err := p.sequence(')')
		if err != nil {
			return nil, err
		}
		if len(items) == 1 && !comma {
			return items[0], nil
		}
		return Tuple(items), nil

	case c == '{':
		p.pos++
		return p.braces()

	case c == '+' || c == '-':
		p.pos++
		p.skipSpace()
		if p.eof() || !startsNumber(p.peek(), p.peekAt(1)) {
			return nil, p.errorf("unary %q must be followed by a number", c)
		}
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		if c == '-' {
			switch v := n.(type) {
			case int64:
				return -v, nil
			case float64:
				return -v, nil
			}
		}
		return n, nil

	case startsNumber(c, p.peekAt(1)):
		return p.number()

	case c == '\'' || c == '"':
		return p.stringValue()

	case isIdentStart(c):
		word := p.ident()
		if q := p.peekAt(len(word)); q == '\'' || q == '"' {
			switch strings.ToLower(word) {
			case "r", "u", "b", "br", "rb":
				return p.stringValue()
			case "f", "fr", "rf":
				return nil, p.errorf("f-strings are not literals")
			}
		}
		switch word {
		case "None":
			p.pos += len(word)
			return nil, nil
		case "True":
			p.pos += len(word)
			return true, nil
		case "False":
			p.pos += len(word)
			return false, nil
		}
		return nil, p.errorf("name %q is not a literal", word)
	}

	return nil, p.errorf("unexpected %q", c)
}

// sequence parses comma-separated values up to closer, which must follow
// the already-consumed opening bracket. It reports whether any comma was
// seen, which distinguishes (x) from (x,).
func (p *parser) sequence(closer byte) ([]any, bool, error) {
	items := []any{}
	comma := false
	for {
		p.skipSpace()
		if p.eof() {
			return nil, false, p.errorf("missing closing %q", closer)
		}
		if p.peek() == closer {
			p.pos++
			return items, comma, nil
		}

		v, err := p.value()
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)

		p.skipSpace()
		if p.eof() {
			return nil, false, p.errorf("missing closing %q", closer)
		}
		switch p.peek() {
		case ',':
			p.pos++
			comma = true
		case closer:
			p.pos++
			return items, comma, nil
		default:
			return nil, false, p.errorf("expected ',' or %q, found %q", closer, p.peek())
		}
	}
}

// braces parses a set or dict after the opening brace. {} is an empty Dict.
func (p *parser) braces() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("missing closing '}'")
	}
	if p.peek() == '}' {
		p.pos++
		return Dict{}, nil
	}

	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.eof() || p.peek() != ':' {
		rest, err := p.restOfSet()
		if err != nil {
			return nil, err
		}
		return append(Set{first}, rest...), nil
	}

	dict := Dict{}
	key := first
	for {
		p.pos++ // ':'
		p.skipSpace()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		dict = append(dict, KeyValue{Key: key, Value: val})

		p.skipSpace()
		if p.eof() {
			return nil, p.errorf("missing closing '}'")
		}
		switch p.peek() {
		case '}':
			p.pos++
			return dict, nil
		case ',':
			p.pos++
		default:
			return nil, p.errorf("expected ',' or '}', found %q", p.peek())
		}

		p.skipSpace()
		if !p.eof() && p.peek() == '}' {
			p.pos++
			return dict, nil
		}
		if key, err = p.value(); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.eof() || p.peek() != ':' {
			return nil, p.errorf("expected ':' in dict")
		}
	}
}

// restOfSet continues a set after its first element.
func (p *parser) restOfSet() ([]any, error) {
	if p.eof() {
		return nil, p.errorf("missing closing '}'")
	}
	switch p.peek() {
	case '}':
		p.pos++
		return nil, nil
	case ',':
		p.pos++
		items, _, err := p.sequence('}')
		return items, err
	}
	return nil, p.errorf("expected ',' or '}', found %q", p.peek())
}

func (p *parser) ident() string {
	end := p.pos
	for end < len(p.src) && isIdentPart(p.src[end]) {
		end++
	}
	return p.src[p.pos:end]
}

// stringValue parses one or more adjacent string literals and concatenates them.
func (p *parser) stringValue() (any, error) {
	var b strings.Builder
	for {
		s, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		b.WriteString(s)

		save := p.pos
		p.skipSpace()
		if p.eof() || !p.atString() {
			p.pos = save
			return b.String(), nil
		}
	}
}

// atString reports whether a string literal (with optional prefix) starts
// at the current position.
func (p *parser) atString() bool {
	c := p.peek()
	if c == '\'' || c == '"' {
		return true
	}
	if !isIdentStart(c) {
		return false
	}
	word := p.ident()
	if q := p.peekAt(len(word)); q != '\'' && q != '"' {
		return false
	}
	switch strings.ToLower(word) {
	case "r", "u", "b", "br", "rb":
		return true
	}
	return false
}

func (p *parser) stringLit() (string, error) {
	raw := false
	for !p.eof() && p.peek() != '\'' && p.peek() != '"' {
		if p.peek() == 'r' || p.peek() == 'R' {
			raw = true
		}
		p.pos++
	}

	quote := p.peek()
	triple := p.peekAt(1) == quote && p.peekAt(2) == quote
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.peek()

		if c == quote {
			if !triple {
				p.pos++
				return b.String(), nil
			}
			if p.peekAt(1) == quote && p.peekAt(2) == quote {
				p.pos += 3
				return b.String(), nil
			}
			b.WriteByte(c)
			p.pos++
			continue
		}

		if c == '\n' && !triple {
			return "", p.errorf("unterminated string")
		}

		if c != '\\' {
			b.WriteByte(c)
			p.pos++
			continue
		}

		if raw {
			// In raw strings a backslash keeps the next character verbatim,
			// quotes included, so it never terminates the literal.
			b.WriteByte(c)
			p.pos++
			if !p.eof() {
				b.WriteByte(p.peek())
				p.pos++
			}
			continue
		}

		if err := p.escape(&b); err != nil {
			return "", err
		}
	}
}

// escape decodes one backslash escape sequence into b.
func (p *parser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.eof() {
		return p.errorf("unterminated string")
	}
	c := p.peek()
	p.pos++

	switch c {
	case '\n':
	case '\r':
		if !p.eof() && p.peek() == '\n' {
			p.pos++
		}
	case '\\', '\'', '"':
		b.WriteByte(c)
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'v':
		b.WriteByte('\v')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		start := p.pos - 1
		for p.pos-start < 3 && !p.eof() && p.peek() >= '0' && p.peek() <= '7' {
			p.pos++
		}
		n, _ := strconv.ParseUint(p.src[start:p.pos], 8, 32)
		b.WriteRune(rune(n))
	case 'x':
		return p.hexEscape(b, 2)
	case 'u':
		return p.hexEscape(b, 4)
	case 'U':
		return p.hexEscape(b, 8)
	case 'N':
		return p.errorf("named unicode escapes are not supported")
	default:
		// Unknown escapes are kept verbatim.
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) hexEscape(b *strings.Builder, digits int) error {
	if p.pos+digits > len(p.src) {
		return p.errorf("truncated \\x, \\u or \\U escape")
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+digits], 16, 32)
	if err != nil {
		return p.errorf("invalid hex escape %q", p.src[p.pos:p.pos+digits])
	}
	if n > utf8.MaxRune {
		return p.errorf("escape %q out of unicode range", p.src[p.pos:p.pos+digits])
	}
	p.pos += digits
	b.WriteRune(rune(n))
	return nil
}

func (p *parser) number() (any, error) {
	start := p.pos

	if p.peek() == '0' && p.pos+1 < len(p.src) {
		base := 0
		switch p.src[p.pos+1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			p.pos += 2
			for !p.eof() && (isHexDigit(p.peek()) || p.peek() == '_') {
				p.pos++
			}
			return p.finishInt(start, p.src[start+2:p.pos], base)
		}
	}

	isFloat := false
	p.digits()
	if !p.eof() && p.peek() == '.' {
		isFloat = true
		p.pos++
		p.digits()
	}
	if !p.eof() && (p.peek() == 'e' || p.peek() == 'E') {
		isFloat = true
		p.pos++
		if !p.eof() && (p.peek() == '+' || p.peek() == '-') {
			p.pos++
		}
		if p.eof() || !isDigit(p.peek()) {
			return nil, p.errorf("malformed exponent")
		}
		p.digits()
	}

	if !p.eof() && (p.peek() == 'j' || p.peek() == 'J') {
		return nil, p.errorf("complex numbers are not supported")
	}
	if !p.eof() && isIdentPart(p.peek()) {
		return nil, p.errorf("invalid character %q in number", p.peek())
	}

	text := p.src[start:p.pos]
	if !isFloat {
		if len(text) > 1 && text[0] == '0' && strings.Trim(text, "0_") != "" {
			return nil, p.errorf("leading zeros in decimal integer %q", text)
		}
		return p.finishInt(start, text, 10)
	}

	clean, ok := stripUnderscores(text)
	if !ok {
		return nil, p.errorf("invalid number %q", text)
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil, p.errorf("invalid float %q", text)
	}
	return f, nil
}

func (p *parser) finishInt(start int, digits string, base int) (any, error) {
	clean, ok := stripUnderscores(digits)
	if !ok || clean == "" {
		return nil, p.errorf("invalid number %q", p.src[start:p.pos])
	}
	n, err := strconv.ParseInt(clean, base, 64)
	if err != nil {
		return nil, p.errorf("integer %q out of range", p.src[start:p.pos])
	}
	return n, nil
}

func (p *parser) digits() {
	for !p.eof() && (isDigit(p.peek()) || p.peek() == '_') {
		p.pos++
	}
}

// stripUnderscores removes digit-group underscores, rejecting leading,
// trailing and doubled ones.
func stripUnderscores(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	if strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return "", false
	}
	return strings.ReplaceAll(s, "_", ""), true
}

func startsNumber(c, next byte) bool {
	return isDigit(c) || (c == '.' && isDigit(next))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
