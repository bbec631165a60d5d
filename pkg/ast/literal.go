package ast

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// StringValue decodes a string literal.
func (n *Node) StringValue() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	text := n.Text()
	if len(text) < 2 {
		return "", false
	}
	return decodeEscapes(text[1 : len(text)-1]), true
}

// TemplateValue returns the text of a template literal and the number of
// `${}` substitutions it contains. The text is only meaningful when the
// count is zero.
func (n *Node) TemplateValue() (string, int) {
	if n.Kind() != KindTemplate {
		return "", 0
	}
	substitutions := 0
	for _, child := range n.NamedChildren() {
		if child.Type() == "template_substitution" {
			substitutions++
		}
	}
	text := n.Text()
	if len(text) < 2 {
		return "", substitutions
	}
	return decodeEscapes(text[1 : len(text)-1]), substitutions
}

// TemplateParts splits a template literal into its literal segments and
// substitution expressions. There is always one more segment than
// expressions.
func (n *Node) TemplateParts() (segments []string, exprs []*Node) {
	if n.Kind() != KindTemplate {
		return nil, nil
	}
	source := n.file.Source
	start := n.ts.StartByte() + 1
	end := n.ts.EndByte() - 1
	for _, child := range n.NamedChildren() {
		if child.Type() != "template_substitution" {
			continue
		}
		segments = append(segments, decodeEscapes(string(source[start:child.ts.StartByte()])))
		exprs = append(exprs, child.FirstNamedChild())
		start = child.ts.EndByte()
	}
	if start > end {
		start = end
	}
	segments = append(segments, decodeEscapes(string(source[start:end])))
	return segments, exprs
}

// NumberValue parses a numeric literal. integer is true for literals written
// without a fraction or exponent.
func (n *Node) NumberValue() (value float64, integer bool, ok bool) {
	if n.Kind() != KindNumber {
		return 0, false, false
	}
	return ParseNumber(n.Text())
}

// ParseNumber parses JavaScript numeric literal text.
func ParseNumber(text string) (value float64, integer bool, ok bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), "_", "")
	if text == "" {
		return 0, false, false
	}
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		i, err := strconv.ParseInt(lower, 0, 64)
		if err != nil {
			u, uerr := strconv.ParseUint(lower, 0, 64)
			if uerr != nil {
				return 0, false, false
			}
			return float64(u), true, true
		}
		return float64(i), true, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, false
	}
	return f, !strings.ContainsAny(lower, ".e"), true
}

// BigIntValue returns a BigInt literal as an exact decimal string.
func (n *Node) BigIntValue() (string, bool) {
	if n.Kind() != KindBigInt {
		return "", false
	}
	return ParseBigInt(n.Text())
}

// ParseBigInt converts BigInt literal text (`123n`, `0xFFn`) to decimal
// without going through float64.
func ParseBigInt(text string) (string, bool) {
	text = strings.TrimSuffix(strings.ReplaceAll(strings.TrimSpace(text), "_", ""), "n")
	i, ok := new(big.Int).SetString(strings.ToLower(text), 0)
	if !ok {
		return "", false
	}
	return i.String(), true
}

// BoolValue returns the value of a `true`/`false` literal.
func (n *Node) BoolValue() (bool, bool) {
	if n.Kind() != KindBoolean {
		return false, false
	}
	return n.Type() == "true", true
}

// decodeEscapes resolves JavaScript escape sequences in string literal text.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 < len(s) {
				if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(v))
					i += 2
					continue
				}
			}
			b.WriteByte('x')
		case 'u':
			r, width := decodeUnicodeEscape(s[i+1:])
			if width == 0 {
				b.WriteByte('u')
				continue
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// decodeUnicodeEscape decodes the part after `\u`: either four hex digits or
// a braced code point. It returns the rune and the bytes consumed.
func decodeUnicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if len(s) < 4 {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0
	}
	return rune(v), 4
}
