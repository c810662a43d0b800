package compliance

import (
	"fmt"
	"strings"
)

// render substitutes ${name} placeholders in text with values[name].
// "$$" yields a literal "$" and a "$" followed by anything else is kept as is.
// A placeholder with no value, an invalid name or an unterminated "${" fails
// with ErrTemplate.
func render(text string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]
		if c != '$' || i+1 >= len(text) {
			b.WriteByte(c)
			i++
			continue
		}
		switch text[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2
		case '{':
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated placeholder at offset %d", ErrTemplate, i)
			}
			name := text[i+2 : i+2+end]
			if !validName(name) {
				return "", fmt.Errorf("%w: invalid placeholder %q", ErrTemplate, name)
			}
			value, ok := values[name]
			if !ok {
				return "", fmt.Errorf("%w: no value for placeholder %q", ErrTemplate, name)
			}
			b.WriteString(value)
			i += end + 3
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
