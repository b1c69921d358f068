package onetest

import (
	"strings"
)

// parsedTemplate is a backend template split into attributes and vectors.
type parsedTemplate struct {
	attrs   map[string]string
	vectors map[string][]map[string]string
}

func (p parsedTemplate) get(key string) string {
	return p.attrs[key]
}

func (p parsedTemplate) vector(key string) []map[string]string {
	return p.vectors[key]
}

// parseTemplate reads the KEY="value" and KEY=[A="1", B="2"] grammar.
func parseTemplate(tpl string) parsedTemplate {
	p := parsedTemplate{attrs: map[string]string{}, vectors: map[string][]map[string]string{}}
	for _, line := range strings.Split(tpl, "\n") {
		line = strings.TrimSpace(line)
		key, rest, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if strings.HasPrefix(rest, "[") && strings.HasSuffix(rest, "]") {
			p.vectors[key] = append(p.vectors[key], parsePairs(rest[1:len(rest)-1]))
			continue
		}
		value, _ := readQuoted(rest)
		p.attrs[key] = value
	}
	return p
}

func parsePairs(s string) map[string]string {
	out := map[string]string{}
	for len(s) > 0 {
		s = strings.TrimLeft(s, ", ")
		key, rest, ok := strings.Cut(s, "=")
		if !ok {
			break
		}
		value, remaining := readQuoted(rest)
		out[strings.TrimSpace(key)] = value
		s = remaining
	}
	return out
}

// readQuoted consumes a double-quoted, backslash-escaped value and returns
// it unescaped together with the remaining input.
func readQuoted(s string) (string, string) {
	if !strings.HasPrefix(s, `"`) {
		return s, ""
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String(), s[i+1:]
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), ""
}
