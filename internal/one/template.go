package one

import (
	"fmt"
	"strings"
)

// Template builds a backend template in the KEY="value" grammar.
//
// Attributes keep their insertion order so that generated templates are
// stable and can be compared byte-for-byte in tests:
//
//	NAME="acme_internal"
//	AR=[TYPE="IP4", IP="10.0.1.1", SIZE="254"]
type Template struct {
	lines []string
}

// Pair is a single attribute inside a vector clause.
type Pair struct {
	Key   string
	Value string
}

// P builds a Pair, formatting value with fmt.Sprint.
func P(key string, value any) Pair {
	return Pair{Key: key, Value: fmt.Sprint(value)}
}

// NewTemplate returns an empty template.
func NewTemplate() *Template {
	return &Template{}
}

// Add appends a single KEY="value" attribute.
func (t *Template) Add(key string, value any) *Template {
	t.lines = append(t.lines, fmt.Sprintf(`%s="%s"`, key, Escape(fmt.Sprint(value))))
	return t
}

// AddVector appends a vector clause KEY=[A="1", B="2"].
// A vector without pairs is skipped.
func (t *Template) AddVector(key string, pairs ...Pair) *Template {
	if len(pairs) == 0 {
		return t
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, p.Key, Escape(p.Value)))
	}
	t.lines = append(t.lines, fmt.Sprintf("%s=[%s]", key, strings.Join(parts, ", ")))
	return t
}

// IsEmpty reports whether the template has no attributes.
func (t *Template) IsEmpty() bool {
	return len(t.lines) == 0
}

// String renders the template, one attribute per line.
func (t *Template) String() string {
	return strings.Join(t.lines, "\n")
}

// Escape backslash-escapes characters that would terminate a quoted value.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SchedRequirements returns a placement expression that matches any of the
// given clusters, e.g. "CLUSTER_ID = 100 | CLUSTER_ID = 101". It returns an
// empty string for no clusters.
func SchedRequirements(clusterIDs []int) string {
	clauses := make([]string, 0, len(clusterIDs))
	for _, id := range clusterIDs {
		clauses = append(clauses, fmt.Sprintf("CLUSTER_ID = %d", id))
	}
	return strings.Join(clauses, " | ")
}
