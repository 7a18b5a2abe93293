package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// Ref is a parsed reference to an original declaration: sin, Float.adding,
// A.- or consistent(_:).
type Ref struct {
	Owner  string   // Qualifying type, empty when unqualified
	Name   string
	Labels []string // nil when no argument labels are written
}

var qualifiedPrefix = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*`)

// ParseRef splits a reference into owner, name and argument labels.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	var ref Ref
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		inner := s[open+1 : len(s)-1]
		ref.Labels = []string{}
		if inner != "" {
			if !strings.HasSuffix(inner, ":") {
				return Ref{}, fmt.Errorf("invalid argument labels in reference %q", s)
			}
			for _, l := range strings.Split(strings.TrimSuffix(inner, ":"), ":") {
				if l == "" {
					return Ref{}, fmt.Errorf("empty argument label in reference %q", s)
				}
				ref.Labels = append(ref.Labels, l)
			}
		}
		s = s[:open]
	}
	if s == "" {
		return Ref{}, fmt.Errorf("empty reference")
	}

	prefix := qualifiedPrefix.FindString(s)
	switch {
	case prefix == s:
		if dot := strings.LastIndexByte(s, '.'); dot >= 0 {
			ref.Owner, ref.Name = s[:dot], s[dot+1:]
		} else {
			ref.Name = s
		}
	case prefix != "" && len(s) > len(prefix)+1 && s[len(prefix)] == '.':
		// Operator member, e.g. A.-
		ref.Owner, ref.Name = prefix, s[len(prefix)+1:]
	case prefix == "":
		ref.Name = s
	default:
		return Ref{}, fmt.Errorf("invalid reference %q", s)
	}
	return ref, nil
}

func (r Ref) String() string {
	var b strings.Builder
	if r.Owner != "" {
		b.WriteString(r.Owner)
		b.WriteString(".")
	}
	b.WriteString(r.Name)
	if r.Labels != nil {
		b.WriteString("(")
		for _, l := range r.Labels {
			b.WriteString(l)
			b.WriteString(":")
		}
		b.WriteString(")")
	}
	return b.String()
}

// matchesLabels reports whether labels agree with the written ones.
func (r Ref) matchesLabels(labels []string) bool {
	if r.Labels == nil {
		return true
	}
	if len(labels) != len(r.Labels) {
		return false
	}
	for i := range labels {
		if labels[i] != r.Labels[i] {
			return false
		}
	}
	return true
}
