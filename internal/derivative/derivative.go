// Package derivative holds the values that flow between verification stages:
// registration requests, derivative kinds and differentiation parameter
// subsets.
package derivative

import (
	"fmt"
	"strconv"
	"strings"
)

// Attribute is the attribute family that produced a request.
type Attribute int

const (
	Differentiating Attribute = iota
	Transposing
)

func (a Attribute) String() string {
	if a == Transposing {
		return "transposing"
	}
	return "differentiating"
}

// ParseAttribute accepts the attribute name with or without a leading '@'.
func ParseAttribute(s string) (Attribute, error) {
	switch strings.TrimPrefix(s, "@") {
	case "", "differentiating":
		return Differentiating, nil
	case "transposing":
		return Transposing, nil
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}

type Kind int

const (
	Pullback Kind = iota
	Differential
	Transpose
)

func (k Kind) String() string {
	switch k {
	case Differential:
		return "differential"
	case Transpose:
		return "transpose"
	default:
		return "pullback"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pullback":
		return Pullback, nil
	case "differential":
		return Differential, nil
	case "transpose":
		return Transpose, nil
	}
	return 0, fmt.Errorf("unknown derivative kind %q", s)
}

type WrtItemKind int

const (
	WrtName WrtItemKind = iota
	WrtIndex
	WrtSelf
)

// WrtItem is one element of an explicit wrt clause as written.
type WrtItem struct {
	Kind  WrtItemKind
	Name  string
	Index int
}

func Named(name string) WrtItem { return WrtItem{Kind: WrtName, Name: name} }
func Indexed(i int) WrtItem     { return WrtItem{Kind: WrtIndex, Index: i} }
func Self() WrtItem             { return WrtItem{Kind: WrtSelf} }

func (w WrtItem) String() string {
	switch w.Kind {
	case WrtIndex:
		return strconv.Itoa(w.Index)
	case WrtSelf:
		return "self"
	default:
		return w.Name
	}
}

// Request asks for Candidate to be registered as a derivative of the
// declaration Original refers to. A nil Wrt means the subset is inferred.
type Request struct {
	Attribute Attribute
	Original  string
	Wrt       []WrtItem
	Candidate string
}

func (r Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s(%s", r.Attribute, r.Original)
	if r.Wrt != nil {
		items := make([]string, len(r.Wrt))
		for i, w := range r.Wrt {
			items[i] = w.String()
		}
		fmt.Fprintf(&b, ", wrt: (%s)", strings.Join(items, ", "))
	}
	fmt.Fprintf(&b, ") %s", r.Candidate)
	return b.String()
}
