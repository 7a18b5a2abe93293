package derivative

import (
	"fmt"
	"strconv"
	"strings"
)

// SelfPosition is the synthetic position of the implicit self parameter. It
// orders before every declared parameter.
const SelfPosition = -1

// Subset is a strictly increasing list of parameter positions.
type Subset struct {
	Positions []int
}

func NewSubset(positions ...int) Subset {
	return Subset{Positions: positions}
}

func (s Subset) Len() int { return len(s.Positions) }

// HasSelf reports whether self is differentiated.
func (s Subset) HasSelf() bool {
	return len(s.Positions) > 0 && s.Positions[0] == SelfPosition
}

// Params returns the positions of declared parameters, self excluded.
func (s Subset) Params() []int {
	if s.HasSelf() {
		return s.Positions[1:]
	}
	return s.Positions
}

// Contains reports whether pos is in the subset.
func (s Subset) Contains(pos int) bool {
	for _, p := range s.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

// Key is the canonical textual form used in registration keys and snapshots.
func (s Subset) Key() string {
	parts := make([]string, len(s.Positions))
	for i, p := range s.Positions {
		if p == SelfPosition {
			parts[i] = "self"
		} else {
			parts[i] = strconv.Itoa(p)
		}
	}
	return strings.Join(parts, ",")
}

func (s Subset) String() string {
	return "(" + strings.ReplaceAll(s.Key(), ",", ", ") + ")"
}

// ParseSubsetKey is the inverse of Subset.Key.
func ParseSubsetKey(key string) (Subset, error) {
	if key == "" {
		return Subset{}, nil
	}
	var positions []int
	for _, part := range strings.Split(key, ",") {
		if part == "self" {
			positions = append(positions, SelfPosition)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Subset{}, fmt.Errorf("invalid subset key %q: %w", key, err)
		}
		positions = append(positions, n)
	}
	return Subset{Positions: positions}, nil
}

// Key identifies a registration: one derivative per original, subset and kind.
type Key struct {
	Original string
	Subset   string
	Kind     Kind
}

func NewKey(original string, subset Subset, kind Kind) Key {
	return Key{Original: original, Subset: subset.Key(), Kind: kind}
}

func (k Key) String() string {
	return fmt.Sprintf("%s wrt (%s) %s", k.Original, k.Subset, k.Kind)
}
