package symbols

import (
	"github.com/funvibe/derivcheck/internal/typesystem"
)

// TypeInfo describes a nominal type: the traits it conforms to and the
// bindings of its associated types (e.g. TangentVector).
type TypeInfo struct {
	Name         string
	Conformances []string
	Associated   map[string]typesystem.Type
}

// DefineTrait registers a trait together with the traits it refines.
func (idx *Index) DefineTrait(name string, superTraits ...string) {
	idx.traitSuperTraits[name] = append(idx.traitSuperTraits[name], superTraits...)
}

// DefineType registers a nominal type.
func (idx *Index) DefineType(info *TypeInfo) {
	if info.Associated == nil {
		info.Associated = make(map[string]typesystem.Type)
	}
	idx.types[info.Name] = info
}

// IsTrait checks if a trait is defined in the index.
func (idx *Index) IsTrait(name string) bool {
	_, ok := idx.traitSuperTraits[name]
	return ok
}

// TypeInfo returns the registered nominal type.
func (idx *Index) TypeInfo(name string) (*TypeInfo, bool) {
	info, ok := idx.types[name]
	return info, ok
}

// TraitRefines reports whether sub is super or inherits from it.
func (idx *Index) TraitRefines(sub, super string) bool {
	if sub == super {
		return true
	}
	visited := map[string]bool{}
	queue := []string{sub}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == super {
			return true
		}
		if visited[next] {
			continue
		}
		visited[next] = true
		queue = append(queue, idx.traitSuperTraits[next]...)
	}
	return false
}

// TypeConformsTo reports whether a nominal type conforms to trait directly
// or through a refinement of one of its conformances.
func (idx *Index) TypeConformsTo(typeName, trait string) bool {
	info, ok := idx.types[typeName]
	if !ok {
		return false
	}
	for _, c := range info.Conformances {
		if idx.TraitRefines(c, trait) {
			return true
		}
	}
	return false
}

// AssociatedType returns the binding of assoc on a nominal type.
func (idx *Index) AssociatedType(typeName, assoc string) (typesystem.Type, bool) {
	info, ok := idx.types[typeName]
	if !ok {
		return nil, false
	}
	t, ok := info.Associated[assoc]
	return t, ok
}

var _ typesystem.Resolver = (*Index)(nil)
