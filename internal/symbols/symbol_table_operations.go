package symbols

import (
	"fmt"
)

// Index is the read-only view of parsed declarations a verification pass
// works against. It is populated up front and never mutated afterwards, so it
// may be shared between workers.
type Index struct {
	decls   []*Declaration
	byID    map[string]*Declaration
	free    map[string][]*Declaration            // Name -> free functions
	members map[string]map[string][]*Declaration // Owner -> Name -> members

	// Trait inheritance registry: TraitName -> [SuperTraitName]
	// e.g. "FloatingPoint" -> ["AdditiveArithmetic"]
	traitSuperTraits map[string][]string

	// Nominal types: TypeName -> conformances and associated types
	types map[string]*TypeInfo
}

func NewIndex() *Index {
	return &Index{
		byID:             make(map[string]*Declaration),
		free:             make(map[string][]*Declaration),
		members:          make(map[string]map[string][]*Declaration),
		traitSuperTraits: make(map[string][]string),
		types:            make(map[string]*TypeInfo),
	}
}

// Define adds a declaration. IDs must be unique within the index.
func (idx *Index) Define(d *Declaration) error {
	if d.ID == "" {
		return fmt.Errorf("declaration %s has no id", d.FullName())
	}
	if _, exists := idx.byID[d.ID]; exists {
		return fmt.Errorf("duplicate declaration id %q", d.ID)
	}
	idx.decls = append(idx.decls, d)
	idx.byID[d.ID] = d
	if d.Owner == "" {
		idx.free[d.Name] = append(idx.free[d.Name], d)
		return nil
	}
	if idx.members[d.Owner] == nil {
		idx.members[d.Owner] = make(map[string][]*Declaration)
	}
	idx.members[d.Owner][d.Name] = append(idx.members[d.Owner][d.Name], d)
	return nil
}

// Lookup returns the declaration with the given id.
func (idx *Index) Lookup(id string) (*Declaration, bool) {
	d, ok := idx.byID[id]
	return d, ok
}

// Declarations returns every declaration in definition order.
func (idx *Index) Declarations() []*Declaration {
	return append([]*Declaration(nil), idx.decls...)
}

// FindCandidates returns the free functions called name.
func (idx *Index) FindCandidates(name string) []*Declaration {
	return append([]*Declaration(nil), idx.free[name]...)
}

// FindMember returns the members called name visible on typeName: its own
// members first, then those inherited from the traits it refines or conforms
// to, nearest first.
func (idx *Index) FindMember(typeName, name string) []*Declaration {
	var out []*Declaration
	seen := map[string]bool{}
	for _, owner := range idx.contextChain(typeName) {
		if seen[owner] {
			continue
		}
		seen[owner] = true
		out = append(out, idx.members[owner][name]...)
	}
	return out
}

// contextChain lists typeName followed by every trait reachable from it in
// breadth-first order.
func (idx *Index) contextChain(typeName string) []string {
	chain := []string{typeName}
	var queue []string
	if info, ok := idx.types[typeName]; ok {
		queue = append(queue, info.Conformances...)
	} else {
		queue = append(queue, idx.traitSuperTraits[typeName]...)
	}
	visited := map[string]bool{typeName: true}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		chain = append(chain, next)
		queue = append(queue, idx.traitSuperTraits[next]...)
	}
	return chain
}
