package symbols

import (
	"strings"

	"github.com/funvibe/derivcheck/internal/config"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

type DeclKind int

const (
	FreeFunction DeclKind = iota
	StaticMethod
	InstanceMethod
	Property // Read-only accessor; indexed like a zero-argument instance method
)

func (k DeclKind) String() string {
	switch k {
	case StaticMethod:
		return "static"
	case InstanceMethod:
		return "instance"
	case Property:
		return "property"
	default:
		return "free"
	}
}

// Parameter is one declared parameter of a function or method.
type Parameter struct {
	Label string // Argument label, "_" when the argument is unlabelled
	Name  string // Name used inside the body and by wrt clauses
	Type  typesystem.Type
}

// Declaration is a function, method or property as seen by the verifier.
type Declaration struct {
	ID       string
	Name     string
	Kind     DeclKind
	Owner    string          // Enclosing nominal type or trait, empty for free functions
	SelfType typesystem.Type // Type of the implicit self parameter of methods
	Params   []Parameter
	Result   typesystem.Type
	Generics typesystem.GenericSignature
	File     string
}

// IsMethod returns true for declarations inside a type context.
func (d *Declaration) IsMethod() bool {
	return d.Kind != FreeFunction
}

// HasSelf returns true when the declaration takes an implicit self parameter.
func (d *Declaration) HasSelf() bool {
	return d.Kind == InstanceMethod || d.Kind == Property
}

// IsGeneric returns true when the declaration introduces generic parameters,
// the implicit Self of a trait context included.
func (d *Declaration) IsGeneric() bool {
	return !d.Generics.IsEmpty()
}

// Labels returns the argument labels in declaration order.
func (d *Declaration) Labels() []string {
	labels := make([]string, len(d.Params))
	for i, p := range d.Params {
		labels[i] = p.Label
		if labels[i] == "" {
			labels[i] = p.Name
		}
	}
	return labels
}

// ParamTypes returns the parameter types in declaration order.
func (d *Declaration) ParamTypes() []typesystem.Type {
	types := make([]typesystem.Type, len(d.Params))
	for i, p := range d.Params {
		types[i] = p.Type
	}
	return types
}

// FunctionType returns the declaration's type without self.
func (d *Declaration) FunctionType() typesystem.TFunc {
	return typesystem.TFunc{Params: d.ParamTypes(), ReturnType: d.Result}
}

// ParamIndex finds a parameter by name.
func (d *Declaration) ParamIndex(name string) (int, bool) {
	for i, p := range d.Params {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}

// FullName renders the declaration as name(label:label:), qualified by owner.
func (d *Declaration) FullName() string {
	var b strings.Builder
	if d.Owner != "" {
		b.WriteString(d.Owner)
		b.WriteString(".")
	}
	b.WriteString(d.Name)
	if d.Kind == Property {
		return b.String()
	}
	b.WriteString("(")
	for _, l := range d.Labels() {
		b.WriteString(l)
		b.WriteString(":")
	}
	b.WriteString(")")
	return b.String()
}

// SelfVar is the implicit generic parameter of trait contexts.
var SelfVar = typesystem.TVar{Name: config.SelfTypeName}

// ImplicitSelf returns the self type of a method declared in owner, together
// with the implicit signature a trait context contributes (Self: owner).
func ImplicitSelf(owner string, ownerIsTrait bool) (typesystem.Type, typesystem.GenericSignature) {
	if !ownerIsTrait {
		return typesystem.TCon{Name: owner}, typesystem.GenericSignature{}
	}
	return SelfVar, typesystem.GenericSignature{
		Params:       []typesystem.TVar{SelfVar},
		Requirements: []typesystem.Requirement{typesystem.ConformsTo(SelfVar, owner)},
	}
}
