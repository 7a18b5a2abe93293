package tangent

import (
	"testing"

	"github.com/funvibe/derivcheck/internal/symbols"
	"github.com/funvibe/derivcheck/internal/typesystem"
)

func newIndex() *symbols.Index {
	idx := symbols.NewIndex()
	idx.DefineTrait("Differentiable")
	idx.DefineTrait("AdditiveArithmetic")
	idx.DefineTrait("FloatingPoint", "AdditiveArithmetic")
	idx.DefineType(&symbols.TypeInfo{
		Name:         "Float",
		Conformances: []string{"Differentiable", "FloatingPoint"},
		Associated:   map[string]typesystem.Type{"TangentVector": typesystem.TCon{Name: "Float"}},
	})
	idx.DefineType(&symbols.TypeInfo{
		Name:         "Vector",
		Conformances: []string{"Differentiable"},
		Associated:   map[string]typesystem.Type{"TangentVector": typesystem.TCon{Name: "Vector.Delta"}},
	})
	idx.DefineType(&symbols.TypeInfo{Name: "Int"})
	return idx
}

func model(idx *symbols.Index, reqs ...string) *Model {
	sig := typesystem.GenericSignature{Params: []typesystem.TVar{{Name: "T"}}}
	for _, r := range reqs {
		parsed, err := typesystem.ParseRequirements(r)
		if err != nil {
			panic(err)
		}
		for _, p := range parsed {
			sig.Requirements = append(sig.Requirements, typesystem.ReplaceRequirementTCons(p, map[string]typesystem.Type{"T": typesystem.TVar{Name: "T"}}))
		}
	}
	return New(typesystem.NewEnv(sig, idx))
}

func TestTangentType(t *testing.T) {
	idx := newIndex()
	tests := []struct {
		name string
		reqs []string
		typ  string
		want string // empty when no tangent exists
	}{
		{"float", nil, "Float", "Float"},
		{"int", nil, "Int", ""},
		{"nominal with distinct tangent", nil, "Vector", "Vector.Delta"},
		{"unconstrained parameter", nil, "T", ""},
		{"differentiable parameter", []string{"T: Differentiable"}, "T", "T.TangentVector"},
		{"self tangent parameter", []string{"T: Differentiable", "T == T.TangentVector"}, "T", "T"},
		{"tuple", nil, "(Float, Float)", "(Float, Float)"},
		{"tuple with int", nil, "(Float, Int)", ""},
		{"function", nil, "(Float) -> Float", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model(idx, tt.reqs...)
			typ := typesystem.ReplaceTCon(typesystem.MustParseType(tt.typ), "T", typesystem.TVar{Name: "T"})
			got, ok := m.TangentType(typ)
			if tt.want == "" {
				if ok {
					t.Fatalf("TangentType(%s) = %s, want none", tt.typ, got)
				}
				return
			}
			if !ok {
				t.Fatalf("TangentType(%s) = none, want %s", tt.typ, tt.want)
			}
			if got.String() != tt.want {
				t.Errorf("TangentType(%s) = %s, want %s", tt.typ, got, tt.want)
			}
		})
	}
}

func TestIsSelfTangent(t *testing.T) {
	idx := newIndex()
	tvar := typesystem.TVar{Name: "T"}
	if !model(idx).IsSelfTangent(typesystem.TCon{Name: "Float"}) {
		t.Errorf("Float should be self-tangent")
	}
	if model(idx).IsSelfTangent(typesystem.TCon{Name: "Vector"}) {
		t.Errorf("Vector has a distinct tangent type")
	}
	if model(idx).IsSelfTangent(typesystem.TCon{Name: "Int"}) {
		t.Errorf("Int is not differentiable")
	}
	if model(idx, "T: Differentiable").IsSelfTangent(tvar) {
		t.Errorf("T is only self-tangent under T == T.TangentVector")
	}
	if !model(idx, "T: Differentiable", "T == T.TangentVector").IsSelfTangent(tvar) {
		t.Errorf("T should be self-tangent")
	}
}

func TestTangents(t *testing.T) {
	m := model(newIndex())
	float := typesystem.TCon{Name: "Float"}
	got, _, ok := m.Tangents([]typesystem.Type{float, float})
	if !ok || len(got) != 2 || got[1].String() != "Float" {
		t.Errorf("Tangents = %v, %v", got, ok)
	}
	_, at, ok := m.Tangents([]typesystem.Type{float, typesystem.TCon{Name: "Int"}})
	if ok || at != 1 {
		t.Errorf("Tangents should fail at index 1, got %d", at)
	}
}
