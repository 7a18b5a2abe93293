package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/derivcheck/internal/typesystem"
)

type ErrorCode string

// Original-declaration resolution.
const (
	ErrD001 ErrorCode = "D001" // OriginalFunctionNotFound
	ErrD002 ErrorCode = "D002" // AmbiguousOriginalFunction
	ErrD003 ErrorCode = "D003" // NotSameFile
)

// Differentiation parameters.
const (
	ErrD010 ErrorCode = "D010" // UnknownParameterName
	ErrD011 ErrorCode = "D011" // IndexOutOfRange
	ErrD012 ErrorCode = "D012" // ParametersNotInOriginalOrder
	ErrD013 ErrorCode = "D013" // SelfNotApplicable
	ErrD014 ErrorCode = "D014" // NoDifferentiableParameters
	ErrD015 ErrorCode = "D015" // NotDifferentiable
	ErrD016 ErrorCode = "D016" // FunctionTypedParameterNotDifferentiable
	ErrD017 ErrorCode = "D017" // NotSelfTangent
)

// Derivative shape and signature.
const (
	ErrD020 ErrorCode = "D020" // InvalidDerivativeShape
	ErrD021 ErrorCode = "D021" // MissingOrWrongResultLabel
	ErrD022 ErrorCode = "D022" // FirstElementNotDifferentiable
	ErrD023 ErrorCode = "D023" // FirstElementTypeMismatch
	ErrD024 ErrorCode = "D024" // PullbackOrDifferentialTypeMismatch
	ErrD025 ErrorCode = "D025" // GenericSignatureMismatch
	ErrD026 ErrorCode = "D026" // OriginalResultNotDifferentiable
)

// Registration.
const (
	ErrD030 ErrorCode = "D030" // DuplicateDerivative
)

var codeNames = map[ErrorCode]string{
	ErrD001: "OriginalFunctionNotFound",
	ErrD002: "AmbiguousOriginalFunction",
	ErrD003: "NotSameFile",
	ErrD010: "UnknownParameterName",
	ErrD011: "IndexOutOfRange",
	ErrD012: "ParametersNotInOriginalOrder",
	ErrD013: "SelfNotApplicable",
	ErrD014: "NoDifferentiableParameters",
	ErrD015: "NotDifferentiable",
	ErrD016: "FunctionTypedParameterNotDifferentiable",
	ErrD017: "NotSelfTangent",
	ErrD020: "InvalidDerivativeShape",
	ErrD021: "MissingOrWrongResultLabel",
	ErrD022: "FirstElementNotDifferentiable",
	ErrD023: "FirstElementTypeMismatch",
	ErrD024: "PullbackOrDifferentialTypeMismatch",
	ErrD025: "GenericSignatureMismatch",
	ErrD026: "OriginalResultNotDifferentiable",
	ErrD030: "DuplicateDerivative",
}

// Name returns the taxonomy name of the code, e.g. "IndexOutOfRange".
func (c ErrorCode) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

// CodeByName maps a taxonomy name or a raw code back to its ErrorCode.
func CodeByName(name string) (ErrorCode, bool) {
	if _, ok := codeNames[ErrorCode(name)]; ok {
		return ErrorCode(name), true
	}
	for code, n := range codeNames {
		if n == name {
			return code, true
		}
	}
	return "", false
}

// Codes returns every known code in ascending order.
func Codes() []ErrorCode {
	return []ErrorCode{
		ErrD001, ErrD002, ErrD003,
		ErrD010, ErrD011, ErrD012, ErrD013, ErrD014, ErrD015, ErrD016, ErrD017,
		ErrD020, ErrD021, ErrD022, ErrD023, ErrD024, ErrD025, ErrD026,
		ErrD030,
	}
}

// DiagnosticError is the terminal outcome of a failed registration request.
// It carries structured context only; rendering belongs to the report package.
type DiagnosticError struct {
	Code ErrorCode
	Decl string // ID of the candidate derivative declaration

	Original string // ID of the resolved original, when known
	Name     string // Offending reference, parameter name or label
	Index    int    // Offending parameter index or result element
	HasIndex bool   // Index is set; indices may be negative

	Expected    typesystem.Type
	Actual      typesystem.Type
	Requirement *typesystem.Requirement
	Generics    *typesystem.GenericSignature // Signature Expected is written under

	Candidates    []string // IDs of the declarations considered
	File          string   // File of the original for NotSameFile
	InTypeContext bool     // Lookup started in the candidate's type context
	Existing      string   // ID of the derivative already registered for the key
}

// NewError creates a diagnostic for the candidate declaration decl.
func NewError(code ErrorCode, decl string) *DiagnosticError {
	return &DiagnosticError{Code: code, Decl: decl}
}

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error [%s] %s: %s", e.Code, e.Decl, e.Code.Name())
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	if e.HasIndex {
		fmt.Fprintf(&b, " #%d", e.Index)
	}
	if e.Expected != nil {
		fmt.Fprintf(&b, " expected %s", e.Expected)
	}
	if e.Actual != nil {
		fmt.Fprintf(&b, " actual %s", e.Actual)
	}
	if e.Requirement != nil {
		fmt.Fprintf(&b, " requirement %s", e.Requirement)
	}
	return b.String()
}

// WithName sets the offending name.
func (e *DiagnosticError) WithName(name string) *DiagnosticError {
	e.Name = name
	return e
}

// WithIndex sets the offending parameter index.
func (e *DiagnosticError) WithIndex(i int) *DiagnosticError {
	e.Index = i
	e.HasIndex = true
	return e
}

// WithTypes sets the expected and actual types.
func (e *DiagnosticError) WithTypes(expected, actual typesystem.Type) *DiagnosticError {
	e.Expected = expected
	e.Actual = actual
	return e
}

// WithOriginal sets the resolved original declaration ID.
func (e *DiagnosticError) WithOriginal(id string) *DiagnosticError {
	e.Original = id
	return e
}

// WithGenerics sets the signature the expected type is written under.
func (e *DiagnosticError) WithGenerics(g typesystem.GenericSignature) *DiagnosticError {
	if !g.IsEmpty() || len(g.Requirements) > 0 {
		e.Generics = &g
	}
	return e
}

// WithRequirement sets the unmet or conflicting requirement.
func (e *DiagnosticError) WithRequirement(r typesystem.Requirement) *DiagnosticError {
	e.Requirement = &r
	return e
}
