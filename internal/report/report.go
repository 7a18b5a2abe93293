// Package report renders verification outcomes for people.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/derivcheck/internal/diagnostics"
	"github.com/funvibe/derivcheck/internal/verifier"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
)

// Printer writes diagnostics, registrations and verify-mode mismatches.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a printer for w. Colour is used only on terminals and never
// when NO_COLOR is set.
func New(w io.Writer) *Printer {
	return &Printer{w: w, color: useColor(w)}
}

func useColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

// Diagnostic writes one rejected request, prefixed with its source file.
func (p *Printer) Diagnostic(file string, d *diagnostics.DiagnosticError) {
	fmt.Fprintf(p.w, "%s: %s %s %s\n",
		file,
		p.paint(ansiRed, "error"),
		p.paint(ansiBold, "["+string(d.Code)+"]"),
		d.Decl+": "+Message(d))
}

// Registered writes one accepted request.
func (p *Printer) Registered(r verifier.Result) {
	fmt.Fprintf(p.w, "%s %s for %s\n", p.paint(ansiGreen, "registered"), r.Request.Candidate, r.Key)
}

// Failed writes a request that could not be verified.
func (p *Printer) Failed(r verifier.Result) {
	fmt.Fprintf(p.w, "%s %s: %s\n", p.paint(ansiRed, "failed"), r.Request.Candidate, r.Err)
}

// Mismatch writes a request whose outcome differs from its expectation.
func (p *Printer) Mismatch(m verifier.Mismatch) {
	got := outcome(m.Got)
	if m.Result.Err != nil {
		got = "failure: " + m.Result.Err.Error()
	}
	fmt.Fprintf(p.w, "%s %s: expected %s, got %s\n", p.paint(ansiRed, "mismatch"), m.Candidate, outcome(m.Want), got)
	if m.Result.Diagnostic != nil {
		fmt.Fprintf(p.w, "  %s\n", Message(m.Result.Diagnostic))
	}
}

// Summary writes the totals of a pass.
func (p *Printer) Summary(results []verifier.Result) {
	registered := 0
	for _, r := range results {
		if r.Registered {
			registered++
		}
	}
	fmt.Fprintf(p.w, "%d requests, %d registered, %d rejected\n", len(results), registered, len(results)-registered)
}

func outcome(code diagnostics.ErrorCode) string {
	if code == "" {
		return "registration"
	}
	return string(code) + " " + code.Name()
}

// Message is the prose form of a diagnostic without its code or location.
func Message(d *diagnostics.DiagnosticError) string {
	switch d.Code {
	case diagnostics.ErrD001:
		var b strings.Builder
		if d.InTypeContext {
			fmt.Fprintf(&b, "%q is not defined in the current type context", d.Name)
		} else {
			fmt.Fprintf(&b, "could not find function %q", d.Name)
			if d.Expected != nil {
				fmt.Fprintf(&b, " with expected type %s", d.Expected)
				if d.Generics != nil {
					fmt.Fprintf(&b, " %s", d.Generics)
				}
			}
		}
		if len(d.Candidates) > 0 {
			fmt.Fprintf(&b, " (candidates: %s)", strings.Join(d.Candidates, ", "))
		}
		return b.String()
	case diagnostics.ErrD002:
		return fmt.Sprintf("ambiguous reference to %q (candidates: %s)", d.Name, strings.Join(d.Candidates, ", "))
	case diagnostics.ErrD003:
		return fmt.Sprintf("derivative not in the same file as the original function %s (declared in %s)", d.Original, d.File)
	case diagnostics.ErrD010:
		return fmt.Sprintf("unknown parameter name %q", d.Name)
	case diagnostics.ErrD011:
		if d.Index < 0 {
			return fmt.Sprintf("parameter index %d is negative", d.Index)
		}
		return fmt.Sprintf("parameter index %d is larger than total number of parameters", d.Index)
	case diagnostics.ErrD012:
		return "parameters must be specified in original order"
	case diagnostics.ErrD013:
		return "a 'self' parameter can only be used in an instance declaration context"
	case diagnostics.ErrD014:
		return "no differentiation parameters could be inferred"
	case diagnostics.ErrD015:
		return fmt.Sprintf("can only differentiate with respect to parameters that conform to 'Differentiable', but %s does not conform", d.Actual)
	case diagnostics.ErrD016:
		return fmt.Sprintf("function-typed parameter %q cannot be differentiated with respect to", d.Name)
	case diagnostics.ErrD017:
		return fmt.Sprintf("can only transpose with respect to parameters whose tangent is themselves, but %s is not", d.Actual)
	case diagnostics.ErrD020:
		if d.Name == "self" {
			return "a transpose with respect to 'self' must be an instance method"
		}
		return fmt.Sprintf("invalid derivative shape %s", d.Actual)
	case diagnostics.ErrD021:
		return fmt.Sprintf("result element %d is labelled %q; expected %s", d.Index, d.Name, expectedLabel(d.Index))
	case diagnostics.ErrD022:
		return fmt.Sprintf("'value' type %s must conform to 'Differentiable'", d.Actual)
	case diagnostics.ErrD023:
		return fmt.Sprintf("'value' type %s does not match the original result type %s", d.Actual, d.Expected)
	case diagnostics.ErrD024:
		what := "transpose"
		if d.Name != "" {
			what = "'" + d.Name + "'"
		}
		return fmt.Sprintf("%s type %s does not match the expected type %s", what, d.Actual, d.Expected)
	case diagnostics.ErrD025:
		return fmt.Sprintf("generic requirement '%s' of the original is not satisfied by the derivative", d.Requirement)
	case diagnostics.ErrD026:
		return fmt.Sprintf("cotangent type %s must conform to 'Differentiable'", d.Actual)
	case diagnostics.ErrD030:
		return fmt.Sprintf("a derivative of %s for these parameters is already registered by %s", d.Original, d.Existing)
	}
	return d.Error()
}

func expectedLabel(index int) string {
	if index == 0 {
		return "'value'"
	}
	return "'pullback' or 'differential'"
}
