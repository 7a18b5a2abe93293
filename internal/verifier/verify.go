package verifier

import (
	"github.com/funvibe/derivcheck/internal/diagnostics"
)

// Mismatch is a request whose outcome differs from the expected one. An
// empty code stands for a successful registration.
type Mismatch struct {
	Candidate string
	Want      diagnostics.ErrorCode
	Got       diagnostics.ErrorCode
	Result    Result
}

// Check compares results with expected diagnostics keyed by candidate ID.
// Candidates without an expectation must register. A request that could
// not be verified never matches.
func Check(results []Result, expect map[string]diagnostics.ErrorCode) []Mismatch {
	var out []Mismatch
	for _, r := range results {
		want := expect[r.Request.Candidate]
		var got diagnostics.ErrorCode
		if r.Diagnostic != nil {
			got = r.Diagnostic.Code
		}
		if r.Err != nil || got != want {
			out = append(out, Mismatch{Candidate: r.Request.Candidate, Want: want, Got: got, Result: r})
		}
	}
	return out
}
