// Package evaluator implements C5: the tree-walking evaluator (4.5) and
// the execution state it threads through a run. Grounded on the teacher's
// pkg/eval.Evaluator dispatch shape (a type switch over concrete node
// types, one method per construct), generalized from the teacher's
// environment-chain scoping to the flat slot-indexed array spec.md's
// Execution State describes, since Kuiper resolves variables to indices
// at build time instead of walking a lexical environment at run time.
package evaluator

import (
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/token"
)

// Completions collects, per selector/variable span, the set of candidate
// identifiers available there — spec.md's "collect_completions" option for
// interactive hosts (autocomplete).
type Completions struct {
	Candidates map[token.Span][]string
}

func newCompletions() *Completions {
	return &Completions{Candidates: map[token.Span][]string{}}
}

func (c *Completions) record(span token.Span, names []string) {
	if c == nil {
		return
	}
	c.Candidates[span] = names
}

// State is the mutable per-run execution record: the flat array of
// borrowed/owned input values (top-level inputs followed by any active
// lambda sub-frames), the operation counter and its limit, and an
// optional completions collector.
type State struct {
	Inputs      []kvalue.Value
	OpCount     int
	MaxOps      int // -1 = unbounded
	Completions *Completions
}

// NewState builds a fresh execution state for a run with the given
// top-level input values (len(inputs) must equal the Program's NumInputs).
func NewState(inputs []kvalue.Value, maxOps int, collectCompletions bool) *State {
	st := &State{Inputs: inputs, MaxOps: maxOps}
	if collectCompletions {
		st.Completions = newCompletions()
	}

	return st
}

// charge bumps the op-counter once per evaluator node entry, failing with
// OperationLimitExceeded (which carries no span, per spec.md §6) once the
// configured limit is exceeded.
func (s *State) charge() error {
	s.OpCount++
	if s.MaxOps >= 0 && s.OpCount > s.MaxOps {
		return &kerr.TransformError{Kind: kerr.OperationLimitExceeded, Message: "operation limit exceeded"}
	}

	return nil
}

// PushFrame appends vals to the flat input array as a lambda sub-frame and
// returns its base slot index; PopFrame truncates back to that index once
// the lambda call (or, during optimization, the trial scope) is done with
// it. Exported so internal/optimizer can extend the same trial state's
// scope while folding a lambda body (spec.md §4.4: "Lambda nodes extend
// the active variable scope while their body is optimized").
func (s *State) PushFrame(vals []kvalue.Value) int {
	base := len(s.Inputs)
	s.Inputs = append(s.Inputs, vals...)

	return base
}

func (s *State) PopFrame(base int) {
	s.Inputs = s.Inputs[:base]
}
