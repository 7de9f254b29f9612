// Package builtin implements C7: the ~70-function built-in library, plus
// the registration/arity-checking machinery the tree builder uses to
// validate calls before anything is ever evaluated.
//
// Grounded on the teacher's pkg/eval/builtins.go registerBuiltin(name,
// arity, fn) pattern: a name maps to a Spec describing how many arguments
// it takes and which argument positions may be lambdas, plus the Go
// function that implements it. Unlike the teacher (fixed arity, no
// lambdas), Spec generalizes to [min,max] arity and a lambda-position
// whitelist, since spec.md's functions are mostly variadic or
// lambda-accepting.
//
// This package intentionally has no dependency on internal/tree: Node is
// an opaque interface{} alias here, and Invoker is the narrow seam a
// builtin needs (evaluate one already-built argument node to a Value).
// internal/tree and internal/evaluator both sit on top of this package;
// this package never imports them, so there is no import cycle even
// though tree.Node values flow through Func's argument slice at runtime.
package builtin

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/kvalue"
)

// Node is a built executable-tree node, opaque to this package. Concrete
// tree.Node values satisfy it structurally (Go interfaces need no import
// to be satisfied).
type Node interface{}

// Invoker is what a builtin needs from its caller: the ability to
// evaluate one of its own argument nodes against the current run's state.
// Implemented by internal/evaluator.
type Invoker interface {
	Eval(n Node) (kvalue.Value, error)
}

// Func implements one builtin. args are the call's already-built argument
// nodes (including lambda arguments, still unevaluated); a Func decides
// for itself which to evaluate and in what order, which is what makes
// short-circuiting builtins like if/case/coalesce possible.
type Func func(inv Invoker, args []Node) (kvalue.Value, error)

// Spec describes one builtin's calling convention.
type Spec struct {
	Name string
	// MinArgs and MaxArgs bound the accepted argument count. MaxArgs == -1
	// means unbounded.
	MinArgs, MaxArgs int
	// LambdaArgs maps a 0-based argument position to the arity the lambda
	// at that position must declare. Positions absent from this map may
	// not be lambdas; the tree builder enforces this at build time
	// (UnexpectedLambda).
	LambdaArgs map[int]int
	// NonDeterministic is true only for builtins (now()) whose result can
	// differ across runs with identical inputs; it is what the optimizer
	// and IsDeterministic consult to decide whether a sub-tree may be
	// constant-folded.
	NonDeterministic bool
	Fn               Func
}

// ArityError is returned by CheckArity.
type ArityError struct {
	Name       string
	Got        int
	Min, Max   int
}

func (e *ArityError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("%s expects at least %d argument(s), got %d", e.Name, e.Min, e.Got)
	}
	if e.Min == e.Max {
		return fmt.Sprintf("%s expects exactly %d argument(s), got %d", e.Name, e.Min, e.Got)
	}

	return fmt.Sprintf("%s expects %d to %d argument(s), got %d", e.Name, e.Min, e.Max, e.Got)
}

// CheckArity reports whether n arguments satisfy s's declared arity.
func (s *Spec) CheckArity(n int) error {
	if n < s.MinArgs || (s.MaxArgs >= 0 && n > s.MaxArgs) {
		return &ArityError{Name: s.Name, Got: n, Min: s.MinArgs, Max: s.MaxArgs}
	}

	return nil
}

// LambdaArityAt reports the arity a lambda at position pos must declare,
// and whether a lambda is allowed there at all.
func (s *Spec) LambdaArityAt(pos int) (int, bool) {
	arity, ok := s.LambdaArgs[pos]

	return arity, ok
}

var registry = map[string]*Spec{}

func register(s *Spec) {
	registry[s.Name] = s
}

// Lookup returns the Spec registered under name, if any.
func Lookup(name string) (*Spec, bool) {
	s, ok := registry[name]

	return s, ok
}

// Names returns every registered builtin name, for diagnostics/completions.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}

	return names
}
