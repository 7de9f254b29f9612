// Package kuiper is the library entry point for C1–C5: compiling source
// text into an executable Program, running it against named JSON inputs,
// and inferring its static result type. It promotes the teacher's ad hoc
// main.go pipeline (lexer.New -> parser.New -> p.Parse() -> eval.New ->
// e.Eval) into a documented library API, per spec.md §6's External
// Interfaces and SPEC_FULL.md's expansion of it.
package kuiper

import (
	"fmt"

	"github.com/kuiper-lang/kuiper/internal/builtin"
	"github.com/kuiper-lang/kuiper/internal/evaluator"
	"github.com/kuiper-lang/kuiper/internal/kerr"
	"github.com/kuiper-lang/kuiper/internal/ktype"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/optimizer"
	"github.com/kuiper-lang/kuiper/internal/parser"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// Re-exported error types, named per spec.md §6/§7's External Interfaces
// and Error Handling sections. Defined in internal/kerr (not here) so
// internal/builtin and internal/tree, which must not import this root
// package, can construct them directly.
type (
	CompileError   = kerr.CompileError
	TransformError = kerr.TransformError
)

// CompileKind/TransformKind re-exports, so callers can match on
// err.(*CompileError).Kind without importing internal/kerr themselves.
type (
	CompileKind   = kerr.CompileKind
	TransformKind = kerr.TransformKind
)

const (
	KindLex       = kerr.Lex
	KindParse     = kerr.Parse
	KindBuild     = kerr.Build
	KindOptimizer = kerr.Optimizer
	KindConfig    = kerr.Config
)

const (
	KindSourceMissing         = kerr.SourceMissing
	KindIncorrectType         = kerr.IncorrectType
	KindConversionFailed      = kerr.ConversionFailed
	KindInvalidOperation      = kerr.InvalidOperation
	KindOperationLimitExceeded = kerr.OperationLimitExceeded
)

// CustomFunction is the type a host implements to register a custom
// built-in for one Compile call. It receives already-built argument
// nodes and an Invoker able to evaluate them, mirroring how the built-in
// library's own functions are shaped (see internal/builtin.Func) so a
// custom function composes with lambdas/lazy evaluation the same way a
// native one does.
type CustomFunction = builtin.Func

// Config configures a single Compile call: the macro-expansion guard and
// any host-registered custom functions (which shadow built-ins of the
// same name, but never macros — spec.md §9).
type Config struct {
	// OptimizerOperationLimit bounds the shared operation-counter budget
	// the optimizer's trial evaluations draw from; 0 uses
	// optimizer.DefaultOperationLimit and a negative value (e.g. -1)
	// disables the limit.
	OptimizerOperationLimit int
	// MaxMacroExpansions bounds the number of macro inlinings a single
	// compile may perform, guarding against runaway/recursive macros
	// (spec.md's default is 20; 0 here means "use the default").
	MaxMacroExpansions int
	// CustomFunctions are host-registered functions, keyed by name.
	CustomFunctions map[string]*CustomFunctionSpec
}

// CustomFunctionSpec describes one host-registered custom function: its
// arity bounds, which argument positions (if any) must be lambdas, and
// the implementation itself.
type CustomFunctionSpec struct {
	MinArgs, MaxArgs int
	LambdaArgs       map[int]int
	NonDeterministic bool
	Fn               CustomFunction
}

func (c Config) toBuilderConfig() tree.Config {
	// A zero/negative MaxMacroExpansions is left as-is; tree.Build applies
	// its own default (20) in that case.
	cfg := tree.Config{MaxMacroExpansions: c.MaxMacroExpansions}
	if len(c.CustomFunctions) > 0 {
		cfg.CustomFunctions = make(map[string]*builtin.Spec, len(c.CustomFunctions))
		for name, spec := range c.CustomFunctions {
			cfg.CustomFunctions[name] = &builtin.Spec{
				Name:             name,
				MinArgs:          spec.MinArgs,
				MaxArgs:          spec.MaxArgs,
				LambdaArgs:       spec.LambdaArgs,
				NonDeterministic: spec.NonDeterministic,
				Fn:               spec.Fn,
			}
		}
	}

	return cfg
}

// Program is an immutable compiled Kuiper expression: safe to share and
// run concurrently from multiple goroutines, since Run never mutates it.
type Program struct {
	tree       *tree.Tree
	inputNames []string
}

// String renders the program's canonical, round-trippable display form
// (spec.md's "Display" requirement): variables show as "$N" slot
// references, and any subtree the optimizer folded prints as its
// resulting literal.
func (p *Program) String() string { return p.tree.Root.String() }

// NumInputs is the number of named inputs this program expects.
func (p *Program) NumInputs() int { return len(p.inputNames) }

// InputNames returns the input names this program was compiled against,
// in order (parallel to the []kvalue.Value/JSON slice Run expects).
func (p *Program) InputNames() []string { return append([]string(nil), p.inputNames...) }

// Compile lexes, parses, builds, and optimizes source into a reusable
// Program. inputNames declares the named top-level inputs the program
// may reference (by "<name>.field..." selector syntax); their order fixes
// the positional slot each occupies at Run time.
func Compile(source string, inputNames []string, cfg Config) (*Program, error) {
	prog, perrs := parser.Parse(source)
	if perrs != nil && perrs.HasErrors() {
		first := perrs.First()
		span := first.Span

		return nil, &CompileError{Kind: KindParse, Span: &span, Message: perrs.Error()}
	}

	t, err := tree.Build(prog, inputNames, cfg.toBuilderConfig())
	if err != nil {
		return nil, err
	}

	limit := cfg.OptimizerOperationLimit
	if limit == 0 {
		limit = optimizer.DefaultOperationLimit
	}

	optimized, err := optimizer.Optimize(t, limit)
	if err != nil {
		return nil, err
	}

	return &Program{tree: optimized, inputNames: inputNames}, nil
}

// Options configures a single Run call.
type Options struct {
	// MaxOperationCount bounds the number of evaluator node entries a run
	// may perform; -1 (the default, via DefaultOptions) means unbounded.
	MaxOperationCount int
	// CollectCompletions asks the evaluator to record, at every selector
	// it resolves, the set of sibling field names available there — used
	// by interactive hosts to offer autocomplete.
	CollectCompletions bool
}

// DefaultOptions returns Options with an unbounded operation count and
// completion collection disabled.
func DefaultOptions() Options {
	return Options{MaxOperationCount: -1}
}

// Result is what Run returns on success: the produced value (already
// convertible to JSON via its own marshaling) and bookkeeping useful to
// the host.
type Result struct {
	Value          kvalue.Value
	OperationCount int
	Completions    map[string][]string
}

// Run evaluates p against inputs (one kvalue.Value per p.InputNames(), in
// order — hosts decoding raw JSON should call FromJSON on each element
// first). It returns the produced value, the number of operations it
// took, and any completions collected, or a *TransformError.
func Run(p *Program, inputs []kvalue.Value, opts Options) (Result, error) {
	if len(inputs) != len(p.inputNames) {
		return Result{}, &kerr.TransformError{
			Kind:    kerr.IncorrectType,
			Message: fmt.Sprintf("expected %d inputs, got %d", len(p.inputNames), len(inputs)),
		}
	}

	st := evaluator.NewState(append([]kvalue.Value(nil), inputs...), opts.MaxOperationCount, opts.CollectCompletions)
	val, err := evaluator.Eval(p.tree.Root, st)
	if err != nil {
		return Result{OperationCount: st.OpCount}, err
	}

	result := Result{Value: val, OperationCount: st.OpCount}
	if st.Completions != nil {
		result.Completions = make(map[string][]string, len(st.Completions.Candidates))
		for span, names := range st.Completions.Candidates {
			result.Completions[fmt.Sprintf("%d..%d", span.Start, span.End)] = names
		}
	}

	return result, nil
}

// RunJSON is Run's convenience form for hosts holding raw JSON-encoded
// input documents rather than already-decoded kvalue.Values.
func RunJSON(p *Program, inputsJSON [][]byte, opts Options) (Result, error) {
	inputs := make([]kvalue.Value, len(inputsJSON))
	for i, raw := range inputsJSON {
		v, err := kvalue.FromJSON(raw)
		if err != nil {
			return Result{}, &kerr.TransformError{Kind: kerr.ConversionFailed, Message: err.Error()}
		}
		inputs[i] = v
	}

	return Run(p, inputs, opts)
}

// ToJSON marshals a result value to its canonical JSON encoding
// (preserving object field order, per spec.md §5).
func ToJSON(v kvalue.Value) ([]byte, error) { return kvalue.ToJSON(v) }

// Infer computes p's static result type against inputTypes (one
// ktype.Type per p.InputNames(), in order), implementing spec.md §4.6.
// Per spec.md §7, a returned error is informational: the program can
// still be Run even if Infer fails to type it precisely.
func Infer(p *Program, inputTypes []ktype.Type) (ktype.Type, error) {
	if len(inputTypes) != len(p.inputNames) {
		return ktype.Type{}, fmt.Errorf("expected %d input types, got %d", len(p.inputNames), len(inputTypes))
	}

	st := ktype.NewInferState(inputTypes)

	return ktype.Infer(p.tree.Root, st)
}
