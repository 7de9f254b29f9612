package evaluator

import (
	"github.com/kuiper-lang/kuiper/internal/builtin"
	"github.com/kuiper-lang/kuiper/internal/kvalue"
	"github.com/kuiper-lang/kuiper/internal/token"
	"github.com/kuiper-lang/kuiper/internal/tree"
)

// runInvoker adapts a *State into the builtin.Invoker a Spec.Fn needs to
// evaluate its own (possibly lazily-chosen) argument nodes.
type runInvoker struct {
	st *State
}

func (r *runInvoker) Eval(n builtin.Node) (kvalue.Value, error) {
	node, ok := n.(tree.Node)
	if !ok {
		return nil, typeErr(token.Span{}, "malformed call argument")
	}

	return Eval(node, r.st)
}

func evalCall(n *tree.CallNode, st *State) (kvalue.Value, error) {
	args := make([]builtin.Node, len(n.Args))
	for i, a := range n.Args {
		args[i] = a
	}

	return n.Spec.Fn(&runInvoker{st: st}, args)
}

// lambdaClosure implements kvalue.Callable, closing over the lambda's
// executable-tree node and the run's live State. Lambda invocation pushes
// a sub-frame binding the lambda's parameters, evaluates the body, and
// pops the frame before returning, per spec.md §4.5's "pushes a sub-frame
// with the lambda's parameters bound to the call-site values".
type lambdaClosure struct {
	node *tree.LambdaNode
	st   *State
}

func (l *lambdaClosure) Kind() kvalue.Kind { return kvalue.KindCallable }
func (l *lambdaClosure) String() string    { return l.node.String() }
func (l *lambdaClosure) Equals(o kvalue.Value) bool {
	ol, ok := o.(*lambdaClosure)

	return ok && ol.node == l.node
}
func (l *lambdaClosure) Arity() int { return len(l.node.Params) }

func (l *lambdaClosure) Call(args []kvalue.Value) (kvalue.Value, error) {
	base := l.st.PushFrame(args)
	result, err := Eval(l.node.Body, l.st)
	l.st.PopFrame(base)

	return result, err
}
