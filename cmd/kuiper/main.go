// Package main implements the kuiper command-line demo.
//
// kuiper is a tiny, explicitly out-of-scope front-end over the
// github.com/kuiper-lang/kuiper core (spec.md §1): it exists only to
// exercise the three entry points, Compile/Run/Infer, from a shell. It
// supports three modes of operation, generalized from the teacher's own
// gix CLI:
//
//   - Interactive REPL mode (-i flag)
//   - Expression evaluation mode (-e flag, repeatable -input name=json flags)
//   - File evaluation mode (positional argument)
//
// Examples:
//
//	kuiper -e '2 + 2'
//	kuiper -e 'input.id + 1' -input input='{"id": 5}'
//	kuiper -i
//	kuiper -input order='{"total": 12.5}' transform.kuiper
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kuiper-lang/kuiper"
)

// namedInputs collects repeated "-input name=json" flags in the order they
// appear on the command line, which fixes the positional slot each input
// occupies when the program is compiled (spec.md §6: inputNames order
// fixes the positional slot each input occupies at Run time).
type namedInputs struct {
	names []string
	raw   map[string]string
}

func (n *namedInputs) String() string {
	return strings.Join(n.names, ",")
}

func (n *namedInputs) Set(value string) error {
	name, json, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=json, got %q", value)
	}
	if n.raw == nil {
		n.raw = map[string]string{}
	}
	if _, exists := n.raw[name]; !exists {
		n.names = append(n.names, name)
	}
	n.raw[name] = json

	return nil
}

func main() {
	var (
		interactive = flag.Bool("i", false, "Interactive REPL mode")
		expression  = flag.String("e", "", "Evaluate expression")
		help        = flag.Bool("h", false, "Show help")
		inputs      namedInputs
	)
	flag.Var(&inputs, "input", "named JSON input as name=json (repeatable)")
	flag.Parse()

	if *help {
		showHelp()

		return
	}

	switch {
	case *expression != "":
		evalExpression(*expression, &inputs)
	case *interactive:
		startREPL()
	case flag.NArg() > 0:
		evalFile(flag.Arg(0), &inputs)
	default:
		showHelp()
	}
}

func showHelp() {
	fmt.Println("kuiper - a declarative JSON-to-JSON transformation language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  kuiper [options] [file]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -i                 Interactive REPL mode")
	fmt.Println("  -e EXPR            Evaluate expression")
	fmt.Println("  -input NAME=JSON   Bind a named input (repeatable)")
	fmt.Println("  -h                 Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  kuiper -e '2 + 2'")
	fmt.Println(`  kuiper -e 'input.id + 1' -input input='{"id": 5}'`)
	fmt.Println("  kuiper -i")
	fmt.Println("  kuiper -input order='{\"total\": 12.5}' transform.kuiper")
}

// evalExpression compiles and runs a single Kuiper expression against the
// inputs bound on the command line, then prints the resulting JSON.
func evalExpression(source string, inputs *namedInputs) {
	prog, err := kuiper.Compile(source, inputs.names, kuiper.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
		os.Exit(1)
	}

	raw := make([][]byte, len(inputs.names))
	for i, name := range inputs.names {
		raw[i] = []byte(inputs.raw[name])
	}

	result, err := kuiper.RunJSON(prog, raw, kuiper.DefaultOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Evaluation error: %v\n", err)
		os.Exit(1)
	}

	out, err := kuiper.ToJSON(result.Value)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encoding error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// evalFile reads a Kuiper source file from disk and delegates to
// evalExpression.
func evalFile(filename string, inputs *namedInputs) {
	content, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	evalExpression(string(content), inputs)
}

// startREPL starts an interactive read-eval-print loop. Each line is
// compiled and run fresh, with no declared inputs: the REPL is for
// exploring pure expressions, not feeding named JSON documents (use -e or
// file mode with -input for that).
func startREPL() {
	fmt.Println("kuiper repl - Type :quit to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("kuiper> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == ":quit" || line == ":q" {
			break
		}
		if strings.HasPrefix(line, ":") {
			handleReplCommand(line)

			continue
		}

		prog, err := kuiper.Compile(line, nil, kuiper.Config{})
		if err != nil {
			fmt.Printf("Compile error: %v\n", err)

			continue
		}

		result, err := kuiper.Run(prog, nil, kuiper.DefaultOptions())
		if err != nil {
			fmt.Printf("Evaluation error: %v\n", err)

			continue
		}

		out, err := kuiper.ToJSON(result.Value)
		if err != nil {
			fmt.Printf("Encoding error: %v\n", err)

			continue
		}
		fmt.Println(string(out))
	}
}

func handleReplCommand(cmd string) {
	switch cmd {
	case ":help", ":h":
		fmt.Println("Available commands:")
		fmt.Println("  :help, :h    Show this help")
		fmt.Println("  :quit, :q    Exit the REPL")
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		fmt.Println("Type :help for available commands")
	}
}
