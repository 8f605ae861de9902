package symbolic

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnboundSymbol indicates a symbol that has neither a value nor a slot
	// in the compiled argument vector.
	ErrUnboundSymbol = errors.New("symbolic: unbound symbol")

	// ErrUnsupportedFunction indicates a function with no numeric lowering.
	ErrUnsupportedFunction = errors.New("symbolic: unsupported function")

	// ErrArity indicates a function called with the wrong number of arguments.
	ErrArity = errors.New("symbolic: wrong number of arguments")

	// ErrSyntax indicates text that could not be parsed into an expression.
	ErrSyntax = errors.New("symbolic: syntax error")
)

// CompilationError reports why an expression could not be lowered to a
// numeric function.
type CompilationError struct {
	Expr    string
	Unbound []Symbol
	Func    string
	Err     error
}

func (e *CompilationError) Error() string {
	switch {
	case len(e.Unbound) > 0:
		names := make([]string, len(e.Unbound))
		for i, s := range e.Unbound {
			names[i] = s.name
		}
		return fmt.Sprintf("%v %s in %q", e.Err, strings.Join(names, ", "), e.Expr)
	case e.Func != "" && errors.Is(e.Err, ErrUnsupportedFunction):
		return fmt.Sprintf("%v %s in %q (supported: %s)", e.Err, e.Func, e.Expr, strings.Join(Functions(), ", "))
	case e.Func != "":
		return fmt.Sprintf("%v %s in %q", e.Err, e.Func, e.Expr)
	}
	return fmt.Sprintf("%v in %q", e.Err, e.Expr)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}
