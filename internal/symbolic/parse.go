package symbolic

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// Parse reads an expression such as "-omega^2*y1 + sin(t)". Identifiers become
// symbols, except pi which is the constant. Both ^ and ** denote powers and %
// is mod.
func Parse(src string) (Expr, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return fromNode(tree.Node)
}

var constants = map[string]float64{
	"pi": math.Pi,
}

// Reserved reports whether Parse reads name as a constant, so that it can
// never appear as a symbol in a parsed expression.
func Reserved(name string) bool {
	_, ok := constants[name]
	return ok
}

// MustParse is Parse for literals known to be valid.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func fromNode(node ast.Node) (Expr, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return N(float64(n.Value)), nil
	case *ast.FloatNode:
		return N(n.Value), nil
	case *ast.IdentifierNode:
		if v, ok := constants[n.Value]; ok {
			return N(v), nil
		}
		return S(n.Value), nil
	case *ast.UnaryNode:
		x, err := fromNode(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			return Neg(x), nil
		case "+":
			return x, nil
		}
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrSyntax, n.Operator)
	case *ast.BinaryNode:
		l, err := fromNode(n.Left)
		if err != nil {
			return nil, err
		}
		r, err := fromNode(n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "+":
			return Sum(l, r), nil
		case "-":
			return Diff(l, r), nil
		case "*":
			return Product(l, r), nil
		case "/":
			return Div(l, r), nil
		case "^", "**":
			return Power(l, r), nil
		case "%":
			return Call("mod", l, r), nil
		}
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrSyntax, n.Operator)
	case *ast.CallNode:
		callee, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported call target", ErrSyntax)
		}
		return callFromNodes(callee.Value, n.Arguments)
	case *ast.BuiltinNode:
		return callFromNodes(n.Name, n.Arguments)
	}
	return nil, fmt.Errorf("%w: unsupported construct %T", ErrSyntax, node)
}

func callFromNodes(name string, nodes []ast.Node) (Expr, error) {
	args := make([]Expr, len(nodes))
	for i, a := range nodes {
		e, err := fromNode(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	return Call(name, args...), nil
}
