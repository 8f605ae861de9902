package symbolic

import (
	"math"
	"sort"
)

// lowering is the numeric implementation of a named function. arity < 0 means
// variadic with at least -arity arguments.
type lowering struct {
	arity int
	eval  func(args []float64) float64
}

func unary(fn func(float64) float64) lowering {
	return lowering{arity: 1, eval: func(a []float64) float64 { return fn(a[0]) }}
}

func binary(fn func(float64, float64) float64) lowering {
	return lowering{arity: 2, eval: func(a []float64) float64 { return fn(a[0], a[1]) }}
}

var functions = map[string]lowering{
	"sin":   unary(math.Sin),
	"cos":   unary(math.Cos),
	"tan":   unary(math.Tan),
	"asin":  unary(math.Asin),
	"acos":  unary(math.Acos),
	"atan":  unary(math.Atan),
	"sinh":  unary(math.Sinh),
	"cosh":  unary(math.Cosh),
	"tanh":  unary(math.Tanh),
	"asinh": unary(math.Asinh),
	"acosh": unary(math.Acosh),
	"atanh": unary(math.Atanh),
	"exp":   unary(math.Exp),
	"log":   unary(math.Log),
	"ln":    unary(math.Log),
	"log10": unary(math.Log10),
	"log2":  unary(math.Log2),
	"sqrt":  unary(math.Sqrt),
	"cbrt":  unary(math.Cbrt),
	"abs":   unary(math.Abs),
	"floor": unary(math.Floor),
	"ceil":  unary(math.Ceil),
	"sign":  unary(sign),
	"heaviside": unary(func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return 0
		}
		return 0.5
	}),
	"atan2": binary(math.Atan2),
	"hypot": binary(math.Hypot),
	"pow":   binary(math.Pow),
	"mod":   binary(floorMod),
	"min": {arity: -1, eval: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {arity: -1, eval: func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// floorMod takes the sign of the divisor.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// Functions lists the function names Compile can lower.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string, nargs int) (lowering, error) {
	fn, ok := functions[name]
	if !ok {
		return lowering{}, ErrUnsupportedFunction
	}
	if (fn.arity >= 0 && nargs != fn.arity) || (fn.arity < 0 && nargs < -fn.arity) {
		return lowering{}, ErrArity
	}
	return fn, nil
}
