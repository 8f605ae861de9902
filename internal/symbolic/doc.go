// Package symbolic is the expression engine behind deqscale.
//
// It covers exactly what rescaling an ODE system needs:
//
//   - [Symbol] and [Expr] trees built with [Sum], [Product], [Power] and [Call]
//   - simultaneous substitution with [Substitute]
//   - lowering to numeric closures with [Compile]
//   - a reference tree-walking evaluator, [Evaluate]
//   - text round trips through [Parse] and String
//
// Builders fold numeric constants and flatten nested sums and products. No
// other simplification is attempted.
package symbolic
