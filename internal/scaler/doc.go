// Package scaler rescales a first-order ODE system dy/dt = f(t, y) so that
// every state trajectory stays within [-m, m], m being the problem's max
// scale factor.
//
// A Problem holds the symbolic system, its parameter bindings and the initial
// value problem. A Scaler compiles the system with the parameters bound,
// integrates it once to find the largest absolute value each state reaches,
// and rewrites the system in terms of normalized states:
//
//	scale_i = max|y_i| * m
//	y_i     -> scale_i * y_i
//	f_i     -> f_i / scale_i
//	y0_i    -> y0_i / scale_i
//
// The rescaled system is returned as a new Definition; the original Problem
// is never modified.
package scaler
