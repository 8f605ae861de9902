// Package dynamo defines the contract between right-hand-side functions and
// numerical integrators:
//
//   - [State]: vector representing a system state
//   - [Func]: the right-hand side dy/dt = f(t, y)
//   - [Integrator]: a single-step method
//   - [Options]: ordered, named pass-through solver options
//   - [Solution]: sampled trajectories plus a typed [Status]
//
// # Example
//
//	f := func(t float64, y dynamo.State) dynamo.State { return dynamo.State{y[1], -y[0]} }
//	sol, err := integrators.NewIVP().Solve(f, 0, 2*math.Pi, dynamo.State{1, 0}, nil)
//	if err == nil && !sol.Success() {
//		log.Print(sol.Message)
//	}
package dynamo
