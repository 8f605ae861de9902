package integrators

import "github.com/san-kum/deqscale/internal/dynamo"

// Explicit is a fixed-step explicit Runge-Kutta method given by its Butcher
// tableau. Stage buffers are reused between steps, so one value must not be
// shared between goroutines.
type Explicit struct {
	name string
	a    [][]float64 // strictly lower triangular
	b    []float64
	c    []float64

	k     []dynamo.State
	stage dynamo.State
}

func newExplicit(name string, a [][]float64, b, c []float64) *Explicit {
	return &Explicit{name: name, a: a, b: b, c: c}
}

// NewEuler is the forward Euler method, order 1.
func NewEuler() *Explicit {
	return newExplicit("Euler",
		[][]float64{{}},
		[]float64{1},
		[]float64{0})
}

// NewHeun is Heun's method, order 2.
func NewHeun() *Explicit {
	return newExplicit("Heun",
		[][]float64{{}, {1}},
		[]float64{0.5, 0.5},
		[]float64{0, 1})
}

// NewRK4 is the classic fourth order Runge-Kutta method.
func NewRK4() *Explicit {
	return newExplicit("RK4",
		[][]float64{{}, {0.5}, {0, 0.5}, {0, 0, 1}},
		[]float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
		[]float64{0, 0.5, 0.5, 1})
}

func (e *Explicit) Name() string { return e.name }

func (e *Explicit) ensureScratch(n int) {
	if len(e.stage) == n && len(e.k) == len(e.b) {
		return
	}
	e.k = make([]dynamo.State, len(e.b))
	for i := range e.k {
		e.k[i] = make(dynamo.State, n)
	}
	e.stage = make(dynamo.State, n)
}

func (e *Explicit) Step(f dynamo.Func, t float64, x dynamo.State, dt float64) dynamo.State {
	n := len(x)
	e.ensureScratch(n)

	for s := range e.b {
		copy(e.stage, x)
		for j, aij := range e.a[s] {
			if aij == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				e.stage[i] += dt * aij * e.k[j][i]
			}
		}
		copy(e.k[s], f(t+e.c[s]*dt, e.stage))
	}

	result := x.Clone()
	for s, bs := range e.b {
		for i := 0; i < n; i++ {
			result[i] += dt * bs * e.k[s][i]
		}
	}
	return result
}
