// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// NlSolver solves R(y) = 0 by Newton iterations with a finite-difference
// Jacobian and a dense linear solve. Convergence is declared on
// |R| ≤ atol + rtol·|R0|; repeated residual growth trips the divergence
// control.
type NlSolver struct {

	// control
	Atol    float64 // absolute tolerance on the residual norm
	Rtol    float64 // relative tolerance w.r.t. the initial residual norm
	NmaxIt  int     // maximum iterations per attempt
	NdvgMax int     // maximum number of diverging iterations

	// workspace
	n   int
	R   la.Vector  // residual
	Rp  la.Vector  // perturbed residual
	rhs la.Vector  // right-hand side of the linear solve
	dy  la.Vector  // Newton update
	J   *la.Matrix // finite-difference Jacobian
}

// NewNlSolver allocates the solver workspace for n equations
func NewNlSolver(n int, atol, rtol float64, nmaxIt, ndvgMax int) (o *NlSolver) {
	return &NlSolver{
		Atol: atol, Rtol: rtol, NmaxIt: nmaxIt, NdvgMax: ndvgMax,
		n: n, R: la.NewVector(n), Rp: la.NewVector(n),
		rhs: la.NewVector(n), dy: la.NewVector(n), J: la.NewMatrix(n, n),
	}
}

// Solve iterates on y in place. It returns the number of iterations
// performed; on failure y is left at the last iterate and the caller is
// responsible for rolling the state back.
func (o *NlSolver) Solve(eval func(R, y la.Vector), y la.Vector) (nit int, err error) {
	eval(o.R, y)
	r0 := o.R.Norm()
	r := r0
	ndvg := 0
	for nit = 0; nit < o.NmaxIt; nit++ {
		if r <= o.Atol+o.Rtol*r0 {
			return nit, nil
		}
		o.jacobian(eval, y)
		for i := 0; i < o.n; i++ {
			o.rhs[i] = -o.R[i]
		}
		la.DenSolve(o.dy, o.J, o.rhs, false)
		for i := 0; i < o.n; i++ {
			y[i] += o.dy[i]
		}
		eval(o.R, y)
		rnew := o.R.Norm()
		if rnew > r {
			ndvg++
			if ndvg >= o.NdvgMax {
				return nit + 1, &ConvergenceError{
					Msg: io.Sf("nonlinear solve diverged %d times (residual norm %g)", ndvg, rnew),
					Nit: nit + 1,
				}
			}
		}
		r = rnew
	}
	if r <= o.Atol+o.Rtol*r0 {
		return o.NmaxIt, nil
	}
	return o.NmaxIt, &ConvergenceError{
		Msg: io.Sf("nonlinear solve did not converge within %d iterations (residual norm %g)", o.NmaxIt, r),
		Nit: o.NmaxIt,
	}
}

// jacobian fills J by forward differences of the residual
func (o *NlSolver) jacobian(eval func(R, y la.Vector), y la.Vector) {
	for j := 0; j < o.n; j++ {
		tmp := y[j]
		h := 1e-8 * (1.0 + math.Abs(tmp))
		y[j] = tmp + h
		eval(o.Rp, y)
		y[j] = tmp
		for i := 0; i < o.n; i++ {
			o.J.Set(i, j, (o.Rp[i]-o.R[i])/h)
		}
	}
}
