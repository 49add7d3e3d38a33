// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem implements the simulation core: species registry, residual
// assembly over the 1D mesh, boundary conditions, trap kinetics, temperature
// handling, the Newton solver and the time stepping loop.
package fem

import "github.com/cpmech/gosl/io"

// SetupError indicates an invalid model definition. All setup errors are
// raised before the first step; none can appear mid-run.
type SetupError struct {
	Msg string
}

func (o *SetupError) Error() string { return o.Msg }

// setupErr builds a SetupError with a formatted message
func setupErr(msg string, prm ...interface{}) *SetupError {
	return &SetupError{Msg: io.Sf(msg, prm...)}
}

// SourceError indicates an unsupported volumetric source request.
// Only the mobile species may carry a source, and only one.
type SourceError struct {
	Msg string
}

func (o *SourceError) Error() string { return o.Msg }

// ConvergenceError indicates that the nonlinear solve failed after the
// divergence control and the retry budget were exhausted
type ConvergenceError struct {
	Msg  string
	Nit  int // iterations performed in the last attempt
	Ntry int // attempts performed
}

func (o *ConvergenceError) Error() string { return o.Msg }

// StepsizeError indicates that the adaptive controller hit the minimum
// stepsize and still could not converge
type StepsizeError struct {
	Msg string
	Min float64 // the stepsize lower bound that was hit
}

func (o *StepsizeError) Error() string { return o.Msg }
