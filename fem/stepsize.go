// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/inp"
)

// stepsize controller states
const (
	StepStable   = iota // held: iteration count outside the growth band
	StepGrowing         // grown after an easy solve
	StepShrinking       // shrunk after a failed attempt
)

// Stepsize controls the timestep. With no adaptive policy the value is
// constant; otherwise the value grows on easy solves, holds otherwise, and
// shrinks on failed attempts down to a hard minimum. The value is always
// positive.
type Stepsize struct {
	Value    float64 // current stepsize
	Adaptive bool    // adaptive policy enabled
	State    int     // StepStable, StepGrowing or StepShrinking

	// policy
	Growth    float64 // multiplier on success within the band
	Shrink    float64 // multiplier on a failed attempt
	Min       float64 // lower bound
	Max       float64 // upper bound; 0 = unbounded
	NitTarget int     // grow when the iteration count is at most this
	TStop     float64 // freeze the value after this time; 0 = disabled
	StopMax   float64 // cap applied once frozen
}

// NewStepsize builds the controller from the solver data, validating the
// adaptive policy
func NewStepsize(dat *inp.SolverData) (o *Stepsize, err error) {
	o = &Stepsize{Value: dat.Dt, State: StepStable}
	if dat.Adapt == nil {
		return
	}
	a := dat.Adapt
	o.Adaptive = true
	o.Growth = a.Growth
	if o.Growth == 0 {
		o.Growth = 1.1
	}
	if o.Growth < 1 {
		return nil, setupErr("stepsize growth factor must be at least 1; got %g", o.Growth)
	}
	o.Shrink = a.Shrink
	if o.Shrink == 0 {
		o.Shrink = 0.8
	}
	if o.Shrink <= 0 || o.Shrink >= 1 {
		return nil, setupErr("stepsize shrink factor must be in (0,1); got %g", o.Shrink)
	}
	o.Min = a.DtMin
	if o.Min <= 0 {
		return nil, setupErr("adaptive stepsize needs a positive dtmin")
	}
	o.Max = a.DtMax
	o.NitTarget = a.NitTarget
	if o.NitTarget == 0 {
		o.NitTarget = 5
	}
	o.TStop = a.TStop
	o.StopMax = a.StopMax
	return
}

// Next updates the value after an accepted step at time t, solved in nit
// Newton iterations
func (o *Stepsize) Next(nit int, t float64) {
	if !o.Adaptive {
		return
	}
	if o.TStop > 0 && t >= o.TStop {
		o.State = StepStable
		if o.StopMax > 0 && o.Value > o.StopMax {
			o.Value = o.StopMax
		}
		return
	}
	if nit <= o.NitTarget {
		o.Value *= o.Growth
		if o.Max > 0 && o.Value > o.Max {
			o.Value = o.Max
		}
		o.State = StepGrowing
		return
	}
	o.State = StepStable
}

// Reduce shrinks the value after a failed attempt. Once the lower bound is
// reached a further reduction is a stepsize-bounds error.
func (o *Stepsize) Reduce() (err error) {
	o.State = StepShrinking
	v := o.Value * o.Shrink
	if v < o.Min {
		if o.Value > o.Min {
			o.Value = o.Min
			return
		}
		return &StepsizeError{
			Msg: io.Sf("stepsize fell below the minimum %g and the solve still fails", o.Min),
			Min: o.Min,
		}
	}
	o.Value = v
	return
}
