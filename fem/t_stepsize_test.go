// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/gabriele-ferrero/FESTIM/inp"
)

func Test_stepsize01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepsize01. constant stepsize")

	o, err := NewStepsize(&inp.SolverData{Dt: 1.5})
	if err != nil {
		tst.Errorf("NewStepsize failed: %v\n", err)
		return
	}
	if o.Adaptive {
		tst.Errorf("no adaptive block must give a constant stepsize\n")
		return
	}
	o.Next(2, 10)
	o.Next(19, 20)
	chk.Float64(tst, "value held", 1e-15, o.Value, 1.5)
}

func Test_stepsize02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepsize02. growth band and hold")

	o, err := NewStepsize(&inp.SolverData{Dt: 1.0, Adapt: &inp.AdaptData{
		Growth: 2, Shrink: 0.5, DtMin: 0.1, DtMax: 3, NitTarget: 4,
	}})
	if err != nil {
		tst.Errorf("NewStepsize failed: %v\n", err)
		return
	}

	// within the band: grow
	o.Next(4, 1)
	chk.Float64(tst, "grown", 1e-15, o.Value, 2.0)
	chk.IntAssert(o.State, StepGrowing)

	// outside the band: hold
	o.Next(5, 2)
	chk.Float64(tst, "held", 1e-15, o.Value, 2.0)
	chk.IntAssert(o.State, StepStable)

	// growth capped at the maximum
	o.Next(1, 3)
	o.Next(1, 4)
	chk.Float64(tst, "capped", 1e-15, o.Value, 3.0)
}

func Test_stepsize03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepsize03. shrinking down to the bounds error")

	o, err := NewStepsize(&inp.SolverData{Dt: 1.0, Adapt: &inp.AdaptData{
		Growth: 2, Shrink: 0.5, DtMin: 0.1,
	}})
	if err != nil {
		tst.Errorf("NewStepsize failed: %v\n", err)
		return
	}

	// 1.0 → 0.5 → 0.25 → 0.125 → clamped at 0.1
	for i, correct := range []float64{0.5, 0.25, 0.125, 0.1} {
		if e := o.Reduce(); e != nil {
			tst.Errorf("Reduce %d failed: %v\n", i, e)
			return
		}
		chk.Float64(tst, "shrunk", 1e-15, o.Value, correct)
		chk.IntAssert(o.State, StepShrinking)
	}

	// a further reduction exceeds the bounds
	e := o.Reduce()
	if e == nil {
		tst.Errorf("reducing below the minimum must fail\n")
		return
	}
	if _, ok := e.(*StepsizeError); !ok {
		tst.Errorf("the failure must be a stepsize-bounds error; got %T\n", e)
		return
	}
	chk.Float64(tst, "value stays positive", 1e-15, o.Value, 0.1)
}

func Test_stepsize04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepsize04. freeze after t_stop")

	o, err := NewStepsize(&inp.SolverData{Dt: 1.0, Adapt: &inp.AdaptData{
		Growth: 2, Shrink: 0.5, DtMin: 0.01, TStop: 5, StopMax: 0.3,
	}})
	if err != nil {
		tst.Errorf("NewStepsize failed: %v\n", err)
		return
	}
	o.Next(1, 1) // grows before t_stop
	chk.Float64(tst, "grown", 1e-15, o.Value, 2.0)
	o.Next(1, 6) // frozen and capped after t_stop
	chk.Float64(tst, "frozen at cap", 1e-15, o.Value, 0.3)
	o.Next(1, 7)
	chk.Float64(tst, "still frozen", 1e-15, o.Value, 0.3)
}

func Test_stepsize05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("stepsize05. invalid policies")

	for _, adapt := range []*inp.AdaptData{
		{Growth: 0.5, Shrink: 0.5, DtMin: 0.1}, // growth below 1
		{Growth: 2, Shrink: 1.2, DtMin: 0.1},   // shrink above 1
		{Growth: 2, Shrink: 0.5},               // missing dtmin
	} {
		_, err := NewStepsize(&inp.SolverData{Dt: 1.0, Adapt: adapt})
		if err == nil {
			tst.Errorf("invalid policy %+v must fail\n", adapt)
			return
		}
	}
}
