// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/la"
)

// Temperature handles the temperature field. Kind "expression" interpolates
// a given T(t,x) at the nodes; "solve_stationary" solves the heat conduction
// equation once at setup; "solve_transient" advances
// ρ·cp·dT/dt − div(k·grad T) = Q every step, before the species solve.
type Temperature struct {
	dom    *Domain
	Kind   string
	Fcn    dbf.T     // T(t,x) or the initial condition of solved kinds
	SrcFcn dbf.T     // volumetric heat source; may be nil
	nl     *NlSolver // solver for the solved kinds
}

// newTemperature builds the handler; the solved kinds get their own Newton
// solver over the nodal temperatures
func newTemperature(d *Domain) (o *Temperature) {
	o = &Temperature{
		dom:    d,
		Kind:   d.Sim.Temperature.Kind,
		Fcn:    d.Sim.Temperature.Func,
		SrcFcn: d.Sim.Temperature.SourceFunc,
	}
	if o.Kind != "expression" {
		sd := &d.Sim.Solver
		o.nl = NewNlSolver(d.Msh.Nnodes(), sd.Atol, sd.Rtol, sd.NmaxIt, sd.NdvgMax)
	}
	return
}

// Init sets the temperature at t=0: the expression value, or the initial
// condition of the solved kinds, solving the stationary problem right away
// when asked. The previous-step copy is initialized too.
func (o *Temperature) Init() (err error) {
	st := o.dom.Sol
	for n := 0; n < st.Nnod; n++ {
		st.Temp[n] = o.Fcn.F(0, []float64{o.dom.Msh.V[n]})
	}
	if o.Kind == "solve_stationary" {
		o.dom.Bcs.RefreshTemp(0)
		_, err = o.nl.Solve(func(R, T la.Vector) { o.evalRes(R, T, 0, false) }, st.Temp)
		if err != nil {
			return
		}
	}
	copy(st.TempPrev, st.Temp)
	return
}

// Update recomputes the temperature at the candidate time t. The stationary
// kind was solved at Init and never changes.
func (o *Temperature) Update(t float64) (err error) {
	st := o.dom.Sol
	switch o.Kind {
	case "expression":
		for n := 0; n < st.Nnod; n++ {
			st.Temp[n] = o.Fcn.F(t, []float64{o.dom.Msh.V[n]})
		}
	case "solve_transient":
		o.dom.Bcs.RefreshTemp(t)
		transient := !o.dom.Steady
		_, err = o.nl.Solve(func(R, T la.Vector) { o.evalRes(R, T, t, transient) }, st.Temp)
	}
	return
}

// evalRes computes the heat equation residual with the same lumped-mass
// linear elements used for the species
func (o *Temperature) evalRes(R, Tv la.Vector, t float64, transient bool) {
	d := o.dom
	st := d.Sol
	R.Fill(0)
	for c := 0; c < d.Msh.Ncells(); c++ {
		mat := d.CellMat[c]
		i, j := c, c+1
		h := d.Msh.CellLen(c)
		w := h / 2.0
		Tc := (Tv[i] + Tv[j]) / 2.0
		g := mat.Conductivity(Tc) * (Tv[i] - Tv[j]) / h
		R[i] += g
		R[j] -= g
		if transient {
			rc := mat.Density(Tc) * mat.Capacity(Tc)
			R[i] += rc * (Tv[i] - st.TempPrev[i]) / st.Dt * w
			R[j] += rc * (Tv[j] - st.TempPrev[j]) / st.Dt * w
		}
		if o.SrcFcn != nil {
			R[i] -= o.SrcFcn.F(t, []float64{d.Msh.V[i]}) * w
			R[j] -= o.SrcFcn.F(t, []float64{d.Msh.V[j]}) * w
		}
	}
	d.Bcs.AddTempFluxTerms(R, t)
	for _, e := range d.Bcs.TempEss {
		R[e.Eq] = Tv[e.Eq] - e.Val
	}
}
