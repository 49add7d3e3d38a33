// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/fun/dbf"

	"github.com/gabriele-ferrero/FESTIM/mdl"
)

// Trap holds the kinetics data of one trap. Intrinsic traps have a fixed
// density (constant or f(t,x)); extrinsic traps carry a nodal density field
// with its own creation/loss kinetics, solved after the main system.
type Trap struct {

	// kinetics
	Name   string  // trap name
	Energy float64 // detrapping energy [eV]
	Nu0    float64 // attempt frequency [1/s]
	Tags   []int   // subdomain ids hosting this trap; empty = all

	// intrinsic density
	Density  float64 // constant density
	DensFunc dbf.T   // density as f(t,x); overrides the constant

	// extrinsic density kinetics
	Extrinsic bool    // density is a solved field
	ExtIdx    int     // index into State.ExtDens
	Phi0      float64 // creation rate pre-factor
	NMax      float64 // saturation density
	Eta       float64 // creation efficiency
	Loss      float64 // first-order loss rate [1/s]
	FluxFunc  dbf.T   // creation flux profile f(t,x)

	// derived
	Nodes []int // mesh nodes inside the trap subdomains
}

// DensityAt returns the trap density at one node, at time t
func (o *Trap) DensityAt(st *State, t, x float64, node int) float64 {
	if o.Extrinsic {
		return st.ExtDens[o.ExtIdx][node]
	}
	if o.DensFunc != nil {
		return o.DensFunc.F(t, []float64{x})
	}
	return o.Density
}

// Release returns the detrapping rate coefficient at temperature T
func (o *Trap) Release(T float64) float64 {
	return o.Nu0 * math.Exp(-o.Energy/(mdl.KB*T))
}

// StepDensity advances the extrinsic density field over one backward-Euler
// step, node by node. The kinetics read the candidate time and stepsize from
// the state; the previous density is never modified here.
func (o *Trap) StepDensity(st *State, X []float64) (err error) {
	n := st.ExtDens[o.ExtIdx]
	nprev := st.ExtDensPrev[o.ExtIdx]
	for _, m := range o.Nodes {
		flx := 0.0
		if o.FluxFunc != nil {
			flx = o.FluxFunc.F(st.T, []float64{X[m]})
		}
		cre := o.Phi0 * flx * o.Eta
		v := nprev[m]
		for it := 0; it < 20; it++ {
			g := (v-nprev[m])/st.Dt - cre*(1.0-v/o.NMax) + o.Loss*v
			if math.Abs(g) < 1e-14*(1.0+math.Abs(v)) {
				break
			}
			dgdv := 1.0/st.Dt + cre/o.NMax + o.Loss
			v -= g / dgdv
		}
		n[m] = v
	}
	return
}
