// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "github.com/cpmech/gosl/la"

// State holds all time-dependent solution variables. The unknowns of all
// components live in a single vector Y, laid out in blocks of nnod entries:
// equation of component i at node n is i*nnod + n. The previous-step copies
// are touched only by Commit and Rollback; the stepping loop owns the single
// commit point per accepted step.
type State struct {
	T    float64 // current (candidate) time
	Dt   float64 // current stepsize
	Step int     // number of accepted steps
	Nnod int     // number of mesh nodes

	Y     la.Vector // current solution (all components)
	Yprev la.Vector // solution at the last accepted step

	Temp     la.Vector // nodal temperature
	TempPrev la.Vector // nodal temperature at the last accepted step

	ExtDens     []la.Vector // per extrinsic trap: nodal density field
	ExtDensPrev []la.Vector // densities at the last accepted step
}

// NewState allocates the state for ncomp components, nnod nodes and next
// extrinsic trap density fields
func NewState(ncomp, nnod, next int) (o *State) {
	o = &State{Nnod: nnod}
	o.Y = la.NewVector(ncomp * nnod)
	o.Yprev = la.NewVector(ncomp * nnod)
	o.Temp = la.NewVector(nnod)
	o.TempPrev = la.NewVector(nnod)
	for i := 0; i < next; i++ {
		o.ExtDens = append(o.ExtDens, la.NewVector(nnod))
		o.ExtDensPrev = append(o.ExtDensPrev, la.NewVector(nnod))
	}
	return
}

// Eq returns the equation number of component id at one node
func (o *State) Eq(id, node int) int { return id*o.Nnod + node }

// Commit accepts the current solution: previous-step copies are overwritten
// and the step counter advances
func (o *State) Commit() {
	copy(o.Yprev, o.Y)
	copy(o.TempPrev, o.Temp)
	for i := range o.ExtDens {
		copy(o.ExtDensPrev[i], o.ExtDens[i])
	}
	o.Step++
}

// Rollback restores the last accepted solution after a failed attempt
func (o *State) Rollback() {
	copy(o.Y, o.Yprev)
	copy(o.Temp, o.TempPrev)
	for i := range o.ExtDens {
		copy(o.ExtDens[i], o.ExtDensPrev[i])
	}
}
