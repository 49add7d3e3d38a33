// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/inp"
	"github.com/gabriele-ferrero/FESTIM/mdl"
)

func Test_chempot01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("chempot01. concentration jump across dissimilar solubilities")

	// two layers with S1=2 and S2=4, c=2 upstream (θ=1), c=0 downstream.
	// θ is continuous and piecewise linear; flux continuity D·S·θ' gives
	// slopes −4/3 and −2/3, so θ(1/2)=1/3 and the physical concentration
	// jumps by the ratio S1/S2 at the interface.
	sim := &inp.Simulation{
		Data:      inp.Data{Steady: true},
		Functions: testFuncs(),
		MeshData:  inp.MeshData{Xa: 0, Xb: 1, Ncells: 10},
		Materials: []*mdl.Material{
			{Name: "a", Tag: 1, Borders: []float64{0, 0.5}, D0: 1, S0: 2},
			{Name: "b", Tag: 2, Borders: []float64{0.5, 1}, D0: 1, S0: 4},
		},
		Temperature: inp.TempData{Kind: "expression", Fcn: "temp"},
		BCs: []*inp.BcData{
			{Kind: "dc", Surfaces: []int{1}, Fcn: "two"},
			{Kind: "dc", Surfaces: []int{2}, Fcn: "zero"},
		},
	}
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	m, err := NewMain(sim, false)
	if err != nil {
		tst.Errorf("NewMain failed: %v\n", err)
		return
	}
	if !m.Dom.ChemPot {
		tst.Errorf("the change of variable must be active\n")
		return
	}
	if err = m.Run(); err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}

	// θ profile
	st := m.Dom.Sol
	for n := 0; n < st.Nnod; n++ {
		x := m.Dom.Msh.V[n]
		ana := 1.0 - 4.0/3.0*x
		if x > 0.5 {
			ana = 2.0 / 3.0 * (1.0 - x)
		}
		chk.AnaNum(tst, io.Sf("theta(%4.2f)", x), 1e-10, st.Y[n], ana, chk.Verbose)
	}

	// physical concentrations at the two sides of the interface (node 5,
	// between cells 4 and 5)
	cleft := m.Dom.MobileCellConc(4, 5)
	cright := m.Dom.MobileCellConc(5, 5)
	chk.Float64(tst, "c left of interface", 1e-10, cleft, 2.0/3.0)
	chk.Float64(tst, "c right of interface", 1e-10, cright, 4.0/3.0)
	chk.Float64(tst, "jump ratio S1/S2", 1e-10, cleft/cright, 0.5)
}
