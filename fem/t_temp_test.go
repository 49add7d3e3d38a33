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

func Test_temp01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("temp01. stationary heat conduction solved at setup")

	sim := &inp.Simulation{
		Functions: testFuncs(),
		MeshData:  inp.MeshData{Xa: 0, Xb: 1, Ncells: 4},
		Materials: []*mdl.Material{{Name: "w", D0: 1, Kth: 2}},
		Temperature: inp.TempData{
			Kind: "solve_stationary", Fcn: "temp",
			Bcs: []*inp.BcData{
				{Kind: "dc", Surfaces: []int{1}, Fcn: "t300"},
				{Kind: "dc", Surfaces: []int{2}, Fcn: "t600"},
			},
		},
		Solver: inp.SolverData{FinalTime: 1, Dt: 0.5},
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

	// T(x) = 300 + 300·x, solved before the first step
	st := m.Dom.Sol
	for n := 0; n < st.Nnod; n++ {
		x := m.Dom.Msh.V[n]
		chk.AnaNum(tst, io.Sf("T(%4.2f)", x), 1e-8, st.Temp[n], 300.0+300.0*x, chk.Verbose)
	}
	chk.Float64(tst, "previous copy initialized", 1e-12, st.TempPrev[2], st.Temp[2])
}

func Test_temp02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("temp02. solved temperature needs an essential condition")

	sim := &inp.Simulation{
		Functions: testFuncs(),
		MeshData:  inp.MeshData{Xa: 0, Xb: 1, Ncells: 4},
		Materials: []*mdl.Material{{Name: "w", D0: 1, Kth: 2}},
		Temperature: inp.TempData{
			Kind: "solve_stationary", Fcn: "temp",
			Bcs:  []*inp.BcData{{Kind: "flux", Surfaces: []int{1}, Fcn: "one"}},
		},
		Solver: inp.SolverData{FinalTime: 1, Dt: 0.5},
	}
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	_, err := NewMain(sim, false)
	if err == nil {
		tst.Errorf("a solved temperature without \"dc\" conditions must fail\n")
		return
	}
	if _, ok := err.(*SetupError); !ok {
		tst.Errorf("the failure must be a setup error; got %T\n", err)
		return
	}
}

func Test_temp03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("temp03. transient heat with steady data stays put")

	sim := &inp.Simulation{
		Functions: testFuncs(),
		MeshData:  inp.MeshData{Xa: 0, Xb: 1, Ncells: 4},
		Materials: []*mdl.Material{{Name: "w", D0: 1, Kth: 2, Cp: 2, Rho: 3}},
		Temperature: inp.TempData{
			Kind: "solve_transient", Fcn: "t600",
			Bcs: []*inp.BcData{
				{Kind: "dc", Surfaces: []int{1}, Fcn: "t600"},
				{Kind: "dc", Surfaces: []int{2}, Fcn: "t600"},
			},
		},
		Solver: inp.SolverData{FinalTime: 1, Dt: 0.1},
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
	st := m.Dom.Sol
	st.T, st.Dt = 0.1, 0.1
	if err = m.Dom.Temp.Update(0.1); err != nil {
		tst.Errorf("Update failed: %v\n", err)
		return
	}
	for n := 0; n < st.Nnod; n++ {
		chk.Float64(tst, "uniform T held", 1e-9, st.Temp[n], 600)
	}
}
