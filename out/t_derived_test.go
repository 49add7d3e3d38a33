// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"

	"github.com/gabriele-ferrero/FESTIM/fem"
	"github.com/gabriele-ferrero/FESTIM/inp"
	"github.com/gabriele-ferrero/FESTIM/mdl"
)

// steadySim builds a uniform slab with c=1 upstream and c=0 downstream,
// whose steady solution is c(x)=1−x with outward flux −D at the right end
func steadySim(exports inp.ExportsData) *inp.Simulation {
	return &inp.Simulation{
		Data: inp.Data{Steady: true},
		Functions: inp.FuncsData{
			{Name: "temp", Type: "cte", Prms: dbf.Params{{N: "c", V: 600}}},
			{Name: "one", Type: "cte", Prms: dbf.Params{{N: "c", V: 1}}},
		},
		MeshData:    inp.MeshData{Xa: 0, Xb: 1, Ncells: 10},
		Materials:   []*mdl.Material{{Name: "w", D0: 2}},
		Temperature: inp.TempData{Kind: "expression", Fcn: "temp"},
		BCs: []*inp.BcData{
			{Kind: "dc", Surfaces: []int{1}, Fcn: "one"},
			{Kind: "dc", Surfaces: []int{2}, Fcn: "zero"},
		},
		Exports: exports,
	}
}

func Test_derived01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("derived01. quantities over the steady linear profile")

	sim := steadySim(inp.ExportsData{Derived: []*inp.DQSpec{
		{Kind: "surface_flux", Field: "solute", Surfaces: []int{2}},
		{Kind: "total_volume", Field: "retention"},
		{Kind: "average_volume", Field: "solute"},
		{Kind: "minimum_volume", Field: "solute"},
		{Kind: "maximum_volume", Field: "solute"},
		{Kind: "total_surface", Field: "solute", Surfaces: []int{1}},
	}})
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	m, err := fem.NewMain(sim, false)
	if err != nil {
		tst.Errorf("NewMain failed: %v\n", err)
		return
	}
	eng, err := NewEngine(m.Dom)
	if err != nil {
		tst.Errorf("NewEngine failed: %v\n", err)
		return
	}
	chk.String(tst, eng.Header[1], "Flux surface 2: solute")
	m.AddObserver(eng)
	if err = m.Run(); err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}
	chk.IntAssert(len(eng.Rows), 1)
	row := eng.Rows[0]
	chk.Float64(tst, "t", 1e-15, row[0], 0)
	chk.Float64(tst, "downstream flux −D", 1e-8, row[1], -2.0)
	chk.Float64(tst, "total retention", 1e-8, row[2], 0.5)
	chk.Float64(tst, "average c", 1e-8, row[3], 0.5)
	chk.Float64(tst, "minimum c", 1e-8, row[4], 0)
	chk.Float64(tst, "maximum c", 1e-8, row[5], 1)
	chk.Float64(tst, "upstream surface total", 1e-8, row[6], 1)

	// csv export
	if err = WriteDerivedCSV("/tmp/festim", "steady", eng); err != nil {
		tst.Errorf("WriteDerivedCSV failed: %v\n", err)
		return
	}
}

func Test_derived02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("derived02. bad specifications rejected at setup")

	for _, dq := range []*inp.DQSpec{
		{Kind: "surface_flux", Field: "bogus", Surfaces: []int{2}},     // unknown field
		{Kind: "surface_flux", Field: "retention", Surfaces: []int{2}}, // flux needs solute or T
		{Kind: "banana_split", Field: "solute"},                        // unknown kind
		{Kind: "surface_flux", Field: "solute"},                        // missing surfaces
		{Kind: "surface_flux", Field: "solute", Surfaces: []int{3}},    // unknown surface
		{Kind: "total_volume", Field: "solute", Volumes: []int{9}},     // unknown subdomain
	} {
		sim := steadySim(inp.ExportsData{Derived: []*inp.DQSpec{dq}})
		if err := sim.Derive(); err != nil {
			tst.Errorf("Derive failed: %v\n", err)
			return
		}
		m, err := fem.NewMain(sim, false)
		if err != nil {
			tst.Errorf("NewMain failed: %v\n", err)
			return
		}
		if _, err = NewEngine(m.Dom); err == nil {
			tst.Errorf("specification %+v must be rejected\n", dq)
			return
		}
	}

	// profile writer validates its fields too
	sim := steadySim(inp.ExportsData{})
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	m, err := fem.NewMain(sim, false)
	if err != nil {
		tst.Errorf("NewMain failed: %v\n", err)
		return
	}
	if _, err = NewProfileWriter(m.Dom, "/tmp/festim", []string{"bogus"}, 0); err == nil {
		tst.Errorf("an unknown profile field must be rejected\n")
		return
	}
}

func Test_derived03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("derived03. evaluation period over a transient run")

	sim := &inp.Simulation{
		Functions: inp.FuncsData{
			{Name: "temp", Type: "cte", Prms: dbf.Params{{N: "c", V: 600}}},
			{Name: "one", Type: "cte", Prms: dbf.Params{{N: "c", V: 1}}},
		},
		MeshData:    inp.MeshData{Xa: 0, Xb: 1, Ncells: 4},
		Materials:   []*mdl.Material{{Name: "w", D0: 1}},
		Temperature: inp.TempData{Kind: "expression", Fcn: "temp"},
		IniConds:    []*inp.IniCondData{{Field: "solute", Fcn: "one"}},
		Solver:      inp.SolverData{FinalTime: 0.4, Dt: 0.1},
		Exports: inp.ExportsData{
			Derived:      []*inp.DQSpec{{Kind: "total_volume", Field: "solute"}},
			ComputeEvery: 2,
		},
	}
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	m, err := fem.NewMain(sim, false)
	if err != nil {
		tst.Errorf("NewMain failed: %v\n", err)
		return
	}
	eng, err := NewEngine(m.Dom)
	if err != nil {
		tst.Errorf("NewEngine failed: %v\n", err)
		return
	}
	m.AddObserver(eng)
	if err = m.Run(); err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}

	// rows at t=0, 0.2, 0.4 only; the closed uniform slab keeps ∫c = 1
	chk.IntAssert(len(eng.Rows), 3)
	chk.Float64(tst, "row 1 time", 1e-12, eng.Rows[1][0], 0.2)
	chk.Float64(tst, "row 2 time", 1e-12, eng.Rows[2][0], 0.4)
	chk.Float64(tst, "total inventory", 1e-8, eng.Rows[2][1], 1.0)
}

func Test_derived04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("derived04. thermo-diffusion cross term in the surface flux")

	// T(x) = 300 + 300x from the stationary heat solve and c(x) = 1 − x/2;
	// over the boundary cell [0.9,1] the cell-average temperature is 585 and
	// dT/dx = 300, so the downstream flux D·dc/dx·n = −1 picks up the cross
	// term D·c·Q/(R·T̄²)·dT/dx·n
	sim := &inp.Simulation{
		Data: inp.Data{Steady: true, Soret: true},
		Functions: inp.FuncsData{
			{Name: "t300", Type: "cte", Prms: dbf.Params{{N: "c", V: 300}}},
			{Name: "t600", Type: "cte", Prms: dbf.Params{{N: "c", V: 600}}},
			{Name: "one", Type: "cte", Prms: dbf.Params{{N: "c", V: 1}}},
			{Name: "half", Type: "cte", Prms: dbf.Params{{N: "c", V: 0.5}}},
		},
		MeshData:  inp.MeshData{Xa: 0, Xb: 1, Ncells: 10},
		Materials: []*mdl.Material{{Name: "w", D0: 2, Kth: 2, FreeEnthalpy: 1e4}},
		Temperature: inp.TempData{
			Kind: "solve_stationary", Fcn: "t600",
			Bcs: []*inp.BcData{
				{Kind: "dc", Surfaces: []int{1}, Fcn: "t300"},
				{Kind: "dc", Surfaces: []int{2}, Fcn: "t600"},
			},
		},
		BCs: []*inp.BcData{
			{Kind: "dc", Surfaces: []int{1}, Fcn: "one"},
			{Kind: "dc", Surfaces: []int{2}, Fcn: "half"},
		},
		Exports: inp.ExportsData{Derived: []*inp.DQSpec{
			{Kind: "surface_flux", Field: "solute", Surfaces: []int{2}},
		}},
		Solver: inp.SolverData{Atol: 1e-12, Rtol: 1e-12},
	}
	if err := sim.Derive(); err != nil {
		tst.Errorf("Derive failed: %v\n", err)
		return
	}
	m, err := fem.NewMain(sim, false)
	if err != nil {
		tst.Errorf("NewMain failed: %v\n", err)
		return
	}
	eng, err := NewEngine(m.Dom)
	if err != nil {
		tst.Errorf("NewEngine failed: %v\n", err)
		return
	}
	m.AddObserver(eng)
	if err = m.Run(); err != nil {
		tst.Errorf("Run failed: %v\n", err)
		return
	}
	chk.IntAssert(len(eng.Rows), 1)
	soret := 2.0 * 0.5 * 1e4 * 300.0 / (mdl.Rgas * 585.0 * 585.0)
	chk.Float64(tst, "downstream flux with cross term", 1e-9, eng.Rows[0][1], -1.0+soret)
}
