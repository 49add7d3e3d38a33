// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/la"

	"github.com/gabriele-ferrero/FESTIM/mdl"
)

// EssBc holds one essential (Dirichlet) boundary condition on a species.
// Val caches the imposed unknown value and is refreshed every step.
type EssBc struct {
	Spc  *Species      // target species
	Surf int           // surface id
	Node int           // mesh node of the surface
	Eq   int           // equation number
	Kind string        // "dc" or "sieverts"
	Fcn  dbf.T         // imposed concentration (dc) or pressure (sieverts)
	Mat  *mdl.Material // material adjacent to the surface
	Val  float64       // current imposed unknown value
}

// FluxBc holds one natural (flux) boundary condition on a species
type FluxBc struct {
	Spc  *Species      // target species
	Surf int           // surface id
	Node int           // mesh node of the surface
	Eq   int           // equation number
	Kind string        // "flux" or "recomb"
	Fcn  dbf.T         // imposed inward flux (flux kind)
	Kr0  float64       // recombination coefficient pre-factor
	Er   float64       // recombination activation energy [eV]
	Mat  *mdl.Material // material adjacent to the surface
}

// BcManager holds all boundary conditions, split by type, plus the
// conditions of the solved temperature field
type BcManager struct {
	dom       *Domain
	Essential []*EssBc  // Dirichlet conditions on species
	Fluxes    []*FluxBc // natural conditions on species
	TempEss   []*EssBc  // Dirichlet conditions on the temperature
	TempFlux  []*FluxBc // natural conditions on the temperature
}

// newBcManager builds the manager and runs all setup-time validations:
// species references, surface ids, per-(surface,species) uniqueness, and
// the physical requirements of each condition kind
func newBcManager(d *Domain) (o *BcManager, err error) {
	o = &BcManager{dom: d}
	seen := make(map[[2]int]bool)
	for _, dat := range d.Sim.BCs {
		spc, e := d.Reg.Find(dat.Species)
		if e != nil {
			return nil, e
		}
		for _, surf := range dat.Surfaces {
			node, e := d.Msh.SurfNode(surf)
			if e != nil {
				return nil, setupErr("%v", e)
			}
			key := [2]int{surf, spc.Id}
			if seen[key] {
				return nil, setupErr("conflicting boundary conditions on surface %d for species %q", surf, spc.Name)
			}
			seen[key] = true
			mat, e := d.Mats.Get(d.Msh.CellTag[d.Msh.SurfCell(surf)])
			if e != nil {
				return nil, setupErr("%v", e)
			}
			switch dat.Kind {
			case "dc", "sieverts":
				if dat.Kind == "sieverts" && !mat.HasSolubility() {
					return nil, setupErr("sieverts boundary condition on surface %d needs a solubility law on material %q", surf, mat.Name)
				}
				o.Essential = append(o.Essential, &EssBc{
					Spc: spc, Surf: surf, Node: node, Eq: d.Sol.Eq(spc.Id, node),
					Kind: dat.Kind, Fcn: dat.Func, Mat: mat,
				})
			case "flux", "recomb":
				if dat.Kind == "recomb" && spc.Role != RoleMobile {
					return nil, setupErr("recombination boundary condition applies to the mobile species only, not %q", spc.Name)
				}
				o.Fluxes = append(o.Fluxes, &FluxBc{
					Spc: spc, Surf: surf, Node: node, Eq: d.Sol.Eq(spc.Id, node),
					Kind: dat.Kind, Fcn: dat.Func, Kr0: dat.Kr0, Er: dat.Er, Mat: mat,
				})
			}
		}
	}

	// temperature conditions (solved kinds only)
	if d.Sim.Temperature.Kind != "expression" {
		tseen := make(map[int]bool)
		ndc := 0
		for _, dat := range d.Sim.Temperature.Bcs {
			for _, surf := range dat.Surfaces {
				node, e := d.Msh.SurfNode(surf)
				if e != nil {
					return nil, setupErr("%v", e)
				}
				if tseen[surf] {
					return nil, setupErr("conflicting temperature boundary conditions on surface %d", surf)
				}
				tseen[surf] = true
				if dat.Kind == "dc" {
					o.TempEss = append(o.TempEss, &EssBc{Surf: surf, Node: node, Eq: node, Kind: "dc", Fcn: dat.Func})
					ndc++
				} else {
					o.TempFlux = append(o.TempFlux, &FluxBc{Surf: surf, Node: node, Eq: node, Kind: "flux", Fcn: dat.Func})
				}
			}
		}
		if ndc == 0 {
			return nil, setupErr("solved temperature needs at least one \"dc\" boundary condition")
		}
	}
	return
}

// Refresh recomputes the imposed values of all essential species conditions
// at time t, reading the surface temperature from the state. With the
// chemical-potential change of variable the imposed mobile unknown is the
// concentration divided by the surface solubility.
func (o *BcManager) Refresh(t float64, st *State) {
	for _, e := range o.Essential {
		x := o.dom.Msh.V[e.Node]
		T := st.Temp[e.Node]
		var c float64
		switch e.Kind {
		case "dc":
			c = e.Fcn.F(t, []float64{x})
		case "sieverts":
			p := e.Fcn.F(t, []float64{x})
			if p < 0 {
				p = 0
			}
			c = e.Mat.Solubility(T) * math.Sqrt(p)
		}
		if o.dom.ChemPot && e.Spc.Role == RoleMobile {
			c /= e.Mat.Solubility(T)
		}
		e.Val = c
	}
}

// AddFluxTerms adds the natural species conditions to the residual: imposed
// inward fluxes and the recombination outflux −Kr·c², with the physical
// concentration recovered from the unknown when chemical potential is active
func (o *BcManager) AddFluxTerms(R, y la.Vector, t float64, st *State) {
	for _, f := range o.Fluxes {
		x := o.dom.Msh.V[f.Node]
		switch f.Kind {
		case "flux":
			R[f.Eq] -= f.Fcn.F(t, []float64{x})
		case "recomb":
			T := st.Temp[f.Node]
			c := y[f.Eq]
			if o.dom.ChemPot {
				c *= f.Mat.Solubility(T)
			}
			kr := f.Kr0 * math.Exp(-f.Er/(mdl.KB*T))
			R[f.Eq] += kr * c * c
		}
	}
}

// RefreshTemp recomputes the imposed temperature values at time t
func (o *BcManager) RefreshTemp(t float64) {
	for _, e := range o.TempEss {
		e.Val = e.Fcn.F(t, []float64{o.dom.Msh.V[e.Node]})
	}
}

// AddTempFluxTerms adds the natural temperature conditions to the heat
// residual
func (o *BcManager) AddTempFluxTerms(R la.Vector, t float64) {
	for _, f := range o.TempFlux {
		R[f.Eq] -= f.Fcn.F(t, []float64{o.dom.Msh.V[f.Node]})
	}
}
