// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/gabriele-ferrero/FESTIM/inp"
	"github.com/gabriele-ferrero/FESTIM/mdl"
	"github.com/gabriele-ferrero/FESTIM/msh"
)

// Domain ties the mesh, materials, species, boundary conditions, temperature
// and the residual formulation together, and owns the solution state. All
// setup-time validation funnels through NewDomain; once it returns, the only
// runtime failures left are convergence and stepsize ones.
type Domain struct {

	// collaborators
	Sim  *inp.Simulation // all input data
	Msh  *msh.Mesh       // the 1D mesh
	Mats *mdl.Db         // materials database
	Reg  *Registry       // species registry
	Bcs  *BcManager      // boundary conditions
	Temp *Temperature    // temperature handler
	Form *Formulation    // residual evaluator

	// configuration
	ChemPot bool // chemical-potential change of variable is active
	Steady  bool // no time-derivative terms
	Ny      int  // total number of species equations

	// runtime
	Traps   []*Trap         // trap kinetics, one per trapped species
	CellMat []*mdl.Material // material of each cell
	Sol     *State          // the solution state
}

// NewDomain builds the domain and runs every setup-time validation
func NewDomain(sim *inp.Simulation) (o *Domain, err error) {
	o = &Domain{Sim: sim, Msh: sim.Msh, Mats: sim.MatDb, Steady: sim.Data.Steady}
	o.ChemPot, err = o.Mats.ChemPotential()
	if err != nil {
		return nil, setupErr("%v", err)
	}

	// species registry and trap kinetics
	o.Reg = NewRegistry()
	next := 0
	for i, td := range sim.Traps {
		tr := &Trap{
			Name: td.Name, Energy: td.Energy, Nu0: td.Nu0, Tags: td.Materials,
			Density: td.Density, DensFunc: td.DensFunc,
			Extrinsic: td.Extrinsic(), ExtIdx: -1,
			Phi0: td.Phi0, NMax: td.NMax, Eta: td.Eta, Loss: td.Loss, FluxFunc: td.FluxFunc,
		}
		if tr.Extrinsic {
			tr.ExtIdx = next
			next++
		}
		for _, tag := range tr.Tags {
			if _, e := o.Mats.Get(tag); e != nil {
				return nil, setupErr("trap %q: %v", tr.Name, e)
			}
		}
		for _, m := range o.Mats.Materials {
			if len(tr.Tags) > 0 && !intIn(m.Tag, tr.Tags) {
				continue
			}
			if m.Alpha <= 0 || m.Beta <= 0 {
				return nil, setupErr("material %q hosts trap %q and needs positive alpha and beta", m.Name, tr.Name)
			}
		}
		tr.Nodes = o.Msh.SubdomainNodes(tr.Tags)
		if _, err = o.Reg.AddTrap(tr.Name, i); err != nil {
			return nil, err
		}
		o.Traps = append(o.Traps, tr)
	}

	// cell materials
	for c := 0; c < o.Msh.Ncells(); c++ {
		mat, e := o.Mats.Get(o.Msh.CellTag[c])
		if e != nil {
			return nil, setupErr("%v", e)
		}
		o.CellMat = append(o.CellMat, mat)
	}

	// state, temperature, boundary conditions, formulation
	nnod := o.Msh.Nnodes()
	o.Ny = o.Reg.N() * nnod
	o.Sol = NewState(o.Reg.N(), nnod, next)
	o.Temp = newTemperature(o)
	o.Bcs, err = newBcManager(o)
	if err != nil {
		return nil, err
	}
	err = o.Temp.Init()
	if err != nil {
		return nil, err
	}
	o.Form, err = newFormulation(o)
	if err != nil {
		return nil, err
	}

	// initial conditions (after the temperature, which the chemical-potential
	// scaling reads), then the initial commit
	for _, tr := range o.Traps {
		if tr.Extrinsic && tr.Density > 0 {
			o.Sol.ExtDens[tr.ExtIdx].Fill(tr.Density)
		}
	}
	err = o.applyIniConds()
	if err != nil {
		return nil, err
	}
	o.Sol.Commit()
	o.Sol.Step = 0
	return
}

// applyIniConds evaluates the initial condition functions at the nodes
func (o *Domain) applyIniConds() (err error) {
	for _, ic := range o.Sim.IniConds {
		spc, e := o.Reg.Find(ic.Field)
		if e != nil {
			return e
		}
		for n := 0; n < o.Sol.Nnod; n++ {
			v := ic.Func.F(0, []float64{o.Msh.V[n]})
			if o.ChemPot && spc.Role == RoleMobile {
				v /= o.NodeMat(n).Solubility(o.Sol.Temp[n])
			}
			o.Sol.Y[o.Sol.Eq(spc.Id, n)] = v
		}
	}
	return
}

// NodeMat returns the material of the cell left of node n (right of the
// first node)
func (o *Domain) NodeMat(n int) *mdl.Material {
	if n == 0 {
		return o.CellMat[0]
	}
	return o.CellMat[n-1]
}

// MobileConc returns the physical mobile concentration at one node,
// undoing the chemical-potential change of variable
func (o *Domain) MobileConc(n int) float64 {
	v := o.Sol.Y[o.Sol.Eq(0, n)]
	if o.ChemPot {
		v *= o.NodeMat(n).Solubility(o.Sol.Temp[n])
	}
	return v
}

// MobileCellConc returns the physical mobile concentration at one node of
// cell c, with the solubility taken at the cell-average temperature as in
// the assembly
func (o *Domain) MobileCellConc(c, node int) float64 {
	v := o.Sol.Y[o.Sol.Eq(0, node)]
	if o.ChemPot {
		Tc := (o.Sol.Temp[c] + o.Sol.Temp[c+1]) / 2.0
		v *= o.CellMat[c].Solubility(Tc)
	}
	return v
}

// CheckFieldRef validates a post-processing field reference: "T",
// "retention", or anything the species registry resolves
func (o *Domain) CheckFieldRef(ref string) (err error) {
	if ref == "T" || ref == "retention" {
		return
	}
	_, err = o.Reg.Find(ref)
	return
}

// FieldNodal returns the nodal values of a post-processing field:
// temperature, retention (physical mobile plus all trapped), the physical
// mobile concentration, or one trapped concentration
func (o *Domain) FieldNodal(ref string) (vals []float64, err error) {
	nnod := o.Sol.Nnod
	vals = make([]float64, nnod)
	switch ref {
	case "T":
		copy(vals, o.Sol.Temp)
		return
	case "retention":
		for n := 0; n < nnod; n++ {
			vals[n] = o.MobileConc(n)
			for _, spc := range o.Reg.All {
				if spc.Role == RoleTrap {
					vals[n] += o.Sol.Y[o.Sol.Eq(spc.Id, n)]
				}
			}
		}
		return
	}
	spc, err := o.Reg.Find(ref)
	if err != nil {
		return nil, err
	}
	if spc.Role == RoleMobile {
		for n := 0; n < nnod; n++ {
			vals[n] = o.MobileConc(n)
		}
		return
	}
	for n := 0; n < nnod; n++ {
		vals[n] = o.Sol.Y[o.Sol.Eq(spc.Id, n)]
	}
	return
}

// Integrate computes the trapezoidal integral of nodal values over the
// cells of the given subdomains; an empty list means the whole domain
func (o *Domain) Integrate(vals []float64, tags []int) (sum float64) {
	for c := 0; c < o.Msh.Ncells(); c++ {
		if o.Msh.HasTag(c, tags) {
			sum += (vals[c] + vals[c+1]) / 2.0 * o.Msh.CellLen(c)
		}
	}
	return
}

func intIn(v int, set []int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
