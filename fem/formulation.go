// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/la"

	"github.com/gabriele-ferrero/FESTIM/inp"
)

// Formulation evaluates the coupled residual of all species over the 1D
// mesh, with linear elements and lumped (trapezoidal) mass. Cell properties
// are taken at the cell-average temperature; nodal reaction terms carry the
// lumped weight h/2. The Jacobian is never formed here.
type Formulation struct {
	dom    *Domain
	source *inp.SourceData // volumetric source on the mobile species; may be nil
	pinned []int           // equations of trap components at nodes outside their subdomains
}

// newFormulation validates the source terms and precomputes the pinned
// trap equations
func newFormulation(d *Domain) (o *Formulation, err error) {
	o = &Formulation{dom: d}
	for _, s := range d.Sim.Sources {
		spc, e := d.Reg.Find(s.Species)
		if e != nil {
			return nil, e
		}
		if spc.Role != RoleMobile {
			return nil, &SourceError{Msg: "volumetric sources are supported on the mobile species only, not on " + spc.Name}
		}
		if o.source != nil {
			return nil, &SourceError{Msg: "only one volumetric source is supported"}
		}
		o.source = s
	}
	for _, spc := range d.Reg.All {
		if spc.Role != RoleTrap {
			continue
		}
		tr := d.Traps[spc.TrapIdx]
		if len(tr.Tags) == 0 {
			continue
		}
		inside := make(map[int]bool)
		for _, n := range tr.Nodes {
			inside[n] = true
		}
		for n := 0; n < d.Msh.Nnodes(); n++ {
			if !inside[n] {
				o.pinned = append(o.pinned, d.Sol.Eq(spc.Id, n))
			}
		}
	}
	return
}

// Eval computes the residual at the candidate solution y. Time, stepsize,
// temperature and the previous solution are read from the domain state.
// Dirichlet equations are replaced by y[eq]−value at the end, so that a
// finite-difference Jacobian of this residual carries identity rows there.
func (o *Formulation) Eval(R, y la.Vector) {
	d := o.dom
	st := d.Sol
	t, dt := st.T, st.Dt
	R.Fill(0)

	for c := 0; c < d.Msh.Ncells(); c++ {
		mat := d.CellMat[c]
		i, j := c, c+1
		h := d.Msh.CellLen(c)
		w := h / 2.0
		Tc := (st.Temp[i] + st.Temp[j]) / 2.0
		D := mat.Diffusivity(Tc)
		S, Sprev := 1.0, 1.0
		if d.ChemPot {
			S = mat.Solubility(Tc)
			Sprev = mat.Solubility((st.TempPrev[i] + st.TempPrev[j]) / 2.0)
		}

		// mobile species: lumped transient + diffusion + source
		ei, ej := st.Eq(0, i), st.Eq(0, j)
		if !d.Steady {
			R[ei] += (S*y[ei] - Sprev*st.Yprev[ei]) / dt * w
			R[ej] += (S*y[ej] - Sprev*st.Yprev[ej]) / dt * w
		}
		g := D * S * (y[ei] - y[ej]) / h
		R[ei] += g
		R[ej] -= g
		if o.source != nil {
			R[ei] -= o.source.Func.F(t, []float64{d.Msh.V[i]}) * w
			R[ej] -= o.source.Func.F(t, []float64{d.Msh.V[j]}) * w
		}

		// trap reactions, lumped at the two nodes; the capture/release pair
		// enters the mobile and trap equations with opposite signs
		for _, spc := range d.Reg.All {
			if spc.Role != RoleTrap {
				continue
			}
			tr := d.Traps[spc.TrapIdx]
			if !d.Msh.HasTag(c, tr.Tags) {
				continue
			}
			for _, m := range []int{i, j} {
				em := st.Eq(0, m)
				et := st.Eq(spc.Id, m)
				Tn := st.Temp[m]
				cm := y[em]
				if d.ChemPot {
					cm *= mat.Solubility(Tn)
				}
				ct := y[et]
				ntrap := tr.DensityAt(st, t, d.Msh.V[m], m)
				cap := mat.Diffusivity(Tn) / (mat.Alpha * mat.Alpha * mat.Beta) * cm * (ntrap - ct)
				rel := tr.Release(Tn) * ct
				if !d.Steady {
					R[et] += (ct - st.Yprev[et]) / dt * w
				}
				R[et] += (rel - cap) * w
				R[em] += (cap - rel) * w
			}
		}
	}

	// natural and essential boundary conditions, then the pinned trap
	// equations outside their subdomains
	d.Bcs.AddFluxTerms(R, y, t, st)
	for _, e := range d.Bcs.Essential {
		R[e.Eq] = y[e.Eq] - e.Val
	}
	for _, eq := range o.pinned {
		R[eq] = y[eq]
	}
}
