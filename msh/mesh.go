// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msh implements the 1D mesh collaborator: vertices, subdomain tags
// derived from material borders, and surface tag lookups. It is consulted at
// setup time only.
package msh

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/gabriele-ferrero/FESTIM/mdl"
)

// surface tags, 1D convention: 1 == left end, 2 == right end
const (
	SurfLeft  = 1
	SurfRight = 2
)

// Mesh holds a 1D mesh with cells tagged by subdomain
type Mesh struct {
	V       []float64 // vertex coordinates, increasing
	CellTag []int     // [ncells] subdomain tag of each cell
}

// Uniform returns ncell+1 equally spaced vertices in [xa,xb]
func Uniform(xa, xb float64, ncell int) (verts []float64) {
	verts = make([]float64, ncell+1)
	dx := (xb - xa) / float64(ncell)
	for i := range verts {
		verts[i] = xa + float64(i)*dx
	}
	verts[ncell] = xb
	return
}

// New builds the mesh and assigns a subdomain tag to every cell according to
// the material borders. Every cell must fall inside exactly one material and
// the materials must tile the mesh interval; gaps or overlaps are an error.
func New(verts []float64, mats *mdl.Db) (o *Mesh, err error) {
	if len(verts) < 2 {
		return nil, chk.Err("mesh needs at least 2 vertices")
	}
	vv := make([]float64, len(verts))
	copy(vv, verts)
	sort.Float64s(vv)
	for i := 0; i < len(vv)-1; i++ {
		if vv[i+1]-vv[i] < 1e-15 {
			return nil, chk.Err("mesh has duplicate vertex at x=%g", vv[i])
		}
	}
	o = &Mesh{V: vv, CellTag: make([]int, len(vv)-1)}
	err = o.checkBorders(mats)
	if err != nil {
		return nil, err
	}
	if len(mats.Materials) == 1 && len(mats.Materials[0].Borders) == 0 {
		for c := range o.CellTag {
			o.CellTag[c] = mats.Materials[0].Tag
		}
		return
	}
	for c := 0; c < o.Ncells(); c++ {
		xm := (o.V[c] + o.V[c+1]) / 2.0
		tag := 0
		for _, m := range mats.Materials {
			if len(m.Borders) == 2 && xm >= m.Borders[0] && xm <= m.Borders[1] {
				tag = m.Tag
				break
			}
		}
		if tag == 0 {
			return nil, chk.Err("no material covers cell at x=%g", xm)
		}
		o.CellTag[c] = tag
	}
	return
}

// checkBorders verifies that material borders tile the mesh interval
func (o *Mesh) checkBorders(mats *mdl.Db) (err error) {
	type itv struct{ a, b float64 }
	var itvs []itv
	for _, m := range mats.Materials {
		if len(m.Borders) == 0 {
			if len(mats.Materials) == 1 {
				return // single material covers everything by default
			}
			return chk.Err("material %q needs borders when more than one material is defined", m.Name)
		}
		if len(m.Borders) != 2 || m.Borders[1] <= m.Borders[0] {
			return chk.Err("material %q has invalid borders %v", m.Name, m.Borders)
		}
		itvs = append(itvs, itv{m.Borders[0], m.Borders[1]})
	}
	sort.Slice(itvs, func(i, j int) bool { return itvs[i].a < itvs[j].a })
	tol := 1e-12
	if math.Abs(itvs[0].a-o.V[0]) > tol {
		return chk.Err("material borders start at %g but mesh starts at %g", itvs[0].a, o.V[0])
	}
	for i := 1; i < len(itvs); i++ {
		if math.Abs(itvs[i].a-itvs[i-1].b) > tol {
			return chk.Err("material borders have a gap or overlap at x=%g", itvs[i].a)
		}
	}
	if math.Abs(itvs[len(itvs)-1].b-o.V[len(o.V)-1]) > tol {
		return chk.Err("material borders end at %g but mesh ends at %g", itvs[len(itvs)-1].b, o.V[len(o.V)-1])
	}
	return
}

// Nnodes returns the number of vertices
func (o *Mesh) Nnodes() int { return len(o.V) }

// Ncells returns the number of cells
func (o *Mesh) Ncells() int { return len(o.V) - 1 }

// Length returns the total mesh length
func (o *Mesh) Length() float64 { return o.V[len(o.V)-1] - o.V[0] }

// CellLen returns the length of cell c
func (o *Mesh) CellLen(c int) float64 { return o.V[c+1] - o.V[c] }

// SurfNode returns the vertex index of a tagged surface
func (o *Mesh) SurfNode(tag int) (n int, err error) {
	switch tag {
	case SurfLeft:
		return 0, nil
	case SurfRight:
		return len(o.V) - 1, nil
	}
	return -1, chk.Err("unknown surface id %d (1D surfaces are 1=left, 2=right)", tag)
}

// SurfNormal returns the outward normal (±1) of a tagged surface
func (o *Mesh) SurfNormal(tag int) float64 {
	if tag == SurfLeft {
		return -1
	}
	return 1
}

// SurfCell returns the cell adjacent to a tagged surface
func (o *Mesh) SurfCell(tag int) int {
	if tag == SurfLeft {
		return 0
	}
	return o.Ncells() - 1
}

// Locate returns the indices of vertices satisfying a predicate (setup only)
func (o *Mesh) Locate(pred func(x float64) bool) (nodes []int) {
	for i, x := range o.V {
		if pred(x) {
			nodes = append(nodes, i)
		}
	}
	return
}

// SubdomainNodes returns the vertices adjacent to cells with the given tag;
// an empty/nil tag list means the whole domain
func (o *Mesh) SubdomainNodes(tags []int) (nodes []int) {
	in := make([]bool, o.Nnodes())
	for c := 0; c < o.Ncells(); c++ {
		if len(tags) == 0 || intIn(o.CellTag[c], tags) {
			in[c] = true
			in[c+1] = true
		}
	}
	for i, ok := range in {
		if ok {
			nodes = append(nodes, i)
		}
	}
	return
}

// HasTag tells whether cell c belongs to one of the given subdomains;
// an empty list means yes for every cell
func (o *Mesh) HasTag(c int, tags []int) bool {
	if len(tags) == 0 {
		return true
	}
	return intIn(o.CellTag[c], tags)
}

func intIn(v int, set []int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
