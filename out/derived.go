// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements post-processing: the derived quantity engine
// observing the time stepping loop, and the export writers.
package out

import (
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/fem"
	"github.com/gabriele-ferrero/FESTIM/mdl"
)

// quantity holds one resolved derived quantity
type quantity struct {
	kind  string // surface_flux, total_surface, total_volume, average_volume, minimum_volume, maximum_volume
	field string // "solute", "T", "retention" or a trap reference
	surf  int    // surface id (surface kinds)
	vols  []int  // subdomain ids (volume kinds); empty = whole domain
	label string // column header
}

// Engine evaluates the derived quantities after accepted steps and keeps
// the append-only, time-tagged history table. All field and surface
// references are resolved and validated at construction, before the loop.
type Engine struct {
	dom   *fem.Domain
	soret bool
	every int // evaluate every N accepted steps

	quants []*quantity
	Header []string    // column headers, starting with "t(s)"
	Rows   [][]float64 // history table
	count  int
}

// NewEngine builds the engine from the exports section, validating every
// quantity specification
func NewEngine(dom *fem.Domain) (o *Engine, err error) {
	o = &Engine{dom: dom, soret: dom.Sim.Data.Soret, every: dom.Sim.Exports.ComputeEvery}
	o.Header = []string{"t(s)"}
	for _, dq := range dom.Sim.Exports.Derived {
		if err = dom.CheckFieldRef(dq.Field); err != nil {
			return nil, err
		}
		switch dq.Kind {
		case "surface_flux", "total_surface":
			if dq.Kind == "surface_flux" && dq.Field != "solute" && dq.Field != "T" {
				return nil, &fem.SetupError{Msg: io.Sf("surface_flux supports fields \"solute\" and \"T\" only, not %q", dq.Field)}
			}
			if len(dq.Surfaces) == 0 {
				return nil, &fem.SetupError{Msg: io.Sf("%s of %q needs surfaces", dq.Kind, dq.Field)}
			}
			for _, surf := range dq.Surfaces {
				if _, e := dom.Msh.SurfNode(surf); e != nil {
					return nil, &fem.SetupError{Msg: io.Sf("%v", e)}
				}
				q := &quantity{kind: dq.Kind, field: dq.Field, surf: surf}
				if dq.Kind == "surface_flux" {
					q.label = io.Sf("Flux surface %d: %s", surf, dq.Field)
				} else {
					q.label = io.Sf("Total %s surface %d", dq.Field, surf)
				}
				o.add(q)
			}
		case "total_volume", "average_volume", "minimum_volume", "maximum_volume":
			for _, tag := range dq.Volumes {
				if _, e := dom.Mats.Get(tag); e != nil {
					return nil, &fem.SetupError{Msg: io.Sf("%v", e)}
				}
			}
			word := map[string]string{
				"total_volume":   "Total",
				"average_volume": "Average",
				"minimum_volume": "Minimum",
				"maximum_volume": "Maximum",
			}[dq.Kind]
			q := &quantity{kind: dq.Kind, field: dq.Field, vols: dq.Volumes}
			if len(dq.Volumes) == 0 {
				q.label = io.Sf("%s %s", word, dq.Field)
			} else {
				q.label = io.Sf("%s %s volume %v", word, dq.Field, dq.Volumes)
			}
			o.add(q)
		default:
			return nil, &fem.SetupError{Msg: io.Sf("derived quantity kind %q is unknown", dq.Kind)}
		}
	}
	return
}

func (o *Engine) add(q *quantity) {
	o.quants = append(o.quants, q)
	o.Header = append(o.Header, q.label)
}

// OnStep evaluates all quantities and appends one history row, every N
// accepted steps
func (o *Engine) OnStep(t float64) (err error) {
	n := o.count
	o.count++
	if n%o.every != 0 {
		return
	}
	row := make([]float64, 0, len(o.quants)+1)
	row = append(row, t)
	cache := make(map[string][]float64)
	for _, q := range o.quants {
		var v float64
		switch q.kind {
		case "surface_flux":
			v = o.surfaceFlux(q.field, q.surf)
		case "total_surface":
			vals, e := o.nodal(q.field, cache)
			if e != nil {
				return e
			}
			node, _ := o.dom.Msh.SurfNode(q.surf)
			v = vals[node]
		default:
			vals, e := o.nodal(q.field, cache)
			if e != nil {
				return e
			}
			v = o.volumeValue(q.kind, vals, q.vols)
		}
		row = append(row, v)
	}
	o.Rows = append(o.Rows, row)
	return
}

// nodal returns the nodal values of a field, cached per row
func (o *Engine) nodal(field string, cache map[string][]float64) (vals []float64, err error) {
	if v, ok := cache[field]; ok {
		return v, nil
	}
	vals, err = o.dom.FieldNodal(field)
	if err != nil {
		return
	}
	cache[field] = vals
	return
}

// volumeValue evaluates one volume quantity over the tagged subdomains
func (o *Engine) volumeValue(kind string, vals []float64, tags []int) float64 {
	switch kind {
	case "total_volume":
		return o.dom.Integrate(vals, tags)
	case "average_volume":
		length := 0.0
		for c := 0; c < o.dom.Msh.Ncells(); c++ {
			if o.dom.Msh.HasTag(c, tags) {
				length += o.dom.Msh.CellLen(c)
			}
		}
		return o.dom.Integrate(vals, tags) / length
	}
	nodes := o.dom.Msh.SubdomainNodes(tags)
	v := vals[nodes[0]]
	for _, n := range nodes[1:] {
		if kind == "minimum_volume" && vals[n] < v {
			v = vals[n]
		}
		if kind == "maximum_volume" && vals[n] > v {
			v = vals[n]
		}
	}
	return v
}

// surfaceFlux computes the outward diffusive flux D·∇c·n at a tagged
// surface (or k·∇T·n for the temperature), one-sided over the adjacent
// cell, plus the thermo-diffusion cross term when soret is active
func (o *Engine) surfaceFlux(field string, surf int) float64 {
	d := o.dom
	st := d.Sol
	c := d.Msh.SurfCell(surf)
	node, _ := d.Msh.SurfNode(surf)
	nor := d.Msh.SurfNormal(surf)
	h := d.Msh.CellLen(c)
	mat := d.CellMat[c]
	Tc := (st.Temp[c] + st.Temp[c+1]) / 2.0
	dTdx := (st.Temp[c+1] - st.Temp[c]) / h
	if field == "T" {
		return mat.Conductivity(Tc) * dTdx * nor
	}
	c0 := d.MobileCellConc(c, c)
	c1 := d.MobileCellConc(c, c+1)
	D := mat.Diffusivity(Tc)
	flux := D * (c1 - c0) / h * nor
	if o.soret && mat.HasEnthalpy() {
		cs := d.MobileCellConc(c, node)
		flux += D * cs * mat.Enthalpy(Tc) / (mdl.Rgas * Tc * Tc) * dTdx * nor
	}
	return flux
}
