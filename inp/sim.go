// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file:
// materials, traps, temperature, boundary conditions, solving parameters
// and exports. All validation that does not need the species registry
// happens here, eagerly, before any time stepping.
package inp

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/mdl"
	"github.com/gabriele-ferrero/FESTIM/msh"
)

// Data holds global data for simulations
type Data struct {
	Desc   string `json:"desc"`   // description of simulation
	DirOut string `json:"dirout"` // directory for output; e.g. /tmp/festim
	Steady bool   `json:"steady"` // steady simulation (no time-derivative terms)
	Soret  bool   `json:"soret"`  // add thermo-diffusion cross term to flux diagnostics
}

// MeshData holds the 1D mesh definition: either an explicit vertices list
// or a uniform subdivision of [xa,xb]
type MeshData struct {
	Vertices []float64 `json:"vertices"` // explicit vertex coordinates
	Xa       float64   `json:"xa"`       // uniform mesh: start
	Xb       float64   `json:"xb"`       // uniform mesh: end
	Ncells   int       `json:"ncells"`   // uniform mesh: number of cells
}

// TrapData holds the definition of one trap
type TrapData struct {

	// input
	Name      string  `json:"name"`      // name; defaults to "trap<i>"
	Energy    float64 `json:"energy"`    // detrapping energy [eV]
	Materials []int   `json:"materials"` // subdomain ids hosting this trap; empty = all
	Density   float64 `json:"density"`   // trap density (constant)
	DensFcn   string  `json:"densfunc"`  // density as f(t,x); overrides the constant
	Nu0       float64 `json:"nu0"`       // attempt frequency; 0 = default

	// extrinsic traps: density is a solved field with its own kinetics
	Type    string  `json:"type"`     // "" = intrinsic, "extrinsic" = solved density
	Phi0    float64 `json:"phi0"`     // creation rate pre-factor
	NMax    float64 `json:"nmax"`     // saturation density
	Eta     float64 `json:"eta"`      // creation efficiency
	Loss    float64 `json:"loss"`     // first-order density loss rate [1/s]
	FluxFcn string  `json:"fluxfunc"` // creation flux f(t,x)

	// derived
	DensFunc dbf.T `json:"-"`
	FluxFunc dbf.T `json:"-"`
}

// Extrinsic tells whether this trap has a solved density field
func (o *TrapData) Extrinsic() bool { return o.Type == "extrinsic" }

// BcData holds one boundary condition specification
type BcData struct {
	Species  string  `json:"species"`  // target species; "" or "solute" = mobile
	Kind     string  `json:"kind"`     // "dc", "sieverts", "flux", "recomb"
	Surfaces []int   `json:"surfaces"` // surface ids
	Fcn      string  `json:"func"`     // value function name
	Kr0      float64 `json:"Kr_0"`     // recombination coefficient pre-factor
	Er       float64 `json:"E_Kr"`     // recombination activation energy [eV]

	// derived
	Func dbf.T `json:"-"`
}

// SourceData holds a volumetric source term specification
type SourceData struct {
	Species string `json:"species"` // target species; "" or "solute" = mobile
	Fcn     string `json:"func"`    // source value f(t,x)

	// derived
	Func dbf.T `json:"-"`
}

// TempData holds the temperature definition
type TempData struct {
	Kind      string    `json:"type"`                // "expression", "solve_stationary", "solve_transient"
	Fcn       string    `json:"value"`               // T(t,x) for "expression"; initial condition otherwise
	SourceFcn string    `json:"source"`              // volumetric heat source (solved kinds)
	Bcs       []*BcData `json:"boundary_conditions"` // "dc"/"flux" conditions for solved kinds

	// derived
	Func       dbf.T `json:"-"`
	SourceFunc dbf.T `json:"-"`
}

// AdaptData holds the adaptive stepsize policy
type AdaptData struct {
	Growth    float64 `json:"growth"`            // multiplier on success within the iteration band (>1)
	Shrink    float64 `json:"shrink"`            // multiplier on divergence (0<shrink<1)
	DtMin     float64 `json:"dtmin"`             // minimum stepsize
	DtMax     float64 `json:"dtmax"`             // maximum stepsize; 0 = unbounded
	NitTarget int     `json:"nittarget"`         // grow when iteration count <= this band
	TStop     float64 `json:"t_stop"`            // freeze stepsize after this time; 0 = disabled
	StopMax   float64 `json:"stepsize_stop_max"` // frozen stepsize cap after t_stop
}

// SolverData holds nonlinear solver and time control data
type SolverData struct {
	FinalTime float64    `json:"final_time"`        // final simulation time
	Dt        float64    `json:"initial_stepsize"`  // initial stepsize
	Atol      float64    `json:"atol"`              // absolute tolerance on the residual norm
	Rtol      float64    `json:"rtol"`              // relative tolerance on the residual norm
	NmaxIt    int        `json:"nmaxit"`            // max Newton iterations per attempt
	NdvgMax   int        `json:"ndvgmax"`           // max number of continued divergence
	NtryMax   int        `json:"ntrymax"`           // retry budget per step (with stepsize shrinking)
	Adapt     *AdaptData `json:"adaptive_stepsize"` // adaptive stepsize policy; nil = constant dt
}

// SetDefault sets default values
func (o *SolverData) SetDefault() {
	o.Atol = 1e-6
	o.Rtol = 1e-6
	o.NmaxIt = 20
	o.NdvgMax = 20
	o.NtryMax = 10
}

// DQSpec holds one derived quantity specification
type DQSpec struct {
	Kind     string `json:"kind"`     // surface_flux, total_volume, total_surface, average_volume, minimum_volume, maximum_volume
	Field    string `json:"field"`    // "solute", "T", "retention" or trap index/name
	Surfaces []int  `json:"surfaces"` // surface ids (surface kinds)
	Volumes  []int  `json:"volumes"`  // subdomain ids (volume kinds); empty = whole domain
}

// ExportsData holds output specifications
type ExportsData struct {
	Derived      []*DQSpec `json:"derived_quantities"` // derived quantity table
	ComputeEvery int       `json:"compute_every"`      // evaluate derived quantities every N steps
	TxtFields    []string  `json:"txt_fields"`         // nodal field profiles to write as text
	DtOut        float64   `json:"dtout"`              // period of field snapshots; 0 = every step
	Parameters   bool      `json:"parameters"`         // echo input parameters (best effort)
}

// IniCondData holds an initial condition for one field
type IniCondData struct {
	Field string `json:"field"` // "solute" or trap index/name
	Fcn   string `json:"func"`  // initial value f(x)

	// derived
	Func dbf.T `json:"-"`
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data        Data            `json:"data"`
	Functions   FuncsData       `json:"functions"`
	MeshData    MeshData        `json:"mesh"`
	Materials   []*mdl.Material `json:"materials"`
	Traps       []*TrapData     `json:"traps"`
	Temperature TempData        `json:"temperature"`
	BCs         []*BcData       `json:"boundary_conditions"`
	Sources     []*SourceData   `json:"sources"`
	IniConds    []*IniCondData  `json:"initial_conditions"`
	Solver      SolverData      `json:"solver"`
	Exports     ExportsData     `json:"exports"`

	// derived
	Key    string    // simulation key; e.g. mysim01.sim => mysim01
	DirOut string    // directory to save results
	MatDb  *mdl.Db   // materials database indexed by subdomain id
	Msh    *msh.Mesh // the 1D mesh
}

// ReadSim reads all simulation data from a .sim JSON file
func ReadSim(simfilepath string) (o *Simulation, err error) {
	b, err := os.ReadFile(simfilepath)
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q", simfilepath)
	}
	o = new(Simulation)
	o.Solver.SetDefault()
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}
	o.Key = io.FnKey(filepath.Base(simfilepath))
	err = o.Derive()
	if err != nil {
		return nil, err
	}
	return
}

// Derive computes derived data: defaults, function resolution, materials
// database and mesh. It must be called once before the simulation is built;
// ReadSim calls it. All failures here are fatal setup errors.
func (o *Simulation) Derive() (err error) {

	// output directory
	if o.Key == "" {
		o.Key = "sim"
	}
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/festim/" + o.Key
	}

	// solver data
	if o.Solver.Atol == 0 && o.Solver.Rtol == 0 {
		o.Solver.SetDefault()
	}
	if o.Solver.NmaxIt == 0 {
		o.Solver.NmaxIt = 20
	}
	if o.Solver.NdvgMax == 0 {
		o.Solver.NdvgMax = 20
	}
	if o.Solver.NtryMax == 0 {
		o.Solver.NtryMax = 10
	}
	if !o.Data.Steady {
		if o.Solver.FinalTime <= 0 {
			return chk.Err("final_time must be positive for transient simulations")
		}
		if o.Solver.Dt <= 0 {
			return chk.Err("initial_stepsize must be positive for transient simulations")
		}
	}

	// materials database
	o.MatDb, err = mdl.NewDb(o.Materials)
	if err != nil {
		return
	}

	// mesh
	verts := o.MeshData.Vertices
	if len(verts) == 0 {
		if o.MeshData.Ncells < 1 || o.MeshData.Xb <= o.MeshData.Xa {
			return chk.Err("mesh needs either a vertices list or {xa, xb, ncells}")
		}
		verts = msh.Uniform(o.MeshData.Xa, o.MeshData.Xb, o.MeshData.Ncells)
	}
	o.Msh, err = msh.New(verts, o.MatDb)
	if err != nil {
		return
	}

	// temperature
	if o.Temperature.Kind == "" {
		o.Temperature.Kind = "expression"
	}
	switch o.Temperature.Kind {
	case "expression", "solve_stationary", "solve_transient":
	default:
		return chk.Err("temperature type %q is unknown", o.Temperature.Kind)
	}
	if o.Temperature.Fcn == "" {
		return chk.Err("temperature needs a value function")
	}
	o.Temperature.Func, err = o.Functions.Get(o.Temperature.Fcn)
	if err != nil {
		return
	}
	if o.Temperature.Kind != "expression" {
		err = o.MatDb.CheckThermal(o.Temperature.Kind == "solve_transient")
		if err != nil {
			return
		}
		if o.Temperature.SourceFcn != "" {
			o.Temperature.SourceFunc, err = o.Functions.Get(o.Temperature.SourceFcn)
			if err != nil {
				return
			}
		}
		for _, bc := range o.Temperature.Bcs {
			if bc.Kind != "dc" && bc.Kind != "flux" {
				return chk.Err("temperature boundary condition kind %q is unknown", bc.Kind)
			}
			bc.Func, err = o.Functions.Get(bc.Fcn)
			if err != nil {
				return
			}
		}
	}

	// traps
	for i, t := range o.Traps {
		if t.Name == "" {
			t.Name = io.Sf("trap%d", i+1)
		}
		if t.Nu0 == 0 {
			t.Nu0 = mdl.Nu0
		}
		if t.DensFcn != "" {
			t.DensFunc, err = o.Functions.Get(t.DensFcn)
			if err != nil {
				return
			}
		}
		if t.Extrinsic() {
			if t.NMax <= 0 {
				return chk.Err("extrinsic trap %q needs a positive nmax", t.Name)
			}
			if t.Eta == 0 {
				t.Eta = 1
			}
			if t.FluxFcn != "" {
				t.FluxFunc, err = o.Functions.Get(t.FluxFcn)
				if err != nil {
					return
				}
			}
		} else if t.Density <= 0 && t.DensFcn == "" {
			return chk.Err("trap %q needs a positive density or a density function", t.Name)
		}
	}

	// boundary conditions
	for _, bc := range o.BCs {
		switch bc.Kind {
		case "dc", "sieverts", "flux", "recomb":
		default:
			return chk.Err("boundary condition kind %q is unknown", bc.Kind)
		}
		if len(bc.Surfaces) == 0 {
			return chk.Err("boundary condition (%q on %q) needs surfaces", bc.Kind, bc.Species)
		}
		if bc.Kind == "recomb" {
			if bc.Kr0 == 0 {
				return chk.Err("recombination boundary condition needs Kr_0")
			}
			if bc.Fcn == "" {
				bc.Fcn = "zero"
			}
		}
		bc.Func, err = o.Functions.Get(bc.Fcn)
		if err != nil {
			return
		}
	}

	// sources and initial conditions
	for _, s := range o.Sources {
		s.Func, err = o.Functions.Get(s.Fcn)
		if err != nil {
			return
		}
	}
	for _, ic := range o.IniConds {
		ic.Func, err = o.Functions.Get(ic.Fcn)
		if err != nil {
			return
		}
	}

	// exports
	if o.Exports.ComputeEvery < 1 {
		o.Exports.ComputeEvery = 1
	}
	return
}
