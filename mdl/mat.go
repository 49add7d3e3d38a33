// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mdl implements material property laws for hydrogen transport:
// Arrhenius-type diffusivity and solubility, thermal properties and the
// enthalpy of transport. Evaluation is pure and stateless.
package mdl

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// physical constants
const (
	KB   = 8.6e-5 // Boltzmann constant [eV/K]
	Rgas = 8.314  // gas constant [J/(mol·K)]
	Nu0  = 1e13   // default attempt frequency for detrapping [1/s]
)

// PropFunc is a custom property law evaluated at temperature T. It overrides
// the corresponding Arrhenius/constant value when set.
type PropFunc func(T float64) float64

// Material holds the physical properties of one subdomain
type Material struct {

	// input
	Name    string    `json:"name"`    // name of material
	Tag     int       `json:"id"`      // subdomain tag (1-based)
	Borders []float64 `json:"borders"` // [xa,xb] interval occupied by this material

	// diffusivity and solubility laws
	D0    float64 `json:"D_0"` // diffusivity pre-exponential factor [m²/s]
	Ediff float64 `json:"E_D"` // diffusion activation energy [eV]
	S0    float64 `json:"S_0"` // solubility pre-exponential factor
	Es    float64 `json:"E_S"` // solubility activation energy [eV]

	// trap-kinetics geometry
	Alpha float64 `json:"alpha"` // lattice spacing [m]
	Beta  float64 `json:"beta"`  // number of trapping sites per lattice site

	// thermal properties
	Kth float64 `json:"thermal_cond"`  // thermal conductivity [W/(m·K)]
	Cp  float64 `json:"heat_capacity"` // heat capacity [J/(kg·K)]
	Rho float64 `json:"rho"`           // density [kg/m³]

	// enthalpy of transport (Soret)
	FreeEnthalpy float64 `json:"free_enthalpy"` // H = free_enthalpy + entropy·T
	Entropy      float64 `json:"entropy"`

	// custom property laws; override the values above when non-nil
	DFunc   PropFunc `json:"-"`
	SFunc   PropFunc `json:"-"`
	KthFunc PropFunc `json:"-"`
	CpFunc  PropFunc `json:"-"`
	RhoFunc PropFunc `json:"-"`
}

// arrhenius computes A·exp(−E/(kB·T))
func arrhenius(A, E, T float64) float64 {
	return A * math.Exp(-E/(KB*T))
}

// Diffusivity returns D(T)
func (o *Material) Diffusivity(T float64) float64 {
	if o.DFunc != nil {
		return o.DFunc(T)
	}
	return arrhenius(o.D0, o.Ediff, T)
}

// HasSolubility tells whether this material carries a solubility law
func (o *Material) HasSolubility() bool {
	return o.SFunc != nil || o.S0 > 0
}

// Solubility returns S(T); call only if HasSolubility
func (o *Material) Solubility(T float64) float64 {
	if o.SFunc != nil {
		return o.SFunc(T)
	}
	return arrhenius(o.S0, o.Es, T)
}

// HasThermal tells whether thermal properties are available
func (o *Material) HasThermal() bool {
	return o.KthFunc != nil || o.Kth > 0
}

// Conductivity returns the thermal conductivity at T
func (o *Material) Conductivity(T float64) float64 {
	if o.KthFunc != nil {
		return o.KthFunc(T)
	}
	return o.Kth
}

// Capacity returns the heat capacity at T
func (o *Material) Capacity(T float64) float64 {
	if o.CpFunc != nil {
		return o.CpFunc(T)
	}
	return o.Cp
}

// Density returns the mass density at T
func (o *Material) Density(T float64) float64 {
	if o.RhoFunc != nil {
		return o.RhoFunc(T)
	}
	return o.Rho
}

// HasEnthalpy tells whether the enthalpy-of-transport law is available
func (o *Material) HasEnthalpy() bool {
	return o.FreeEnthalpy != 0 || o.Entropy != 0
}

// Enthalpy returns the enthalpy of transport Q(T)
func (o *Material) Enthalpy(T float64) float64 {
	return o.FreeEnthalpy + o.Entropy*T
}

// Db implements a database of materials indexed by subdomain tag
type Db struct {
	Materials []*Material
	tag2mat   map[int]*Material
}

// NewDb builds the materials database. Tags default to the 1-based position
// in the list when not given. Duplicate tags or names are a setup error.
func NewDb(mats []*Material) (db *Db, err error) {
	if len(mats) == 0 {
		return nil, chk.Err("at least one material is required")
	}
	db = &Db{Materials: mats, tag2mat: make(map[int]*Material)}
	names := make(map[string]bool)
	for i, m := range mats {
		if m.Tag == 0 {
			m.Tag = i + 1
		}
		if _, ok := db.tag2mat[m.Tag]; ok {
			return nil, chk.Err("duplicate material for subdomain id %d", m.Tag)
		}
		if m.Name != "" {
			if names[m.Name] {
				return nil, chk.Err("duplicate material named %q", m.Name)
			}
			names[m.Name] = true
		}
		db.tag2mat[m.Tag] = m
	}
	return
}

// Get returns the material of one subdomain
func (o *Db) Get(tag int) (mat *Material, err error) {
	mat, ok := o.tag2mat[tag]
	if !ok {
		err = chk.Err("no material registered for subdomain id %d", tag)
	}
	return
}

// ChemPotential tells whether the chemical-potential change of variable is
// active. Solubility laws must be defined for either all or no materials;
// a mixed definition is a setup error.
func (o *Db) ChemPotential() (active bool, err error) {
	n := 0
	for _, m := range o.Materials {
		if m.HasSolubility() {
			n++
		}
	}
	if n > 0 && n != len(o.Materials) {
		err = chk.Err("solubility must be defined for all materials or none; got %d of %d", n, len(o.Materials))
		return
	}
	return n > 0, nil
}

// CheckThermal verifies the thermal properties needed to solve the heat
// equation. Transient runs additionally need heat capacity and density.
func (o *Db) CheckThermal(transient bool) (err error) {
	for _, m := range o.Materials {
		if !m.HasThermal() {
			return chk.Err("material %q has no thermal conductivity but the temperature is solved", m.Name)
		}
		if transient {
			if m.Capacity(300) <= 0 || m.Density(300) <= 0 {
				return chk.Err("material %q needs heat_capacity and rho for transient heat transfer", m.Name)
			}
		}
	}
	return
}
