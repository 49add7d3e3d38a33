// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import "strconv"

// species roles
const (
	RoleMobile = iota // the mobile hydrogen concentration
	RoleTrap          // a trapped concentration
)

// Species holds one concentration component of the coupled system
type Species struct {
	Id      int    // component id; 0 = mobile, 1..ntraps = traps
	Name    string // "solute" for the mobile species, trap name otherwise
	Role    int    // RoleMobile or RoleTrap
	TrapIdx int    // index into Domain.Traps (RoleTrap only)
}

// Registry holds the ordered list of solved concentration components.
// Component 0 is always the mobile species; traps follow in config order.
type Registry struct {
	All    []*Species
	byName map[string]*Species
}

// NewRegistry returns a registry with the mobile species pre-registered
func NewRegistry() (o *Registry) {
	o = &Registry{byName: make(map[string]*Species)}
	s := &Species{Id: 0, Name: "solute", Role: RoleMobile, TrapIdx: -1}
	o.All = append(o.All, s)
	o.byName[s.Name] = s
	return
}

// AddTrap registers one trapped concentration. Duplicate names are an error.
func (o *Registry) AddTrap(name string, trapIdx int) (s *Species, err error) {
	if _, ok := o.byName[name]; ok {
		return nil, setupErr("duplicate species named %q", name)
	}
	s = &Species{Id: len(o.All), Name: name, Role: RoleTrap, TrapIdx: trapIdx}
	o.All = append(o.All, s)
	o.byName[name] = s
	return
}

// N returns the number of registered components
func (o *Registry) N() int { return len(o.All) }

// Mobile returns the mobile species
func (o *Registry) Mobile() *Species { return o.All[0] }

// Find resolves a species reference: "", "solute", "mobile" or "0" give the
// mobile species; trap names or 1-based trap indices give traps. An unknown
// reference is a setup error.
func (o *Registry) Find(ref string) (s *Species, err error) {
	switch ref {
	case "", "solute", "mobile":
		return o.All[0], nil
	}
	if s, ok := o.byName[ref]; ok {
		return s, nil
	}
	if id, cerr := strconv.Atoi(ref); cerr == nil {
		if id >= 0 && id < len(o.All) {
			return o.All[id], nil
		}
	}
	return nil, setupErr("unknown species %q", ref)
}
