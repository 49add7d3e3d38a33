// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// FESTIM simulates transient hydrogen transport with trapping in 1D
// multi-material samples, driven by a (.sim) JSON input file.
package main

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/fem"
	"github.com/gabriele-ferrero/FESTIM/inp"
	"github.com/gabriele-ferrero/FESTIM/out"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// input data
	simfn, _ := io.ArgToFilename(0, "examples/permeation", ".sim", true)
	verbose := io.ArgToBool(1, true)
	io.Pf("\n%v\n", io.ArgsTable("FESTIM: hydrogen transport simulator",
		"simulation filename", "simfn", simfn,
		"show messages", "verbose", verbose,
	))
	sim, err := inp.ReadSim(simfn)
	if err != nil {
		chk.Panic("cannot read simulation input:\n%v", err)
	}

	// allocate simulation and post-processing
	m, err := fem.NewMain(sim, verbose)
	if err != nil {
		chk.Panic("cannot allocate simulation:\n%v", err)
	}
	var eng *out.Engine
	if len(sim.Exports.Derived) > 0 {
		eng, err = out.NewEngine(m.Dom)
		if err != nil {
			chk.Panic("cannot set up derived quantities:\n%v", err)
		}
		m.AddObserver(eng)
	}
	if len(sim.Exports.TxtFields) > 0 {
		pw, err := out.NewProfileWriter(m.Dom, sim.DirOut, sim.Exports.TxtFields, sim.Exports.DtOut)
		if err != nil {
			chk.Panic("cannot set up field profiles:\n%v", err)
		}
		m.AddObserver(pw)
	}

	// run
	err = m.Run()
	if err != nil {
		io.PfRed("Failed:\n%v\n", err)
		return
	}

	// results
	if eng != nil {
		err = out.WriteDerivedCSV(sim.DirOut, sim.Key, eng)
		if err != nil {
			chk.Panic("cannot write derived quantities:\n%v", err)
		}
	}
	if sim.Exports.Parameters {
		out.WriteParams(sim.DirOut, sim)
	}
	io.PfGreen("Success: results saved in %s\n", sim.DirOut)
}
