// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/fem"
	"github.com/gabriele-ferrero/FESTIM/inp"
)

// WriteDerivedCSV writes the derived quantity table of one engine to
// <dirout>/<key>_derived_quantities.csv
func WriteDerivedCSV(dirout, key string, e *Engine) (err error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err = w.Write(e.Header); err != nil {
		return chk.Err("cannot write derived quantities header:\n%v", err)
	}
	rec := make([]string, len(e.Header))
	for _, row := range e.Rows {
		for i, v := range row {
			rec[i] = strconv.FormatFloat(v, 'e', 10, 64)
		}
		if err = w.Write(rec); err != nil {
			return chk.Err("cannot write derived quantities row:\n%v", err)
		}
	}
	w.Flush()
	io.WriteFileD(dirout, key+"_derived_quantities.csv", &buf)
	return
}

// ProfileWriter writes nodal field profiles as text files, one snapshot per
// output period. It observes the stepping loop like the derived quantity
// engine.
type ProfileWriter struct {
	dom    *fem.Domain
	fields []string
	dirout string
	dtOut  float64 // snapshot period; 0 = every accepted step
	tnext  float64
}

// NewProfileWriter validates the field references and builds the writer
func NewProfileWriter(dom *fem.Domain, dirout string, fields []string, dtOut float64) (o *ProfileWriter, err error) {
	for _, f := range fields {
		if err = dom.CheckFieldRef(f); err != nil {
			return nil, err
		}
	}
	return &ProfileWriter{dom: dom, fields: fields, dirout: dirout, dtOut: dtOut}, nil
}

// OnStep writes one "<field>_<t>s.txt" snapshot per field when the output
// period elapses
func (o *ProfileWriter) OnStep(t float64) (err error) {
	if len(o.fields) == 0 {
		return
	}
	if t < o.tnext {
		return
	}
	o.tnext = t + o.dtOut
	for _, f := range o.fields {
		vals, e := o.dom.FieldNodal(f)
		if e != nil {
			return e
		}
		var buf bytes.Buffer
		io.Ff(&buf, "x %s\n", f)
		for n, v := range vals {
			io.Ff(&buf, "%23.15e %23.15e\n", o.dom.Msh.V[n], v)
		}
		io.WriteFileD(o.dirout, io.Sf("%s_%gs.txt", f, t), &buf)
	}
	return
}

// WriteParams echoes the input data as JSON next to the results. Best
// effort: failures are ignored.
func WriteParams(dirout string, sim *inp.Simulation) {
	b, err := json.MarshalIndent(sim, "", "  ")
	if err != nil {
		return
	}
	var buf bytes.Buffer
	buf.Write(b)
	io.WriteFileD(dirout, "parameters.json", &buf)
}
