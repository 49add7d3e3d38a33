// Copyright 2020 The Festim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"

	"github.com/gabriele-ferrero/FESTIM/inp"
)

// StepObserver is notified after every accepted step (and once at t=0),
// before the state is committed; post-processing hangs off this interface
type StepObserver interface {
	OnStep(t float64) error
}

// Main implements the time stepping loop, orchestrating the per-step
// sequence: advance the candidate time, refresh the temperature and the
// boundary values, solve the coupled system with retry on failure, advance
// the extrinsic trap densities, notify the observers, commit, and pick the
// next stepsize. Steady simulations run a single solve.
type Main struct {
	Sim       *inp.Simulation // input data
	Dom       *Domain         // the domain
	Dtc       *Stepsize       // stepsize controller (transient only)
	Nl        *NlSolver       // nonlinear solver over the species equations
	Observers []StepObserver  // post-processing observers
	ShowMsg   bool            // print progress messages
}

// NewMain allocates the simulation. Every setup validation runs here; a nil
// error means the only failures left are convergence and stepsize ones.
func NewMain(sim *inp.Simulation, verbose bool) (o *Main, err error) {
	o = &Main{Sim: sim, ShowMsg: verbose}
	o.Dom, err = NewDomain(sim)
	if err != nil {
		return nil, err
	}
	sd := &sim.Solver
	o.Nl = NewNlSolver(o.Dom.Ny, sd.Atol, sd.Rtol, sd.NmaxIt, sd.NdvgMax)
	if !sim.Data.Steady {
		o.Dtc, err = NewStepsize(sd)
		if err != nil {
			return nil, err
		}
	}
	return
}

// AddObserver registers one post-processing observer
func (o *Main) AddObserver(obs StepObserver) {
	o.Observers = append(o.Observers, obs)
}

// Run performs the simulation
func (o *Main) Run() (err error) {
	st := o.Dom.Sol

	// steady: one solve; a diverged solve is reported, not fatal
	if o.Dom.Steady {
		st.T, st.Dt = 0, 1
		if err = o.Dom.Temp.Update(0); err != nil {
			return
		}
		o.Dom.Bcs.Refresh(0, st)
		_, serr := o.Nl.Solve(o.Dom.Form.Eval, st.Y)
		if serr != nil {
			if _, ok := serr.(*ConvergenceError); !ok {
				return serr
			}
			io.PfRed("steady solve did not converge: %v\n", serr)
		}
		if err = o.notify(0); err != nil {
			return
		}
		st.Commit()
		return
	}

	// transient
	tf := o.Sim.Solver.FinalTime
	if err = o.notify(0); err != nil {
		return
	}
	tacc := 0.0
	for tacc < tf*(1.0-1e-14) {
		dt := o.Dtc.Value
		if tacc+dt > tf {
			dt = tf - tacc // land exactly on the final time
		}
		var nit int
		for itry := 0; ; itry++ {
			st.T, st.Dt = tacc+dt, dt
			if err = o.Dom.Temp.Update(st.T); err == nil {
				o.Dom.Bcs.Refresh(st.T, st)
				nit, err = o.Nl.Solve(o.Dom.Form.Eval, st.Y)
				if err == nil {
					break
				}
			}
			st.Rollback()
			if o.Dtc == nil || !o.Dtc.Adaptive || itry+1 >= o.Sim.Solver.NtryMax {
				return &ConvergenceError{
					Msg:  io.Sf("solve failed at t=%g after %d attempt(s):\n%v", st.T, itry+1, err),
					Ntry: itry + 1,
				}
			}
			if rerr := o.Dtc.Reduce(); rerr != nil {
				return rerr
			}
			dt = o.Dtc.Value
			if tacc+dt > tf {
				dt = tf - tacc
			}
		}

		// extrinsic trap densities, observers, commit
		for _, tr := range o.Dom.Traps {
			if tr.Extrinsic {
				if err = tr.StepDensity(st, o.Dom.Msh.V); err != nil {
					return
				}
			}
		}
		if err = o.notify(st.T); err != nil {
			return
		}
		st.Commit()
		tacc = st.T
		if o.ShowMsg {
			io.Pf("\r%5.1f %%   t = %-14g dt = %-12g nit = %2d ", 100*tacc/tf, tacc, dt, nit)
		}
		o.Dtc.Next(nit, tacc)
	}
	if o.ShowMsg {
		io.Pf("\n")
	}
	return
}

// notify runs all observers
func (o *Main) notify(t float64) (err error) {
	for _, obs := range o.Observers {
		if err = obs.OnStep(t); err != nil {
			return
		}
	}
	return
}
