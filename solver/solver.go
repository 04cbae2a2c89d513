/*
Copyright © 2026 the TrapSim authors.
This file is part of TrapSim.

TrapSim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TrapSim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TrapSim.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package solver drives the external field-solver executable: it launches
// the solver on a previously written potential-array file, waits for it to
// finish within a time budget, and loads the refined array it produces.
//
// The solver is an expensive external resource, so the gateway never
// retries; failures carry the process diagnostics and the caller decides
// whether to resubmit.
package solver

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fieldmodel/trapsim"
	"github.com/fieldmodel/trapsim/pa"
)

// Operation selects what the solver does with the array.
type Operation int

const (
	// OpRefine computes the potential field over the free cells of a raw
	// (.pa#) array, producing a refined (.pa0) array.
	OpRefine Operation = iota
	// OpFastAdjust rapidly recomputes a refined (.pa0) array for new
	// electrode voltages, reusing the prior geometry solve.
	OpFastAdjust
)

func (o Operation) String() string {
	if o == OpFastAdjust {
		return "fastadj"
	}
	return "refine"
}

// DefaultConvergence is the refine convergence objective used when neither
// the configuration nor the job specifies one.
const DefaultConvergence = 1e-3

// Config holds the gateway configuration. It is passed in explicitly; the
// package keeps no global solver state.
type Config struct {
	// Executable is the path to the external solver binary.
	Executable string
	// Convergence is the default refine convergence objective.
	Convergence float64
	// Timeout is the default time budget per job. Zero means no limit.
	Timeout time.Duration
	// Log receives progress messages. Defaults to the standard logger.
	Log logrus.FieldLogger
}

// Job is a single solver invocation.
type Job struct {
	Op Operation
	// Path is the array file path; the .pa# (refine) or .pa0 (fast
	// adjust) extension is appended if missing.
	Path string
	// Voltages maps electrode numbers to voltages for a fast adjust.
	Voltages map[int]float64
	// Convergence overrides the configured refine convergence when
	// positive.
	Convergence float64
	// Timeout overrides the configured time budget when positive.
	Timeout time.Duration
}

// State is the gateway's position in its job lifecycle.
type State int

const (
	Idle State = iota
	Launching
	Running
	Succeeded
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Launching:
		return "launching"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed out"
	default:
		return "idle"
	}
}

// ExecError indicates that the solver process failed, or exited cleanly
// without producing a readable output array.
type ExecError struct {
	ExitCode int
	Output   []byte // captured stdout+stderr
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("solver: execution failed (exit code %d): %v; output: %s",
		e.ExitCode, e.Err, e.Output)
}

func (e *ExecError) Unwrap() error { return e.Err }

// TimeoutError indicates that the solver exceeded its time budget and was
// terminated. Output preserves whatever the process wrote before the kill;
// it is kept out of the error message because partial solver output can be
// arbitrarily large.
type TimeoutError struct {
	Timeout time.Duration
	Output  []byte // captured stdout+stderr up to termination
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("solver: terminated after exceeding the %v time budget", e.Timeout)
}

// ErrBusy is returned when Run is called on a gateway that already has a
// job in flight. Use one gateway per concurrent job.
var ErrBusy = errors.New("solver: gateway already has a job in flight")

// Runner launches the solver process and waits for it to exit, honoring
// ctx for termination. Tests substitute a fake so the gateway logic runs
// without the real executable.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (output []byte, err error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Gateway runs solver jobs one at a time. The zero value is not usable;
// create gateways with New.
type Gateway struct {
	cfg    Config
	runner Runner
	log    logrus.FieldLogger

	mu    sync.Mutex
	state State
}

// New creates a gateway for the configured solver executable.
func New(cfg Config) (*Gateway, error) {
	if cfg.Executable == "" {
		return nil, errors.New("solver: no executable configured")
	}
	if cfg.Convergence == 0 {
		cfg.Convergence = DefaultConvergence
	}
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{cfg: cfg, runner: execRunner{}, log: log}, nil
}

// NewWithRunner is like New but substitutes the process launcher, so the
// gateway logic can be exercised without the real executable.
func NewWithRunner(cfg Config, r Runner) (*Gateway, error) {
	g, err := New(cfg)
	if err != nil {
		return nil, err
	}
	g.runner = r
	return g, nil
}

// State returns the gateway's current lifecycle state.
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gateway) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// begin transitions Idle (or a terminal state) to Launching, refusing
// concurrent reuse.
func (g *Gateway) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Launching || g.state == Running {
		return ErrBusy
	}
	g.state = Launching
	return nil
}

// args builds the solver command line for job, along with the input file
// path it refers to.
func (g *Gateway) args(job Job) (input string, args []string) {
	switch job.Op {
	case OpFastAdjust:
		input = pa.AddRefinedExtension(job.Path)
		args = []string{"--nogui", "fastadj", input, voltageLine(job.Voltages)}
	default:
		c := job.Convergence
		if c <= 0 {
			c = g.cfg.Convergence
		}
		input = pa.AddRawExtension(job.Path)
		args = []string{"--nogui", "refine", fmt.Sprintf("--convergence=%g", c), input}
	}
	return input, args
}

// resultPath returns where the solver leaves its output: a refine writes a
// .pa0 next to the .pa# input, a fast adjust rewrites its input in place.
func resultPath(op Operation, input string) string {
	if op == OpRefine {
		return pa.AddRefinedExtension(strings.TrimSuffix(input, pa.RawExtension))
	}
	return input
}

// voltageLine formats a voltage map the way the solver's fastadj mode
// expects it: "1=10,2=-10", in electrode-number order.
func voltageLine(voltages map[int]float64) string {
	ids := make([]int, 0, len(voltages))
	for id := range voltages {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for n, id := range ids {
		parts[n] = fmt.Sprintf("%d=%g", id, voltages[id])
	}
	return strings.Join(parts, ",")
}

// Run executes job and returns the refined potential array the solver
// produced. It blocks until the process exits or the time budget runs out;
// on timeout the process is terminated and the (possibly partial) output
// file is not loaded. Run returns ErrBusy if a job is already in flight.
func (g *Gateway) Run(ctx context.Context, job Job) (*trapsim.PotentialArray, error) {
	if err := g.begin(); err != nil {
		return nil, err
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = g.cfg.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	input, args := g.args(job)
	log := g.log.WithFields(logrus.Fields{"op": job.Op.String(), "file": input})
	log.Info("starting solver")

	g.setState(Running)
	start := time.Now()
	out, err := g.runner.Run(ctx, g.cfg.Executable, args...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			g.setState(TimedOut)
			log.WithField("timeout", timeout).Warn("solver timed out")
			return nil, &TimeoutError{Timeout: timeout, Output: out}
		}
		g.setState(Failed)
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		log.WithField("exit_code", code).Warn("solver failed")
		return nil, &ExecError{ExitCode: code, Output: out, Err: err}
	}

	result, err := pa.Read(resultPath(job.Op, input))
	if err != nil {
		g.setState(Failed)
		return nil, &ExecError{Output: out,
			Err: fmt.Errorf("solver exited successfully but its output is unreadable: %w", err)}
	}
	g.setState(Succeeded)
	log.WithField("duration", time.Since(start)).Info("solver finished")
	return result, nil
}
