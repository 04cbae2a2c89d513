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

package solver

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/fieldmodel/trapsim"
	"github.com/fieldmodel/trapsim/pa"
)

// fakeRunner substitutes the external solver process.
type fakeRunner struct {
	output []byte
	err    error
	block  bool // wait for ctx cancellation instead of exiting
	onRun  func(args []string)

	gotName string
	gotArgs []string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.gotName = name
	r.gotArgs = args
	if r.onRun != nil {
		r.onRun(args)
	}
	if r.block {
		<-ctx.Done()
		return r.output, ctx.Err()
	}
	return r.output, r.err
}

// writeResult writes a small valid refined array where the gateway expects
// to find the solver's output.
func writeResult(t *testing.T, path string) {
	t.Helper()
	g, err := trapsim.NewGrid(3, 3, 3, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	a := trapsim.NewPotentialArray(g)
	a.SetPoint(1, 1, 1, false, 2.5)
	if err := pa.Write(a, path); err != nil {
		t.Fatal(err)
	}
}

func newTestGateway(t *testing.T, r Runner) *Gateway {
	t.Helper()
	g, err := NewWithRunner(Config{Executable: "simion"}, r)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRunRefine(t *testing.T) {
	base := filepath.Join(t.TempDir(), "trap")
	runner := &fakeRunner{}
	g := newTestGateway(t, runner)
	writeResult(t, base+".pa0")

	a, err := g.Run(context.Background(), Job{Op: OpRefine, Path: base})
	if err != nil {
		t.Fatal(err)
	}
	if a.Nx != 3 || a.Potential(1, 1, 1) != 2.5 {
		t.Error("gateway did not load the solver's output array")
	}
	if g.State() != Succeeded {
		t.Errorf("state = %v, want succeeded", g.State())
	}

	wantArgs := []string{"--nogui", "refine", "--convergence=0.001", base + ".pa#"}
	if runner.gotName != "simion" || !reflect.DeepEqual(runner.gotArgs, wantArgs) {
		t.Errorf("command = %s %v, want simion %v", runner.gotName, runner.gotArgs, wantArgs)
	}
}

func TestRunFastAdjust(t *testing.T) {
	base := filepath.Join(t.TempDir(), "trap")
	runner := &fakeRunner{}
	g := newTestGateway(t, runner)
	writeResult(t, base+".pa0")

	_, err := g.Run(context.Background(), Job{
		Op:       OpFastAdjust,
		Path:     base,
		Voltages: map[int]float64{2: -10, 1: 10},
	})
	if err != nil {
		t.Fatal(err)
	}

	wantArgs := []string{"--nogui", "fastadj", base + ".pa0", "1=10,2=-10"}
	if !reflect.DeepEqual(runner.gotArgs, wantArgs) {
		t.Errorf("args = %v, want %v", runner.gotArgs, wantArgs)
	}
}

func TestRunProcessFailure(t *testing.T) {
	runner := &fakeRunner{output: []byte("singularity detected"), err: errors.New("exit status 3")}
	g := newTestGateway(t, runner)

	_, err := g.Run(context.Background(), Job{Op: OpRefine, Path: "trap"})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got %v", err)
	}
	if string(execErr.Output) != "singularity detected" {
		t.Errorf("diagnostics not captured: %q", execErr.Output)
	}
	if g.State() != Failed {
		t.Errorf("state = %v, want failed", g.State())
	}
}

func TestRunMissingOutput(t *testing.T) {
	// The process exits cleanly but leaves no readable output array.
	base := filepath.Join(t.TempDir(), "trap")
	g := newTestGateway(t, &fakeRunner{})

	_, err := g.Run(context.Background(), Job{Op: OpRefine, Path: base})
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecError, got %v", err)
	}
	if g.State() != Failed {
		t.Errorf("state = %v, want failed", g.State())
	}
}

func TestRunTimeout(t *testing.T) {
	g := newTestGateway(t, &fakeRunner{block: true, output: []byte("iterating")})

	start := time.Now()
	_, err := g.Run(context.Background(), Job{
		Op:      OpRefine,
		Path:    "trap",
		Timeout: 100 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("timeout took %v, want well under 2s", elapsed)
	}
	if string(timeoutErr.Output) != "iterating" {
		t.Errorf("partial output not preserved: %q", timeoutErr.Output)
	}
	if g.State() != TimedOut {
		t.Errorf("state = %v, want timed out", g.State())
	}
}

func TestRunRejectsConcurrentReuse(t *testing.T) {
	g := newTestGateway(t, &fakeRunner{block: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		g.Run(ctx, Job{Op: OpRefine, Path: "trap"})
		close(done)
	}()
	<-started
	for g.State() != Running { // wait until the first job is in flight
		time.Sleep(time.Millisecond)
	}

	_, err := g.Run(context.Background(), Job{Op: OpRefine, Path: "other"})
	if !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	cancel()
	<-done
}

func TestNewRequiresExecutable(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing executable path")
	}
}

func TestVoltageLine(t *testing.T) {
	got := voltageLine(map[int]float64{3: 0.5, 1: 10, 2: -10})
	if got != "1=10,2=-10,3=0.5" {
		t.Errorf("voltageLine = %q", got)
	}
}

func TestResultPath(t *testing.T) {
	if p := resultPath(OpRefine, "trap.pa#"); p != "trap.pa0" {
		t.Errorf("refine result = %q, want trap.pa0", p)
	}
	if p := resultPath(OpFastAdjust, "trap.pa0"); p != "trap.pa0" {
		t.Errorf("fastadj result = %q, want trap.pa0", p)
	}
}
