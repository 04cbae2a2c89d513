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

package trapsim

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewGridInvalid(t *testing.T) {
	tests := []struct {
		name       string
		nx, ny, nz int
		step       float64
	}{
		{"zero step", 10, 10, 10, 0},
		{"negative step", 10, 10, 10, -0.1},
		{"zero extent", 10, 0, 10, 1},
		{"negative extent", -1, 10, 10, 1},
	}
	for _, test := range tests {
		_, err := NewGrid(test.nx, test.ny, test.nz, test.step, "xyz")
		if err == nil {
			t.Errorf("%s: expected error", test.name)
			continue
		}
		var gridErr *InvalidGridError
		if !errors.As(err, &gridErr) {
			t.Errorf("%s: expected InvalidGridError, got %v", test.name, err)
		}
	}
}

func TestCellCenter(t *testing.T) {
	// Mirrored axes start at zero; unmirrored axes are centered.
	g, err := NewGrid(11, 11, 11, 0.5, "x")
	if err != nil {
		t.Fatal(err)
	}
	p := g.CellCenter(0, 0, 0)
	want := Point3{X: 0, Y: -2.5, Z: -2.5}
	if p != want {
		t.Errorf("cell (0,0,0) center = %v, want %v", p, want)
	}
	p = g.CellCenter(10, 10, 10)
	want = Point3{X: 5, Y: 2.5, Z: 2.5}
	if p != want {
		t.Errorf("cell (10,10,10) center = %v, want %v", p, want)
	}
	p = g.CellCenter(2, 5, 5)
	want = Point3{X: 1, Y: 0, Z: 0}
	if p != want {
		t.Errorf("cell (2,5,5) center = %v, want %v", p, want)
	}
}

func TestNewGridWithPoints(t *testing.T) {
	g, err := NewGridWithPoints(10, 10, 20, 100, "xyz")
	if err != nil {
		t.Fatal(err)
	}
	if g.Nx != 100 || g.Ny != 100 || g.Nz != 200 {
		t.Errorf("extents = (%d,%d,%d), want (100,100,200)", g.Nx, g.Ny, g.Nz)
	}
	if g.Dx != 0.1 {
		t.Errorf("step = %g, want 0.1", g.Dx)
	}

	if _, err := NewGridWithPoints(10, 10, 10, 0, "xyz"); err == nil {
		t.Error("expected error for zero point count")
	}
}

func TestRasterize(t *testing.T) {
	g, err := NewGrid(11, 11, 11, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	shape := &Box{Min: Point3{X: -2, Y: -2, Z: -2}, Max: Point3{X: 2, Y: 2, Z: 2}}

	cells := g.Rasterize(shape)
	if len(cells) != 5*5*5 {
		t.Errorf("got %d cells, want %d", len(cells), 5*5*5)
	}
	for _, c := range cells {
		if !shape.Contains(g.CellCenter(c.I, c.J, c.K)) {
			t.Errorf("cell %v center is outside the shape", c)
		}
	}

	// Deterministic on repeated calls.
	if !reflect.DeepEqual(cells, g.Rasterize(shape)) {
		t.Error("repeated rasterization gave a different result")
	}
}

func TestRasterizeInclusiveBoundary(t *testing.T) {
	g, err := NewGrid(11, 11, 11, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	// Box faces fall exactly on cell centers; those cells must be included.
	shape := &Box{Min: Point3{X: 0, Y: 0, Z: 0}, Max: Point3{X: 1, Y: 1, Z: 1}}
	cells := g.Rasterize(shape)
	if len(cells) != 8 {
		t.Errorf("got %d cells, want 8", len(cells))
	}
}

func TestRasterizeClipsToGrid(t *testing.T) {
	g, err := NewGrid(5, 5, 5, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	// A shape much bigger than the grid stamps every cell and nothing more.
	shape := &Box{Min: Point3{X: -100, Y: -100, Z: -100}, Max: Point3{X: 100, Y: 100, Z: 100}}
	cells := g.Rasterize(shape)
	if len(cells) != 125 {
		t.Errorf("got %d cells, want 125", len(cells))
	}
}

func TestRasterizeThinShell(t *testing.T) {
	g, err := NewGrid(11, 11, 11, 1, "")
	if err != nil {
		t.Fatal(err)
	}
	// A zero-thickness shell extends outward without limit; every grid
	// cell whose center it contains must be stamped, all the way to the
	// grid edge.
	shape := &CylinderShell{R: 2, Z0: 2}
	stamped := make(map[CellIndex]bool)
	for _, c := range g.Rasterize(shape) {
		stamped[c] = true
	}

	// Cell (8,5,5) has its center at (3,0,0), beyond R but inside the shell.
	if !stamped[CellIndex{I: 8, J: 5, K: 5}] {
		t.Error("cell with center (3,0,0) not stamped although the shell contains it")
	}
	for i := 0; i < g.Nx; i++ {
		for j := 0; j < g.Ny; j++ {
			for k := 0; k < g.Nz; k++ {
				c := CellIndex{I: i, J: j, K: k}
				if shape.Contains(g.CellCenter(i, j, k)) != stamped[c] {
					t.Errorf("cell %v: containment and rasterization disagree", c)
				}
			}
		}
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	for _, s := range []string{"", "x", "y", "z", "xy", "xz", "yz", "xyz"} {
		if got := MirrorFromString(s).String(); got != s {
			t.Errorf("mirror %q round-tripped to %q", s, got)
		}
	}
}
