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
	"fmt"
	"sort"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats/scalar"
)

// FieldType is the kind of field a potential array describes.
type FieldType int

const (
	Electrostatic FieldType = iota
	Magnetic
)

func (f FieldType) String() string {
	if f == Magnetic {
		return "magnetic"
	}
	return "electrostatic"
}

// Default header values for newly created arrays, matching SIMION's.
const (
	DefaultMode       = -1
	DefaultMaxVoltage = 100000.0
	DefaultNg         = 100
)

// MaxFastAdjustElectrodes is the largest electrode number SIMION can fast
// adjust.
const MaxFastAdjustElectrodes = 30

// PotentialArray is a discretized representation of electrode geometry and
// boundary potentials. It is the unit written to .pa files and exchanged
// with the external solver.
//
// Points holds the SIMION point encoding: a cell is an electrode when its
// stored value exceeds MaxVoltage, and the electrode's potential is the
// stored value minus 2·MaxVoltage. Free (solved) cells store the potential
// directly. The array shape is [Nz][Ny][Nx].
type PotentialArray struct {
	Mode           int
	Symmetry       Symmetry
	MaxVoltage     float64
	Nx, Ny, Nz     int
	Mirror         Mirror
	FieldType      FieldType
	Ng             int
	Dx, Dy, Dz     float64 // grid unit size [mm]
	FastAdjustable bool

	Points *sparse.DenseArray
}

// NewPotentialArray creates an all-free, zero-volt array over g.
func NewPotentialArray(g *Grid) *PotentialArray {
	return &PotentialArray{
		Mode:       DefaultMode,
		Symmetry:   g.Symmetry,
		MaxVoltage: DefaultMaxVoltage,
		Nx:         g.Nx, Ny: g.Ny, Nz: g.Nz,
		Mirror:    g.Mirror,
		FieldType: Electrostatic,
		Ng:        DefaultNg,
		Dx:        g.Dx, Dy: g.Dy, Dz: g.Dz,
		Points: sparse.ZerosDense(g.Nz, g.Ny, g.Nx),
	}
}

// Grid reconstructs the lattice an array was built over.
func (a *PotentialArray) Grid() *Grid {
	return &Grid{
		Symmetry: a.Symmetry,
		Mirror:   a.Mirror,
		Nx:       a.Nx, Ny: a.Ny, Nz: a.Nz,
		Dx: a.Dx, Dy: a.Dy, Dz: a.Dz,
	}
}

// NumPoints returns the total number of cells.
func (a *PotentialArray) NumPoints() int { return a.Nx * a.Ny * a.Nz }

// EffectiveMode returns the mode number the array must be written with:
// grid unit sizes other than 1 mm require the extended (mode -2) header.
func (a *PotentialArray) EffectiveMode() int {
	if a.Mode == DefaultMode && (a.Dx != 1 || a.Dy != 1 || a.Dz != 1) {
		return -2
	}
	return a.Mode
}

// Point returns the electrode flag and potential of cell (i,j,k).
func (a *PotentialArray) Point(i, j, k int) (isElectrode bool, potential float64) {
	v := a.Points.Get(k, j, i)
	if v > a.MaxVoltage {
		return true, v - 2*a.MaxVoltage
	}
	return false, v
}

// SetPoint sets the electrode flag and potential of cell (i,j,k). Setting a
// potential above MaxVoltage re-encodes the array for a doubled MaxVoltage
// first, as SIMION does.
func (a *PotentialArray) SetPoint(i, j, k int, isElectrode bool, potential float64) {
	if potential > a.MaxVoltage {
		a.SetMaxVoltage(potential * 2)
	}
	v := potential
	if isElectrode {
		v += 2 * a.MaxVoltage
	}
	a.Points.Set(v, k, j, i)
}

// Electrode reports whether cell (i,j,k) is an electrode.
func (a *PotentialArray) Electrode(i, j, k int) bool {
	return a.Points.Get(k, j, i) > a.MaxVoltage
}

// Potential returns the potential of cell (i,j,k).
func (a *PotentialArray) Potential(i, j, k int) float64 {
	_, p := a.Point(i, j, k)
	return p
}

// SetMaxVoltage changes the max voltage, re-encoding every electrode point
// for the new threshold. The result is undefined if maxVoltage is decreased
// below the largest potential in the array.
func (a *PotentialArray) SetMaxVoltage(maxVoltage float64) {
	old := a.MaxVoltage
	diff := 2 * (maxVoltage - old)
	a.MaxVoltage = maxVoltage
	for n, v := range a.Points.Elements {
		if v > old {
			a.Points.Elements[n] = v + diff
		}
	}
}

// ElectrodeIDs returns the distinct electrode numbers stamped into a
// fast-adjustable array, in ascending order.
func (a *PotentialArray) ElectrodeIDs() []int {
	seen := make(map[int]bool)
	for _, v := range a.Points.Elements {
		if v <= a.MaxVoltage {
			continue
		}
		p := v - 2*a.MaxVoltage
		if id := int(p); float64(id) == p && id >= 1 && id <= MaxFastAdjustElectrodes {
			seen[id] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WithinTolerance reports whether a and b have identical geometry and header
// data and point values equal within tol.
func (a *PotentialArray) WithinTolerance(b *PotentialArray, tol float64) bool {
	if a.EffectiveMode() != b.EffectiveMode() ||
		a.Symmetry != b.Symmetry ||
		a.MaxVoltage != b.MaxVoltage ||
		a.Nx != b.Nx || a.Ny != b.Ny || a.Nz != b.Nz ||
		a.Mirror != b.Mirror ||
		a.FieldType != b.FieldType ||
		a.Ng != b.Ng ||
		a.Dx != b.Dx || a.Dy != b.Dy || a.Dz != b.Dz {
		return false
	}
	if len(a.Points.Elements) != len(b.Points.Elements) {
		return false
	}
	for n, v := range a.Points.Elements {
		if !scalar.EqualWithinAbs(v, b.Points.Elements[n], tol) {
			return false
		}
	}
	return true
}

// HeaderString returns the header in SIMION's PATXT text form, which is
// handy for inspecting array files.
func (a *PotentialArray) HeaderString() string {
	b2i := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}
	s := "begin_header\n" +
		fmt.Sprintf("    mode %d\n", a.EffectiveMode()) +
		fmt.Sprintf("    symmetry %v\n", a.Symmetry) +
		fmt.Sprintf("    max_voltage %g\n", a.MaxVoltage) +
		fmt.Sprintf("    nx %d\n", a.Nx) +
		fmt.Sprintf("    ny %d\n", a.Ny) +
		fmt.Sprintf("    nz %d\n", a.Nz) +
		fmt.Sprintf("    mirror_x %d\n", b2i(a.Mirror.X)) +
		fmt.Sprintf("    mirror_y %d\n", b2i(a.Mirror.Y)) +
		fmt.Sprintf("    mirror_z %d\n", b2i(a.Mirror.Z)) +
		fmt.Sprintf("    field_type %v\n", a.FieldType) +
		fmt.Sprintf("    ng %d\n", a.Ng)
	if a.EffectiveMode() <= -2 {
		s += fmt.Sprintf("    dx_mm %g\n", a.Dx) +
			fmt.Sprintf("    dy_mm %g\n", a.Dy) +
			fmt.Sprintf("    dz_mm %g\n", a.Dz)
	}
	s += fmt.Sprintf("    fast_adjustable %d\n", b2i(a.FastAdjustable)) +
		"end_header\n"
	return s
}
