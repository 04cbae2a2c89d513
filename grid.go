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
	"math"
	"strings"
)

// Point3 is a location in the trap's local Cartesian coordinate system.
// All lengths are in mm, following the SIMION convention.
type Point3 struct {
	X, Y, Z float64
}

// Bounds3 is an axis-aligned bounding box.
type Bounds3 struct {
	Min, Max Point3
}

// Overlaps reports whether b and b2 share any volume (touching faces count).
func (b *Bounds3) Overlaps(b2 *Bounds3) bool {
	return b.Min.X <= b2.Max.X && b.Max.X >= b2.Min.X &&
		b.Min.Y <= b2.Max.Y && b.Max.Y >= b2.Min.Y &&
		b.Min.Z <= b2.Max.Z && b.Max.Z >= b2.Min.Z
}

func (b *Bounds3) String() string {
	return fmt.Sprintf("[(%g,%g,%g)-(%g,%g,%g)]",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}

// Symmetry is the potential-array symmetry type.
type Symmetry int

const (
	Planar Symmetry = iota
	Cylindrical
)

func (s Symmetry) String() string {
	if s == Cylindrical {
		return "cylindrical"
	}
	return "planar"
}

// Mirror records which axes the modeled region is mirrored about. A mirrored
// axis only stores the non-negative half of the region; the solver
// reconstructs the other half by symmetry.
type Mirror struct {
	X, Y, Z bool
}

// MirrorFromString parses a mirror specification given as a subset of "xyz",
// e.g. "xy" or "" for no mirroring.
func MirrorFromString(s string) Mirror {
	return Mirror{
		X: strings.Contains(s, "x"),
		Y: strings.Contains(s, "y"),
		Z: strings.Contains(s, "z"),
	}
}

func (m Mirror) String() string {
	var b strings.Builder
	if m.X {
		b.WriteByte('x')
	}
	if m.Y {
		b.WriteByte('y')
	}
	if m.Z {
		b.WriteByte('z')
	}
	return b.String()
}

// Grid is a fixed lattice over the trap's modeling region. Cell centers on a
// mirrored axis run from 0 outward; on an unmirrored axis they are centered
// about the origin.
type Grid struct {
	Symmetry   Symmetry
	Mirror     Mirror
	Nx, Ny, Nz int     // cell counts per axis
	Dx, Dy, Dz float64 // cell size per axis [mm]
}

// NewGrid constructs a lattice with the given cell counts, a uniform step
// size and mirror specification ("" … "xyz"). It returns an
// InvalidGridError if the step or any extent is non-positive.
func NewGrid(nx, ny, nz int, step float64, mirror string) (*Grid, error) {
	g := &Grid{
		Mirror: MirrorFromString(mirror),
		Nx:     nx, Ny: ny, Nz: nz,
		Dx: step, Dy: step, Dz: step,
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGridFromExtents constructs a lattice covering the physical region with
// half-extents xMax, yMax, zMax [mm] at the given step size. The cell counts
// are the number of whole steps that fit in each extent.
func NewGridFromExtents(xMax, yMax, zMax, step float64, mirror string) (*Grid, error) {
	if step <= 0 {
		return nil, &InvalidGridError{Reason: fmt.Sprintf("step size %g mm must be positive", step)}
	}
	return NewGrid(int(xMax/step), int(yMax/step), int(zMax/step), step, mirror)
}

// NewGridWithPoints is like NewGridFromExtents but sets the step size so
// that the x extent is divided into pts cells.
func NewGridWithPoints(xMax, yMax, zMax float64, pts int, mirror string) (*Grid, error) {
	if pts <= 0 {
		return nil, &InvalidGridError{Reason: fmt.Sprintf("point count %d must be positive", pts)}
	}
	if xMax <= 0 {
		return nil, &InvalidGridError{Reason: fmt.Sprintf("x extent %g mm must be positive", xMax)}
	}
	return NewGridFromExtents(xMax, yMax, zMax, xMax/float64(pts), mirror)
}

func (g *Grid) validate() error {
	if g.Dx <= 0 || g.Dy <= 0 || g.Dz <= 0 {
		return &InvalidGridError{Reason: fmt.Sprintf("step sizes (%g,%g,%g) mm must be positive", g.Dx, g.Dy, g.Dz)}
	}
	if g.Nx <= 0 || g.Ny <= 0 || g.Nz <= 0 {
		return &InvalidGridError{Reason: fmt.Sprintf("extents (%d,%d,%d) must be positive", g.Nx, g.Ny, g.Nz)}
	}
	return nil
}

// axisStart returns the physical coordinate of cell 0 on an axis with n
// cells of size d: zero when the axis is mirrored, otherwise centered.
func axisStart(mirrored bool, n int, d float64) float64 {
	if mirrored {
		return 0
	}
	return -float64(n-1) * d / 2
}

// CellCenter returns the physical point at the center of cell (i,j,k).
// It is a pure function of the grid parameters.
func (g *Grid) CellCenter(i, j, k int) Point3 {
	return Point3{
		X: axisStart(g.Mirror.X, g.Nx, g.Dx) + float64(i)*g.Dx,
		Y: axisStart(g.Mirror.Y, g.Ny, g.Dy) + float64(j)*g.Dy,
		Z: axisStart(g.Mirror.Z, g.Nz, g.Dz) + float64(k)*g.Dz,
	}
}

// Bounds returns the box spanned by the grid's cell centers.
func (g *Grid) Bounds() *Bounds3 {
	min := g.CellCenter(0, 0, 0)
	max := g.CellCenter(g.Nx-1, g.Ny-1, g.Nz-1)
	return &Bounds3{Min: min, Max: max}
}

// CellIndex is the lattice coordinate of a single cell.
type CellIndex struct {
	I, J, K int
}

// indexRange returns the inclusive cell index range [lo,hi] on one axis
// whose centers fall inside [bmin,bmax], clipped to [0,n-1]. hi < lo means
// no cells. The clipping happens before the integer conversion so that
// unbounded shape extents stay safe.
func indexRange(bmin, bmax, start, d float64, n int) (lo, hi int) {
	flo := math.Min(math.Max(math.Ceil((bmin-start)/d), 0), float64(n))
	fhi := math.Min(math.Max(math.Floor((bmax-start)/d), -1), float64(n-1))
	return int(flo), int(fhi)
}

// Rasterize returns the indices of every cell whose center lies inside s,
// in ascending (k,j,i) order. The boundary rule is inclusive: a cell whose
// center falls exactly on the shape's surface is part of the shape. The
// result is deterministic for a fixed shape and grid.
func (g *Grid) Rasterize(s Shape) []CellIndex {
	b := s.Bounds()
	iLo, iHi := indexRange(b.Min.X, b.Max.X, axisStart(g.Mirror.X, g.Nx, g.Dx), g.Dx, g.Nx)
	jLo, jHi := indexRange(b.Min.Y, b.Max.Y, axisStart(g.Mirror.Y, g.Ny, g.Dy), g.Dy, g.Ny)
	kLo, kHi := indexRange(b.Min.Z, b.Max.Z, axisStart(g.Mirror.Z, g.Nz, g.Dz), g.Dz, g.Nz)

	var cells []CellIndex
	for k := kLo; k <= kHi; k++ {
		for j := jLo; j <= jHi; j++ {
			for i := iLo; i <= iHi; i++ {
				if s.Contains(g.CellCenter(i, j, k)) {
					cells = append(cells, CellIndex{I: i, J: j, K: k})
				}
			}
		}
	}
	return cells
}

func (g *Grid) String() string {
	return fmt.Sprintf("grid (%d,%d,%d) step (%g,%g,%g) mm mirror %q",
		g.Nx, g.Ny, g.Nz, g.Dx, g.Dy, g.Dz, g.Mirror.String())
}
