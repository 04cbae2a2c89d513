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
	"math"

	"github.com/ctessum/geom"
)

// Shape is the geometric extent of an electrode. Contains must treat points
// exactly on the surface as inside, so that rasterization stays inclusive
// regardless of the shape kind.
type Shape interface {
	Contains(p Point3) bool
	Bounds() *Bounds3
}

// CylinderShell is a cylindrical ring electrode coaxial with the z axis:
// the points with R ≤ r ≤ R·(1+Thickness) and |z| ≤ Z0. A zero Thickness
// describes a shell extending outward from R without limit; rasterization
// clips it to the grid.
type CylinderShell struct {
	R         float64 // inner radius [mm]
	Z0        float64 // half length [mm]
	Thickness float64 // wall thickness as a fraction of R
}

// Contains implements Shape.
func (c *CylinderShell) Contains(p Point3) bool {
	if math.Abs(p.Z) > c.Z0 {
		return false
	}
	r := math.Hypot(p.X, p.Y)
	if r < c.R {
		return false
	}
	return c.Thickness == 0 || r <= c.R*(1+c.Thickness)
}

// outerRadius is unbounded for a zero-thickness shell, so that Bounds
// covers everything Contains accepts.
func (c *CylinderShell) outerRadius() float64 {
	if c.Thickness == 0 {
		return math.Inf(1)
	}
	return c.R * (1 + c.Thickness)
}

// Bounds implements Shape.
func (c *CylinderShell) Bounds() *Bounds3 {
	ro := c.outerRadius()
	return &Bounds3{
		Min: Point3{X: -ro, Y: -ro, Z: -c.Z0},
		Max: Point3{X: ro, Y: ro, Z: c.Z0},
	}
}

// EndcapPair is the two end plates of a closed cylindrical trap: disks of
// radius R occupying Z0 ≤ |z| ≤ Z0·(1+Thickness). A zero Thickness
// describes plates extending outward from ±Z0 without limit; rasterization
// clips them to the grid.
type EndcapPair struct {
	R         float64 // disk radius [mm]
	Z0        float64 // distance of the inner face from the trap center [mm]
	Thickness float64 // plate thickness as a fraction of Z0
}

// Contains implements Shape.
func (e *EndcapPair) Contains(p Point3) bool {
	if math.Hypot(p.X, p.Y) > e.R {
		return false
	}
	z := math.Abs(p.Z)
	if z < e.Z0 {
		return false
	}
	return e.Thickness == 0 || z <= e.Z0*(1+e.Thickness)
}

// outerZ is unbounded for zero-thickness plates, so that Bounds covers
// everything Contains accepts.
func (e *EndcapPair) outerZ() float64 {
	if e.Thickness == 0 {
		return math.Inf(1)
	}
	return e.Z0 * (1 + e.Thickness)
}

// Bounds implements Shape.
func (e *EndcapPair) Bounds() *Bounds3 {
	return &Bounds3{
		Min: Point3{X: -e.R, Y: -e.R, Z: -e.outerZ()},
		Max: Point3{X: e.R, Y: e.R, Z: e.outerZ()},
	}
}

// Box is an axis-aligned plate or block electrode.
type Box struct {
	Min, Max Point3
}

// Contains implements Shape.
func (b *Box) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Bounds implements Shape.
func (b *Box) Bounds() *Bounds3 {
	bb := Bounds3{Min: b.Min, Max: b.Max}
	return &bb
}

// Prism is an arbitrary polygonal cross-section in the x-y plane extruded
// along z, for electrode profiles that the analytic shapes cannot express.
type Prism struct {
	Polygon    geom.Polygonal
	ZMin, ZMax float64
}

// Contains implements Shape. Points on the polygon edge count as inside.
func (pr *Prism) Contains(p Point3) bool {
	if p.Z < pr.ZMin || p.Z > pr.ZMax {
		return false
	}
	w := geom.Point{X: p.X, Y: p.Y}.Within(pr.Polygon)
	return w == geom.Inside || w == geom.OnEdge
}

// Bounds implements Shape.
func (pr *Prism) Bounds() *Bounds3 {
	b := pr.Polygon.Bounds()
	return &Bounds3{
		Min: Point3{X: b.Min.X, Y: b.Min.Y, Z: pr.ZMin},
		Max: Point3{X: b.Max.X, Y: b.Max.Y, Z: pr.ZMax},
	}
}
