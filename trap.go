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

// Electrode is one electrode of a trap. ID is the SIMION electrode number
// (1-based; SIMION fast adjust supports numbers 1 through 30). A Floating
// electrode has no externally applied voltage and Voltage is ignored.
type Electrode struct {
	ID       int
	Voltage  float64 // [V]
	Floating bool
	Shape    Shape
}

// Trap is an ordered set of electrodes plus the bounding volume of the
// modeling region. The order is significant: when two electrodes overlap on
// the grid, the later one determines the stamp.
type Trap struct {
	Electrodes []*Electrode
	Bounds     *Bounds3
}

// NewTrap creates a trap from the given electrodes with a modeling region
// that covers all of their shapes.
func NewTrap(electrodes ...*Electrode) *Trap {
	t := &Trap{Electrodes: electrodes}
	for _, e := range electrodes {
		b := e.Shape.Bounds()
		if t.Bounds == nil {
			bb := *b
			t.Bounds = &bb
			continue
		}
		if b.Min.X < t.Bounds.Min.X {
			t.Bounds.Min.X = b.Min.X
		}
		if b.Min.Y < t.Bounds.Min.Y {
			t.Bounds.Min.Y = b.Min.Y
		}
		if b.Min.Z < t.Bounds.Min.Z {
			t.Bounds.Min.Z = b.Min.Z
		}
		if b.Max.X > t.Bounds.Max.X {
			t.Bounds.Max.X = b.Max.X
		}
		if b.Max.Y > t.Bounds.Max.Y {
			t.Bounds.Max.Y = b.Max.Y
		}
		if b.Max.Z > t.Bounds.Max.Z {
			t.Bounds.Max.Z = b.Max.Z
		}
	}
	return t
}

// VoltageMap returns the electrode number → voltage mapping used for a fast
// adjust, skipping floating electrodes.
func (t *Trap) VoltageMap() map[int]float64 {
	m := make(map[int]float64, len(t.Electrodes))
	for _, e := range t.Electrodes {
		if e.Floating {
			continue
		}
		m[e.ID] = e.Voltage
	}
	return m
}

// CylinderTrapConfig describes a closed or open cylindrical FT-ICR cell: a
// ring electrode of inner radius R and half length Z0, and, when Closed,
// a pair of endcap plates beyond ±Z0.
type CylinderTrapConfig struct {
	R         float64 // inner radius [mm]
	Z0        float64 // half length of the working region [mm]
	Thickness float64 // wall thickness as a fraction of the dimension; 0 means thin walls
	Closed    bool
	RingV     float64 // ring electrode voltage [V]
	CapV      float64 // endcap voltage [V]; ignored when open
}

// modelDelta is the margin, as a fraction of the trap dimensions, that the
// modeling region extends beyond the electrodes.
func (c *CylinderTrapConfig) modelDelta() float64 {
	if c.Thickness > 0 {
		return 2 * c.Thickness
	}
	return 0.2
}

// NewCylinderTrap builds the trap described by c. The modeling region
// extends beyond the electrode surfaces by the trap's model delta so that
// the outermost electrode cells stay inside any grid sized to Bounds.
func NewCylinderTrap(c CylinderTrapConfig) *Trap {
	delta := c.modelDelta()
	electrodes := []*Electrode{{
		ID:      1,
		Voltage: c.RingV,
		Shape:   &CylinderShell{R: c.R, Z0: c.Z0, Thickness: c.Thickness},
	}}
	if c.Closed {
		electrodes = append(electrodes, &Electrode{
			ID:      2,
			Voltage: c.CapV,
			Shape: &EndcapPair{
				R:         c.R * (1 + delta),
				Z0:        c.Z0,
				Thickness: c.Thickness,
			},
		})
	}
	t := NewTrap(electrodes...)
	t.Bounds = &Bounds3{
		Min: Point3{X: -c.R * (1 + delta), Y: -c.R * (1 + delta), Z: -c.Z0 * (1 + delta)},
		Max: Point3{X: c.R * (1 + delta), Y: c.R * (1 + delta), Z: c.Z0 * (1 + delta)},
	}
	return t
}
