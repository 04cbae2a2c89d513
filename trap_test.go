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
	"reflect"
	"testing"
)

func TestNewCylinderTrap(t *testing.T) {
	trap := NewCylinderTrap(CylinderTrapConfig{
		R: 10, Z0: 20, Thickness: 0.1, Closed: true, RingV: 5, CapV: -5,
	})
	if len(trap.Electrodes) != 2 {
		t.Fatalf("got %d electrodes, want 2", len(trap.Electrodes))
	}
	if trap.Electrodes[0].ID != 1 || trap.Electrodes[1].ID != 2 {
		t.Errorf("electrode numbers = (%d,%d), want (1,2)",
			trap.Electrodes[0].ID, trap.Electrodes[1].ID)
	}

	// The modeling region extends past the electrodes by 2×thickness.
	want := Bounds3{
		Min: Point3{X: -12, Y: -12, Z: -24},
		Max: Point3{X: 12, Y: 12, Z: 24},
	}
	if *trap.Bounds != want {
		t.Errorf("bounds = %v, want %v", *trap.Bounds, want)
	}
}

func TestNewCylinderTrapOpen(t *testing.T) {
	trap := NewCylinderTrap(CylinderTrapConfig{R: 10, Z0: 20, RingV: 5})
	if len(trap.Electrodes) != 1 {
		t.Fatalf("got %d electrodes, want 1", len(trap.Electrodes))
	}
	// Thin walls default to a 20% modeling margin.
	if trap.Bounds.Max.X != 12 || trap.Bounds.Max.Z != 24 {
		t.Errorf("bounds = %v, want margin of 0.2", *trap.Bounds)
	}
}

func TestVoltageMap(t *testing.T) {
	trap := NewTrap(
		&Electrode{ID: 1, Voltage: 10, Shape: &Box{Max: Point3{X: 1, Y: 1, Z: 1}}},
		&Electrode{ID: 2, Voltage: -10, Shape: &Box{Max: Point3{X: 1, Y: 1, Z: 1}}},
		&Electrode{ID: 3, Floating: true, Shape: &Box{Max: Point3{X: 1, Y: 1, Z: 1}}},
	)
	got := trap.VoltageMap()
	want := map[int]float64{1: 10, 2: -10}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("VoltageMap() = %v, want %v", got, want)
	}
}

func TestNewTrapBounds(t *testing.T) {
	trap := NewTrap(
		&Electrode{ID: 1, Shape: &Box{Min: Point3{X: -1, Y: -1, Z: -1}, Max: Point3{X: 0, Y: 0, Z: 0}}},
		&Electrode{ID: 2, Shape: &Box{Min: Point3{X: 0, Y: 0, Z: 0}, Max: Point3{X: 2, Y: 3, Z: 4}}},
	)
	want := Bounds3{Min: Point3{X: -1, Y: -1, Z: -1}, Max: Point3{X: 2, Y: 3, Z: 4}}
	if *trap.Bounds != want {
		t.Errorf("bounds = %v, want %v", *trap.Bounds, want)
	}
}
