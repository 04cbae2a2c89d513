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

import "fmt"

// BuildConfig controls how a trap is rasterized into a potential array.
type BuildConfig struct {
	// FastAdjustable selects the fast-adjust point encoding: electrode
	// cells are stamped with their electrode number (1–30) instead of
	// their voltage, so the solver can re-adjust voltages without a new
	// geometry solve.
	FastAdjustable bool
}

// Build rasterizes every electrode of trap onto grid and assembles the
// resulting potential array. Electrodes are stamped in trap order, so a
// later electrode overwrites any cell already claimed by an earlier one.
// Cells touched by no electrode stay free at zero volts, to be solved by
// the external solver.
//
// Build returns a GeometryOutOfBoundsError if an electrode lies wholly
// outside the grid. It does not modify trap.
func Build(trap *Trap, grid *Grid, cfg BuildConfig) (*PotentialArray, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if cfg.FastAdjustable {
		for _, e := range trap.Electrodes {
			if e.ID < 1 || e.ID > MaxFastAdjustElectrodes {
				return nil, fmt.Errorf("trapsim.Build: electrode number %d outside the fast-adjustable range 1-%d",
					e.ID, MaxFastAdjustElectrodes)
			}
		}
	}

	a := NewPotentialArray(grid)
	a.FastAdjustable = cfg.FastAdjustable
	gb := grid.Bounds()
	for _, e := range trap.Electrodes {
		sb := e.Shape.Bounds()
		if !sb.Overlaps(gb) {
			return nil, &GeometryOutOfBoundsError{
				ElectrodeID: e.ID,
				ShapeBounds: sb,
				GridBounds:  gb,
			}
		}
		potential := e.Voltage
		if cfg.FastAdjustable {
			potential = float64(e.ID)
		} else if e.Floating {
			potential = 0
		}
		for _, c := range grid.Rasterize(e.Shape) {
			a.SetPoint(c.I, c.J, c.K, true, potential)
		}
	}
	return a, nil
}
