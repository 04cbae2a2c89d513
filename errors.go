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

// InvalidGridError indicates grid parameters that cannot describe a usable
// lattice, such as a non-positive step size or extent. It is the caller's
// responsibility to fix the configuration; retrying does not help.
type InvalidGridError struct {
	Reason string
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("trapsim: invalid grid: %s", e.Reason)
}

// GeometryOutOfBoundsError indicates that an electrode's shape lies wholly
// outside the grid's modeling region, which normally means the grid was
// configured for a different trap.
type GeometryOutOfBoundsError struct {
	ElectrodeID int
	ShapeBounds *Bounds3
	GridBounds  *Bounds3
}

func (e *GeometryOutOfBoundsError) Error() string {
	return fmt.Sprintf("trapsim: electrode %d with bounds %v lies outside the grid bounds %v",
		e.ElectrodeID, e.ShapeBounds, e.GridBounds)
}
