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

// Package trapsim models ion traps (primarily FT-ICR cells) and converts
// their electrode geometry into discretized potential arrays for field-solver
// simulation.
//
// The typical pipeline is: describe a trap as an ordered set of electrodes
// (see Trap and the Shape implementations), rasterize it onto a Grid with
// Build, write the resulting PotentialArray to disk in the SIMION .pa format
// with package pa, and hand the file to the external solver through package
// solver. The refined array that the solver writes back can be re-read with
// package pa for inspection or further processing.
package trapsim
