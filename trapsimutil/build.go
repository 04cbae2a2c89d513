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

package trapsimutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fieldmodel/trapsim"
	"github.com/fieldmodel/trapsim/pa"
)

// trapFromConfig assembles the configured cylindrical trap.
func trapFromConfig() *trapsim.Trap {
	return trapsim.NewCylinderTrap(trapsim.CylinderTrapConfig{
		R:         Cfg.GetFloat64("Trap.R"),
		Z0:        Cfg.GetFloat64("Trap.Z0"),
		Thickness: Cfg.GetFloat64("Trap.Thickness"),
		Closed:    Cfg.GetBool("Trap.Closed"),
		RingV:     Cfg.GetFloat64("Trap.RingVoltage"),
		CapV:      Cfg.GetFloat64("Trap.CapVoltage"),
	})
}

// gridForTrap creates a grid covering the trap's modeling region using the
// configured step size or point count.
func gridForTrap(t *trapsim.Trap) (*trapsim.Grid, error) {
	mirror := Cfg.GetString("Grid.Mirror")
	if step := Cfg.GetFloat64("Grid.Step"); step > 0 {
		return trapsim.NewGridFromExtents(t.Bounds.Max.X, t.Bounds.Max.Y, t.Bounds.Max.Z, step, mirror)
	}
	return trapsim.NewGridWithPoints(t.Bounds.Max.X, t.Bounds.Max.Y, t.Bounds.Max.Z,
		Cfg.GetInt("Grid.Points"), mirror)
}

// BuildArray rasterizes the configured trap and writes the result as a raw
// potential array file based on name.
func BuildArray(name string) error {
	t := trapFromConfig()
	g, err := gridForTrap(t)
	if err != nil {
		return err
	}
	log.Printf("rasterizing %d electrodes onto %v", len(t.Electrodes), g)

	a, err := trapsim.Build(t, g, trapsim.BuildConfig{
		FastAdjustable: Cfg.GetBool("FastAdjustable"),
	})
	if err != nil {
		return err
	}

	out := pa.AddRawExtension(name)
	if err := pa.Write(a, out); err != nil {
		return err
	}
	log.Printf("wrote %s (%d points)", out, a.NumPoints())
	return nil
}

// Export decodes the given array file and writes it as a NetCDF file based
// on out (or the array file name if out is empty).
func Export(path, out string) error {
	a, err := pa.Read(path)
	if err != nil {
		return err
	}
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(path, pa.RawExtension),
			pa.RefinedExtension) + ".nc"
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pa.WriteNetCDF(a, f); err != nil {
		return err
	}
	log.Printf("wrote %s", out)
	return f.Close()
}

// Info prints the header of the given array file in PATXT form.
func Info(w io.Writer, path string) error {
	a, err := pa.Read(path)
	if err != nil {
		return err
	}
	fmt.Fprint(w, a.HeaderString())
	if ids := a.ElectrodeIDs(); len(ids) > 0 {
		fmt.Fprintf(w, "fast-adjust electrodes: %v\n", ids)
	}
	return nil
}
