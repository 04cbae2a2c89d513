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

package pa

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/fieldmodel/trapsim"
)

// WriteNetCDF exports the decoded contents of a, the potential at every
// cell and the electrode mask, as a NetCDF file for inspection or
// post-processing outside the solver toolchain. The SIMION point encoding
// is undone before export, so the variables hold plain volts.
func WriteNetCDF(a *trapsim.PotentialArray, w *os.File) error {
	potential := sparse.ZerosDense(a.Nz, a.Ny, a.Nx)
	electrode := sparse.ZerosDense(a.Nz, a.Ny, a.Nx)
	for k := 0; k < a.Nz; k++ {
		for j := 0; j < a.Ny; j++ {
			for i := 0; i < a.Nx; i++ {
				isElectrode, p := a.Point(i, j, k)
				potential.Set(p, k, j, i)
				if isElectrode {
					electrode.Set(1, k, j, i)
				}
			}
		}
	}

	h := cdf.NewHeader([]string{"z", "y", "x"}, []int{a.Nz, a.Ny, a.Nx})
	h.AddAttribute("", "comment", "TrapSim potential array export")
	h.AddAttribute("", "symmetry", a.Symmetry.String())
	h.AddAttribute("", "mirror", a.Mirror.String())
	h.AddAttribute("", "dx", []float64{a.Dx})
	h.AddAttribute("", "dy", []float64{a.Dy})
	h.AddAttribute("", "dz", []float64{a.Dz})
	h.AddAttribute("", "nx", []int32{int32(a.Nx)})
	h.AddAttribute("", "ny", []int32{int32(a.Ny)})
	h.AddAttribute("", "nz", []int32{int32(a.Nz)})

	for _, v := range []struct{ name, description, units string }{
		{"potential", "electric potential", "V"},
		{"electrode", "electrode mask (1 = electrode cell)", ""},
	} {
		h.AddVariable(v.name, []string{"z", "y", "x"}, []float32{0})
		h.AddAttribute(v.name, "description", v.description)
		h.AddAttribute(v.name, "units", v.units)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("pa: creating netcdf file: %w", err)
	}
	if err := writeNCF(f, "potential", potential); err != nil {
		return err
	}
	if err := writeNCF(f, "electrode", electrode); err != nil {
		return err
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("pa: writing netcdf variable %s: %w", name, err)
	}
	return nil
}
