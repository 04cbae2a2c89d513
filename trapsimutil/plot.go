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
	"log"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fieldmodel/trapsim"
	"github.com/fieldmodel/trapsim/pa"
)

// arraySlice adapts one z slice of a potential array to the plotter's
// gridded-data interface. Electrode cells report their electrode potential.
type arraySlice struct {
	a *trapsim.PotentialArray
	g *trapsim.Grid
	k int
}

func (s arraySlice) Dims() (c, r int) { return s.a.Nx, s.a.Ny }
func (s arraySlice) Z(c, r int) float64 {
	return s.a.Potential(c, r, s.k)
}
func (s arraySlice) X(c int) float64 { return s.g.CellCenter(c, 0, s.k).X }
func (s arraySlice) Y(r int) float64 { return s.g.CellCenter(0, r, s.k).Y }

// Plot renders z slice k of the given array file as a PNG heat map. A
// negative k selects the middle slice; an empty out derives the PNG name
// from the input file.
func Plot(path string, k int, out string) error {
	a, err := pa.Read(path)
	if err != nil {
		return err
	}
	if k < 0 {
		k = a.Nz / 2
	}
	if k >= a.Nz {
		return fmt.Errorf("trapsim: slice %d out of range (nz = %d)", k, a.Nz)
	}
	if out == "" {
		out = strings.TrimSuffix(strings.TrimSuffix(path, pa.RawExtension), pa.RefinedExtension) + ".png"
	}

	h := plotter.NewHeatMap(arraySlice{a: a, g: a.Grid(), k: k}, palette.Heat(64, 1))
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s, z slice %d", path, k)
	p.X.Label.Text = "x [mm]"
	p.Y.Label.Text = "y [mm]"
	p.Add(h)

	if err := p.Save(15*vg.Centimeter, 15*vg.Centimeter, out); err != nil {
		return fmt.Errorf("trapsim: saving plot: %v", err)
	}
	log.Printf("wrote %s", out)
	return nil
}
