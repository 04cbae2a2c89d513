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
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cast"

	"github.com/fieldmodel/trapsim/solver"
)

// Refine runs the external solver's refine operation on the given raw
// array file.
func Refine(path string) error {
	g, err := solver.New(solverConfig())
	if err != nil {
		return err
	}
	a, err := g.Run(context.Background(), solver.Job{Op: solver.OpRefine, Path: path})
	if err != nil {
		return err
	}
	log.Printf("refined array: %d points, max voltage %g", a.NumPoints(), a.MaxVoltage)
	return nil
}

// FastAdjust runs the external solver's fast-adjust operation on the given
// refined array file, applying the voltages described by spec
// (e.g. "1=10,2=-10").
func FastAdjust(path, spec string) error {
	voltages, err := ParseVoltages(spec)
	if err != nil {
		return err
	}
	g, err := solver.New(solverConfig())
	if err != nil {
		return err
	}
	a, err := g.Run(context.Background(), solver.Job{
		Op:       solver.OpFastAdjust,
		Path:     path,
		Voltages: voltages,
	})
	if err != nil {
		return err
	}
	log.Printf("adjusted array: %d points", a.NumPoints())
	return nil
}

// ParseVoltages parses an electrode voltage assignment of the form
// "1=10,2=-10" into a map from electrode number to voltage.
func ParseVoltages(spec string) (map[int]float64, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, fmt.Errorf("trapsim: no electrode voltages given")
	}
	voltages := make(map[int]float64)
	for _, pair := range strings.Split(spec, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("trapsim: invalid voltage assignment %q", pair)
		}
		id, err := cast.ToIntE(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("trapsim: invalid electrode number %q: %v", kv[0], err)
		}
		v, err := cast.ToFloat64E(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("trapsim: invalid voltage %q: %v", kv[1], err)
		}
		voltages[id] = v
	}
	return voltages, nil
}
