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

// Package pa reads and writes SIMION potential-array files.
//
// The on-disk layout is a wire contract with the external solver and is
// reproduced bit for bit: a little-endian header
//
//	int32   mode (-1 or -2)
//	int32   symmetry (1 = planar, 0 = cylindrical)
//	float64 max_voltage
//	int32   nx, ny, nz
//	int32   mirror/ng bit field
//	float64 dx_mm, dy_mm, dz_mm (mode -2 only)
//
// followed by nx·ny·nz float64 point values, x varying fastest. Any bytes
// after the point block (SIMION appends a statistics record to .pa0 files)
// are ignored on read.
package pa

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/fieldmodel/trapsim"
)

// File name extensions used by the solver: a raw (unrefined) array is a
// .pa# file, a refined one is .pa0.
const (
	RawExtension     = ".pa#"
	RefinedExtension = ".pa0"
)

// AddRawExtension appends the raw-array extension unless already present.
func AddRawExtension(name string) string {
	if strings.HasSuffix(name, RawExtension) {
		return name
	}
	return name + RawExtension
}

// AddRefinedExtension appends the refined-array extension unless already
// present.
func AddRefinedExtension(name string) string {
	if strings.HasSuffix(name, RefinedExtension) {
		return name
	}
	return name + RefinedExtension
}

// FormatError indicates a malformed or truncated potential-array file.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("pa: invalid potential array file %q: %s", e.Path, e.Reason)
}

// header is the fixed leading part of the on-disk format. Field order and
// widths must not change.
type header struct {
	Mode       int32
	Symmetry   int32
	MaxVoltage float64
	Nx, Ny, Nz int32
	RawMirror  int32
}

const (
	mirrorXBit  = 1 << 0
	mirrorYBit  = 1 << 1
	mirrorZBit  = 1 << 2
	magneticBit = 1 << 3
	ngShift     = 4
	ngMask      = 1<<17 - 1
	ngMax       = 90000
)

// maxPoints bounds the nx·ny·nz product a file header may claim (16 GiB of
// float64 point data), far beyond any array the solver handles. It keeps a
// corrupt header from provoking a huge or overflowing allocation.
const maxPoints = 1 << 31

// Write serializes a to path. The file is written with the array's
// effective mode, so arrays with grid units other than 1 mm always carry
// the extended header.
func Write(a *trapsim.PotentialArray, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pa: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := encode(a, w); err != nil {
		return fmt.Errorf("pa: writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("pa: writing %s: %w", path, err)
	}
	return f.Close()
}

func encode(a *trapsim.PotentialArray, w io.Writer) error {
	h := header{
		Mode:       int32(a.EffectiveMode()),
		MaxVoltage: a.MaxVoltage,
		Nx:         int32(a.Nx),
		Ny:         int32(a.Ny),
		Nz:         int32(a.Nz),
	}
	if a.Symmetry == trapsim.Planar {
		h.Symmetry = 1
	}
	if a.Mirror.X {
		h.RawMirror |= mirrorXBit
	}
	if a.Mirror.Y {
		h.RawMirror |= mirrorYBit
	}
	if a.Mirror.Z {
		h.RawMirror |= mirrorZBit
	}
	if a.FieldType == trapsim.Magnetic {
		h.RawMirror |= magneticBit
	}
	if a.Ng >= 1 && a.Ng <= ngMax {
		h.RawMirror |= int32(a.Ng) << ngShift
	}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if h.Mode <= -2 {
		if err := binary.Write(w, binary.LittleEndian, []float64{a.Dx, a.Dy, a.Dz}); err != nil {
			return err
		}
	}
	if len(a.Points.Elements) != a.NumPoints() {
		return fmt.Errorf("array has %d points but dimensions are (%d,%d,%d)",
			len(a.Points.Elements), a.Nx, a.Ny, a.Nz)
	}
	return binary.Write(w, binary.LittleEndian, a.Points.Elements)
}

// Read deserializes the potential array stored at path. The fast-adjustable
// flag is not recorded in the format itself; it is inferred from the
// file name extension.
func Read(path string) (*trapsim.PotentialArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pa: opening %s: %w", path, err)
	}
	defer f.Close()

	a, err := decode(bufio.NewReader(f), path)
	if err != nil {
		return nil, err
	}
	a.FastAdjustable = strings.HasSuffix(path, RawExtension)
	return a, nil
}

func decode(r io.Reader, path string) (*trapsim.PotentialArray, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, readErr(path, "header", err)
	}
	if h.Mode != -1 && h.Mode != -2 {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("invalid mode %d", h.Mode)}
	}
	a := &trapsim.PotentialArray{
		Mode:       int(h.Mode),
		MaxVoltage: h.MaxVoltage,
		Nx:         int(h.Nx),
		Ny:         int(h.Ny),
		Nz:         int(h.Nz),
		Mirror: trapsim.Mirror{
			X: h.RawMirror&mirrorXBit != 0,
			Y: h.RawMirror&mirrorYBit != 0,
			Z: h.RawMirror&mirrorZBit != 0,
		},
		Ng: int(h.RawMirror >> ngShift & ngMask),
		Dx: 1, Dy: 1, Dz: 1,
	}
	if h.Symmetry == 0 {
		a.Symmetry = trapsim.Cylindrical
	}
	if h.RawMirror&magneticBit != 0 {
		a.FieldType = trapsim.Magnetic
	}
	if h.Mode <= -2 {
		var d [3]float64
		if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
			return nil, readErr(path, "grid unit sizes", err)
		}
		a.Dx, a.Dy, a.Dz = d[0], d[1], d[2]
	}
	if a.Nx <= 0 || a.Ny <= 0 || a.Nz <= 0 {
		return nil, &FormatError{Path: path,
			Reason: fmt.Sprintf("invalid dimensions (%d,%d,%d)", a.Nx, a.Ny, a.Nz)}
	}
	if n := int64(a.Nx) * int64(a.Ny); n > maxPoints || n*int64(a.Nz) > maxPoints {
		return nil, &FormatError{Path: path,
			Reason: fmt.Sprintf("implausible dimensions (%d,%d,%d)", a.Nx, a.Ny, a.Nz)}
	}

	a.Points = sparse.ZerosDense(a.Nz, a.Ny, a.Nx)
	if err := binary.Read(r, binary.LittleEndian, a.Points.Elements); err != nil {
		return nil, readErr(path, "point data", err)
	}
	return a, nil
}

// readErr maps short reads to FormatError (a truncated file) and leaves
// real I/O failures wrapped.
func readErr(path, what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Path: path, Reason: "truncated " + what}
	}
	return fmt.Errorf("pa: reading %s from %s: %w", what, path, err)
}
