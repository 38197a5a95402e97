/*
Copyright © 2023 the Tomplot authors.
This file is part of Tomplot.

Tomplot is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Tomplot is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Tomplot.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package tomplot extracts and regrids fields from LFRic and Gusto
// model output files so that they can be plotted.
package tomplot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// A Dataset is an open NetCDF model output file.
type Dataset struct {
	f  *cdf.File
	ff *os.File

	// numRecs is the number of records in the file's record
	// (unlimited) dimension, or zero if there isn't one. The header
	// does not store this reliably, so it is computed from the file
	// size when the dataset is opened.
	numRecs int64
}

// OpenDataset opens the NetCDF file at the given path for reading.
func OpenDataset(filename string) (*Dataset, error) {
	ff, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("tomplot: opening dataset: %v", err)
	}
	f, err := cdf.Open(ff)
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("tomplot: opening dataset %s: %v", filename, err)
	}
	fi, err := ff.Stat()
	if err != nil {
		ff.Close()
		return nil, fmt.Errorf("tomplot: opening dataset %s: %v", filename, err)
	}
	return &Dataset{f: f, ff: ff, numRecs: f.Header.NumRecs(fi.Size())}, nil
}

// Close closes the underlying file.
func (d *Dataset) Close() error { return d.ff.Close() }

// HasVariable reports whether the file contains a variable with
// the given name.
func (d *Dataset) HasVariable(name string) bool {
	for _, v := range d.f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// Dimensions returns the dimension names of variable v.
func (d *Dataset) Dimensions(v string) ([]string, error) {
	if !d.HasVariable(v) {
		return nil, fmt.Errorf("tomplot: variable %s not in dataset", v)
	}
	return d.f.Header.Dimensions(v), nil
}

// Lengths returns the dimension lengths of variable v, with any
// record dimension replaced by the actual number of records in
// the file.
func (d *Dataset) Lengths(v string) ([]int, error) {
	if !d.HasVariable(v) {
		return nil, fmt.Errorf("tomplot: variable %s not in dataset", v)
	}
	lengths := d.f.Header.Lengths(v)
	out := make([]int, len(lengths))
	copy(out, lengths)
	if len(out) > 0 && out[0] == 0 {
		out[0] = int(d.numRecs)
	}
	return out, nil
}

// Attribute returns the named attribute of variable v, or nil if the
// attribute does not exist. The empty string accesses global attributes.
func (d *Dataset) Attribute(v, name string) interface{} {
	return d.f.Header.GetAttribute(v, name)
}

// Read reads the whole of variable v into a dense array,
// converting the stored values to float64.
func (d *Dataset) Read(v string) (*sparse.DenseArray, error) {
	lengths, err := d.Lengths(v)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	begin := make([]int, len(lengths))
	end := make([]int, len(lengths))
	for i, l := range lengths {
		end[i] = l - 1
	}
	r := d.f.Reader(v, begin, end)
	buf := r.Zero(n)
	// The strider signals the end of the read window with io.EOF even
	// when everything requested was transferred.
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("tomplot: reading variable %s: %v", v, err)
	}
	out := sparse.ZerosDense(lengths...)
	if err := copyToFloat64(out.Elements, buf); err != nil {
		return nil, fmt.Errorf("tomplot: reading variable %s: %v", v, err)
	}
	return out, nil
}

// ReadText reads a character variable as a string, dropping any
// trailing NUL padding.
func (d *Dataset) ReadText(v string) (string, error) {
	lengths, err := d.Lengths(v)
	if err != nil {
		return "", err
	}
	n := 1
	for _, l := range lengths {
		n *= l
	}
	begin := make([]int, len(lengths))
	end := make([]int, len(lengths))
	for i, l := range lengths {
		end[i] = l - 1
	}
	r := d.f.Reader(v, begin, end)
	buf := make([]uint8, n)
	if _, err := r.Read(buf); err != nil && err != io.EOF {
		return "", fmt.Errorf("tomplot: reading variable %s: %v", v, err)
	}
	return strings.TrimRight(string(buf), "\x00 "), nil
}

func copyToFloat64(dst []float64, buf interface{}) error {
	switch b := buf.(type) {
	case []float64:
		copy(dst, b)
	case []float32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			dst[i] = float64(v)
		}
	default:
		return fmt.Errorf("unsupported data type %T", buf)
	}
	return nil
}

// resolveIndex converts an index that may count back from the end of a
// dimension (numpy style) into an absolute index, checking bounds.
func resolveIndex(idx, n int, dim string) (int, error) {
	i := idx
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("tomplot: index %d out of range for dimension %s of length %d", idx, dim, n)
	}
	return i, nil
}
