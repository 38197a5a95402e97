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

package tomplot

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
)

type testVar struct {
	name  string
	dims  []string
	data  interface{}
	attrs map[string]string
}

// createTestFile writes a small NetCDF file holding the given
// variables and returns its path.
func createTestFile(t *testing.T, dims []string, lengths []int, vars []testVar) string {
	t.Helper()
	h := cdf.NewHeader(dims, lengths)
	for _, v := range vars {
		h.AddVariable(v.name, v.dims, v.data)
		for a, val := range v.attrs {
			h.AddAttribute(v.name, a, val)
		}
	}
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}

	fname := filepath.Join(t.TempDir(), "test.nc")
	ff, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		if err := f.Fill(v.name); err != nil {
			t.Fatal(err)
		}
		varLengths := f.Header.Lengths(v.name)
		begin := make([]int, len(varLengths))
		end := make([]int, len(varLengths))
		for i, l := range varLengths {
			end[i] = l - 1
		}
		w := f.Writer(v.name, begin, end)
		// Filling the window to its end returns io.EOF on success.
		if _, err := w.Write(v.data); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
	return fname
}

func openTestFile(t *testing.T, dims []string, lengths []int, vars []testVar) *Dataset {
	t.Helper()
	ds, err := OpenDataset(createTestFile(t, dims, lengths, vars))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ds.Close() })
	return ds
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDatasetRead(t *testing.T) {
	ds := openTestFile(t,
		[]string{"time", "half_levels", "nMesh2d_face"}, []int{2, 3, 4},
		[]testVar{
			{name: "rho", dims: []string{"time", "half_levels", "nMesh2d_face"}, data: seq(24)},
			{name: "time", dims: []string{"time"}, data: []float64{0, 10}},
		})

	if !ds.HasVariable("rho") || ds.HasVariable("missing") {
		t.Error("variable presence check failed")
	}

	dims, err := ds.Dimensions("rho")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"time", "half_levels", "nMesh2d_face"}
	for i, d := range dims {
		if d != want[i] {
			t.Errorf("dimension %d: got %s, want %s", i, d, want[i])
		}
	}

	lengths, err := ds.Lengths("rho")
	if err != nil {
		t.Fatal(err)
	}
	if lengths[0] != 2 || lengths[1] != 3 || lengths[2] != 4 {
		t.Errorf("wrong lengths %v", lengths)
	}

	data, err := ds.Read("rho")
	if err != nil {
		t.Fatal(err)
	}
	if data.Get(0, 0, 0) != 0 || data.Get(1, 2, 3) != 23 {
		t.Errorf("wrong data: %v ... %v", data.Get(0, 0, 0), data.Get(1, 2, 3))
	}
}

// TestReadFullExtent pins the behavior that reading a variable's whole
// extent succeeds: the underlying reader reports io.EOF once the window
// is exhausted, which must not surface as an error.
func TestReadFullExtent(t *testing.T) {
	ds := openTestFile(t,
		[]string{"vals"}, []int{6},
		[]testVar{{name: "vals", dims: []string{"vals"}, data: seq(6)}})
	data, err := ds.Read("vals")
	if err != nil {
		t.Fatalf("reading full extent: %v", err)
	}
	if len(data.Elements) != 6 {
		t.Fatalf("got %d elements, want 6", len(data.Elements))
	}
	for i, v := range data.Elements {
		if different(v, float64(i)) {
			t.Errorf("element %d: got %g, want %d", i, v, i)
		}
	}
}

func TestDatasetReadText(t *testing.T) {
	ds := openTestFile(t,
		[]string{"string_len"}, []int{32},
		[]testVar{{name: "domain_type", dims: []string{"string_len"}, data: "spherical_shell"}})
	got, err := ds.ReadText("domain_type")
	if err != nil {
		t.Fatal(err)
	}
	if got != "spherical_shell" {
		t.Errorf("got %q, want %q", got, "spherical_shell")
	}
}

func TestResolveIndex(t *testing.T) {
	tests := []struct {
		idx, n  int
		want    int
		wantErr bool
	}{
		{0, 5, 0, false},
		{4, 5, 4, false},
		{-1, 5, 4, false},
		{-5, 5, 0, false},
		{5, 5, 0, true},
		{-6, 5, 0, true},
	}
	for _, test := range tests {
		got, err := resolveIndex(test.idx, test.n, "time")
		if (err != nil) != test.wantErr {
			t.Errorf("resolveIndex(%d, %d): unexpected error state %v", test.idx, test.n, err)
			continue
		}
		if !test.wantErr && got != test.want {
			t.Errorf("resolveIndex(%d, %d) = %d, want %d", test.idx, test.n, got, test.want)
		}
	}
}

func different(a, b float64) bool {
	const tolerance = 1e-10
	return math.Abs(a-b) > tolerance*math.Max(math.Abs(a), math.Abs(b))+1e-14
}
