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

package tomplotutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/lnashier/viper"

	"github.com/tomplot/tomplot"
)

func TestOptionDefaults(t *testing.T) {
	tests := []struct {
		name string
		want interface{}
	}{
		{"SliceName", "xy"},
		{"OutputFile", "tomplot.png"},
		{"Mode", "transport_stats"},
		{"Category", "global_quantities"},
		{"SliceAlong", "lat"},
		{"Extrusion.Method", "linear"},
	}
	for _, test := range tests {
		if got := Cfg.GetString(test.name); got != test.want {
			t.Errorf("%s: got %q, want %q", test.name, got, test.want)
		}
	}
	if got := Cfg.GetInt("TimeIdx"); got != -1 {
		t.Errorf("TimeIdx: got %d, want -1", got)
	}
	if got := Cfg.GetFloat64("Extrusion.ZMax"); got != 10000 {
		t.Errorf("Extrusion.ZMax: got %g, want 10000", got)
	}
}

func TestGetRunParams(t *testing.T) {
	v := viper.New()

	v.Set("RunParams", `{"dx": [100, 50, 25]}`)
	got, err := getRunParams("RunParams", v)
	if err != nil {
		t.Fatal(err)
	}
	if len(got["dx"]) != 3 || got["dx"][0] != 100 {
		t.Errorf("wrong parsed JSON parameters %v", got)
	}

	v.Set("RunParams", "{}")
	if got, err := getRunParams("RunParams", v); err != nil || got != nil {
		t.Errorf("empty object should give nil, got %v, %v", got, err)
	}

	// A config file gives a map rather than a JSON string.
	v.Set("RunParams", map[string]interface{}{"dx": []interface{}{100.0, 50}})
	got, err = getRunParams("RunParams", v)
	if err != nil {
		t.Fatal(err)
	}
	if len(got["dx"]) != 2 || got["dx"][1] != 50 {
		t.Errorf("wrong parsed map parameters %v", got)
	}

	// Scalar values are promoted to single-run lists.
	v.Set("RunParams", `{"dx": 100}`)
	got, err = getRunParams("RunParams", v)
	if err != nil {
		t.Fatal(err)
	}
	if len(got["dx"]) != 1 || got["dx"][0] != 100 {
		t.Errorf("scalar not promoted to a single-run list: %v", got)
	}

	v.Set("RunParams", `not json`)
	if _, err := getRunParams("RunParams", v); err == nil {
		t.Error("expected an error for malformed JSON")
	}

	v.Set("RunParams", 12)
	if _, err := getRunParams("RunParams", v); err == nil {
		t.Error("expected an error for an invalid value type")
	}
}

// batchDataFile writes a small model output file with a constant field
// on a 3x3 planar mesh.
func batchDataFile(t *testing.T, dir string) string {
	t.Helper()
	var x, y []float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			x = append(x, float64(i))
			y = append(y, float64(j))
		}
	}
	rain := make([]float64, 9)
	for i := range rain {
		rain[i] = 4
	}

	h := cdf.NewHeader([]string{"time", "nMesh2d_face"}, []int{1, 9})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("rain", []string{"time", "nMesh2d_face"}, []float64{0})
	h.AddVariable("Mesh2d_face_x", []string{"nMesh2d_face"}, []float64{0})
	h.AddVariable("Mesh2d_face_y", []string{"nMesh2d_face"}, []float64{0})
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}

	filename := filepath.Join(dir, "data.nc")
	ff, err := os.Create(filename)
	if err != nil {
		t.Fatal(err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(v string, begin, end []int, data []float64) {
		// A write filling its whole window ends with io.EOF.
		if _, err := f.Writer(v, begin, end).Write(data); err != nil && err != io.EOF {
			t.Fatalf("writing %s: %v", v, err)
		}
	}
	write("time", []int{0}, []int{0}, []float64{5})
	write("rain", []int{0, 0}, []int{0, 8}, rain)
	write("Mesh2d_face_x", []int{0}, []int{8}, x)
	write("Mesh2d_face_y", []int{0}, []int{8}, y)
	if err := cdf.UpdateNumRecs(ff); err != nil {
		t.Fatal(err)
	}
	return filename
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	dataFile := batchDataFile(t, dir)
	outFile := filepath.Join(dir, "rain.png")
	jobFile := filepath.Join(dir, "jobs.toml")
	content := fmt.Sprintf(`
DataFile = %q

[[plot]]
Field = "rain"
TimeIdx = 0
SliceName = "xy"
NumPoints = 5
OutputFile = %q
`, dataFile, outFile)
	if err := os.WriteFile(jobFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RunBatch(jobFile); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() == 0 {
		t.Fatal("batch output figure is empty")
	}

	// The data file must still open cleanly afterwards.
	ds, err := tomplot.OpenDataset(dataFile)
	if err != nil {
		t.Fatal(err)
	}
	ds.Close()
}

func TestRunBatchErrors(t *testing.T) {
	dir := t.TempDir()
	if err := RunBatch(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected an error for a missing job file")
	}
	empty := filepath.Join(dir, "empty.toml")
	if err := os.WriteFile(empty, []byte("DataFile = \"x.nc\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := RunBatch(empty); err == nil {
		t.Error("expected an error for a job file with no plots")
	}
}
