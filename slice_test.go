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
	"errors"
	"testing"
)

func sliceTestDataset(t *testing.T) *Dataset {
	t.Helper()
	// A 2x2 planar mesh with 2 levels and 1 time point. The flat field
	// value at (level, face) is level*4 + face.
	return openTestFile(t,
		[]string{"time", "half_levels", "nMesh2d_face"}, []int{1, 2, 4},
		[]testVar{
			{name: "time", dims: []string{"time"}, data: []float64{0}},
			{name: "rho", dims: []string{"time", "half_levels", "nMesh2d_face"}, data: seq(8)},
			{name: "Mesh2d_face_x", dims: []string{"nMesh2d_face"}, data: []float64{0, 1, 0, 1}},
			{name: "Mesh2d_face_y", dims: []string{"nMesh2d_face"}, data: []float64{0, 0, 1, 1}},
		})
}

func TestExtractLFRicVerticalSlice(t *testing.T) {
	ds := sliceTestDataset(t)
	vs, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "y", At: 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	shape := vs.Field.GetShape()
	if shape[0] != 2 || shape[1] != 2 {
		t.Fatalf("wrong slice shape %v", shape)
	}
	// Faces 0 and 1 lie on y=0; their values are 0, 1 on level 0 and
	// 4, 5 on level 1.
	if different(vs.Field.Get(0, 0), 0) || different(vs.Field.Get(1, 0), 1) ||
		different(vs.Field.Get(0, 1), 4) || different(vs.Field.Get(1, 1), 5) {
		t.Errorf("wrong slice values %v", vs.Field.Elements)
	}
	// X runs along the slice; Z is the level index with no height data.
	if different(vs.X.Get(0, 0), 0) || different(vs.X.Get(1, 0), 1) {
		t.Errorf("wrong X values %v", vs.X.Elements)
	}
	if different(vs.Z.Get(0, 0), 0) || different(vs.Z.Get(0, 1), 1) {
		t.Errorf("wrong Z values %v", vs.Z.Elements)
	}
}

func TestExtractLFRicVerticalSliceHeights(t *testing.T) {
	ds := sliceTestDataset(t)
	heightDS := openTestFile(t,
		[]string{"half_levels", "nMesh2d_face"}, []int{2, 4},
		[]testVar{{name: "height_w3", dims: []string{"half_levels", "nMesh2d_face"}, data: constant(8, 500)}})
	vs, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "y", At: 0}, heightDS)
	if err != nil {
		t.Fatal(err)
	}
	if different(vs.Z.Get(0, 0), 500) || different(vs.Z.Get(1, 1), 500) {
		t.Errorf("Z should hold heights, got %v", vs.Z.Elements)
	}
}

func TestExtractLFRicVerticalSliceNoPoints(t *testing.T) {
	ds := sliceTestDataset(t)
	_, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "y", At: 5}, nil)
	if !errors.Is(err, ErrNoSlicePoints) {
		t.Fatalf("expected ErrNoSlicePoints, got %v", err)
	}
}

func TestExtractLFRicVerticalSliceValidation(t *testing.T) {
	ds := sliceTestDataset(t)
	if _, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "sideways", At: 0}, nil); err == nil {
		t.Error("expected an error for an unknown slice coordinate")
	}
	if _, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "alpha", At: 0}, nil); err == nil {
		t.Error("expected an error for a missing panel ID")
	}
}

func TestExtractLFRicVerticalSliceLevels(t *testing.T) {
	ds := sliceTestDataset(t)
	vs, err := ExtractLFRicVerticalSlice(ds, "rho", Idx(0), SliceSpec{Along: "y", At: 0, Levels: []int{1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	shape := vs.Field.GetShape()
	if shape[0] != 2 || shape[1] != 1 {
		t.Fatalf("wrong shape %v for a single-level slice", shape)
	}
	if different(vs.Field.Get(0, 0), 4) || different(vs.Field.Get(1, 0), 5) {
		t.Errorf("wrong values %v", vs.Field.Elements)
	}
}
