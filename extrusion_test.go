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

import "testing"

func TestGenerateExtrusionFullLevels(t *testing.T) {
	heights, err := GenerateExtrusion(nil, "full_levels", 5)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 2500, 5000, 7500, 10000}
	for i, w := range want {
		if different(heights[i], w) {
			t.Errorf("level %d: got %g, want %g", i, heights[i], w)
		}
	}
}

func TestGenerateExtrusionHalfLevels(t *testing.T) {
	details := &ExtrusionDetails{Domain: "plane", Method: "linear", ZMin: 0, ZMax: 1000}
	heights, err := GenerateExtrusion(details, "half_levels", 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{125, 375, 625, 875}
	for i, w := range want {
		if different(heights[i], w) {
			t.Errorf("level %d: got %g, want %g", i, heights[i], w)
		}
	}
}

func TestGenerateExtrusionErrors(t *testing.T) {
	if _, err := GenerateExtrusion(&ExtrusionDetails{Method: "quadratic"}, "full_levels", 5); err == nil {
		t.Error("expected an error for an unimplemented extrusion method")
	}
	if _, err := GenerateExtrusion(nil, "quarter_levels", 5); err == nil {
		t.Error("expected an error for an unknown vertical placement")
	}
	if _, err := GenerateExtrusion(nil, "full_levels", 0); err == nil {
		t.Error("expected an error for zero levels")
	}
}
