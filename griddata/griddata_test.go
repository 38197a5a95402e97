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

package griddata

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func different(a, b float64) bool {
	const tolerance = 1e-9
	return math.Abs(a-b) > tolerance*math.Max(math.Abs(a), math.Abs(b))+1e-12
}

// unitSquare is the four corners of the unit square with values x + y.
func unitSquare() ([]geom.Point, []float64) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.X + p.Y
	}
	return points, values
}

func TestLinear(t *testing.T) {
	points, values := unitSquare()
	targets := []geom.Point{
		{X: 0.5, Y: 0.5},
		{X: 0.25, Y: 0.25},
		{X: 0, Y: 0},
		{X: 5, Y: 5}, // outside the convex hull
	}
	got, err := Linear(points, values, targets)
	if err != nil {
		t.Fatal(err)
	}
	// x + y is linear, so the interpolation is exact inside the hull.
	want := []float64{1, 0.5, 0}
	for i, w := range want {
		if different(got[i], w) {
			t.Errorf("target %d: got %g, want %g", i, got[i], w)
		}
	}
	if !math.IsNaN(got[3]) {
		t.Errorf("target outside the hull: got %g, want NaN", got[3])
	}
}

func TestLinearCollinear(t *testing.T) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	got, err := Linear(points, []float64{1, 2, 3}, []geom.Point{{X: 1, Y: 0}})
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(got[0]) {
		t.Errorf("collinear data cannot be triangulated; got %g, want NaN", got[0])
	}
}

func TestLinearSizeMismatch(t *testing.T) {
	points, _ := unitSquare()
	if _, err := Linear(points, []float64{1}, nil); err == nil {
		t.Error("expected an error for mismatched points and values")
	}
}

func TestNearest(t *testing.T) {
	points := []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	values := []float64{1, 2, 3}
	targets := []geom.Point{
		{X: 1, Y: 1},
		{X: 9, Y: 1},
		{X: 1, Y: 9},
		{X: -100, Y: -100},
	}
	got, err := Nearest(points, values, targets)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 2, 3, 1}
	for i, w := range want {
		if different(got[i], w) {
			t.Errorf("target %d: got %g, want %g", i, got[i], w)
		}
	}
}

func TestLinearWithFallback(t *testing.T) {
	points, values := unitSquare()
	// A 5x5 mesh extending past the data on every side.
	var targets []geom.Point
	for j := 0; j < 5; j++ {
		for i := 0; i < 5; i++ {
			targets = append(targets, geom.Point{X: -0.5 + 0.5*float64(i), Y: -0.5 + 0.5*float64(j)})
		}
	}
	got, err := LinearWithFallback(points, values, targets)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if math.IsNaN(v) {
			t.Errorf("target %d: NaN remains after the nearest fill", i)
		}
	}
	// Inside the hull the result is still the linear interpolant.
	centre := got[12] // (0.5, 0.5)
	if different(centre, 1) {
		t.Errorf("centre: got %g, want 1", centre)
	}
}

func TestTriangulate(t *testing.T) {
	points, _ := unitSquare()
	tris := triangulate(points)
	if len(tris) != 2 {
		t.Fatalf("square should triangulate to 2 triangles, got %d", len(tris))
	}
	for _, tr := range tris {
		if tr.i0 < 0 || tr.i1 < 0 || tr.i2 < 0 {
			t.Errorf("super-triangle vertex left in result: %+v", tr)
		}
	}
}

func TestBarycentric(t *testing.T) {
	tr := newTriangle(0, 1, 2, geom.Point{X: 0, Y: 0}, geom.Point{X: 1, Y: 0}, geom.Point{X: 0, Y: 1})
	w0, w1, w2, inside := tr.barycentric(geom.Point{X: 0.25, Y: 0.25})
	if !inside {
		t.Fatal("point should be inside the triangle")
	}
	if different(w0, 0.5) || different(w1, 0.25) || different(w2, 0.25) {
		t.Errorf("wrong weights %g, %g, %g", w0, w1, w2)
	}
	if _, _, _, inside := tr.barycentric(geom.Point{X: 1, Y: 1}); inside {
		t.Error("point should be outside the triangle")
	}
}
