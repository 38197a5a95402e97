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
	"math"
	"testing"
)

func TestLonLatToAlphaBetaPanelCentres(t *testing.T) {
	tests := []struct {
		lon, lat  float64
		wantPanel int
	}{
		{0, 0, 1},
		{90, 0, 2},
		{180, 0, 3},
		{-90, 0, 4},
		{0, 90, 5},
		{0, -90, 6},
	}
	for _, test := range tests {
		alpha, beta, panel := lonLatToAlphaBeta(test.lon, test.lat)
		if panel != test.wantPanel {
			t.Errorf("(%g, %g): got panel %d, want %d", test.lon, test.lat, panel, test.wantPanel)
		}
		if math.Abs(alpha) > 1e-10 || math.Abs(beta) > 1e-10 {
			t.Errorf("(%g, %g): panel centre should map to (0, 0), got (%g, %g)", test.lon, test.lat, alpha, beta)
		}
	}
}

func TestLonLatAlphaBetaRoundTrip(t *testing.T) {
	points := [][2]float64{
		{10, 20}, {100, -30}, {-120, 40}, {170, 10}, {20, 80}, {-40, -75}, {44, 0}, {-1, -44},
	}
	for _, pt := range points {
		alpha, beta, panel := lonLatToAlphaBeta(pt[0], pt[1])
		if math.Abs(alpha) > 45+1e-9 || math.Abs(beta) > 45+1e-9 {
			t.Errorf("(%g, %g): coordinates (%g, %g) outside [-45, 45]", pt[0], pt[1], alpha, beta)
		}
		lon, lat, err := AlphaBetaToLonLat(alpha, beta, panel)
		if err != nil {
			t.Fatal(err)
		}
		if different(lon, pt[0]) || different(lat, pt[1]) {
			t.Errorf("(%g, %g) -> panel %d (%g, %g) -> (%g, %g): round trip failed",
				pt[0], pt[1], panel, alpha, beta, lon, lat)
		}
	}
}

func TestLonLatToAlphaBetaArrays(t *testing.T) {
	lon := []float64{0, 90}
	lat := []float64{0, 0}
	alpha, beta, panel, err := LonLatToAlphaBeta(lon, lat)
	if err != nil {
		t.Fatal(err)
	}
	if len(alpha) != 2 || len(beta) != 2 || panel[0] != 1 || panel[1] != 2 {
		t.Errorf("wrong array results: alpha=%v beta=%v panel=%v", alpha, beta, panel)
	}
	if _, _, _, err := LonLatToAlphaBeta(lon, lat[:1]); err == nil {
		t.Error("expected an error for mismatched array lengths")
	}
}

func TestAlphaBetaToLonLatBadPanel(t *testing.T) {
	if _, _, err := AlphaBetaToLonLat(0, 0, 7); err == nil {
		t.Error("expected an error for an out-of-range panel ID")
	}
}
