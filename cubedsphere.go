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
	"fmt"
	"math"
)

// Equiangular cubed-sphere coordinates. Each of the six panels has a
// local (alpha, beta) coordinate pair, both in [-45, 45] degrees.
// Panels 1-4 go around the equator starting from the panel centred on
// (lon, lat) = (0, 0); panel 5 holds the north pole and panel 6 the
// south pole.

// panelAxes gives, for each panel, the unit vectors (w, u, v) such
// that alpha = atan(r·u / r·w) and beta = atan(r·v / r·w), with w
// pointing at the panel centre.
var panelAxes = [6][3][3]float64{
	{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},   // panel 1: +x
	{{0, 1, 0}, {-1, 0, 0}, {0, 0, 1}},  // panel 2: +y
	{{-1, 0, 0}, {0, -1, 0}, {0, 0, 1}}, // panel 3: -x
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},  // panel 4: -y
	{{0, 0, 1}, {0, 1, 0}, {-1, 0, 0}},  // panel 5: north
	{{0, 0, -1}, {0, 1, 0}, {1, 0, 0}},  // panel 6: south
}

func dot(a [3]float64, x, y, z float64) float64 {
	return a[0]*x + a[1]*y + a[2]*z
}

// LonLatToAlphaBeta converts longitude/latitude coordinates (degrees)
// to equiangular cubed-sphere coordinates (degrees) and panel IDs
// (1 to 6).
func LonLatToAlphaBeta(lon, lat []float64) (alpha, beta []float64, panel []int, err error) {
	if len(lon) != len(lat) {
		return nil, nil, nil, fmt.Errorf("tomplot: lon and lat have mismatched lengths %d and %d", len(lon), len(lat))
	}
	alpha = make([]float64, len(lon))
	beta = make([]float64, len(lon))
	panel = make([]int, len(lon))
	for i := range lon {
		alpha[i], beta[i], panel[i] = lonLatToAlphaBeta(lon[i], lat[i])
	}
	return alpha, beta, panel, nil
}

func lonLatToAlphaBeta(lon, lat float64) (alpha, beta float64, panel int) {
	λ := lon * math.Pi / 180
	φ := lat * math.Pi / 180
	x := math.Cos(λ) * math.Cos(φ)
	y := math.Sin(λ) * math.Cos(φ)
	z := math.Sin(φ)

	// The panel is the one whose centre direction has the largest
	// projection onto the point.
	panel = 1
	best := dot(panelAxes[0][0], x, y, z)
	for p := 1; p < 6; p++ {
		if w := dot(panelAxes[p][0], x, y, z); w > best {
			best = w
			panel = p + 1
		}
	}
	ax := panelAxes[panel-1]
	w := dot(ax[0], x, y, z)
	u := dot(ax[1], x, y, z)
	v := dot(ax[2], x, y, z)
	alpha = math.Atan(u/w) * 180 / math.Pi
	beta = math.Atan(v/w) * 180 / math.Pi
	return alpha, beta, panel
}

// AlphaBetaToLonLat converts equiangular cubed-sphere coordinates
// (degrees) on the given panel back to longitude/latitude (degrees).
func AlphaBetaToLonLat(alpha, beta float64, panel int) (lon, lat float64, err error) {
	if panel < 1 || panel > 6 {
		return 0, 0, fmt.Errorf("tomplot: panel ID %d out of range 1-6", panel)
	}
	a := math.Tan(alpha * math.Pi / 180)
	b := math.Tan(beta * math.Pi / 180)
	ax := panelAxes[panel-1]
	// Reassemble the Cartesian direction w + a·u + b·v.
	var x, y, z float64
	for c, val := range []float64{1, a, b} {
		x += val * ax[c][0]
		y += val * ax[c][1]
		z += val * ax[c][2]
	}
	r := math.Sqrt(x*x + y*y + z*z)
	lon = math.Atan2(y, x) * 180 / math.Pi
	lat = math.Asin(z/r) * 180 / math.Pi
	return lon, lat, nil
}
