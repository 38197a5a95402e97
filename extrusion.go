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

import "fmt"

// ExtrusionDetails describes how discrete model levels map to
// physical height.
type ExtrusionDetails struct {
	// Domain is the horizontal domain type, e.g. "plane" or "sphere".
	Domain string
	// Method is the extrusion rule; only "linear" (uniform level
	// spacing) is implemented.
	Method string
	// ZMin and ZMax are the heights of the bottom and top of the
	// model domain.
	ZMin, ZMax float64
}

// DefaultExtrusion is a uniform extrusion over a 10 km planar domain.
func DefaultExtrusion() *ExtrusionDetails {
	return &ExtrusionDetails{Domain: "plane", Method: "linear", ZMin: 0, ZMax: 10000}
}

// GenerateExtrusion returns the 1D physical-height axis for the given
// vertical placement. Fields on full levels sit at the layer
// interfaces, including the domain top and bottom; fields on half
// levels sit at the layer midpoints. numLevels is the number of data
// levels for the field being plotted.
func GenerateExtrusion(details *ExtrusionDetails, vertPlacement string, numLevels int) ([]float64, error) {
	if details == nil {
		details = DefaultExtrusion()
	}
	if details.Method != "linear" {
		return nil, fmt.Errorf("tomplot: extrusion method %s not implemented", details.Method)
	}
	if numLevels < 1 {
		return nil, fmt.Errorf("tomplot: cannot generate extrusion for %d levels", numLevels)
	}
	heights := make([]float64, numLevels)
	switch vertPlacement {
	case "full_levels":
		if numLevels == 1 {
			heights[0] = details.ZMin
			return heights, nil
		}
		dz := (details.ZMax - details.ZMin) / float64(numLevels-1)
		for i := range heights {
			heights[i] = details.ZMin + float64(i)*dz
		}
	case "half_levels":
		dz := (details.ZMax - details.ZMin) / float64(numLevels)
		for i := range heights {
			heights[i] = details.ZMin + (float64(i)+0.5)*dz
		}
	default:
		return nil, fmt.Errorf("tomplot: unknown vertical placement %s", vertPlacement)
	}
	return heights, nil
}
