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

	"github.com/ctessum/sparse"
)

const (
	// latentHeatVaporization is the latent heat of vaporization of
	// water [J kg-1].
	latentHeatVaporization = 2.501e6
	// heatCapacityDryAir is the specific heat of dry air at constant
	// pressure [J kg-1 K-1].
	heatCapacityDryAir = 1005.0
)

// EquivalentPotentialTemperature computes the (approximate) equivalent
// potential temperature theta_e = theta * exp(Lv*m_v / (cp*theta*exner))
// from the water vapour mixing ratio, the Exner pressure and the dry
// potential temperature. All three arrays must have the same shape,
// which usually means Exner has already been averaged onto the
// potential-temperature levels with ExnerInWTh.
func EquivalentPotentialTemperature(mv, exner, theta *sparse.DenseArray) (*sparse.DenseArray, error) {
	if len(mv.Elements) != len(theta.Elements) || len(exner.Elements) != len(theta.Elements) {
		return nil, fmt.Errorf("tomplot: computing theta_e: mismatched array sizes %d, %d, %d",
			len(mv.Elements), len(exner.Elements), len(theta.Elements))
	}
	out := sparse.ZerosDense(theta.GetShape()...)
	for i, th := range theta.Elements {
		out.Elements[i] = th * math.Exp(latentHeatVaporization*mv.Elements[i]/
			(heatCapacityDryAir*th*exner.Elements[i]))
	}
	return out, nil
}

// ExnerInWTh averages Exner pressure from half levels onto full
// levels, where the potential temperature space lives. Interior full
// levels take the midpoint of the neighbouring half levels; the bottom
// and top are linearly extrapolated, assuming a uniform extrusion. The
// leading dimension of the input is the vertical.
func ExnerInWTh(exner *sparse.DenseArray) (*sparse.DenseArray, error) {
	shape := exner.GetShape()
	if len(shape) < 1 || shape[0] < 2 {
		return nil, fmt.Errorf("tomplot: averaging Exner onto full levels needs at least 2 half levels, got shape %v", shape)
	}
	nHalf := shape[0]
	width := len(exner.Elements) / nHalf

	outShape := append([]int{nHalf + 1}, shape[1:]...)
	out := sparse.ZerosDense(outShape...)
	for i := 0; i < width; i++ {
		bottom := exner.Elements[i]
		second := exner.Elements[width+i]
		out.Elements[i] = 2*bottom - (bottom+second)/2
		for level := 1; level < nHalf; level++ {
			lower := exner.Elements[(level-1)*width+i]
			upper := exner.Elements[level*width+i]
			out.Elements[level*width+i] = (lower + upper) / 2
		}
		top := exner.Elements[(nHalf-1)*width+i]
		penultimate := exner.Elements[(nHalf-2)*width+i]
		out.Elements[nHalf*width+i] = 2*top - (top+penultimate)/2
	}
	return out, nil
}
