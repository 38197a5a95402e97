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
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// ErrNoSlicePoints is returned when no data points lie within
// tolerance of a requested slice coordinate. The caller should either
// loosen the tolerance or regrid the data first; there is no
// nearest-point fallback.
var ErrNoSlicePoints = errors.New("no data points within tolerance of requested slice")

// A SliceSpec chooses a vertical cross-section through 3D
// unstructured data.
type SliceSpec struct {
	// Along names the coordinate held fixed by the slice: one of
	// "x", "y", "lon", "lat", "alpha" or "beta".
	Along string
	// At is the coordinate value to slice at.
	At float64
	// Tolerance determines how close data points must be to the
	// slice coordinate; zero means the default of 1e-4.
	Tolerance float64
	// Panel identifies the cubed-sphere panel to slice along, 1 to 6.
	// It must be set when Along is "alpha" or "beta".
	Panel int
	// Levels lists the model levels to extract; nil extracts all.
	Levels []int
}

// A VerticalSlice holds the data and coordinates for a vertical
// cross-section. All arrays have shape (points, levels).
type VerticalSlice struct {
	Field *sparse.DenseArray
	// X is the horizontal coordinate running along the slice.
	X *sparse.DenseArray
	// Y is the coordinate the slice is taken along (constant to
	// within the slice tolerance).
	Y *sparse.DenseArray
	// Z is the vertical coordinate: physical height when a height
	// dataset was supplied, model level index otherwise.
	Z *sparse.DenseArray
}

func sliceAlongX(along string) (bool, error) {
	switch along {
	case "x", "lon", "alpha":
		return true, nil
	case "y", "lat", "beta":
		return false, nil
	}
	return false, fmt.Errorf("tomplot: slice coordinate %q is not one of x, y, lon, lat, alpha, beta", along)
}

// ExtractLFRicVerticalSlice extracts the field values and coordinates
// on a vertical slice of LFRic data. timeIdx selects the time point;
// nil is allowed for fields without a time dimension. heightDS
// supplies the height data to use as the vertical coordinate; if nil
// the model level index is used instead.
//
// Every level must yield the same number of points within tolerance of
// the slice; a level that matches a different number of points than
// the first is an error, since the rows of the output arrays would no
// longer be aligned.
func ExtractLFRicVerticalSlice(fieldDS *Dataset, fieldName string, timeIdx *int, spec SliceSpec, heightDS *Dataset) (*VerticalSlice, error) {
	alongIsX, err := sliceAlongX(spec.Along)
	if err != nil {
		return nil, err
	}
	usePanels := spec.Along == "alpha" || spec.Along == "beta"
	if usePanels && (spec.Panel < 1 || spec.Panel > 6) {
		return nil, fmt.Errorf("tomplot: slicing along %s requires a panel ID between 1 and 6, got %d", spec.Along, spec.Panel)
	}
	tolerance := spec.Tolerance
	if tolerance == 0 {
		tolerance = 1e-4
	}

	shape, err := fieldDS.FieldShapeOf(fieldName)
	if err != nil {
		return nil, err
	}
	lengths, err := fieldDS.Lengths(fieldName)
	if err != nil {
		return nil, err
	}
	var numLevels int
	switch shape {
	case ShapeLevelCell:
		numLevels = lengths[0]
	case ShapeTimeLevelCell:
		numLevels = lengths[1]
	default:
		return nil, fmt.Errorf("tomplot: cannot take a vertical slice of field %s with shape %v", fieldName, shape)
	}
	levels := spec.Levels
	if levels == nil {
		levels = make([]int, numLevels)
		for i := range levels {
			levels[i] = i
		}
	}

	coordsX, coordsY, err := ExtractLFRicCoords(fieldDS, fieldName)
	if err != nil {
		return nil, err
	}
	xvals := coordsX.Elements
	yvals := coordsY.Elements
	var panelIDs []int
	if usePanels {
		// The stored coordinates are assumed to be lon/lat.
		xvals, yvals, panelIDs, err = LonLatToAlphaBeta(xvals, yvals)
		if err != nil {
			return nil, err
		}
	}

	var field, outX, outY, outZ *sparse.DenseArray
	var width int
	for levIdx, level := range levels {
		levelData, err := ExtractLFRicField(fieldDS, fieldName, timeIdx, Idx(level))
		if err != nil {
			return nil, err
		}
		if len(levelData.GetShape()) != 1 {
			return nil, fmt.Errorf("tomplot: vertical slice of %s: level %d data is not one-dimensional; a time index is required", fieldName, level)
		}
		var heights *sparse.DenseArray
		if heightDS != nil {
			heights, err = ExtractLFRicHeights(heightDS, fieldDS, fieldName, Idx(level))
			if err != nil {
				return nil, err
			}
		}

		var matches []int
		sliceCoord := yvals
		if alongIsX {
			sliceCoord = xvals
		}
		for i := range levelData.Elements {
			if math.Abs(sliceCoord[i]-spec.At) >= tolerance {
				continue
			}
			if usePanels && panelIDs[i] != spec.Panel {
				continue
			}
			matches = append(matches, i)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("tomplot: field %s level %d at %s = %g: %w", fieldName, level, spec.Along, spec.At, ErrNoSlicePoints)
		}

		if levIdx == 0 {
			width = len(matches)
			field = sparse.ZerosDense(width, len(levels))
			outX = sparse.ZerosDense(width, len(levels))
			outY = sparse.ZerosDense(width, len(levels))
			outZ = sparse.ZerosDense(width, len(levels))
		} else if len(matches) != width {
			return nil, fmt.Errorf("tomplot: field %s: level %d matches %d points on the slice but level %d matches %d; cannot build aligned slice arrays",
				fieldName, level, len(matches), levels[0], width)
		}

		crossCoord := xvals
		if alongIsX {
			crossCoord = yvals
		}
		for row, i := range matches {
			field.Set(levelData.Elements[i], row, levIdx)
			outX.Set(crossCoord[i], row, levIdx)
			outY.Set(sliceCoord[i], row, levIdx)
			if heights != nil {
				outZ.Set(heights.Elements[i], row, levIdx)
			} else {
				outZ.Set(float64(level), row, levIdx)
			}
		}
	}

	return &VerticalSlice{Field: field, X: outX, Y: outY, Z: outZ}, nil
}
