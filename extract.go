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
	"strings"

	"github.com/ctessum/sparse"
)

// Idx returns a pointer to i, for use as an optional index selector.
// A nil selector extracts the full extent of the dimension; negative
// values count back from the end.
func Idx(i int) *int { return &i }

// take returns a copy of a with dimension dim fixed at index idx and
// removed from the shape.
func take(a *sparse.DenseArray, dim, idx int) *sparse.DenseArray {
	shape := a.GetShape()
	outShape := make([]int, 0, len(shape)-1)
	for i, n := range shape {
		if i != dim {
			outShape = append(outShape, n)
		}
	}
	out := sparse.ZerosDense(outShape...)

	// Stride of one step along dim, and the block layout around it.
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for o := 0; o < outer; o++ {
		src := (o*shape[dim] + idx) * inner
		dst := o * inner
		copy(out.Elements[dst:dst+inner], a.Elements[src:src+inner])
	}
	return out
}

// ExtractGustoField extracts the data for a Gusto field. timeIdx
// selects a single time point; nil extracts all time points.
func ExtractGustoField(ds *Dataset, fieldName string, timeIdx *int) (*sparse.DenseArray, error) {
	domain, err := ds.ReadText("domain_type")
	if err != nil {
		return nil, fmt.Errorf("tomplot: extracting Gusto field %s: %v", fieldName, err)
	}
	if domain != "spherical_shell" {
		return nil, fmt.Errorf("tomplot: extracting Gusto field %s: domain %s either not implemented or recognised", fieldName, domain)
	}
	v := gustoFieldVariable(fieldName)
	data, err := ds.Read(v)
	if err != nil {
		return nil, err
	}
	if timeIdx == nil {
		return data, nil
	}
	// Layout is (coords, time); fix the trailing time dimension.
	shape := data.GetShape()
	t, err := resolveIndex(*timeIdx, shape[len(shape)-1], "time")
	if err != nil {
		return nil, err
	}
	return take(data, len(shape)-1, t), nil
}

// ExtractGustoCoords extracts the coordinate arrays for a Gusto field.
func ExtractGustoCoords(ds *Dataset, fieldName string) (coordsX, coordsY *sparse.DenseArray, err error) {
	domain, err := ds.ReadText("domain_type")
	if err != nil {
		return nil, nil, fmt.Errorf("tomplot: extracting Gusto coords for %s: %v", fieldName, err)
	}
	if domain != "spherical_shell" {
		return nil, nil, fmt.Errorf("tomplot: extracting Gusto coords for %s: domain %s either not implemented or recognised", fieldName, domain)
	}
	dims, err := ds.Dimensions(gustoFieldVariable(fieldName))
	if err != nil {
		return nil, nil, err
	}
	// The leading dimension is named "coords_<space>"; the coordinate
	// variables for the space are "lon_<space>" and "lat_<space>".
	space := strings.TrimPrefix(dims[0], "coords_")
	if space == dims[0] {
		return nil, nil, fmt.Errorf("tomplot: cannot derive coordinate space from dimension %s of field %s", dims[0], fieldName)
	}
	coordsX, err = ds.Read("lon_" + space)
	if err != nil {
		return nil, nil, fmt.Errorf("tomplot: coordinate variable lon_%s not found for field %s: %v", space, fieldName, err)
	}
	coordsY, err = ds.Read("lat_" + space)
	if err != nil {
		return nil, nil, fmt.Errorf("tomplot: coordinate variable lat_%s not found for field %s: %v", space, fieldName, err)
	}
	return coordsX, coordsY, nil
}

// gustoFieldVariable is the flattened variable name holding the values
// of a Gusto field. Gusto files group each field's data under the field
// name; the classic-format files tomplot works with join the group path
// with a double underscore.
func gustoFieldVariable(fieldName string) string {
	return fieldName + "__field_values"
}

// ExtractLFRicField extracts the data for an LFRic field. timeIdx and
// level each select a single index along the corresponding dimension;
// nil selectors extract the full extent. Fields without a time or
// vertical dimension return their data unchanged regardless of the
// selectors.
func ExtractLFRicField(ds *Dataset, fieldName string, timeIdx, level *int) (*sparse.DenseArray, error) {
	shape, err := ds.FieldShapeOf(fieldName)
	if err != nil {
		return nil, err
	}
	data, err := ds.Read(fieldName)
	if err != nil {
		return nil, err
	}
	switch shape {
	case ShapeTimeLevelCell:
		if level != nil {
			l, err := resolveIndex(*level, data.GetShape()[1], "level")
			if err != nil {
				return nil, err
			}
			data = take(data, 1, l)
		}
		if timeIdx != nil {
			t, err := resolveIndex(*timeIdx, data.GetShape()[0], "time")
			if err != nil {
				return nil, err
			}
			data = take(data, 0, t)
		}
	case ShapeTimeCell:
		if timeIdx != nil {
			t, err := resolveIndex(*timeIdx, data.GetShape()[0], "time")
			if err != nil {
				return nil, err
			}
			data = take(data, 0, t)
		}
	case ShapeLevelCell:
		if level != nil {
			l, err := resolveIndex(*level, data.GetShape()[0], "level")
			if err != nil {
				return nil, err
			}
			data = take(data, 0, l)
		}
	case ShapeCell:
		// Nothing to select.
	}
	return data, nil
}

// ExtractLFRicCoords extracts the horizontal coordinate arrays for an
// LFRic field. The trailing dimension of the field is named for the
// coordinate data, e.g. "nMesh2d_face"; the corresponding coordinate
// variables drop the leading size marker and append a suffix, giving
// "Mesh2d_face_x" and "Mesh2d_face_y".
func ExtractLFRicCoords(ds *Dataset, fieldName string) (coordsX, coordsY *sparse.DenseArray, err error) {
	dims, err := ds.Dimensions(fieldName)
	if err != nil {
		return nil, nil, err
	}
	rootName := dims[len(dims)-1]
	if len(rootName) < 2 {
		return nil, nil, fmt.Errorf("tomplot: cannot derive coordinate variables from dimension %s of field %s", rootName, fieldName)
	}
	xName := rootName[1:] + "_x"
	yName := rootName[1:] + "_y"
	if !ds.HasVariable(xName) || !ds.HasVariable(yName) {
		return nil, nil, fmt.Errorf("tomplot: coordinate variables %s, %s (derived from dimension %s) not found for field %s",
			xName, yName, rootName, fieldName)
	}
	coordsX, err = ds.Read(xName)
	if err != nil {
		return nil, nil, err
	}
	coordsY, err = ds.Read(yName)
	if err != nil {
		return nil, nil, err
	}
	return coordsX, coordsY, nil
}

// ExtractLFRicHeights extracts the height data matching the vertical
// placement of the given field. level selects a single vertical level;
// nil extracts all levels. Height data may be stored with or without a
// time dimension; time-varying heights are always sampled at the first
// time point, since the vertical grid is treated as static for
// plotting purposes.
func ExtractLFRicHeights(heightDS, fieldDS *Dataset, fieldName string, level *int) (*sparse.DenseArray, error) {
	dims, err := fieldDS.Dimensions(fieldName)
	if err != nil {
		return nil, err
	}
	if len(dims) < 2 {
		return nil, fmt.Errorf("tomplot: field %s has no vertical dimension so cannot work out height field", fieldName)
	}
	vertDim := dims[len(dims)-2]
	horiDim := dims[len(dims)-1]

	var heightName string
	switch {
	case vertDim == "half_levels" && horiDim == "nMesh2d_face":
		heightName = "height_w3"
	case vertDim == "full_levels" && horiDim == "nMesh2d_face":
		heightName = "height_wth"
	default:
		return nil, fmt.Errorf("tomplot: dimensions (%s, %s) for %s are not implemented so cannot work out height field", vertDim, horiDim, fieldName)
	}

	heights, err := heightDS.Read(heightName)
	if err != nil {
		return nil, err
	}
	switch len(heights.GetShape()) {
	case 2:
		// Initial data with no time value.
	case 3:
		heights = take(heights, 0, 0)
	default:
		return nil, fmt.Errorf("tomplot: trying to extract %s field, but the array is not 2D or 3D, so cannot proceed", heightName)
	}
	if level != nil {
		l, err := resolveIndex(*level, heights.GetShape()[0], vertDim)
		if err != nil {
			return nil, err
		}
		heights = take(heights, 0, l)
	}
	return heights, nil
}
