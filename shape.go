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

// FieldShape classifies the dimension layout of an LFRic field.
// Only four layouts occur in LFRic output; anything else is an error.
type FieldShape int

const (
	// ShapeTimeLevelCell is 3D time-varying data: (time, level, cell).
	ShapeTimeLevelCell FieldShape = iota
	// ShapeTimeCell is 2D time-varying data: (time, cell).
	ShapeTimeCell
	// ShapeLevelCell is 3D data with no time dimension: (level, cell).
	ShapeLevelCell
	// ShapeCell is 2D data with no time dimension: (cell).
	ShapeCell
)

func (s FieldShape) String() string {
	switch s {
	case ShapeTimeLevelCell:
		return "(time, level, cell)"
	case ShapeTimeCell:
		return "(time, cell)"
	case ShapeLevelCell:
		return "(level, cell)"
	case ShapeCell:
		return "(cell)"
	}
	return "unknown"
}

// A ShapeError reports a field whose dimensionality does not match any
// of the recognized layouts.
type ShapeError struct {
	Field string
	NDims int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("tomplot: unable to work out how to handle field %s with %d dimensions", e.Field, e.NDims)
}

// timeDimensions are the names a time dimension can take in LFRic output.
var timeDimensions = map[string]bool{
	"time":         true,
	"time_instant": true,
	"time_counter": true,
}

// FieldShapeOf classifies the named field by inspecting its declared
// dimensions. The classification happens once here rather than being
// re-derived at each indexing site.
func (d *Dataset) FieldShapeOf(field string) (FieldShape, error) {
	dims, err := d.Dimensions(field)
	if err != nil {
		return 0, err
	}
	switch len(dims) {
	case 3:
		return ShapeTimeLevelCell, nil
	case 2:
		if timeDimensions[dims[0]] {
			return ShapeTimeCell, nil
		}
		return ShapeLevelCell, nil
	case 1:
		return ShapeCell, nil
	}
	return 0, &ShapeError{Field: field, NDims: len(dims)}
}
