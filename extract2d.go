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

	"github.com/ctessum/sparse"

	"github.com/tomplot/tomplot/griddata"
)

// Plot2DOptions controls how ExtractLFRic2D regrids a field for
// plotting. The zero value gives an xy plot of the lowest model level
// on an automatically generated target mesh.
type Plot2DOptions struct {
	// SliceName is the plane to plot: "xy" (the default), "xz" or "yz".
	SliceName string
	// SliceIdx selects the model level (for xy plots of 3D fields) or
	// the slice line (for xz/yz plots: the index into the distinct
	// values of the cross coordinate).
	SliceIdx int
	// Extrusion maps model levels to physical height for xz/yz plots;
	// nil means the default uniform extrusion.
	Extrusion *ExtrusionDetails
	// NumPoints is the number of target points along each generated
	// plot axis; zero means the default.
	NumPoints int
	// CentralLon recentres longitude coordinates on the given value.
	CentralLon float64
	// PlotCoordsX and PlotCoordsY, if set, are used as the target plot
	// axes instead of generated ones. PlotCoordsY is ignored for xz/yz
	// plots, whose vertical axis comes from the extrusion.
	PlotCoordsX, PlotCoordsY []float64
}

// Metadata describes an extracted 2D field for figure composition.
type Metadata struct {
	// Time is the model time of the extracted data, or zero for a
	// snapshot file with no time variable.
	Time float64
	// SliceLabel identifies the slice, e.g. "lat_45" for an xz slice
	// along latitude 45; empty for xy plots.
	SliceLabel string
	// CoordLabels, CoordLims and CoordTicks are the axis names, limits
	// and tick locations for the two plot coordinates.
	CoordLabels [2]string
	CoordLims   [2][2]float64
	CoordTicks  [2][]float64
}

// ExtractLFRic2D regrids an LFRic field onto a regular 2D mesh for
// contour plotting. It interpolates the unstructured data linearly
// onto the target points, filling points outside the data's convex
// hull from the nearest data point. For xz and yz slices the
// interpolation runs level by level and the vertical axis is then
// remapped from level index to physical height through the extrusion.
// The returned arrays are the plot X coordinates, plot Y coordinates
// and field values, all with the same shape.
func ExtractLFRic2D(ds *Dataset, fieldName string, timeIdx int, opts *Plot2DOptions) (plotX, plotY, field *sparse.DenseArray, meta *Metadata, err error) {
	if opts == nil {
		opts = &Plot2DOptions{}
	}
	sliceName := opts.SliceName
	if sliceName == "" {
		sliceName = "xy"
	}
	switch sliceName {
	case "xy", "xz", "yz":
	default:
		return nil, nil, nil, nil, fmt.Errorf("tomplot: for 2D plots slice must be xy, yz or xz, got %q", sliceName)
	}

	// Snapshot files written before the first step have no time
	// variable; everything else has "time" or "time_instant".
	timeValue := 0.0
	snapshot := false
	switch {
	case ds.HasVariable("time"):
		timeValue, err = readTimeValue(ds, "time", timeIdx)
	case ds.HasVariable("time_instant"):
		timeValue, err = readTimeValue(ds, "time_instant", timeIdx)
	default:
		snapshot = true
	}
	if err != nil {
		return nil, nil, nil, nil, err
	}

	shape, err := ds.FieldShapeOf(fieldName)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	lengths, err := ds.Lengths(fieldName)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	hasLevels := shape == ShapeTimeLevelCell || shape == ShapeLevelCell
	numLevels := 1
	if shape == ShapeTimeLevelCell {
		numLevels = lengths[1]
	} else if shape == ShapeLevelCell {
		numLevels = lengths[0]
	}
	if sliceName != "xy" && !hasLevels {
		return nil, nil, nil, nil, fmt.Errorf("tomplot: cannot take a %s slice of field %s with no vertical dimension", sliceName, fieldName)
	}

	coords, err := lfricPlotCoords(ds, fieldName, sliceName, opts.SliceIdx, numLevels, opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var timeSel *int
	if !snapshot {
		timeSel = Idx(timeIdx)
	}

	field = sparse.ZerosDense(coords.plotX.GetShape()...)
	if sliceName == "xy" {
		var levelSel *int
		if hasLevels {
			levelSel = Idx(opts.SliceIdx)
		}
		data, err := ExtractLFRicField(ds, fieldName, timeSel, levelSel)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		vals, err := regrid(coords, data, fieldName)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		copy(field.Elements, vals)
	} else {
		width := coords.plotX.GetShape()[1]
		for level := 0; level < numLevels; level++ {
			data, err := ExtractLFRicField(ds, fieldName, timeSel, Idx(level))
			if err != nil {
				return nil, nil, nil, nil, err
			}
			vals, err := regrid(coords, data, fieldName)
			if err != nil {
				return nil, nil, nil, nil, err
			}
			copy(field.Elements[level*width:(level+1)*width], vals)
		}

		// Interpolation happened in level space; remap the vertical
		// plot axis onto physical heights.
		dims, err := ds.Dimensions(fieldName)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		vertPlacement := dims[len(dims)-2]
		heights, err := GenerateExtrusion(opts.Extrusion, vertPlacement, numLevels)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		for level := 0; level < numLevels; level++ {
			for i := 0; i < width; i++ {
				coords.plotY.Set(heights[level], level, i)
			}
		}
		coords.lims[1] = [2]float64{heights[0], heights[numLevels-1]}
		coords.ticks[1] = axisTicks(heights[0], heights[numLevels-1])
	}

	meta = &Metadata{
		Time:        timeValue,
		SliceLabel:  coords.sliceLabel,
		CoordLabels: coords.labels,
		CoordLims:   coords.lims,
		CoordTicks:  coords.ticks,
	}
	return coords.plotX, coords.plotY, field, meta, nil
}

func readTimeValue(ds *Dataset, timeVar string, timeIdx int) (float64, error) {
	times, err := ds.Read(timeVar)
	if err != nil {
		return 0, err
	}
	t, err := resolveIndex(timeIdx, len(times.Elements), timeVar)
	if err != nil {
		return 0, err
	}
	return times.Elements[t], nil
}

// regrid interpolates one level of scattered data onto the
// interpolation targets.
func regrid(coords *plotCoords2D, data *sparse.DenseArray, fieldName string) ([]float64, error) {
	if len(data.GetShape()) != 1 {
		return nil, fmt.Errorf("tomplot: regridding %s: expected one level of data, got shape %v", fieldName, data.GetShape())
	}
	if len(data.Elements) != len(coords.dataPoints) {
		return nil, fmt.Errorf("tomplot: regridding %s: %d data values but %d coordinate points", fieldName, len(data.Elements), len(coords.dataPoints))
	}
	return griddata.LinearWithFallback(coords.dataPoints, data.Elements, coords.targets)
}
