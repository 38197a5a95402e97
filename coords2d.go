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
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// defaultPlotPoints is the number of target points along each
// horizontal axis when the caller does not supply plotting coordinates.
const defaultPlotPoints = 100

// plotCoords2D holds everything lfricPlotCoords derives from the data
// coordinates: the regular plotting mesh, the scattered data points,
// the interpolation targets (one per mesh column for vertical slices,
// one per mesh point for xy), and the axis annotations.
type plotCoords2D struct {
	plotX, plotY *sparse.DenseArray
	dataPoints   []geom.Point
	targets      []geom.Point
	labels       [2]string
	lims         [2][2]float64
	ticks        [2][]float64
	sliceLabel   string
}

// lfricPlotCoords builds the plotting mesh and interpolation targets
// for a 2D plot of an LFRic field. For an xy plot the mesh spans the
// horizontal extent of the data; for an xz or yz plot the mesh is
// horizontal position against model level, with the vertical axis left
// as level indices for the caller to remap through an extrusion. The
// vertical slices run along the sliceIdx-th distinct value of the
// cross coordinate.
func lfricPlotCoords(ds *Dataset, fieldName, sliceName string, sliceIdx, numLevels int, opts *Plot2DOptions) (*plotCoords2D, error) {
	coordsX, coordsY, err := ExtractLFRicCoords(ds, fieldName)
	if err != nil {
		return nil, err
	}
	xvals := append([]float64{}, coordsX.Elements...)
	yvals := coordsY.Elements

	xLabel, yLabel := coordLabels(ds, fieldName)
	if opts.CentralLon != 0 && xLabel == "lon" {
		for i, x := range xvals {
			xvals[i] = wrapLongitude(x, opts.CentralLon)
		}
	}

	numPoints := opts.NumPoints
	if numPoints <= 0 {
		numPoints = defaultPlotPoints
	}

	c := &plotCoords2D{}
	c.dataPoints = make([]geom.Point, len(xvals))
	for i := range xvals {
		c.dataPoints[i] = geom.Point{X: xvals[i], Y: yvals[i]}
	}

	switch sliceName {
	case "xy":
		xs := opts.PlotCoordsX
		ys := opts.PlotCoordsY
		if xs == nil {
			xs = floats.Span(make([]float64, numPoints), floats.Min(xvals), floats.Max(xvals))
		}
		if ys == nil {
			ys = floats.Span(make([]float64, numPoints), floats.Min(yvals), floats.Max(yvals))
		}
		c.plotX = sparse.ZerosDense(len(ys), len(xs))
		c.plotY = sparse.ZerosDense(len(ys), len(xs))
		c.targets = make([]geom.Point, 0, len(ys)*len(xs))
		for j, y := range ys {
			for i, x := range xs {
				c.plotX.Set(x, j, i)
				c.plotY.Set(y, j, i)
				c.targets = append(c.targets, geom.Point{X: x, Y: y})
			}
		}
		c.labels = [2]string{xLabel, yLabel}
		c.lims = [2][2]float64{{xs[0], xs[len(xs)-1]}, {ys[0], ys[len(ys)-1]}}
		c.ticks = [2][]float64{axisTicks(xs[0], xs[len(xs)-1]), axisTicks(ys[0], ys[len(ys)-1])}

	case "xz", "yz":
		along := xvals
		cross := yvals
		alongLabel := xLabel
		crossLabel := yLabel
		if sliceName == "yz" {
			along, cross = yvals, xvals
			alongLabel, crossLabel = yLabel, xLabel
		}
		crossVals := distinctSorted(cross)
		if sliceIdx < 0 || sliceIdx >= len(crossVals) {
			return nil, fmt.Errorf("tomplot: slice index %d out of range: the %s coordinate takes %d distinct values", sliceIdx, crossLabel, len(crossVals))
		}
		crossAt := crossVals[sliceIdx]

		hs := opts.PlotCoordsX
		if hs == nil {
			hs = floats.Span(make([]float64, numPoints), floats.Min(along), floats.Max(along))
		}
		c.plotX = sparse.ZerosDense(numLevels, len(hs))
		c.plotY = sparse.ZerosDense(numLevels, len(hs))
		c.targets = make([]geom.Point, len(hs))
		for i, h := range hs {
			if sliceName == "xz" {
				c.targets[i] = geom.Point{X: h, Y: crossAt}
			} else {
				c.targets[i] = geom.Point{X: crossAt, Y: h}
			}
			for level := 0; level < numLevels; level++ {
				c.plotX.Set(h, level, i)
				c.plotY.Set(float64(level), level, i)
			}
		}
		c.labels = [2]string{alongLabel, "height"}
		c.lims[0] = [2]float64{hs[0], hs[len(hs)-1]}
		c.ticks[0] = axisTicks(hs[0], hs[len(hs)-1])
		c.sliceLabel = fmt.Sprintf("%s_%g", crossLabel, crossAt)

	default:
		return nil, fmt.Errorf("tomplot: for 2D plots slice must be xy, yz or xz, got %q", sliceName)
	}
	return c, nil
}

// coordLabels decides the axis labels for a field's horizontal
// coordinates: lon/lat when the coordinate variables carry degree
// units, x/y otherwise.
func coordLabels(ds *Dataset, fieldName string) (string, string) {
	dims, err := ds.Dimensions(fieldName)
	if err != nil || len(dims) == 0 {
		return "x", "y"
	}
	rootName := dims[len(dims)-1]
	if len(rootName) < 2 {
		return "x", "y"
	}
	if s, ok := ds.Attribute(rootName[1:]+"_x", "units").(string); ok && strings.Contains(s, "degree") {
		return "lon", "lat"
	}
	return "x", "y"
}

// wrapLongitude maps lon into [centralLon-180, centralLon+180).
func wrapLongitude(lon, centralLon float64) float64 {
	west := centralLon - 180
	return math.Mod(math.Mod(lon-west, 360)+360, 360) + west
}

// axisTicks returns evenly spaced tick locations spanning [lo, hi].
func axisTicks(lo, hi float64) []float64 {
	return floats.Span(make([]float64, 5), lo, hi)
}

// distinctSorted returns the distinct values of vals in ascending
// order. Values closer together than a millionth of the data span are
// treated as equal, so faces that share a row on a structured mesh
// collapse to one slice line.
func distinctSorted(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64{}, vals...)
	sort.Float64s(sorted)
	tol := (sorted[len(sorted)-1] - sorted[0]) * 1e-6
	out := []float64{sorted[0]}
	for _, v := range sorted[1:] {
		if v-out[len(out)-1] > tol {
			out = append(out, v)
		}
	}
	return out
}
