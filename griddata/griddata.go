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

// Package griddata interpolates scattered 2D data onto arbitrary
// target points, in the manner of scipy.interpolate.griddata: a
// piecewise-linear method over a Delaunay triangulation of the data
// points, and a nearest-neighbour method for filling in the points
// the linear method cannot reach.
package griddata

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// Linear interpolates values from the scattered data points onto the
// target points using piecewise-linear (barycentric) interpolation
// over a Delaunay triangulation. Targets outside the convex hull of
// the data, or targets for which no triangulation exists (e.g. all
// data points collinear), get NaN.
func Linear(points []geom.Point, values []float64, targets []geom.Point) ([]float64, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("griddata: %d points but %d values", len(points), len(values))
	}
	out := make([]float64, len(targets))
	tris := triangulate(points)
	if len(tris) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	index := rtree.NewTree(25, 50)
	for _, t := range tris {
		index.Insert(t)
	}
	for i, tgt := range targets {
		out[i] = math.NaN()
		for _, candidate := range index.SearchIntersect(tgt.Bounds()) {
			t := candidate.(*triangle)
			w0, w1, w2, inside := t.barycentric(tgt)
			if !inside {
				continue
			}
			out[i] = w0*values[t.i0] + w1*values[t.i1] + w2*values[t.i2]
			break
		}
	}
	return out, nil
}

// Nearest interpolates values from the scattered data points onto the
// target points by copying the value of the nearest data point.
func Nearest(points []geom.Point, values []float64, targets []geom.Point) ([]float64, error) {
	if len(points) != len(values) {
		return nil, fmt.Errorf("griddata: %d points but %d values", len(points), len(values))
	}
	out := make([]float64, len(targets))
	if len(points) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out, nil
	}
	index := rtree.NewTree(25, 50)
	b := geom.NewBounds()
	for i, p := range points {
		index.Insert(&indexedPoint{Point: p, i: i})
		b.Extend(p.Bounds())
	}
	span := math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	if span == 0 {
		span = 1
	}
	for i, tgt := range targets {
		out[i] = values[nearestIndex(index, tgt, span, b)]
	}
	return out, nil
}

// LinearWithFallback interpolates linearly, then fills any targets the
// linear method left as NaN with nearest-neighbour values. This is how
// edge and extrapolation points on a plotting grid get filled.
func LinearWithFallback(points []geom.Point, values []float64, targets []geom.Point) ([]float64, error) {
	out, err := Linear(points, values, targets)
	if err != nil {
		return nil, err
	}
	var missing []int
	var missingTargets []geom.Point
	for i, v := range out {
		if math.IsNaN(v) {
			missing = append(missing, i)
			missingTargets = append(missingTargets, targets[i])
		}
	}
	if len(missing) == 0 {
		return out, nil
	}
	filled, err := Nearest(points, values, missingTargets)
	if err != nil {
		return nil, err
	}
	for j, i := range missing {
		out[i] = filled[j]
	}
	return out, nil
}

type indexedPoint struct {
	geom.Point
	i int
}

// nearestIndex finds the index of the data point closest to tgt by
// searching boxes of doubling radius around it. dataBounds is the
// bounding box of all indexed points; a target far enough away that
// the doubling search stays empty falls back to scanning everything
// inside it.
func nearestIndex(index *rtree.Rtree, tgt geom.Point, span float64, dataBounds *geom.Bounds) int {
	for radius := span / 64; ; radius *= 2 {
		b := &geom.Bounds{
			Min: geom.Point{X: tgt.X - radius, Y: tgt.Y - radius},
			Max: geom.Point{X: tgt.X + radius, Y: tgt.Y + radius},
		}
		hits := index.SearchIntersect(b)
		if len(hits) == 0 {
			if radius > 4*span {
				best := 0
				bestDist := math.Inf(1)
				for _, hit := range index.SearchIntersect(dataBounds) {
					p := hit.(*indexedPoint)
					d := (p.X-tgt.X)*(p.X-tgt.X) + (p.Y-tgt.Y)*(p.Y-tgt.Y)
					if d < bestDist {
						bestDist = d
						best = p.i
					}
				}
				return best
			}
			continue
		}
		best := -1
		bestDist := math.Inf(1)
		for _, hit := range hits {
			p := hit.(*indexedPoint)
			d := (p.X-tgt.X)*(p.X-tgt.X) + (p.Y-tgt.Y)*(p.Y-tgt.Y)
			if d < bestDist {
				bestDist = d
				best = p.i
			}
		}
		// Points outside the box but within its circumscribed circle
		// could still be closer; one more doubling covers them.
		if math.Sqrt(bestDist) <= radius {
			return best
		}
		b = &geom.Bounds{
			Min: geom.Point{X: tgt.X - math.Sqrt(bestDist), Y: tgt.Y - math.Sqrt(bestDist)},
			Max: geom.Point{X: tgt.X + math.Sqrt(bestDist), Y: tgt.Y + math.Sqrt(bestDist)},
		}
		best2 := best
		bestDist2 := bestDist
		for _, hit := range index.SearchIntersect(b) {
			p := hit.(*indexedPoint)
			d := (p.X-tgt.X)*(p.X-tgt.X) + (p.Y-tgt.Y)*(p.Y-tgt.Y)
			if d < bestDist2 {
				bestDist2 = d
				best2 = p.i
			}
		}
		return best2
	}
}
