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

// Package plots renders extracted fields and run statistics to PNG
// figures.
package plots

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/sparse"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/tomplot/tomplot"
)

const (
	figWidth  = 5 * vg.Inch
	figHeight = 4 * vg.Inch
)

// ContourOptions configures a FieldContour figure.
type ContourOptions struct {
	// Title is the figure title; empty means no title.
	Title string
	// Levels are explicit contour levels to draw on top of the colour
	// field; nil draws the colour field alone.
	Levels []float64
}

// grid presents a regridded field on a regular mesh as plotting data.
// The coordinate arrays are the full 2D meshes ExtractLFRic2D returns;
// the mesh is regular so the axes are read from the first row and
// column.
type grid struct {
	x, y, z *sparse.DenseArray
}

func (g grid) Dims() (c, r int) {
	shape := g.z.GetShape()
	return shape[1], shape[0]
}
func (g grid) X(c int) float64    { return g.x.Get(0, c) }
func (g grid) Y(r int) float64    { return g.y.Get(r, 0) }
func (g grid) Z(c, r int) float64 { return g.z.Get(r, c) }

// FieldContour draws a 2D regridded field as a colour map, optionally
// with contour lines, and writes it to filename as a PNG. The axis
// labels, limits and ticks come from the extraction metadata.
func FieldContour(plotX, plotY, field *sparse.DenseArray, meta *tomplot.Metadata, o ContourOptions, filename string) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("plots: %v", err)
	}
	p.Title.Text = o.Title
	applyMetadata(p, meta)

	g := grid{x: plotX, y: plotY, z: field}
	lo, hi := dataRange(field.Elements)
	cm := moreland.SmoothBlueRed()
	cm.SetMin(lo)
	if hi == lo {
		// A constant field still needs a non-empty colour range.
		hi = lo + 1
	}
	cm.SetMax(hi)
	p.Add(plotter.NewHeatMap(g, cm.Palette(255)))
	if o.Levels != nil {
		p.Add(plotter.NewContour(g, o.Levels, cm.Palette(len(o.Levels)+1)))
	}
	return writePNG(p, filename)
}

// SliceContour draws a vertical cross-section as a colour map with
// the coordinate along the slice on the horizontal axis and height (or
// level index) on the vertical axis, and writes it to filename as a
// PNG. xLabel names the horizontal axis.
func SliceContour(vs *tomplot.VerticalSlice, xLabel string, o ContourOptions, filename string) error {
	shape := vs.Field.GetShape()
	nPoints, nLevels := shape[0], shape[1]
	// The slice arrays are (points, levels); the grid wants rows to be
	// the vertical axis.
	x := sparse.ZerosDense(nLevels, nPoints)
	y := sparse.ZerosDense(nLevels, nPoints)
	z := sparse.ZerosDense(nLevels, nPoints)
	for i := 0; i < nPoints; i++ {
		for l := 0; l < nLevels; l++ {
			x.Set(vs.X.Get(i, l), l, i)
			y.Set(vs.Z.Get(i, l), l, i)
			z.Set(vs.Field.Get(i, l), l, i)
		}
	}
	xlo, xhi := dataRange(x.Elements)
	ylo, yhi := dataRange(y.Elements)
	meta := &tomplot.Metadata{
		CoordLabels: [2]string{xLabel, "height"},
		CoordLims:   [2][2]float64{{xlo, xhi}, {ylo, yhi}},
	}
	return FieldContour(x, y, z, meta, o, filename)
}

func applyMetadata(p *plot.Plot, meta *tomplot.Metadata) {
	if meta == nil {
		return
	}
	p.X.Label.Text = meta.CoordLabels[0]
	p.Y.Label.Text = meta.CoordLabels[1]
	p.X.Min, p.X.Max = meta.CoordLims[0][0], meta.CoordLims[0][1]
	p.Y.Min, p.Y.Max = meta.CoordLims[1][0], meta.CoordLims[1][1]
	if meta.CoordTicks[0] != nil {
		p.X.Tick.Marker = constantTicks(meta.CoordTicks[0])
	}
	if meta.CoordTicks[1] != nil {
		p.Y.Tick.Marker = constantTicks(meta.CoordTicks[1])
	}
}

func constantTicks(vals []float64) plot.ConstantTicks {
	ticks := make([]plot.Tick, len(vals))
	for i, v := range vals {
		ticks[i] = plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)}
	}
	return plot.ConstantTicks(ticks)
}

// dataRange is the min and max of vals, ignoring NaNs.
func dataRange(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func writePNG(p *plot.Plot, filename string) error {
	c := vgimg.New(figWidth, figHeight)
	dc := draw.New(c)
	p.Draw(dc)
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("plots: %v", err)
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return fmt.Errorf("plots: writing %s: %v", filename, err)
	}
	return nil
}
