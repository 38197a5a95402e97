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

package plots

import (
	"fmt"
	"math"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/tomplot/tomplot"
	"github.com/tomplot/tomplot/globalout"
)

// fillThreshold separates real samples from the NetCDF default fill
// value (~9.97e36) that pads short runs.
const fillThreshold = 9e36

// TimeSeries plots one measure of one variable against time for every
// run in a global output file, one line per run, and writes the figure
// to filename. Fill-value padding in short runs is skipped.
func TimeSeries(globalFile, variable, category, measure, filename string) error {
	ds, err := tomplot.OpenDataset(globalFile)
	if err != nil {
		return err
	}
	defer ds.Close()

	timeVar := "time"
	if category == globalout.CategoryErrors {
		timeVar = "error_time"
	}
	times, err := ds.Read(timeVar)
	if err != nil {
		return err
	}
	vals, err := ds.Read(globalout.VariableName(variable, category, measure))
	if err != nil {
		return err
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("plots: %v", err)
	}
	p.Title.Text = fmt.Sprintf("%s %s", variable, measure)
	p.X.Label.Text = "time"
	p.Y.Label.Text = measure

	shape := vals.GetShape()
	nRuns, nTimes := shape[0], shape[1]
	for i := 0; i < nRuns; i++ {
		var xy plotter.XYs
		for j := 0; j < nTimes; j++ {
			t := times.Get(i, j)
			v := vals.Get(i, j)
			if t > fillThreshold || v > fillThreshold || math.IsNaN(v) {
				continue
			}
			xy = append(xy, plotter.XY{X: t, Y: v})
		}
		if len(xy) == 0 {
			continue
		}
		if err := plotutil.AddLinePoints(p, fmt.Sprintf("run %d", i), xy); err != nil {
			return fmt.Errorf("plots: %v", err)
		}
	}
	return writePNG(p, filename)
}

// Convergence plots the final error of each run against a per-run
// resolution parameter on log-log axes, fits a line through the
// points, writes the figure to filename and returns the fitted slope
// (the measured order of convergence).
func Convergence(globalFile, variable, measure, paramName, filename string) (float64, error) {
	ds, err := tomplot.OpenDataset(globalFile)
	if err != nil {
		return 0, err
	}
	defer ds.Close()

	params, err := ds.Read(paramName)
	if err != nil {
		return 0, err
	}
	vals, err := ds.Read(globalout.VariableName(variable, globalout.CategoryErrors, measure))
	if err != nil {
		return 0, err
	}

	shape := vals.GetShape()
	nRuns, nTimes := shape[0], shape[1]
	var logX, logY []float64
	for i := 0; i < nRuns; i++ {
		finalErr := math.NaN()
		for j := 0; j < nTimes; j++ {
			if v := vals.Get(i, j); v < fillThreshold && !math.IsNaN(v) {
				finalErr = v
			}
		}
		if math.IsNaN(finalErr) || finalErr <= 0 || params.Elements[i] <= 0 {
			continue
		}
		logX = append(logX, math.Log10(params.Elements[i]))
		logY = append(logY, math.Log10(finalErr))
	}
	if len(logX) < 2 {
		return 0, fmt.Errorf("plots: convergence of %s %s: need at least 2 runs with valid errors, got %d", variable, measure, len(logX))
	}
	slope, intercept, rsquared, _, _, _ := stats.LinearRegression(logX, logY)

	p, err := plot.New()
	if err != nil {
		return 0, fmt.Errorf("plots: %v", err)
	}
	p.Title.Text = fmt.Sprintf("%s %s convergence: slope %.2f (r2 %.3f)", variable, measure, slope, rsquared)
	p.X.Label.Text = fmt.Sprintf("log10(%s)", paramName)
	p.Y.Label.Text = fmt.Sprintf("log10(%s)", measure)

	pts := make(plotter.XYs, len(logX))
	fit := make(plotter.XYs, len(logX))
	for i := range logX {
		pts[i] = plotter.XY{X: logX[i], Y: logY[i]}
		fit[i] = plotter.XY{X: logX[i], Y: intercept + slope*logX[i]}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return 0, fmt.Errorf("plots: %v", err)
	}
	line, err := plotter.NewLine(fit)
	if err != nil {
		return 0, fmt.Errorf("plots: %v", err)
	}
	p.Add(scatter, line)
	if err := writePNG(p, filename); err != nil {
		return 0, err
	}
	return slope, nil
}
