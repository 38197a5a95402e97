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

package tomplotutil

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/tomplot/tomplot"
	"github.com/tomplot/tomplot/plots"
)

// A BatchJob describes a set of plot jobs against one data file.
type BatchJob struct {
	// DataFile is the NetCDF model output file to extract fields from.
	DataFile string
	// Extrusion maps model levels to physical height for xz and yz
	// plots; nil means the default uniform extrusion.
	Extrusion *tomplot.ExtrusionDetails
	// Plots are the individual figures to render.
	Plots []PlotJob `toml:"plot"`
}

// A PlotJob describes one figure in a batch.
type PlotJob struct {
	Field      string
	TimeIdx    int
	SliceName  string
	SliceIdx   int
	NumPoints  int
	CentralLon float64
	Levels     []float64
	Title      string
	OutputFile string
}

// RunBatch renders every plot described in the TOML job file.
func RunBatch(jobFile string) error {
	f, err := os.Open(jobFile)
	if err != nil {
		return fmt.Errorf("tomplot: opening batch job file: %v", err)
	}
	defer f.Close()
	job := new(BatchJob)
	if _, err := toml.DecodeReader(f, job); err != nil {
		return fmt.Errorf("tomplot: reading batch job file %s: %v", jobFile, err)
	}
	if len(job.Plots) == 0 {
		return fmt.Errorf("tomplot: batch job file %s describes no plots", jobFile)
	}

	ds, err := tomplot.OpenDataset(job.DataFile)
	if err != nil {
		return err
	}
	defer ds.Close()

	for _, p := range job.Plots {
		log.WithFields(log.Fields{"field": p.Field, "slice": p.SliceName, "file": p.OutputFile}).Info("rendering plot")
		opts := &tomplot.Plot2DOptions{
			SliceName:  p.SliceName,
			SliceIdx:   p.SliceIdx,
			Extrusion:  job.Extrusion,
			NumPoints:  p.NumPoints,
			CentralLon: p.CentralLon,
		}
		plotX, plotY, field, meta, err := tomplot.ExtractLFRic2D(ds, p.Field, p.TimeIdx, opts)
		if err != nil {
			return err
		}
		title := p.Title
		if title == "" {
			title = fmt.Sprintf("%s at time %g", p.Field, meta.Time)
		}
		o := plots.ContourOptions{Title: title, Levels: p.Levels}
		if err := plots.FieldContour(plotX, plotY, field, meta, o, p.OutputFile); err != nil {
			return err
		}
	}
	return nil
}
