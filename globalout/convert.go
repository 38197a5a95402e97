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

// Package globalout converts LFRic diagnostic logs into the structured
// global output format: one NetCDF file collecting the error measures
// and global quantities of one or more model runs onto a shared
// (run_id, time) axis.
package globalout

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ctessum/cdf"
	log "github.com/sirupsen/logrus"
)

// The supported log schemas.
const (
	ModeTransportStats = "transport_stats"
	ModeGunghoMass     = "gungho_mass"
)

// CategoryErrors and CategoryGlobalQuantities are the two statistic
// categories measures are routed into.
const (
	CategoryErrors           = "errors"
	CategoryGlobalQuantities = "global_quantities"
)

// errorMeasures is the closed set of measure names treated as error
// metrics; everything else is a global quantity.
var errorMeasures = map[string]bool{
	"Min-initial":  true,
	"Max-initial":  true,
	"L2-initial":   true,
	"L2-final":     true,
	"Rel-L2-error": true,
	"Dissipation":  true,
	"Dispersion":   true,
}

// IsErrorMeasure reports whether the named measure is one of the
// recognized error metrics.
func IsErrorMeasure(measure string) bool { return errorMeasures[measure] }

// VariableName is the output-file variable holding one measure of one
// variable or species. The output format has no variable groups, so
// the grouping path is encoded in the name with double-underscore
// separators, e.g. "rho__errors__Rel-L2-error".
func VariableName(variable, category, measure string) string {
	return variable + "__" + category + "__" + measure
}

// Options configures a conversion.
type Options struct {
	// Mode selects the log schema: ModeTransportStats or ModeGunghoMass.
	Mode string
	// Dt is the model timestep size, used to convert step counts to
	// times in gungho_mass mode; zero leaves raw step counts.
	Dt float64
	// RunParams holds per-run parameter values (e.g. resolution) to
	// record in the output; each value list must have one entry per
	// source directory.
	RunParams map[string][]float64
}

// A series is one measure of one variable, identified by the output
// variable naming convention.
type series struct {
	variable, category, measure string
}

// Convert parses the diagnostic log of each source directory
// (<dir>/raw_data/output.log) and writes their combined statistics to
// <targetDir>/global_output.nc. Runs shorter than the longest run are
// right-aligned on the time axis: their samples fill the trailing
// slots and the leading slots hold the fill value, so all runs line up
// at the final time.
func Convert(targetDir string, sourceDirs []string, o Options) error {
	switch o.Mode {
	case ModeTransportStats, ModeGunghoMass:
	default:
		return fmt.Errorf("globalout: converter mode should be %q or %q, got %q",
			ModeTransportStats, ModeGunghoMass, o.Mode)
	}
	if len(sourceDirs) == 0 {
		return fmt.Errorf("globalout: no source directories given")
	}
	for param, vals := range o.RunParams {
		if len(vals) != len(sourceDirs) {
			return fmt.Errorf("globalout: list for run parameter %s should be of length %d to match the source directories, got %d",
				param, len(sourceDirs), len(vals))
		}
	}

	runs := make([][]record, len(sourceDirs))
	for i, dir := range sourceDirs {
		filename := filepath.Join(dir, "raw_data", "output.log")
		log.WithFields(log.Fields{"file": filename, "mode": o.Mode}).Info("reading log file")
		recs, err := readLog(filename, o.Mode, o.Dt)
		if err != nil {
			return err
		}
		if o.Mode == ModeGunghoMass {
			recs = addTotalSpecies(recs)
		}
		if len(recs) == 0 {
			return fmt.Errorf("globalout: no records parsed from %s", filename)
		}
		runs[i] = recs
	}

	isError := func(r record) bool { return o.Mode == ModeTransportStats && IsErrorMeasure(r.measure) }
	isQuantity := func(r record) bool { return !isError(r) }

	// The classic NetCDF format the output uses allows only one
	// unlimited dimension, so the time axes are sized up front from
	// the widest run.
	quantTimes := make([][]float64, len(runs))
	errTimes := make([][]float64, len(runs))
	timeLen, errTimeLen := 0, 0
	for i, recs := range runs {
		quantTimes[i] = uniqueTimes(recs, isQuantity)
		errTimes[i] = uniqueTimes(recs, isError)
		if len(quantTimes[i]) > timeLen {
			timeLen = len(quantTimes[i])
		}
		if len(errTimes[i]) > errTimeLen {
			errTimeLen = len(errTimes[i])
		}
	}
	if timeLen == 0 && errTimeLen == 0 {
		return fmt.Errorf("globalout: no time values found in any run")
	}

	allSeries := collectSeries(runs, o.Mode)

	dims := []string{"run_id"}
	lengths := []int{len(runs)}
	if timeLen > 0 {
		dims = append(dims, "time")
		lengths = append(lengths, timeLen)
	}
	if errTimeLen > 0 {
		dims = append(dims, "error_time")
		lengths = append(lengths, errTimeLen)
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "mode", o.Mode)
	h.AddVariable("run_id", []string{"run_id"}, []int32{0})
	if timeLen > 0 {
		h.AddVariable("time", []string{"run_id", "time"}, []float64{0})
	}
	if errTimeLen > 0 {
		h.AddVariable("error_time", []string{"run_id", "error_time"}, []float64{0})
	}
	for _, param := range sortedParams(o.RunParams) {
		h.AddVariable(param, []string{"run_id"}, []float64{0})
	}
	for _, s := range allSeries {
		timeDim := "time"
		if s.category == CategoryErrors {
			timeDim = "error_time"
		}
		h.AddVariable(VariableName(s.variable, s.category, s.measure),
			[]string{"run_id", timeDim}, []float64{0})
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("globalout: creating output file header: %v", err)
	}

	outName := filepath.Join(targetDir, "global_output.nc")
	ff, err := os.Create(outName)
	if err != nil {
		return fmt.Errorf("globalout: creating output file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("globalout: creating output file %s: %v", outName, err)
	}

	runIDs := make([]int32, len(runs))
	for i := range runIDs {
		runIDs[i] = int32(i)
	}
	if err := writeRange(f, "run_id", []int{0}, []int{len(runIDs) - 1}, runIDs); err != nil {
		return err
	}
	for _, param := range sortedParams(o.RunParams) {
		if err := writeRange(f, param, []int{0}, []int{len(runs) - 1}, o.RunParams[param]); err != nil {
			return err
		}
	}

	if timeLen > 0 {
		if err := writeAlignedRows(f, "time", quantTimes, timeLen); err != nil {
			return err
		}
	}
	if errTimeLen > 0 {
		if err := writeAlignedRows(f, "error_time", errTimes, errTimeLen); err != nil {
			return err
		}
	}

	for _, s := range allSeries {
		axisLen := timeLen
		if s.category == CategoryErrors {
			axisLen = errTimeLen
		}
		rows := make([][]float64, len(runs))
		for i, recs := range runs {
			rows[i] = seriesValues(recs, s.variable, s.measure)
		}
		name := VariableName(s.variable, s.category, s.measure)
		if err := writeAlignedRows(f, name, rows, axisLen); err != nil {
			return err
		}
	}

	if err := cdf.UpdateNumRecs(ff); err != nil {
		return fmt.Errorf("globalout: finalizing output file: %v", err)
	}
	log.WithFields(log.Fields{"file": outName, "runs": len(runs)}).Info("wrote global output")
	return nil
}

// collectSeries gathers the distinct (variable, category, measure)
// combinations across all runs, sorted for a stable variable order.
func collectSeries(runs [][]record, mode string) []series {
	seen := make(map[series]bool)
	var out []series
	for _, recs := range runs {
		for _, r := range recs {
			category := CategoryGlobalQuantities
			if mode == ModeTransportStats && IsErrorMeasure(r.measure) {
				category = CategoryErrors
			}
			s := series{variable: r.variable, category: category, measure: r.measure}
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.variable != b.variable {
			return a.variable < b.variable
		}
		if a.category != b.category {
			return a.category < b.category
		}
		return a.measure < b.measure
	})
	return out
}

func sortedParams(params map[string][]float64) []string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeAlignedRows fills variable v with the fill value and then
// writes each run's row right-aligned into the axis of length axisLen.
func writeAlignedRows(f *cdf.File, v string, rows [][]float64, axisLen int) error {
	if err := f.Fill(v); err != nil {
		return fmt.Errorf("globalout: filling variable %s: %v", v, err)
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(row) > axisLen {
			return fmt.Errorf("globalout: variable %s run %d has %d samples for a time axis of length %d; duplicate log entries?",
				v, i, len(row), axisLen)
		}
		idx0 := axisLen - len(row)
		if err := writeRange(f, v, []int{i, idx0}, []int{i, axisLen - 1}, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRange(f *cdf.File, v string, begin, end []int, data interface{}) error {
	w := f.Writer(v, begin, end)
	// A write that fills its window to the end returns io.EOF from the
	// strider even though all values were written.
	if _, err := w.Write(data); err != nil && err != io.EOF {
		return fmt.Errorf("globalout: writing variable %s: %v", v, err)
	}
	return nil
}
