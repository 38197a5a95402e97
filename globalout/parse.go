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

package globalout

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Column counts of the two supported log schemas. The first columns of
// every row (day, timestamp, log level, log file and some fixed label
// tokens) carry no payload; the payload columns are picked out by
// position below.
const (
	transportStatsColumns = 13
	gunghoMassColumns     = 17
)

// A record is one parsed measurement: a scalar value keyed by time,
// variable (or species) and measure (or timestage).
type record struct {
	time     float64
	variable string
	measure  string
	value    float64
}

// readLog parses one diagnostic log into records. Runs of spaces
// delimit columns. A row with the wrong number of columns for the mode
// is a parse error naming the file and line.
func readLog(filename, mode string, dt float64) ([]record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("globalout: %v", err)
	}
	defer f.Close()

	var recs []record
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		var rec record
		switch mode {
		case ModeTransportStats:
			if len(fields) != transportStatsColumns {
				return nil, fmt.Errorf("globalout: %s line %d: expected %d columns, got %d",
					filename, lineNo, transportStatsColumns, len(fields))
			}
			rec.time, err = strconv.ParseFloat(fields[8], 64)
			if err != nil {
				return nil, fmt.Errorf("globalout: %s line %d: bad time value %q", filename, lineNo, fields[8])
			}
			rec.measure = fields[9]
			rec.variable = fields[10]
			rec.value, err = strconv.ParseFloat(fields[12], 64)
			if err != nil {
				return nil, fmt.Errorf("globalout: %s line %d: bad measure value %q", filename, lineNo, fields[12])
			}
		case ModeGunghoMass:
			if len(fields) != gunghoMassColumns {
				return nil, fmt.Errorf("globalout: %s line %d: expected %d columns, got %d",
					filename, lineNo, gunghoMassColumns, len(fields))
			}
			// The species token is logged as e.g. "3,"; keep only the
			// species code itself.
			rec.variable = fields[9][:1]
			rec.measure = fields[10] + "_" + fields[11]
			step, err := strconv.ParseFloat(fields[15], 64)
			if err != nil {
				return nil, fmt.Errorf("globalout: %s line %d: bad timestep %q", filename, lineNo, fields[15])
			}
			rec.value, err = strconv.ParseFloat(fields[16], 64)
			if err != nil {
				return nil, fmt.Errorf("globalout: %s line %d: bad mass value %q", filename, lineNo, fields[16])
			}
			if dt != 0 {
				rec.time = step * dt
			} else {
				rec.time = step
			}
			// The masses logged before the run starts become step zero
			// of the after-step series, so they are not counted as a
			// separate stage.
			if rec.measure == "Before_timestep" {
				rec.time = 0
				rec.measure = "After_timestep"
			}
		default:
			return nil, fmt.Errorf("globalout: mode %s not implemented", mode)
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("globalout: reading %s: %v", filename, err)
	}
	return recs, nil
}

// addTotalSpecies appends, for every (time, timestage) present, a
// pseudo-species "total" holding the sum of all species masses at that
// time and stage.
func addTotalSpecies(recs []record) []record {
	type key struct {
		time    float64
		measure string
	}
	totals := make(map[key]float64)
	var order []key
	for _, r := range recs {
		k := key{r.time, r.measure}
		if _, ok := totals[k]; !ok {
			order = append(order, k)
		}
		totals[k] += r.value
	}
	for _, k := range order {
		recs = append(recs, record{time: k.time, variable: "total", measure: k.measure, value: totals[k]})
	}
	return recs
}

// uniqueTimes returns the sorted distinct times of the records
// matching the filter; a nil filter matches everything.
func uniqueTimes(recs []record, filter func(record) bool) []float64 {
	seen := make(map[float64]bool)
	var times []float64
	for _, r := range recs {
		if filter != nil && !filter(r) {
			continue
		}
		if !seen[r.time] {
			seen[r.time] = true
			times = append(times, r.time)
		}
	}
	sort.Float64s(times)
	return times
}

// seriesValues returns the values for one (variable, measure) pair in
// time order.
func seriesValues(recs []record, variable, measure string) []float64 {
	var matched []record
	for _, r := range recs {
		if r.variable == variable && r.measure == measure {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].time < matched[j].time })
	vals := make([]float64, len(matched))
	for i, r := range matched {
		vals[i] = r.value
	}
	return vals
}
