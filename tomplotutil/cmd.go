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

// Package tomplotutil wires the tomplot operations into a command-line
// interface.
package tomplotutil

import (
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tomplot/tomplot"
	"github.com/tomplot/tomplot/globalout"
	"github.com/tomplot/tomplot/plots"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to tomplot.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DataFile",
			usage: `
              DataFile is the NetCDF model output file to extract fields from.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "Field",
			usage: `
              Field is the name of the field to extract.`,
			shorthand:  "f",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "TimeIdx",
			usage: `
              TimeIdx is the time index to extract; negative values count
              back from the end, so -1 is the final time point.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the PNG figure to write.`,
			shorthand:  "o",
			defaultVal: "tomplot.png",
			flagsets: []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags(),
				timeseriesCmd.Flags(), convergenceCmd.Flags()},
		},
		{
			name: "Title",
			usage: `
              Title is the figure title.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "SliceName",
			usage: `
              SliceName is the plane to plot: xy, xz or yz.`,
			defaultVal: "xy",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "SliceIdx",
			usage: `
              SliceIdx selects the model level for xy plots of 3D fields,
              or the slice line for xz and yz plots.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "NumPoints",
			usage: `
              NumPoints is the number of interpolation target points along
              each generated plot axis; 0 uses the default.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "CentralLon",
			usage: `
              CentralLon recentres longitude coordinates on the given value.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Extrusion.Domain",
			usage: `
              Extrusion.Domain is the horizontal domain type of the
              extrusion, e.g. plane or sphere.`,
			defaultVal: "plane",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "Extrusion.Method",
			usage: `
              Extrusion.Method is the rule mapping model levels to physical
              height; only linear is implemented.`,
			defaultVal: "linear",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "Extrusion.ZMin",
			usage: `
              Extrusion.ZMin is the height of the bottom of the model domain.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "Extrusion.ZMax",
			usage: `
              Extrusion.ZMax is the height of the top of the model domain.`,
			defaultVal: 10000.0,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), sliceCmd.Flags()},
		},
		{
			name: "HeightFile",
			usage: `
              HeightFile is a NetCDF file holding the height fields to use as
              the vertical coordinate of a vertical slice; if empty the model
              level index is used instead.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags()},
		},
		{
			name: "SliceAlong",
			usage: `
              SliceAlong is the coordinate held fixed by a vertical slice:
              x, y, lon, lat, alpha or beta.`,
			defaultVal: "lat",
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags()},
		},
		{
			name: "SliceAt",
			usage: `
              SliceAt is the coordinate value to slice at.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags()},
		},
		{
			name: "SliceTolerance",
			usage: `
              SliceTolerance determines how close data points must be to the
              slice coordinate; 0 uses the default.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags()},
		},
		{
			name: "SlicePanel",
			usage: `
              SlicePanel is the cubed-sphere panel (1 to 6) to slice along;
              required when SliceAlong is alpha or beta.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{sliceCmd.Flags()},
		},
		{
			name: "TargetDir",
			usage: `
              TargetDir is the directory to write global_output.nc into.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "SourceDirs",
			usage: `
              SourceDirs are the run directories to convert; each must hold
              raw_data/output.log.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "Mode",
			usage: `
              Mode selects the log schema: transport_stats or gungho_mass.`,
			defaultVal: globalout.ModeTransportStats,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "Dt",
			usage: `
              Dt is the model timestep size used to convert step counts to
              times in gungho_mass mode; 0 leaves raw step counts.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "RunParams",
			usage: `
              RunParams holds per-run parameter values to record in the
              output, as a JSON object mapping parameter names to lists with
              one entry per source directory, e.g. '{"dx":[100,50,25]}'.`,
			defaultVal: "{}",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "GlobalFile",
			usage: `
              GlobalFile is the global_output.nc file to read statistics from.`,
			defaultVal: "global_output.nc",
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags(), convergenceCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the model variable or species whose statistics
              to plot.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags(), convergenceCmd.Flags()},
		},
		{
			name: "Category",
			usage: `
              Category is the statistic category to read: errors or
              global_quantities.`,
			defaultVal: globalout.CategoryGlobalQuantities,
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags()},
		},
		{
			name: "Measure",
			usage: `
              Measure is the statistic to plot, e.g. Rel-L2-error or
              After_timestep.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{timeseriesCmd.Flags(), convergenceCmd.Flags()},
		},
		{
			name: "Param",
			usage: `
              Param is the per-run resolution parameter to plot convergence
              against; it must have been recorded with RunParams during
              conversion.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convergenceCmd.Flags()},
		},
		{
			name: "JobFile",
			usage: `
              JobFile is a TOML file describing a batch of plot jobs.`,
			shorthand:  "j",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TOMPLOT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(sliceCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(timeseriesCmd)
	Root.AddCommand(convergenceCmd)
	Root.AddCommand(batchCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("tomplot: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "tomplot",
	Short: "Plot LFRic and Gusto model output.",
	Long: `Tomplot extracts, regrids and plots fields from LFRic and Gusto
model output files, and converts LFRic diagnostic logs into the
structured global output format.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'TOMPLOT_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of tomplot.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("tomplot v%s\n", tomplot.Version)
	},
	DisableAutoGenTag: true,
}

// plotCmd renders a 2D contour plot of one field.
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot a 2D field.",
	Long: `plot extracts a field from an LFRic output file, regrids it onto a
regular mesh and renders it as a contour figure. The plane to plot is chosen
with --SliceName: xy (a horizontal plane), xz or yz (vertical
cross-sections).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := tomplot.OpenDataset(Cfg.GetString("DataFile"))
		if err != nil {
			return err
		}
		defer ds.Close()
		opts := &tomplot.Plot2DOptions{
			SliceName:  Cfg.GetString("SliceName"),
			SliceIdx:   Cfg.GetInt("SliceIdx"),
			Extrusion:  extrusionFromConfig(),
			NumPoints:  Cfg.GetInt("NumPoints"),
			CentralLon: Cfg.GetFloat64("CentralLon"),
		}
		plotX, plotY, field, meta, err := tomplot.ExtractLFRic2D(ds, Cfg.GetString("Field"), Cfg.GetInt("TimeIdx"), opts)
		if err != nil {
			return err
		}
		return plots.FieldContour(plotX, plotY, field, meta,
			plots.ContourOptions{Title: plotTitle(meta)}, Cfg.GetString("OutputFile"))
	},
	DisableAutoGenTag: true,
}

// sliceCmd renders a vertical slice through unstructured 3D data.
var sliceCmd = &cobra.Command{
	Use:   "slice",
	Short: "Plot a vertical slice of a 3D field.",
	Long: `slice extracts the data points lying on a vertical cross-section
through an LFRic output file and renders them as a contour figure. Unlike
plot with SliceName xz or yz, no regridding is performed: the slice holds
the raw data points within SliceTolerance of the requested coordinate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := tomplot.OpenDataset(Cfg.GetString("DataFile"))
		if err != nil {
			return err
		}
		defer ds.Close()
		var heightDS *tomplot.Dataset
		if hf := Cfg.GetString("HeightFile"); hf != "" {
			heightDS, err = tomplot.OpenDataset(hf)
			if err != nil {
				return err
			}
			defer heightDS.Close()
		}
		spec := tomplot.SliceSpec{
			Along:     Cfg.GetString("SliceAlong"),
			At:        Cfg.GetFloat64("SliceAt"),
			Tolerance: Cfg.GetFloat64("SliceTolerance"),
			Panel:     Cfg.GetInt("SlicePanel"),
		}
		vs, err := tomplot.ExtractLFRicVerticalSlice(ds, Cfg.GetString("Field"),
			tomplot.Idx(Cfg.GetInt("TimeIdx")), spec, heightDS)
		if err != nil {
			return err
		}
		xLabel := "x"
		if spec.Along == "x" || spec.Along == "lon" || spec.Along == "alpha" {
			xLabel = "y"
		}
		title := Cfg.GetString("Title")
		if title == "" {
			title = fmt.Sprintf("%s at %s = %g", Cfg.GetString("Field"), spec.Along, spec.At)
		}
		return plots.SliceContour(vs, xLabel, plots.ContourOptions{Title: title}, Cfg.GetString("OutputFile"))
	},
	DisableAutoGenTag: true,
}

// convertCmd converts diagnostic logs into global_output.nc.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert diagnostic logs to global_output.nc.",
	Long: `convert parses the diagnostic log of each source directory and
writes their combined error measures and global quantities to a single
global_output.nc file on a shared (run_id, time) axis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runParams, err := getRunParams("RunParams", Cfg)
		if err != nil {
			return err
		}
		return globalout.Convert(Cfg.GetString("TargetDir"), Cfg.GetStringSlice("SourceDirs"),
			globalout.Options{
				Mode:      Cfg.GetString("Mode"),
				Dt:        Cfg.GetFloat64("Dt"),
				RunParams: runParams,
			})
	},
	DisableAutoGenTag: true,
}

// timeseriesCmd plots one measure against time for every run.
var timeseriesCmd = &cobra.Command{
	Use:   "timeseries",
	Short: "Plot a time series from global_output.nc.",
	Long: `timeseries plots one measure of one variable against time for
every run in a global output file, one line per run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return plots.TimeSeries(Cfg.GetString("GlobalFile"), Cfg.GetString("Variable"),
			Cfg.GetString("Category"), Cfg.GetString("Measure"), Cfg.GetString("OutputFile"))
	},
	DisableAutoGenTag: true,
}

// convergenceCmd plots error against resolution on log-log axes.
var convergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Plot a convergence diagram from global_output.nc.",
	Long: `convergence plots the final error of each run against a per-run
resolution parameter on log-log axes and fits a line through the points;
the fitted slope is the measured order of convergence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		slope, err := plots.Convergence(Cfg.GetString("GlobalFile"), Cfg.GetString("Variable"),
			Cfg.GetString("Measure"), Cfg.GetString("Param"), Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		cmd.Printf("fitted convergence slope: %.3f\n", slope)
		return nil
	},
	DisableAutoGenTag: true,
}

// batchCmd runs a batch of plot jobs described in a TOML file.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a batch of plot jobs from a TOML file.",
	Long: `batch reads a TOML job file describing a set of fields to plot
from one data file and renders each of them in turn.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunBatch(Cfg.GetString("JobFile"))
	},
	DisableAutoGenTag: true,
}

func extrusionFromConfig() *tomplot.ExtrusionDetails {
	return &tomplot.ExtrusionDetails{
		Domain: Cfg.GetString("Extrusion.Domain"),
		Method: Cfg.GetString("Extrusion.Method"),
		ZMin:   Cfg.GetFloat64("Extrusion.ZMin"),
		ZMax:   Cfg.GetFloat64("Extrusion.ZMax"),
	}
}

func plotTitle(meta *tomplot.Metadata) string {
	if t := Cfg.GetString("Title"); t != "" {
		return t
	}
	title := fmt.Sprintf("%s at time %g", Cfg.GetString("Field"), meta.Time)
	if meta.SliceLabel != "" {
		title += " (" + meta.SliceLabel + ")"
	}
	return title
}

// getRunParams returns a map[string][]float64 from a viper
// configuration, accounting for the fact that it might be a JSON object
// if it was set from a command line argument.
func getRunParams(varName string, cfg *viper.Viper) (map[string][]float64, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" || v == "{}" {
			return nil, nil
		}
		out := make(map[string][]float64)
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			// A scalar value per parameter is allowed for a single run.
			scalars := make(map[string]float64)
			if err2 := json.Unmarshal([]byte(v), &scalars); err2 != nil {
				return nil, fmt.Errorf("tomplot: parsing %s: %v", varName, err)
			}
			out = make(map[string][]float64, len(scalars))
			for param, val := range scalars {
				out[param] = []float64{val}
			}
		}
		return out, nil
	case map[string][]float64:
		return v, nil
	case map[string]interface{}:
		out := make(map[string][]float64, len(v))
		for param, vals := range v {
			list, err := cast.ToSliceE(vals)
			if err != nil {
				f, err2 := cast.ToFloat64E(vals)
				if err2 != nil {
					return nil, fmt.Errorf("tomplot: parsing %s.%s: %v", varName, param, err)
				}
				out[param] = []float64{f}
				continue
			}
			out[param] = make([]float64, len(list))
			for j, val := range list {
				f, err := cast.ToFloat64E(val)
				if err != nil {
					return nil, fmt.Errorf("tomplot: parsing %s.%s: %v", varName, param, err)
				}
				out[param][j] = f
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("tomplot: invalid type for %s variable: %#v", varName, i)
	}
}
