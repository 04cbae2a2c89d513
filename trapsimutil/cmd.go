/*
Copyright © 2026 the TrapSim authors.
This file is part of TrapSim.

TrapSim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TrapSim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TrapSim.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package trapsimutil holds the configuration and commands behind the
// trapsim command-line interface.
package trapsimutil

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fieldmodel/trapsim"
	"github.com/fieldmodel/trapsim/solver"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to TrapSim.
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
			name: "Trap.R",
			usage: `
              Trap.R is the inner radius of the ring electrode [mm].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Trap.Z0",
			usage: `
              Trap.Z0 is the half length of the trap's working region [mm].`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Trap.Thickness",
			usage: `
              Trap.Thickness is the electrode wall thickness as a fraction of
              the trap dimensions. Zero models thin walls.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Trap.Closed",
			usage: `
              Trap.Closed specifies whether the trap has endcap electrodes.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Trap.RingVoltage",
			usage: `
              Trap.RingVoltage is the voltage applied to the ring electrode [V].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Trap.CapVoltage",
			usage: `
              Trap.CapVoltage is the voltage applied to the endcap electrodes [V].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Grid.Points",
			usage: `
              Grid.Points is the number of grid cells along the x extent of
              the modeling region. It determines the step size unless
              Grid.Step is set.`,
			defaultVal: 200,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Grid.Step",
			usage: `
              Grid.Step is the grid step size [mm]. Zero derives the step
              from Grid.Points.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Grid.Mirror",
			usage: `
              Grid.Mirror is the mirror symmetry specification, a subset of
              "xyz".`,
			defaultVal: "xyz",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "FastAdjustable",
			usage: `
              FastAdjustable selects the fast-adjust point encoding, which
              stamps electrode numbers instead of voltages so the solver can
              re-adjust voltages without a new geometry solve.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{buildCmd.Flags()},
		},
		{
			name: "Solver.Executable",
			usage: `
              Solver.Executable is the path to the external field-solver
              executable.`,
			defaultVal: "simion",
			flagsets:   []*pflag.FlagSet{refineCmd.Flags(), fastadjCmd.Flags()},
		},
		{
			name: "Solver.Convergence",
			usage: `
              Solver.Convergence is the refine convergence objective.`,
			defaultVal: solver.DefaultConvergence,
			flagsets:   []*pflag.FlagSet{refineCmd.Flags()},
		},
		{
			name: "Solver.TimeoutSeconds",
			usage: `
              Solver.TimeoutSeconds is the time budget for one solver run.
              Zero means no limit.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{refineCmd.Flags(), fastadjCmd.Flags()},
		},
		{
			name: "voltages",
			usage: `
              voltages maps electrode numbers to voltages for a fast adjust,
              e.g. "1=10,2=-10".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fastadjCmd.Flags()},
		},
		{
			name: "slice",
			usage: `
              slice is the z index of the array slice to plot. The default
              -1 plots the middle slice.`,
			defaultVal: -1,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "out",
			usage: `
              out is the output file location.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{buildCmd.Flags(), plotCmd.Flags(), exportCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("TRAPSIM")

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
	Root.AddCommand(buildCmd)
	Root.AddCommand(refineCmd)
	Root.AddCommand(fastadjCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(exportCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("trapsim: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// solverConfig assembles the solver gateway configuration from Cfg.
func solverConfig() solver.Config {
	return solver.Config{
		Executable:  Cfg.GetString("Solver.Executable"),
		Convergence: Cfg.GetFloat64("Solver.Convergence"),
		Timeout:     time.Duration(Cfg.GetInt("Solver.TimeoutSeconds")) * time.Second,
	}
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "trapsim",
	Short: "An ion trap modeling toolkit.",
	Long: `TrapSim models ion traps (primarily FT-ICR cells), discretizes their
electrode geometry into potential arrays for field-solver simulation, and
drives the external solver to refine the arrays and fast adjust voltages.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the format
'TRAPSIM_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of TrapSim.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("TrapSim v%s\n", trapsim.Version)
	},
	DisableAutoGenTag: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [name]",
	Short: "Build a raw potential array from the configured trap",
	Long: `build rasterizes the configured cylindrical trap onto a grid and
writes the result as a raw (.pa#) potential array file named after the
given base name (or --out).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := Cfg.GetString("out")
		if len(args) > 0 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("trapsim: build needs an output name (argument or --out)")
		}
		return BuildArray(name)
	},
	DisableAutoGenTag: true,
}

var refineCmd = &cobra.Command{
	Use:   "refine file",
	Short: "Refine a raw potential array with the external solver",
	Long: `refine runs the external solver's refine operation on the given raw
(.pa#) array file, producing a refined (.pa0) file next to it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Refine(args[0])
	},
	DisableAutoGenTag: true,
}

var fastadjCmd = &cobra.Command{
	Use:   "fastadj file",
	Short: "Fast adjust electrode voltages of a refined array",
	Long: `fastadj runs the external solver's fast-adjust operation on the given
refined (.pa0) array file, applying the electrode voltages given with
--voltages (e.g. "1=10,2=-10") without re-solving the geometry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return FastAdjust(args[0], Cfg.GetString("voltages"))
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info file",
	Short: "Print the header of a potential array file",
	Long:  "info prints the header of the given potential array file in SIMION's PATXT text form.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Info(cmd.OutOrStdout(), args[0])
	},
	DisableAutoGenTag: true,
}

var exportCmd = &cobra.Command{
	Use:   "export file",
	Short: "Export a potential array file as NetCDF",
	Long: `export decodes the given potential array file and writes its
potentials and electrode mask as a NetCDF file, for inspection or
post-processing outside the solver toolchain.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Export(args[0], Cfg.GetString("out"))
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot file",
	Short: "Plot a slice of a potential array",
	Long: `plot renders a z slice of the given potential array file as a PNG
heat map, which is useful for inspecting refined potentials.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Plot(args[0], Cfg.GetInt("slice"), Cfg.GetString("out"))
	},
	DisableAutoGenTag: true,
}
