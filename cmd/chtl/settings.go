package main

import (
	"github.com/spf13/cobra"

	"github.com/robfig/chtl"
	"github.com/robfig/chtl/chtlhtml"
	"github.com/robfig/chtl/cmd/chtl/internal/config"
)

// settingsFlags are the flags shared by the commands that generate HTML.
// Flags given on the command line override the configuration file.
type settingsFlags struct {
	configPath   string
	pretty       bool
	checkScripts bool
	output       string
	verbose      bool
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Configuration file (default: chtl.yaml next to the input)")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "Put each stylesheet declaration on its own line")
	cmd.Flags().BoolVar(&f.checkScripts, "check-scripts", false, "Reject script blocks that are not valid JavaScript")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: standard output)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log progress")
}

// load reads the configuration for input and applies the flags that were set.
func (f *settingsFlags) load(cmd *cobra.Command, input string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.ForInput(input)
	}
	if err != nil {
		return nil, err
	}

	var flags = cmd.Flags()
	if flags.Changed("pretty") {
		cfg.Pretty = f.pretty
	}
	if flags.Changed("check-scripts") {
		cfg.CheckScripts = f.checkScripts
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, nil
}

func htmlOptions(cfg *config.Config) chtlhtml.Options {
	return chtlhtml.Options{
		Pretty:       cfg.Pretty,
		CheckScripts: cfg.CheckScripts,
	}
}

func logf(cfg *config.Config, format string, args ...interface{}) {
	if cfg.Verbose {
		chtl.Logger.Printf(format, args...)
	}
}
