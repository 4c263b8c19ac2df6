package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	var rootCmd = newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var dumpAST bool
	var flags settingsFlags

	var rootCmd = &cobra.Command{
		Use:   "chtl [file]",
		Short: "CHTL - a templating language that compiles to HTML",
		Long: `chtl compiles CHTL documents to HTML.  Templates, custom styles and
variables are expanded, every style block is collected into one stylesheet
and imported files are loaded relative to the importing file.

Given only a file, chtl compiles it to standard output.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if dumpAST {
				return runDump(cmd.OutOrStdout(), args[0])
			}
			var cfg, err = flags.load(cmd, args[0])
			if err != nil {
				return err
			}
			return runCompile(cmd.OutOrStdout(), args[0], cfg)
		},
	}

	rootCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "Print the resolved syntax tree instead of compiling")
	flags.register(rootCmd)

	rootCmd.AddCommand(newCompileCommand())
	rootCmd.AddCommand(newDumpCommand())
	rootCmd.AddCommand(newSerializeCommand())
	rootCmd.AddCommand(newWatchCommand())
	return rootCmd
}
