package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/robfig/chtl"
	"github.com/robfig/chtl/cmd/chtl/internal/config"
)

func newCompileCommand() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a CHTL file to HTML",
		Long: `Compiles a CHTL file, and the files it imports, to a single HTML document
written to standard output or to the file given with --output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg, err = flags.load(cmd, args[0])
			if err != nil {
				return err
			}
			return runCompile(cmd.OutOrStdout(), args[0], cfg)
		},
	}

	flags.register(cmd)
	return cmd
}

func runCompile(stdout io.Writer, input string, cfg *config.Config) error {
	docs, err := chtl.NewBundle().AddFile(input).Compile()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := docs[0].WriteHTML(&buf, htmlOptions(cfg)); err != nil {
		return err
	}
	if err := writeOutput(stdout, cfg.Output, buf.Bytes()); err != nil {
		return err
	}
	logf(cfg, "compiled %s (%d bytes)", input, buf.Len())
	return nil
}

// writeOutput writes data to the output file, or to stdout when there is none.
func writeOutput(stdout io.Writer, output string, data []byte) error {
	if output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(output, data, 0644)
}
