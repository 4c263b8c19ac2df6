package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/robfig/chtl"
)

func newDumpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the syntax tree of a CHTL file",
		Long: `Parses a CHTL file, loads its imports and resolves every usage, then
prints the syntax tree of the file in the canonical NodeKind(fields,
{children, }) form.  Templates are not expanded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd.OutOrStdout(), args[0])
		},
	}
}

func runDump(stdout io.Writer, input string) error {
	docs, err := chtl.NewBundle().AddFile(input).Compile()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, docs[0].Dump())
	return err
}

func newSerializeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "serialize <file>",
		Short: "Write the resolved syntax tree of a CHTL file in binary form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := chtl.NewBundle().AddFile(args[0]).Compile()
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := docs[0].Serialize(&buf); err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: standard output)")
	return cmd
}
