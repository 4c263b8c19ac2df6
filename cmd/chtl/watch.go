package main

import (
	"bytes"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/robfig/chtl"
)

func newWatchCommand() *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Recompile a CHTL file whenever it or its imports change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input = args[0]
			var cfg, err = flags.load(cmd, input)
			if err != nil {
				return err
			}
			if cfg.Output == "" {
				return errors.New("watch needs an output file (--output)")
			}

			var write = func(doc *chtl.Document) {
				var buf bytes.Buffer
				if err := doc.WriteHTML(&buf, htmlOptions(cfg)); err != nil {
					chtl.Logger.Println(formatError(err))
					return
				}
				if err := writeOutput(nil, cfg.Output, buf.Bytes()); err != nil {
					chtl.Logger.Println(err)
					return
				}
				logf(cfg, "wrote %s", cfg.Output)
			}

			var bundle = chtl.NewBundle().
				WatchFiles(true).
				SetRecompilationCallback(func(docs []*chtl.Document) { write(docs[0]) }).
				AddFile(input)
			defer bundle.Close()
			docs, err := bundle.Compile()
			if err != nil {
				return err
			}
			write(docs[0])
			chtl.Logger.Printf("watching %s, press Ctrl+C to stop", input)

			var stop = make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
