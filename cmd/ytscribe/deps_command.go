package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ytscribe/internal/preflight"
)

func newDepsCommand(cmdCtx *commandContext) *cobra.Command {
	var engineFlag bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and environment readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if engineFlag {
				results = append(results, preflight.CheckEngine(cmd.Context(), cfg, nil))
			}

			out := cmd.OutOrStdout()
			renderPreflight(out, results)
			if !preflight.Passed(results) {
				return fmt.Errorf("some checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&engineFlag, "engine", false, "Also probe the Whisper Python environment (slow)")
	return cmd
}

func renderPreflight(out io.Writer, results []preflight.Result) {
	colorize := shouldColorize(out)
	for _, result := range results {
		kind := statusError
		if result.Passed {
			kind = statusOK
		}
		fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
