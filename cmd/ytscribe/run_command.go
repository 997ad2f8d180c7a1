package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"ytscribe/internal/logging"
	"ytscribe/internal/preflight"
	"ytscribe/internal/queue"
	"ytscribe/internal/runlog"
	"ytscribe/internal/workflow"
)

func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var modelFlag string
	var languageFlag string
	var workDirFlag string

	cmd := &cobra.Command{
		Use:   "run <url>",
		Short: "Fetch, normalize, extract audio, and transcribe a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				OutputPaths: []string{
					"stdout",
					filepath.Join(cfg.Paths.LogDir, "ytscribe.log"),
				},
			})
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			if !preflight.Passed(results) {
				renderPreflight(cmd.OutOrStdout(), results)
				return fmt.Errorf("environment checks failed; fix the items above or run 'ytscribe deps'")
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer store.Close()

			workDir := cfg.Paths.WorkDir
			if workDirFlag != "" {
				workDir = workDirFlag
			}
			hub := runlog.NewHub(0, runlog.NewFileSink(workDir))
			defer hub.Close()

			controller, err := workflow.NewController(cfg, store, logger, hub)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			outcome, runErr := controller.Run(ctx, workflow.Request{
				URL:      args[0],
				WorkDir:  workDirFlag,
				Model:    modelFlag,
				Language: languageFlag,
			})
			hub.Flush()

			out := cmd.OutOrStdout()
			if runErr != nil {
				if outcome.RunID != "" {
					fmt.Fprintf(out, "Run %s failed after %s\n", outcome.RunID, outcome.Duration.Round(timeRound))
				}
				return runErr
			}

			fmt.Fprintf(out, "Transcript: %s\n", outcome.TranscriptFile)
			fmt.Fprintf(out, "Video:      %s\n", outcome.ContainerFile)
			fmt.Fprintf(out, "Completed in %s\n", outcome.Duration.Round(timeRound))
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Whisper model (tiny, base, small, medium, large)")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Spoken language (fr, en, es, auto)")
	cmd.Flags().StringVarP(&workDirFlag, "workdir", "w", "", "Work directory for this run (must exist)")
	return cmd
}
