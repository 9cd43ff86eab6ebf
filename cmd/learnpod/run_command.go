package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"learnpod/internal/config"
	"learnpod/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var noEmail bool

	cmd := &cobra.Command{
		Use:   "run <document.md>",
		Short: "Generate the full learning package for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := generationSetup(ctx, &flags)
			if err != nil {
				return err
			}
			input, err := config.ExpandPath(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			orchestrator, closer, err := pipeline.NewFromConfig(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			report, runErr := orchestrator.Run(cmd.Context(), input, pipeline.RunOptions{NoEmail: noEmail})
			if report != nil {
				fmt.Fprint(cmd.OutOrStdout(), renderSummary(report))
			}
			if runErr != nil {
				return fmt.Errorf("run failed: %w", runErr)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&noEmail, "no-email", false, "Do not email the finished package")
	return cmd
}
