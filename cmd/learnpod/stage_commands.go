package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"learnpod/internal/config"
	"learnpod/internal/document"
	"learnpod/internal/explainer"
	"learnpod/internal/media/transcode"
	"learnpod/internal/narration"
	"learnpod/internal/pipeline"
	"learnpod/internal/quiz"
	"learnpod/internal/scriptgen"
	"learnpod/internal/services/llm"
	"learnpod/internal/services/tts"
)

// generationSetup loads config, applies overrides and checks credentials.
func generationSetup(ctx *commandContext, flags *generationFlags) (*config.Config, *slog.Logger, error) {
	base, err := ctx.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := flags.apply(base)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.RequireGemini(); err != nil {
		return nil, nil, err
	}
	logger, err := ctx.logger()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// stageOutputDir returns the explicit directory or allocates a fresh one.
func stageOutputDir(cfg *config.Config, explicit string) (string, error) {
	if dir := strings.TrimSpace(explicit); dir != "" {
		return config.ExpandPath(dir)
	}
	return pipeline.AllocateOutputDir(cfg.Paths.OutputDir, time.Now())
}

func inputArg(args []string) (string, error) {
	return config.ExpandPath(strings.TrimSpace(args[0]))
}

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var outputDir string

	cmd := &cobra.Command{
		Use:   "script <document.md>",
		Short: "Generate only the dialogue script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := generationSetup(ctx, &flags)
			if err != nil {
				return err
			}
			input, err := inputArg(args)
			if err != nil {
				return err
			}
			doc, err := document.Ingest(input, logger)
			if err != nil {
				return err
			}
			dir, err := stageOutputDir(cfg, outputDir)
			if err != nil {
				return err
			}
			cost, closer := pipeline.CostFromConfig(cmd.Context(), cfg, logger)
			defer closer.Close()

			builder := scriptgen.New(llm.NewFromConfig(cfg, logger), cost, scriptgen.OptionsFromConfig(cfg), logger)
			path, err := builder.Build(cmd.Context(), doc, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Script written to %s\n", path)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write into this directory instead of a new run directory")
	return cmd
}

func newExplainCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var outputDir string

	cmd := &cobra.Command{
		Use:   "explain <script.md>",
		Short: "Generate the detailed explanation from a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := generationSetup(ctx, &flags)
			if err != nil {
				return err
			}
			input, err := inputArg(args)
			if err != nil {
				return err
			}
			dir, err := stageOutputDir(cfg, outputDir)
			if err != nil {
				return err
			}
			builder := explainer.New(llm.NewFromConfig(cfg, logger), explainer.OptionsFromConfig(cfg), logger)
			path, err := builder.Build(cmd.Context(), input, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Explanation written to %s\n", path)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write into this directory instead of a new run directory")
	return cmd
}

func newQuestionsCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var outputDir string

	cmd := &cobra.Command{
		Use:   "questions <script.md>",
		Short: "Generate the Q&A set and flashcards from a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := generationSetup(ctx, &flags)
			if err != nil {
				return err
			}
			input, err := inputArg(args)
			if err != nil {
				return err
			}
			dir, err := stageOutputDir(cfg, outputDir)
			if err != nil {
				return err
			}
			builder := quiz.New(llm.NewFromConfig(cfg, logger), quiz.OptionsFromConfig(cfg), logger)
			result, err := builder.Build(cmd.Context(), input, dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Questions written to %s (%d questions)\n", result.QuestionsPath, result.Questions)
			if result.FlashcardsPath != "" {
				fmt.Fprintf(out, "Flashcards written to %s (%d cards, fallback: %s)\n",
					result.FlashcardsPath, result.Flashcards, yesNo(result.UsedFallback))
			} else {
				fmt.Fprintln(out, "No flashcards produced (no keyword questions found)")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write into this directory instead of a new run directory")
	return cmd
}

func newAudioCommand(ctx *commandContext) *cobra.Command {
	var flags generationFlags
	var outputDir string

	cmd := &cobra.Command{
		Use:   "audio <script.md>",
		Short: "Narrate a script into podcast audio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := generationSetup(ctx, &flags)
			if err != nil {
				return err
			}
			input, err := inputArg(args)
			if err != nil {
				return err
			}
			dir, err := stageOutputDir(cfg, outputDir)
			if err != nil {
				return err
			}
			cost, closer := pipeline.CostFromConfig(cmd.Context(), cfg, logger)
			defer closer.Close()

			builder := narration.New(
				tts.NewFromConfig(cfg, logger),
				transcode.NewFromConfig(cfg, logger),
				cost,
				narration.OptionsFromConfig(cfg),
				logger,
			)
			result, err := builder.Build(cmd.Context(), input, dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Audio written to %s\n", result.Path)
			if result.Failed > 0 {
				fmt.Fprintf(out, "Warning: %d of %d chunks failed synthesis and were skipped\n", result.Failed, result.Chunks)
			}
			if result.Degraded {
				fmt.Fprintln(out, "Warning: MP3 transcoding failed; kept the WAV file")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Write into this directory instead of a new run directory")
	return cmd
}
