package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-filter/internal/app"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var (
		input       string
		filterFirst bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract summary, action items and decisions from a transcript",
		Long: `Analyze a plain text transcript with the configured language model.

Transcripts longer than the input budget are split into overlapping chunks,
analyzed one by one and merged. With --filter the transcript is first run
through the small talk filter.

Requires GROQ_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cfg.Groq.APIKey == "" {
				return errors.New("GROQ_API_KEY is not set")
			}
			prompts, err := app.LoadPrompts(cfg)
			if err != nil {
				return err
			}

			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			models := app.NewModels(cfg, app.Options{Logger: root.logger, Prompts: prompts})
			svc := pipeline.NewPipelineService(pipeline.Deps{
				Classifier: models.Classifier,
				Analyzer:   models.Analyzer,
				Sink:       app.NewAuditSink(cfg.Audit, app.Backends{}),
				BatchSize:  cfg.Pipeline.BatchSize,
				Logger:     root.logger,
			})

			out, err := svc.Analyze(cmd.Context(), string(data), filterFirst)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Transcript file (default: stdin)")
	cmd.Flags().BoolVar(&filterFirst, "filter", false, "Filter small talk before analyzing")

	return cmd
}
