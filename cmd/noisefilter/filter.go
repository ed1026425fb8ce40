package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-filter/internal/app"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-filter/internal/usecase/transcript"
)

func newFilterCmd(root *rootOptions) *cobra.Command {
	var (
		input         string
		format        string
		classifierURL string
		batchSize     int
		auditPath     string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Remove small talk from a transcript",
		Long: `Remove small talk from a transcript and print what remains.

Input formats:
  segments  JSON array of {text, start, end, speaker}, or {"segments": [...]}
  text      one utterance per line, optionally "SPEAKER: text"
  jsonl     one {timestamp, start, speaker, text} object per line

The format defaults to jsonl for .jsonl files, segments for .json files and
text otherwise. Discarded utterances are appended to the audit file. When the
classifier cannot be reached the transcript is passed through unfiltered.

Examples:
  noisefilter filter --input meeting.txt
  noisefilter filter --input stt.json --json --audit noise.jsonl
  cat meeting.jsonl | noisefilter filter --format jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("classifier-url") {
				cfg.Classifier.URL = classifierURL
			}
			if cmd.Flags().Changed("audit") {
				cfg.Audit.FilePath = auditPath
			}

			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			if format == "" {
				format = formatForPath(input)
			}
			parsed, err := transcript.ParseFormat(format)
			if err != nil {
				return err
			}

			models := app.NewModels(cfg, app.Options{Logger: root.logger})
			svc := pipeline.NewPipelineService(pipeline.Deps{
				Classifier: models.Classifier,
				Sink:       app.NewAuditSink(cfg.Audit, app.Backends{}),
				BatchSize:  cfg.Pipeline.BatchSize,
				Logger:     root.logger,
			})

			ctx := cmd.Context()
			opts := pipeline.FilterOptions{BatchSize: batchSize}
			var out *pipeline.FilterOutput
			switch parsed {
			case transcript.FormatSegments:
				segments, perr := parseSegments(data)
				if perr != nil {
					return perr
				}
				out, err = svc.FilterSegments(ctx, segments, opts)
			case transcript.FormatJSONL:
				out, err = svc.FilterJSONL(ctx, bytes.NewReader(data), opts)
			default:
				out, err = svc.FilterText(ctx, string(data), opts)
			}
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.FilteredText)
			fmt.Fprintf(cmd.ErrOrStderr(), "kept %d of %d utterances (noise ratio %.2f)\n",
				out.Stats.Kept, out.Stats.Kept+out.Stats.Discarded, out.Stats.NoiseRatio)
			if !out.Stats.ClassifierAvailable {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: classifier unavailable, transcript passed through unfiltered")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Transcript file (default: stdin)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: segments, text or jsonl")
	cmd.Flags().StringVar(&classifierURL, "classifier-url", "", "Classifier server URL (overrides CLASSIFIER_URL)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Utterances per classifier call (default: PIPELINE_BATCH_SIZE)")
	cmd.Flags().StringVar(&auditPath, "audit", "", "Audit log path (overrides AUDIT_FILE, empty disables)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return string(transcript.FormatJSONL)
	case ".json":
		return string(transcript.FormatSegments)
	}
	return string(transcript.FormatText)
}

// parseSegments accepts a bare segment array or a transcription object.
func parseSegments(data []byte) ([]entities.Segment, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var segments []entities.Segment
		if err := json.Unmarshal(data, &segments); err != nil {
			return nil, fmt.Errorf("parse segments: %w", err)
		}
		return segments, nil
	}
	var t entities.Transcription
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcription: %w", err)
	}
	return t.Segments, nil
}
