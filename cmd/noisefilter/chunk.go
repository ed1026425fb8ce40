package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-filter/internal/usecase/ai"
	"github.com/johnquangdev/meeting-filter/internal/usecase/chunking"
)

func newChunkCmd(_ *rootOptions) *cobra.Command {
	var (
		input     string
		maxTokens int
		overlap   int
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Split a long transcript into token-bounded chunks",
		Long: `Split text at sentence boundaries into chunks that each fit the token
budget, carrying up to --overlap tokens of trailing sentences into the next
chunk. A single sentence over budget is cut into fixed windows.

Token counts are estimates: a Hangul syllable counts 1.5, a run of ASCII
letters 1.3 and any other character 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			chunks, err := chunking.Split(string(data), maxTokens, overlap)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				for _, c := range chunks {
					if err := enc.Encode(c); err != nil {
						return err
					}
				}
				return nil
			}
			for _, c := range chunks {
				flags := make([]string, 0, 2)
				if c.HasOverlap {
					flags = append(flags, "overlap")
				}
				if c.IsSentenceSplit {
					flags = append(flags, "split")
				}
				fmt.Fprintf(out, "chunk %d: %d tokens, sentences %d-%d %s\n",
					c.ID, c.EstimatedTokens, c.SentenceStart, c.SentenceEnd, strings.Join(flags, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Text file (default: stdin)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", ai.DefaultMaxInputTokens, "Token budget per chunk")
	cmd.Flags().IntVar(&overlap, "overlap", ai.DefaultOverlapTokens, "Tokens of context carried into the next chunk")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per chunk")

	return cmd
}

func newEstimateCmd(_ *rootOptions) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "estimate [text]",
		Short: "Estimate the token count of text",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := readInput(cmd, input)
				if err != nil {
					return err
				}
				text = string(data)
			}
			fmt.Fprintln(cmd.OutOrStdout(), chunking.EstimateTokens(text))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Text file (default: stdin) when no text argument is given")

	return cmd
}
