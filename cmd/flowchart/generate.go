package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowchart/pkg/flowchart/generator"
	"github.com/randalmurphal/flowchart/pkg/flowchart/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a flowchart image for a topic",
	Long: `Asks the configured LLM for a flowchart about the topic and renders it.
Unparseable replies are retried. The image path is printed on success.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, strings.Join(args, " "))
	},
}

func init() {
	generateCmd.Flags().Bool("json", false, "Print the full result as JSON")
	generateCmd.Flags().Bool("show-text", false, "Also print the flowchart text returned by the LLM")
	rootCmd.AddCommand(generateCmd)
}

// generateOutput is the JSON form of a generation result.
type generateOutput struct {
	RunID         string `json:"run_id"`
	Topic         string `json:"topic"`
	ImagePath     string `json:"image_path,omitempty"`
	FlowchartText string `json:"flowchart_text"`
	Strategy      string `json:"strategy,omitempty"`
	Attempts      int    `json:"attempts"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	TotalTokens   int    `json:"total_tokens"`
	DurationMs    int64  `json:"duration_ms"`
	Error         string `json:"error,omitempty"`
}

func runGenerate(cmd *cobra.Command, topic string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, s)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	g, store, err := newGenerator(ctx, s, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	res, genErr := g.Generate(ctx, topic)
	if res == nil {
		return genErr
	}
	observability.EnrichLogger(logger, res.RunID, res.Topic).Debug("run finished",
		"attempts", res.Attempts, "nodes", res.Nodes, "edges", res.Edges)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		if err := writeJSON(cmd, toOutput(res, genErr)); err != nil {
			return err
		}
		return genErr
	}

	if genErr != nil {
		return genErr
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.ImagePath)
	if show, _ := cmd.Flags().GetBool("show-text"); show {
		fmt.Fprintln(cmd.OutOrStdout(), res.FlowchartText)
	}
	return nil
}

func toOutput(res *generator.Result, err error) generateOutput {
	out := generateOutput{
		RunID:         res.RunID,
		Topic:         res.Topic,
		ImagePath:     res.ImagePath,
		FlowchartText: res.FlowchartText,
		Strategy:      res.Strategy,
		Attempts:      res.Attempts,
		Nodes:         res.Nodes,
		Edges:         res.Edges,
		TotalTokens:   res.Usage.TotalTokens,
		DurationMs:    res.Duration.Milliseconds(),
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
