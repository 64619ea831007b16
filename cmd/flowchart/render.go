package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [file|-]",
	Short: "Render flowchart text without calling an LLM",
	Long: `Reads flowchart text (a list of (id, text, kind, edges) tuples) from a file,
or from stdin when the argument is "-" or missing, and renders it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := "-"
		if len(args) > 0 {
			src = args[0]
		}
		return runRender(cmd, src)
	},
}

func init() {
	renderCmd.Flags().Bool("check", false, "Parse and normalize only; print node and edge counts")
	rootCmd.AddCommand(renderCmd)
}

func readSource(cmd *cobra.Command, src string) (string, error) {
	if src == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runRender(cmd *cobra.Command, src string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, s)
	if err != nil {
		return err
	}
	text, err := readSource(cmd, src)
	if err != nil {
		return err
	}

	p, err := newPipeline(s, logger)
	if err != nil {
		return err
	}
	if check, _ := cmd.Flags().GetBool("check"); check {
		p = p.WithoutRenderer()
	}

	res, err := p.Process(cmd.Context(), text)
	if err != nil {
		return err
	}
	if res.Path == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes, %d edges (parsed with %s)\n",
			res.Graph.Len(), res.Graph.EdgeCount(), res.Strategy)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}
