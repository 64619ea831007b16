package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowchart/pkg/flowchart/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded generation runs",
	Long: `Lists runs recorded in the history file, newest first, or shows one run
in full. Requires history.path (or --history) to be set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if s.History.Path == "" {
			return fmt.Errorf("no history file configured; set history.path or --history")
		}
		store, err := history.Open(s.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			return showRun(cmd, store, args[0])
		}
		limit, _ := cmd.Flags().GetInt("limit")
		return listRuns(cmd, store, limit)
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func listRuns(cmd *cobra.Command, store history.Store, limit int) error {
	entries, err := store.List(limit)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tCREATED\tOUTCOME\tATTEMPTS\tNODES\tTOPIC")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			e.RunID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Outcome, e.Attempts, e.Nodes, e.Topic)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, store history.Store, runID string) error {
	e, err := store.Get(runID)
	if err != nil {
		return fmt.Errorf("%s: %w", runID, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:      %s\n", e.RunID)
	fmt.Fprintf(out, "topic:    %s\n", e.Topic)
	fmt.Fprintf(out, "created:  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "outcome:  %s\n", e.Outcome)
	fmt.Fprintf(out, "attempts: %d\n", e.Attempts)
	fmt.Fprintf(out, "duration: %s\n", e.Duration)
	if e.ImagePath != "" {
		fmt.Fprintf(out, "image:    %s\n", e.ImagePath)
		fmt.Fprintf(out, "graph:    %d nodes, %d edges (%s)\n", e.Nodes, e.Edges, e.Strategy)
	}
	if e.Error != "" {
		fmt.Fprintf(out, "error:    %s\n", e.Error)
	}
	if e.Text != "" {
		fmt.Fprintf(out, "\n%s\n", e.Text)
	}
	return nil
}
