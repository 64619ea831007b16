package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowchart",
	Short: "flowchart turns a topic into a flowchart image",
	Long: `flowchart asks an LLM for a flowchart about a topic, repairs and parses
the reply, and renders it with Graphviz. Rendering alone works offline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: flowchart.yaml, .yml or .json if present)")
	flags.String("env-file", ".env", "Environment file loaded before anything else")
	flags.String("output-dir", "", "Directory for rendered images (overrides output.dir)")
	flags.String("format", "", "Image format: png, svg, jpg or mmd (overrides output.format)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides log.level)")
	flags.String("history", "", "SQLite history file (overrides history.path)")
}
