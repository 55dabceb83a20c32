package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/synthdata/internal/config"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "datagen [command]",
	Short: "Synthetic business dataset generator",
	Long:  `Generate realistic fact and dimension tables from a DataSpec blueprint, validate specs, and score existing datasets.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		config.LoadDotEnv(".env")
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(generateCmd, validateCmd, qualityCmd, draftCmd)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
