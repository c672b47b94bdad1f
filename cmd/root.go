package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studytrack",
	Short: "Flashcards, mock tests and progress tracking for interview prep",
	Long: `studytrack runs spaced-repetition flashcard sessions and weighted
multiple-choice tests, and keeps a local history of every attempt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env in the working directory may set STUDYTRACK_* variables.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "Config file (default $XDG_CONFIG_HOME/studytrack/config.yaml)")
	f.String("data", "", "Progress file or database path (overrides STUDYTRACK_DATA)")
	f.String("backend", "", "Progress backend: file or sqlite")
	f.String("bank", "", "Question bank file (.yaml or .json) instead of the built-in bank")
	f.String("log-level", "", "Log level: debug, info, warn or error")
	f.String("metrics-file", "", "Write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(performanceCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(flashcardsCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}
