package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all recorded progress",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			reply, ok := newPrompter(cmd).ask("This deletes every session, flashcard stat and test result. Type yes to continue: ")
			if !ok || reply != "yes" {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}
		if err := a.progress().Reset(cmd.Context()); err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		fmt.Fprintln(out, "Progress reset.")
		return nil
	}),
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
