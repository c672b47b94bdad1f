package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Describe the question bank",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		g := a.generator()
		bank := g.Bank()

		fmt.Fprintf(out, "%-40s  %6s  %s\n", "Topic", "Weight", "Questions")
		fmt.Fprintln(out, strings.Repeat(rule, 60))
		for _, t := range g.Topics() {
			fmt.Fprintf(out, "%-40s  %6.0f  %d\n", truncate(t, 40), bank.Weight(t), g.TopicQuestionCount(t))
		}

		if fws := g.Frameworks(); len(fws) > 0 {
			fmt.Fprintln(out, "\nFrameworks:")
			for _, f := range fws {
				fmt.Fprintf(out, "  %s: %s\n", f, strings.Join(g.FrameworkTopics(f), ", "))
			}
		}

		fmt.Fprintln(out, "\nDifficulties:")
		for _, d := range g.Difficulties() {
			if desc := g.DifficultyDescription(d); desc != "" {
				fmt.Fprintf(out, "  %s: %s\n", d, desc)
			} else {
				fmt.Fprintf(out, "  %s\n", d)
			}
		}

		fmt.Fprintf(out, "\n%d flashcards\n", len(bank.Flashcards()))
		return nil
	}),
}
