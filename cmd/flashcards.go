package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studytrack/internal/questionbank"
	"github.com/abhisek/studytrack/internal/study"
)

var flashcardsCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Study flashcards interactively",
	Long: `Show each card's term, reveal the definition, then record whether you
knew it. Answer y or n; q ends the session early and keeps what you studied.`,
	RunE: withApp(runFlashcards),
}

func init() {
	flashcardsCmd.Flags().String("mode", string(study.ModeSpaced), "Card selection: spaced, random or all")
	flashcardsCmd.Flags().IntP("count", "n", 0, "Cards for random mode (default from config)")
}

func runFlashcards(cmd *cobra.Command, args []string, a *app) error {
	modeVal, _ := cmd.Flags().GetString("mode")
	n, _ := cmd.Flags().GetInt("count")
	if n <= 0 {
		n = a.cfg.Tests.Flashcards
	}

	mode, err := study.ParseCardMode(modeVal)
	if err != nil {
		return err
	}
	cards, err := a.svc.CardsToStudy(mode, n)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(cards) == 0 {
		fmt.Fprintln(out, "No flashcards in the bank.")
		return nil
	}

	pr := newPrompter(cmd)
	i := 0
	judge := func(card questionbank.Flashcard) (bool, error) {
		i++
		fmt.Fprintf(out, "── Card %d/%d ──\n%s\n", i, len(cards), card.Term)
		if _, ok := pr.ask("(press Enter to reveal) "); !ok {
			return false, study.ErrStop
		}
		fmt.Fprintf(out, "%s\n", card.Definition)

		for {
			reply, ok := pr.ask("Did you know it? [y/n/q] ")
			if !ok {
				return false, study.ErrStop
			}
			switch strings.ToLower(reply) {
			case "y", "yes":
				fmt.Fprintln(out)
				return true, nil
			case "n", "no":
				fmt.Fprintln(out)
				return false, nil
			case "q", "quit":
				return false, study.ErrStop
			}
		}
	}

	sum, err := a.svc.StudyFlashcards(cmd.Context(), cards, judge)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "── Summary: %d/%d known (%.0f%%) ──\n", sum.Correct, sum.Studied, sum.Accuracy)
	if sum.SaveFailures > 0 {
		fmt.Fprintf(out, "Warning: %d progress save(s) failed.\n", sum.SaveFailures)
	}
	return nil
}
