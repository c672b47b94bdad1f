package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studytrack/internal/questionbank"
	"github.com/abhisek/studytrack/internal/testgen"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Take a multiple-choice test",
	Long: `Answer each question with A, B, C or D. An empty answer skips the
question; q submits the test with the remaining questions unanswered.`,
}

var testMockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Weighted mock test across every topic",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		n := countFlag(cmd, a.cfg.Tests.MockQuestions)
		return runTest(cmd, a, "Mock test", a.generator().GenerateMockTest(n, nil))
	}),
}

var testTopicCmd = &cobra.Command{
	Use:   "topic <name>",
	Short: "Test on a single topic",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		n := countFlag(cmd, a.cfg.Tests.TopicQuestions)
		if !a.generator().Bank().HasTopic(args[0]) {
			return fmt.Errorf("unknown topic %q (see: studytrack bank)", args[0])
		}
		return runTest(cmd, a, args[0], a.generator().GenerateTopicTest(args[0], n))
	}),
}

var testFrameworkCmd = &cobra.Command{
	Use:   "framework <name>",
	Short: "Test on the topics of one framework",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		n := countFlag(cmd, a.cfg.Tests.FrameworkQuestions)
		difficulty, _ := cmd.Flags().GetString("difficulty")
		qs := a.generator().GenerateFrameworkTest(args[0], difficulty, n)
		return runTest(cmd, a, args[0], qs)
	}),
}

var testDifficultyCmd = &cobra.Command{
	Use:   "difficulty <level>",
	Short: "Test on one difficulty tier across every topic",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		n := countFlag(cmd, a.cfg.Tests.DifficultyQuestions)
		return runTest(cmd, a, args[0]+" test", a.generator().GenerateDifficultyTest(args[0], n))
	}),
}

func init() {
	for _, c := range []*cobra.Command{testMockCmd, testTopicCmd, testFrameworkCmd, testDifficultyCmd} {
		c.Flags().IntP("count", "n", 0, "Number of questions (default from config)")
		testCmd.AddCommand(c)
	}
	testFrameworkCmd.Flags().String("difficulty", testgen.AllLevels, "Only questions of this difficulty")
}

func countFlag(cmd *cobra.Command, fallback int) int {
	if n, _ := cmd.Flags().GetInt("count"); n > 0 {
		return n
	}
	return fallback
}

// runTest asks every question, then scores and records the attempt.
func runTest(cmd *cobra.Command, a *app, title string, questions []testgen.TestQuestion) error {
	out := cmd.OutOrStdout()
	if len(questions) == 0 {
		fmt.Fprintln(out, "No questions match.")
		return nil
	}

	sessionID := a.progress().StartSession()
	pr := newPrompter(cmd)
	answers := make(map[int]int, len(questions))

	fmt.Fprintf(out, "%s: %d questions\n\n", title, len(questions))
ask:
	for i, q := range questions {
		fmt.Fprintf(out, "── Question %d/%d [%s, %s] ──\n", q.Number, len(questions), q.Topic, q.Difficulty)
		fmt.Fprintln(out, q.Question.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %s) %s\n", questionbank.Letter(j), opt)
		}

		for {
			reply, ok := pr.ask("\nYour answer: ")
			if !ok {
				break ask
			}
			if strings.EqualFold(reply, "q") {
				break ask
			}
			if reply == "" {
				fmt.Fprintln(out, "(skipped)")
				break
			}
			idx, ok := questionbank.LetterIndex(reply)
			if !ok {
				fmt.Fprintln(out, "Answer A, B, C or D.")
				continue
			}
			answers[i] = idx
			break
		}
		fmt.Fprintln(out)
	}

	res, failures, err := a.svc.SubmitTest(cmd.Context(), sessionID, questions, answers)
	if err != nil {
		return err
	}
	printResult(cmd, questions, res)
	if failures > 0 {
		fmt.Fprintf(out, "Warning: %d progress save(s) failed.\n", failures)
	}
	return nil
}

func printResult(cmd *cobra.Command, questions []testgen.TestQuestion, res testgen.Result) {
	out := cmd.OutOrStdout()

	for i, o := range res.Outcomes {
		if o.IsRight {
			continue
		}
		q := questions[i]
		picked := "none"
		if o.Selected != testgen.Unanswered {
			picked = questionbank.Letter(o.Selected)
		}
		fmt.Fprintf(out, "✗ Q%d: you chose %s, answer %s) %s\n", o.Number, picked, questionbank.Letter(o.Correct), q.CorrectOption())
		if q.Explanation != "" {
			fmt.Fprintf(out, "  %s\n", q.Explanation)
		}
	}

	fmt.Fprintf(out, "\n── Score: %d/%d (%.1f%%) ──\n", res.Correct, res.Total, res.Score)
	for _, t := range res.Topics {
		fmt.Fprintf(out, "  %-40s  %d/%d  %.0f%%\n", truncate(t.Topic, 40), t.Correct, t.Total, t.Score)
	}
}
