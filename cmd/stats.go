package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studytrack/internal/progress"
)

const rule = "─"

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show overall study statistics",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		s := a.progress().OverallStats()
		out := cmd.OutOrStdout()

		last := s.LastStudyDate
		if last == "" {
			last = "never"
		}
		fmt.Fprintf(out, "Sessions:            %d\n", s.TotalSessions)
		fmt.Fprintf(out, "Flashcards studied:  %d\n", s.TotalFlashcardsStudied)
		fmt.Fprintf(out, "Tests taken:         %d\n", s.TotalTestsTaken)
		fmt.Fprintf(out, "Average test score:  %.1f%%\n", s.AverageTestScore)
		fmt.Fprintf(out, "Best test score:     %.1f%%\n", s.BestTestScore)
		fmt.Fprintf(out, "Study time:          %.1f min\n", s.TotalStudyTime)
		fmt.Fprintf(out, "Study streak:        %d day(s)\n", s.StudyStreak)
		fmt.Fprintf(out, "Last studied:        %s\n", last)
		return nil
	}),
}

var topicCmd = &cobra.Command{
	Use:   "topic <name>",
	Short: "Show performance for one topic",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		perf, ok := a.progress().TopicPerformance(args[0])
		if !ok {
			fmt.Fprintf(out, "No tests recorded for %q.\n", args[0])
			return nil
		}

		fmt.Fprintf(out, "Topic:          %s\n", args[0])
		fmt.Fprintf(out, "Tests:          %d\n", perf.TotalTests)
		fmt.Fprintf(out, "Average score:  %.1f%%\n", perf.AverageScore())
		fmt.Fprintf(out, "Best score:     %.1f%%\n", perf.BestScore)
		fmt.Fprintf(out, "Recent scores:  %s\n", formatScores(perf.RecentScores))
		fmt.Fprintf(out, "Trend:          %+.1f\n", perf.ImprovementTrend)
		return nil
	}),
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recent sessions",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")
		out := cmd.OutOrStdout()

		if all {
			sessions := a.progress().Sessions()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions yet.")
				return nil
			}
			fmt.Fprintf(out, "%-34s  %-16s  %-6s  %5s  %s\n", "ID", "Started", "State", "Cards", "Tests")
			fmt.Fprintln(out, strings.Repeat(rule, 78))
			for _, s := range sessions {
				state := "open"
				if s.Closed() {
					state = "closed"
				}
				fmt.Fprintf(out, "%-34s  %-16s  %-6s  %5d  %d\n",
					s.ID, s.StartTime.Local().Format("2006-01-02 15:04"), state, s.FlashcardsStudied, s.TestsTaken)
			}
			return nil
		}

		recent := a.progress().RecentSessions(limit)
		if len(recent) == 0 {
			fmt.Fprintln(out, "No completed sessions yet.")
			return nil
		}
		fmt.Fprintf(out, "%-34s  %-16s  %8s  %5s  %s\n", "ID", "Date", "Minutes", "Cards", "Scores")
		fmt.Fprintln(out, strings.Repeat(rule, 86))
		for _, s := range recent {
			fmt.Fprintf(out, "%-34s  %-16s  %8.1f  %5d  %s\n",
				s.SessionID, s.Date, s.Duration, s.FlashcardsStudied, formatScores(s.TestScores))
		}
		return nil
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List flashcards due for review",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		limit, _ := cmd.Flags().GetInt("limit")
		out := cmd.OutOrStdout()

		terms := a.progress().FlashcardsForReview(limit)
		if len(terms) == 0 {
			fmt.Fprintln(out, "Nothing due for review.")
			return nil
		}
		fmt.Fprintf(out, "%-40s  %5s  %8s  %s\n", "Term", "Level", "Studied", "Accuracy")
		fmt.Fprintln(out, strings.Repeat(rule, 70))
		for _, term := range terms {
			st, _ := a.progress().FlashcardStat(term)
			fmt.Fprintf(out, "%-40s  %5d  %8d  %.0f%%\n",
				truncate(term, 40), st.DifficultyLevel, st.TimesStudied, st.Accuracy())
		}
		fmt.Fprintf(out, "\n%d card(s) due\n", len(terms))
		return nil
	}),
}

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Show framework and difficulty performance with recommendations",
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		out := cmd.OutOrStdout()
		p := a.progress()

		printAreas(cmd, "Framework", p.FrameworkPerformance())
		fmt.Fprintln(out)
		printAreas(cmd, "Difficulty", p.DifficultyPerformance())

		recs := p.DifficultyRecommendations()
		if len(recs) > 0 {
			fmt.Fprintln(out, "\nRecommendations:")
			for _, r := range recs {
				fmt.Fprintf(out, "  [%s] %s\n", r.Kind, r.Message)
			}
		}
		return nil
	}),
}

func printAreas(cmd *cobra.Command, label string, areas []progress.AreaSummary) {
	out := cmd.OutOrStdout()
	if len(areas) == 0 {
		fmt.Fprintf(out, "No %s data yet.\n", strings.ToLower(label))
		return
	}
	fmt.Fprintf(out, "%-30s  %9s  %7s  %s\n", label, "Questions", "Average", "Best")
	fmt.Fprintln(out, strings.Repeat(rule, 60))
	for _, a := range areas {
		fmt.Fprintf(out, "%-30s  %9d  %6.1f%%  %.0f%%\n",
			truncate(a.Name, 30), a.QuestionsAnswered, a.AverageScore, a.BestScore)
	}
}

func formatScores(scores []float64) string {
	if len(scores) == 0 {
		return "-"
	}
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%.0f", s)
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	sessionsCmd.Flags().Int("limit", 10, "Number of recent sessions to consider")
	sessionsCmd.Flags().Bool("all", false, "List every session, including open ones")
	reviewCmd.Flags().Int("limit", 20, "Maximum number of cards to list")
}
