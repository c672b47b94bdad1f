package study

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studytrack/internal/progress"
	"github.com/abhisek/studytrack/internal/questionbank"
	"github.com/abhisek/studytrack/internal/store"
	"github.com/abhisek/studytrack/internal/testgen"
)

func testBank(t *testing.T) *questionbank.Bank {
	t.Helper()
	q := func(text string, correct int, d questionbank.Difficulty) questionbank.Question {
		return questionbank.Question{Question: text, Options: []string{"a", "b", "c", "d"}, Correct: correct, Difficulty: d}
	}
	b, err := questionbank.New(
		[]questionbank.Topic{
			{Name: "Graphiti", Weight: 1, Questions: []questionbank.Question{
				q("g1", 0, questionbank.DifficultyNormal),
				q("g2", 1, questionbank.DifficultyPhD),
			}},
			{Name: "Design Patterns", Weight: 1, Questions: []questionbank.Question{
				q("d1", 2, questionbank.DifficultyPhD),
			}},
		},
		[]questionbank.Framework{{Name: "Agents", Topics: []string{"Graphiti", "Design Patterns"}}},
		nil,
		[]questionbank.Flashcard{
			{Term: "RAG", Definition: "retrieval augmented generation"},
			{Term: "MCP", Definition: "model context protocol"},
			{Term: "Graph", Definition: "nodes and edges"},
		},
	)
	require.NoError(t, err)
	return b
}

type testEnv struct {
	svc   *Service
	clock *time.Time
	repo  *store.FileRepo
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	env := &testEnv{clock: &now, repo: store.NewFileRepo(filepath.Join(t.TempDir(), "progress.json"))}
	p := progress.Open(context.Background(), env.repo, progress.WithClock(func() time.Time { return *env.clock }))
	g := testgen.New(testBank(t), testgen.WithRand(rand.New(rand.NewPCG(1, 1))))
	env.svc = NewService(p, g, WithRand(rand.New(rand.NewPCG(2, 2))))
	return env
}

func (e *testEnv) advance(d time.Duration) { *e.clock = e.clock.Add(d) }

func TestParseCardMode(t *testing.T) {
	for _, s := range []string{"spaced", "random", "all"} {
		m, err := ParseCardMode(s)
		require.NoError(t, err)
		assert.Equal(t, CardMode(s), m)
	}
	_, err := ParseCardMode("weekly")
	assert.Error(t, err)
}

func TestCardsToStudy(t *testing.T) {
	env := newEnv(t)

	all, err := env.svc.CardsToStudy(ModeAll, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	random, err := env.svc.CardsToStudy(ModeRandom, 2)
	require.NoError(t, err)
	assert.Len(t, random, 2)

	spaced, err := env.svc.CardsToStudy(ModeSpaced, 0)
	require.NoError(t, err)
	assert.Len(t, spaced, 3, "nothing due falls back to random cards")

	_, err = env.svc.CardsToStudy("weekly", 0)
	assert.Error(t, err)
}

func TestCardsToStudy_SpacedReturnsDue(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	answers := map[string]bool{"RAG": false, "MCP": true, "Graph": true}
	_, err := env.svc.StudyFlashcards(ctx, env.testDeck(t), func(c questionbank.Flashcard) (bool, error) {
		return answers[c.Term], nil
	})
	require.NoError(t, err)

	env.advance(3 * 24 * time.Hour)
	due, err := env.svc.CardsToStudy(ModeSpaced, 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "RAG", due[0].Term)
}

func (e *testEnv) testDeck(t *testing.T) []questionbank.Flashcard {
	cards, err := e.svc.CardsToStudy(ModeAll, 0)
	require.NoError(t, err)
	return cards
}

func TestStudyFlashcards(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	calls := 0
	sum, err := env.svc.StudyFlashcards(ctx, env.testDeck(t), func(c questionbank.Flashcard) (bool, error) {
		calls++
		env.advance(time.Minute)
		return c.Term != "MCP", nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, sum.Studied)
	assert.Equal(t, 2, sum.Correct)
	assert.InDelta(t, 66.67, sum.Accuracy, 0.01)
	assert.False(t, sum.Stopped)

	sess, ok := env.svc.Progress.Session(sum.SessionID)
	require.True(t, ok)
	assert.True(t, sess.Closed())
	assert.Equal(t, 3, sess.FlashcardsStudied)
	assert.InDelta(t, 3.0, sess.Duration, 1e-9)

	st, ok := env.svc.Progress.FlashcardStat("MCP")
	require.True(t, ok)
	assert.Equal(t, 1, st.TimesStudied)
	assert.Equal(t, 0, st.TimesCorrect)
}

func TestStudyFlashcards_Stop(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	sum, err := env.svc.StudyFlashcards(ctx, env.testDeck(t), func(c questionbank.Flashcard) (bool, error) {
		if c.Term == "MCP" {
			return false, ErrStop
		}
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, sum.Stopped)
	assert.Equal(t, 1, sum.Studied)

	sess, _ := env.svc.Progress.Session(sum.SessionID)
	assert.True(t, sess.Closed(), "a stopped run still closes its session")
}

func TestStudyFlashcards_JudgeError(t *testing.T) {
	env := newEnv(t)
	boom := errors.New("terminal closed")

	sum, err := env.svc.StudyFlashcards(context.Background(), env.testDeck(t), func(questionbank.Flashcard) (bool, error) {
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, sum.Studied)
}

func TestSubmitTest(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)

	questions := env.svc.Generator.GenerateFrameworkTest("Agents", testgen.AllLevels, 10)
	require.Len(t, questions, 3)

	// Answer everything right except d1.
	answers := map[int]int{}
	for i, q := range questions {
		if q.Question.Question != "d1" {
			answers[i] = q.Correct
		}
	}

	id := env.svc.Progress.StartSession()
	env.advance(5 * time.Minute)
	res, failures, err := env.svc.SubmitTest(ctx, id, questions, answers)
	require.NoError(t, err)
	assert.Equal(t, 0, failures)
	assert.Equal(t, 2, res.Correct)

	graphiti, ok := env.svc.Progress.TopicPerformance("Graphiti")
	require.True(t, ok)
	assert.Equal(t, 100.0, graphiti.BestScore)
	patterns, ok := env.svc.Progress.TopicPerformance("Design Patterns")
	require.True(t, ok)
	assert.Equal(t, 0.0, patterns.BestScore)

	sess, _ := env.svc.Progress.Session(id)
	assert.True(t, sess.Closed())
	assert.Equal(t, 2, sess.TestsTaken)
	assert.ElementsMatch(t, []string{"Graphiti", "Design Patterns"}, sess.TopicsCovered)

	fw := env.svc.Progress.FrameworkPerformance()
	require.Len(t, fw, 1)
	assert.Equal(t, "Agents", fw[0].Name)
	assert.Equal(t, 3, fw[0].QuestionsAnswered)
	assert.InDelta(t, 66.67, fw[0].AverageScore, 0.01)

	byDifficulty := map[string]progress.AreaSummary{}
	for _, d := range env.svc.Progress.DifficultyPerformance() {
		byDifficulty[d.Name] = d
	}
	assert.Equal(t, 1, byDifficulty["Normal"].QuestionsAnswered)
	assert.Equal(t, 2, byDifficulty["PhD"].QuestionsAnswered)
	assert.Equal(t, 50.0, byDifficulty["PhD"].AverageScore)

	live := env.svc.Progress.LivePerformance()
	require.Len(t, live, 3)
	for i, lp := range live {
		assert.Equal(t, i+1, lp.QuestionNum)
	}

	_, _, err = env.svc.SubmitTest(ctx, "missing", questions, answers)
	assert.ErrorIs(t, err, progress.ErrSessionNotFound)
}

func TestSubmitTest_SaveFailuresAreCounted(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// The repo path is a directory, so every save fails.
	repo := store.NewFileRepo(dir)
	p := progress.Open(ctx, repo)
	g := testgen.New(testBank(t))
	svc := NewService(p, g)

	questions := g.GenerateTopicTest("Graphiti", 2)
	id := p.StartSession()
	res, failures, err := svc.SubmitTest(ctx, id, questions, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 3, failures, "one topic result, the answers, and the close")

	sess, _ := p.Session(id)
	assert.True(t, sess.Closed())
}
