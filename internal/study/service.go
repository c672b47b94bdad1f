package study

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/abhisek/studytrack/internal/progress"
	"github.com/abhisek/studytrack/internal/questionbank"
	"github.com/abhisek/studytrack/internal/testgen"
)

const (
	// SpacedLimit caps the due cards offered in spaced mode.
	SpacedLimit = 20

	// FallbackCards is how many random cards spaced mode offers when
	// nothing is due.
	FallbackCards = 10
)

// ErrStop may be returned by a Judge to end a study run early. The cards
// judged so far are kept.
var ErrStop = errors.New("study stopped")

// CardMode picks which flashcards a study run covers.
type CardMode string

const (
	ModeSpaced CardMode = "spaced"
	ModeRandom CardMode = "random"
	ModeAll    CardMode = "all"
)

// ParseCardMode validates a mode name.
func ParseCardMode(s string) (CardMode, error) {
	switch m := CardMode(s); m {
	case ModeSpaced, ModeRandom, ModeAll:
		return m, nil
	}
	return "", fmt.Errorf("unknown flashcard mode %q (want spaced, random or all)", s)
}

// Judge shows a card to the learner and reports whether they knew it.
type Judge func(card questionbank.Flashcard) (bool, error)

// Service ties the progress store to the test generator: it runs flashcard
// study sessions and records test attempts.
type Service struct {
	Progress  *progress.Store
	Generator *testgen.Generator

	rng    *rand.Rand
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the random source used to pick cards.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a service over an opened store and a generator.
func NewService(p *progress.Store, g *testgen.Generator, opts ...Option) *Service {
	s := &Service{Progress: p, Generator: g, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// CardsToStudy selects cards for a run. Spaced mode returns due cards, or
// a random handful when none are due; random mode returns n random cards;
// all returns the whole deck.
func (s *Service) CardsToStudy(mode CardMode, n int) ([]questionbank.Flashcard, error) {
	deck := s.Generator.Bank().Flashcards()

	switch mode {
	case ModeSpaced:
		var due []questionbank.Flashcard
		for _, term := range s.Progress.FlashcardsForReview(SpacedLimit) {
			if card, ok := s.Generator.Bank().Flashcard(term); ok {
				due = append(due, card)
			}
		}
		if len(due) > 0 {
			return due, nil
		}
		s.logger.Debug("no flashcards due, picking random cards")
		return s.sample(deck, FallbackCards), nil
	case ModeRandom:
		return s.sample(deck, n), nil
	case ModeAll:
		return deck, nil
	}
	return nil, fmt.Errorf("unknown flashcard mode %q", mode)
}

func (s *Service) sample(deck []questionbank.Flashcard, n int) []questionbank.Flashcard {
	if n <= 0 {
		return nil
	}
	s.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	if n < len(deck) {
		deck = deck[:n]
	}
	return deck
}

// FlashcardSummary reports one study run.
type FlashcardSummary struct {
	SessionID    string
	Studied      int
	Correct      int
	Accuracy     float64
	SaveFailures int
	Stopped      bool
}

// StudyFlashcards runs a session over cards, asking judge about each and
// recording the answer. Save failures are counted but do not stop the run.
func (s *Service) StudyFlashcards(ctx context.Context, cards []questionbank.Flashcard, judge Judge) (FlashcardSummary, error) {
	sum := FlashcardSummary{SessionID: s.Progress.StartSession()}

	var runErr error
	for _, card := range cards {
		correct, err := judge(card)
		if errors.Is(err, ErrStop) {
			sum.Stopped = true
			break
		}
		if err != nil {
			runErr = fmt.Errorf("judge %q: %w", card.Term, err)
			break
		}

		if err := s.tolerate(&sum.SaveFailures, s.Progress.RecordFlashcardStudy(ctx, sum.SessionID, card.Term, correct)); err != nil {
			runErr = err
			break
		}
		sum.Studied++
		if correct {
			sum.Correct++
		}
	}

	if err := s.tolerate(&sum.SaveFailures, s.Progress.EndSession(ctx, sum.SessionID)); err != nil && runErr == nil {
		runErr = err
	}
	if sum.Studied > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(sum.Studied) * 100
	}
	return sum, runErr
}

// SubmitTest marks an attempt and records it in the session: one test
// result per topic, per-question framework and difficulty performance, the
// live log, then closes the session.
func (s *Service) SubmitTest(ctx context.Context, sessionID string, questions []testgen.TestQuestion, answers map[int]int) (testgen.Result, int, error) {
	res := testgen.Score(questions, answers)
	failures := 0

	for _, ts := range res.Topics {
		err := s.Progress.RecordTestResult(ctx, sessionID, ts.Topic, ts.Score, ts.Total, ts.Correct)
		if err := s.tolerate(&failures, err); err != nil {
			return res, failures, err
		}
	}

	recs := make([]progress.Answer, len(questions))
	for i, q := range questions {
		recs[i] = progress.Answer{
			QuestionNum: q.Number,
			Framework:   q.Framework,
			Difficulty:  string(q.Difficulty),
			Correct:     res.Outcomes[i].IsRight,
		}
	}
	if err := s.tolerate(&failures, s.Progress.RecordAnswers(ctx, recs)); err != nil {
		return res, failures, err
	}

	if err := s.tolerate(&failures, s.Progress.EndSession(ctx, sessionID)); err != nil {
		return res, failures, err
	}
	return res, failures, nil
}

// tolerate swallows save warnings, counting them in n.
func (s *Service) tolerate(n *int, err error) error {
	if err == nil {
		return nil
	}
	if progress.IsSaveWarning(err) {
		*n++
		return nil
	}
	return err
}
