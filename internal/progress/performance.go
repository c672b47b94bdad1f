package progress

import (
	"context"
	"fmt"
	"sort"
)

// UpdateFrameworkPerformance folds one question score (0-100) into the
// framework aggregate.
func (s *Store) UpdateFrameworkPerformance(ctx context.Context, framework string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordArea(s.doc.frameworks, framework, score)
	return s.persist(ctx, "update framework performance")
}

// UpdateDifficultyPerformance folds one question score (0-100) into the
// difficulty tier aggregate.
func (s *Store) UpdateDifficultyPerformance(ctx context.Context, difficulty string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recordArea(s.doc.difficulties, difficulty, score)
	return s.persist(ctx, "update difficulty performance")
}

// FrameworkPerformance summarizes every framework with at least one
// answered question, by name.
func (s *Store) FrameworkPerformance() []AreaSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarizeAreas(s.doc.frameworks)
}

// DifficultyPerformance summarizes every difficulty tier with at least one
// answered question, by name.
func (s *Store) DifficultyPerformance() []AreaSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarizeAreas(s.doc.difficulties)
}

// DifficultyRecommendations advises per tier once it has enough answers:
// below 60% review, 85% and above take a harder challenge, otherwise focus.
func (s *Store) DifficultyRecommendations() []Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()

	var recs []Recommendation
	for _, sum := range summarizeAreas(s.doc.difficulties) {
		if sum.QuestionsAnswered < RecommendationMinQuestions {
			continue
		}
		avg := sum.AverageScore
		r := Recommendation{Difficulty: sum.Name, AverageScore: avg}
		switch {
		case avg < 60:
			r.Kind = RecommendReview
			r.Message = fmt.Sprintf("Review %s concepts - current average: %.1f%%", sum.Name, avg)
		case avg >= 85:
			r.Kind = RecommendChallenge
			r.Message = fmt.Sprintf("Excellent %s performance (%.1f%%)! Ready for harder challenges.", sum.Name, avg)
		default:
			r.Kind = RecommendFocus
			r.Message = fmt.Sprintf("Keep practicing %s - you're improving (%.1f%%)", sum.Name, avg)
		}
		recs = append(recs, r)
	}
	return recs
}

// UpdateLivePerformance appends a point to the live log, keeping the
// newest LivePerformanceCap.
func (s *Store) UpdateLivePerformance(ctx context.Context, questionNum int, correct bool, accuracy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.live = append(s.doc.live, LivePoint{
		QuestionNum: questionNum,
		Correct:     correct,
		Accuracy:    accuracy,
		Timestamp:   s.now(),
	})
	if n := len(s.doc.live); n > LivePerformanceCap {
		s.doc.live = append([]LivePoint(nil), s.doc.live[n-LivePerformanceCap:]...)
	}
	return s.persist(ctx, "update live performance")
}

// LivePerformance returns the live log, oldest first.
func (s *Store) LivePerformance() []LivePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LivePoint(nil), s.doc.live...)
}

// Answer is one scored question of a test attempt.
type Answer struct {
	QuestionNum int
	Framework   string // empty when the question has none
	Difficulty  string
	Correct     bool
}

// RecordAnswers folds a scored attempt into framework, difficulty and live
// performance with a single save. Each live point carries the running
// accuracy of the attempt up to that question.
func (s *Store) RecordAnswers(ctx context.Context, answers []Answer) error {
	if len(answers) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	correct := 0
	for i, a := range answers {
		score := 0.0
		if a.Correct {
			score = 100
			correct++
		}
		if a.Framework != "" {
			recordArea(s.doc.frameworks, a.Framework, score)
		}
		if a.Difficulty != "" {
			recordArea(s.doc.difficulties, a.Difficulty, score)
		}
		s.doc.live = append(s.doc.live, LivePoint{
			QuestionNum: a.QuestionNum,
			Correct:     a.Correct,
			Accuracy:    percent(correct, i+1),
			Timestamp:   now,
		})
	}
	if n := len(s.doc.live); n > LivePerformanceCap {
		s.doc.live = append([]LivePoint(nil), s.doc.live[n-LivePerformanceCap:]...)
	}
	return s.persist(ctx, "record answers")
}

func recordArea(m map[string]*AreaPerformance, name string, score float64) {
	a, ok := m[name]
	if !ok {
		a = &AreaPerformance{}
		m[name] = a
	}
	a.record(score)
}

func summarizeAreas(m map[string]*AreaPerformance) []AreaSummary {
	var out []AreaSummary
	for name, a := range m {
		if a.TotalQuestions == 0 {
			continue
		}
		out = append(out, AreaSummary{
			Name:              name,
			AverageScore:      a.average(),
			QuestionsAnswered: a.TotalQuestions,
			BestScore:         a.BestScore,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
