package progress

import (
	"slices"
	"time"
)

const (
	// RecentScoresCap bounds TopicPerformance.RecentScores.
	RecentScoresCap = 10

	// LivePerformanceCap bounds the live performance log.
	LivePerformanceCap = 50

	// MinDifficultyLevel and MaxDifficultyLevel bound FlashcardStat.DifficultyLevel.
	MinDifficultyLevel = 1
	MaxDifficultyLevel = 5

	// ReviewDaysPerLevel is the review interval per difficulty level.
	ReviewDaysPerLevel = 2

	// RecommendationMinQuestions is the sample size a difficulty tier needs
	// before it gets a recommendation.
	RecommendationMinQuestions = 5
)

// Session is one study or test interval.
type Session struct {
	ID                string
	StartTime         time.Time
	EndTime           *time.Time
	FlashcardsStudied int
	TestsTaken        int
	TestScores        []float64
	TopicsCovered     []string
	Duration          float64 // minutes, set on close
}

// Closed reports whether EndSession has been called for the session.
func (s *Session) Closed() bool {
	return s.EndTime != nil
}

func (s *Session) clone() Session {
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	c.TestScores = slices.Clone(s.TestScores)
	c.TopicsCovered = slices.Clone(s.TopicsCovered)
	return c
}

// addTopic appends topic unless the session already covers it.
func (s *Session) addTopic(topic string) {
	if !slices.Contains(s.TopicsCovered, topic) {
		s.TopicsCovered = append(s.TopicsCovered, topic)
	}
}

// FlashcardStat is the spaced-repetition state of one flashcard term.
type FlashcardStat struct {
	TimesStudied    int
	TimesCorrect    int
	LastStudied     *time.Time
	DifficultyLevel int
	NextReview      *time.Time
}

// Accuracy returns the share of correct reviews as a percentage.
func (f FlashcardStat) Accuracy() float64 {
	return percent(f.TimesCorrect, f.TimesStudied)
}

func (f *FlashcardStat) clone() FlashcardStat {
	c := *f
	if f.LastStudied != nil {
		t := *f.LastStudied
		c.LastStudied = &t
	}
	if f.NextReview != nil {
		t := *f.NextReview
		c.NextReview = &t
	}
	return c
}

// TopicPerformance aggregates test scores for one topic.
type TopicPerformance struct {
	TotalTests       int
	TotalScore       float64
	BestScore        float64
	RecentScores     []float64
	ImprovementTrend float64
}

// AverageScore returns TotalScore / TotalTests, or 0 with no tests.
func (p TopicPerformance) AverageScore() float64 {
	if p.TotalTests == 0 {
		return 0
	}
	return p.TotalScore / float64(p.TotalTests)
}

func (p *TopicPerformance) clone() TopicPerformance {
	c := *p
	c.RecentScores = slices.Clone(p.RecentScores)
	return c
}

// TestResult is one entry of the append-only test log.
type TestResult struct {
	SessionID      string
	Date           time.Time
	Topic          string
	Score          float64
	TotalQuestions int
	CorrectAnswers int
	Accuracy       float64
}

// AreaPerformance accumulates per-question scores for a framework or a
// difficulty tier.
type AreaPerformance struct {
	TotalQuestions int
	TotalScore     float64
	BestScore      float64
}

// LivePoint is one answered question in the live performance log.
type LivePoint struct {
	QuestionNum int
	Correct     bool
	Accuracy    float64
	Timestamp   time.Time
}

// OverallStats aggregates the whole history.
type OverallStats struct {
	TotalSessions          int
	TotalFlashcardsStudied int
	TotalTestsTaken        int
	AverageTestScore       float64
	BestTestScore          float64
	TotalStudyTime         float64 // minutes
	StudyStreak            int
	LastStudyDate          string // YYYY-MM-DD, empty before the first closed session
}

// SessionSummary is the compact view of a closed session.
type SessionSummary struct {
	SessionID         string
	Date              string // "2006-01-02 15:04"
	Duration          float64
	FlashcardsStudied int
	TestScores        []float64
}

// AreaSummary reports an AreaPerformance by name.
type AreaSummary struct {
	Name              string
	AverageScore      float64
	QuestionsAnswered int
	BestScore         float64
}

// RecommendationKind classifies a difficulty recommendation.
type RecommendationKind string

const (
	RecommendReview    RecommendationKind = "review"
	RecommendChallenge RecommendationKind = "challenge"
	RecommendFocus     RecommendationKind = "focus"
)

// Recommendation suggests what to do next for one difficulty tier.
type Recommendation struct {
	Kind         RecommendationKind
	Difficulty   string
	AverageScore float64
	Message      string
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
