package progress

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/studytrack/internal/store"
)

// Store is the progress tracker: sessions, flashcard schedules, test history
// and streak state, mirrored in memory and written in full to a
// store.SnapshotRepo after every mutation.
type Store struct {
	mu sync.Mutex

	repo    store.SnapshotRepo
	logger  *zap.Logger
	now     func() time.Time
	metrics *Metrics
	keep    int

	doc      *document
	sessions map[string]*Session
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMetrics enables Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithKeepSnapshots prunes the repo to the newest n snapshots after each
// save. Zero disables pruning.
func WithKeepSnapshots(n int) Option {
	return func(s *Store) { s.keep = n }
}

// Open loads the latest document from repo. A missing, corrupt or
// incompatible document yields an empty history; Open never fails.
func Open(ctx context.Context, repo store.SnapshotRepo, opts ...Option) *Store {
	s := &Store{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setDocument(s.load(ctx))
	return s
}

func (s *Store) load(ctx context.Context) *document {
	snap, err := s.repo.Latest(ctx)
	if err != nil {
		s.logger.Warn("could not read progress, starting fresh", zap.Error(err))
		return newDocument()
	}
	if snap == nil {
		return newDocument()
	}

	doc, skipped, err := decodeDocument(snap.Data)
	if err != nil {
		s.logger.Warn("progress document unreadable, starting fresh",
			zap.Int("snapshot_id", snap.ID),
			zap.Error(err))
		return newDocument()
	}
	if skipped > 0 {
		s.logger.Warn("dropped progress records with unreadable timestamps", zap.Int("count", skipped))
	}
	return doc
}

func (s *Store) setDocument(doc *document) {
	s.doc = doc
	s.sessions = make(map[string]*Session, len(doc.sessions))
	for _, sess := range doc.sessions {
		s.sessions[sess.ID] = sess
	}
}

// persist writes the document. On failure the in-memory state is kept and
// a *SaveError is returned.
func (s *Store) persist(ctx context.Context, op string) error {
	data, err := encodeDocument(s.doc)
	if err == nil {
		err = s.repo.Save(ctx, &store.Snapshot{Timestamp: s.now(), Data: data})
	}
	if err == nil && s.keep > 0 {
		err = s.repo.Prune(ctx, s.keep)
	}
	if err != nil {
		s.metrics.saveFailed()
		s.logger.Warn("could not save progress", zap.String("op", op), zap.Error(err))
		return &SaveError{Op: op, Err: err}
	}
	return nil
}

// openSession looks up id for mutation.
func (s *Store) openSession(op, id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", op, id, ErrSessionNotFound)
	}
	if sess.Closed() {
		return nil, fmt.Errorf("%s %q: %w", op, id, ErrSessionClosed)
	}
	return sess, nil
}

// StartSession opens a new session and returns its id. The session is
// persisted with the next save.
func (s *Store) StartSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := "session_" + now.Format("20060102_150405")
	for {
		if _, taken := s.sessions[id]; !taken {
			break
		}
		id = "session_" + now.Format("20060102_150405") + "_" + uuid.NewString()[:8]
	}

	sess := &Session{ID: id, StartTime: now}
	s.doc.sessions = append(s.doc.sessions, sess)
	s.sessions[id] = sess
	s.metrics.sessionStarted()
	return id
}

// EndSession closes the session, computes its duration, updates the study
// streak and persists.
func (s *Store) EndSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession("end session", id)
	if err != nil {
		return err
	}

	end := s.now()
	if end.Before(sess.StartTime) {
		end = sess.StartTime
	}
	sess.EndTime = &end
	sess.Duration = end.Sub(sess.StartTime).Minutes()

	s.doc.streak, s.doc.lastStudyDate = nextStreak(s.doc.streak, s.doc.lastStudyDate, end)
	s.metrics.sessionEnded()
	return s.persist(ctx, "end session")
}

// RecordFlashcardStudy counts a flashcard in the session and reschedules
// the term.
func (s *Store) RecordFlashcardStudy(ctx context.Context, id, term string, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession("record flashcard", id)
	if err != nil {
		return err
	}
	sess.FlashcardsStudied++

	st, ok := s.doc.flashcards[term]
	if !ok {
		st = newFlashcardStat()
		s.doc.flashcards[term] = st
	}
	st.recordReview(correct, s.now())

	s.metrics.flashcardReviewed(correct)
	return s.persist(ctx, "record flashcard")
}

// RecordTestResult logs a test score for topic and folds it into the
// session and topic aggregates.
func (s *Store) RecordTestResult(ctx context.Context, id, topic string, score float64, totalQuestions, correctAnswers int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession("record test result", id)
	if err != nil {
		return err
	}
	sess.TestsTaken++
	sess.TestScores = append(sess.TestScores, score)
	sess.addTopic(topic)

	s.doc.testResults = append(s.doc.testResults, TestResult{
		SessionID:      id,
		Date:           s.now(),
		Topic:          topic,
		Score:          score,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correctAnswers,
		Accuracy:       percent(correctAnswers, totalQuestions),
	})

	perf, ok := s.doc.topics[topic]
	if !ok {
		perf = &TopicPerformance{}
		s.doc.topics[topic] = perf
	}
	perf.recordScore(score)

	s.metrics.testRecorded()
	return s.persist(ctx, "record test result")
}

// FlashcardsForReview returns up to limit terms due now, easiest first.
func (s *Store) FlashcardsForReview(limit int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dueTerms(s.doc.flashcards, s.now(), limit)
}

// FlashcardStat returns the schedule of term.
func (s *Store) FlashcardStat(term string) (FlashcardStat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.doc.flashcards[term]
	if !ok {
		return FlashcardStat{}, false
	}
	return st.clone(), true
}

// FlashcardStats returns every tracked term's schedule.
func (s *Store) FlashcardStats() map[string]FlashcardStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]FlashcardStat, len(s.doc.flashcards))
	for term, st := range s.doc.flashcards {
		out[term] = st.clone()
	}
	return out
}

// TopicPerformance returns the aggregate for topic.
func (s *Store) TopicPerformance(topic string) (TopicPerformance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.doc.topics[topic]
	if !ok {
		return TopicPerformance{}, false
	}
	return p.clone(), true
}

// AllTopicPerformance returns every topic aggregate.
func (s *Store) AllTopicPerformance() map[string]TopicPerformance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]TopicPerformance, len(s.doc.topics))
	for topic, p := range s.doc.topics {
		out[topic] = p.clone()
	}
	return out
}

// TestResults returns the test log, oldest first.
func (s *Store) TestResults() []TestResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TestResult(nil), s.doc.testResults...)
}

// Sessions returns copies of every session in start order.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.doc.sessions))
	for i, sess := range s.doc.sessions {
		out[i] = sess.clone()
	}
	return out
}

// Session returns a copy of the session with id.
func (s *Store) Session(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return sess.clone(), true
}

// RecentSessions takes the limit most recently started sessions and
// returns the closed ones among them, newest first.
func (s *Store) RecentSessions(limit int) []SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil
	}
	sorted := append([]*Session(nil), s.doc.sessions...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	var out []SessionSummary
	for _, sess := range sorted {
		if !sess.Closed() {
			continue
		}
		out = append(out, SessionSummary{
			SessionID:         sess.ID,
			Date:              sess.StartTime.Format("2006-01-02 15:04"),
			Duration:          round1(sess.Duration),
			FlashcardsStudied: sess.FlashcardsStudied,
			TestScores:        append([]float64(nil), sess.TestScores...),
		})
	}
	return out
}

// OverallStats aggregates the whole history.
func (s *Store) OverallStats() OverallStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := OverallStats{
		TotalSessions:   len(s.doc.sessions),
		TotalTestsTaken: len(s.doc.testResults),
		StudyStreak:     s.doc.streak,
		LastStudyDate:   s.doc.lastStudyDate,
	}
	for _, sess := range s.doc.sessions {
		stats.TotalFlashcardsStudied += sess.FlashcardsStudied
		stats.TotalStudyTime += sess.Duration
	}
	if n := len(s.doc.testResults); n > 0 {
		var sum float64
		for _, r := range s.doc.testResults {
			sum += r.Score
			stats.BestTestScore = max(stats.BestTestScore, r.Score)
		}
		stats.AverageTestScore = sum / float64(n)
	}
	return stats
}

// Reload replaces the in-memory mirror with the latest persisted document.
// Open sessions that were never saved are lost.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDocument(s.load(ctx))
}

// Reset discards all history and persists the empty document.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setDocument(newDocument())
	return s.persist(ctx, "reset")
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
