package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"golang.org/x/mod/semver"
)

// FormatVersion is the document layout written by this package. Documents
// with a different major version are not read.
const FormatVersion = "v1.0.0"

var errIncompatibleFormat = errors.New("incompatible document format")

// document is the in-memory mirror of the persisted progress file.
type document struct {
	sessions      []*Session
	flashcards    map[string]*FlashcardStat
	testResults   []TestResult
	topics        map[string]*TopicPerformance
	streak        int
	lastStudyDate string
	frameworks    map[string]*AreaPerformance
	difficulties  map[string]*AreaPerformance
	live          []LivePoint
}

func newDocument() *document {
	return &document{
		flashcards:   make(map[string]*FlashcardStat),
		topics:       make(map[string]*TopicPerformance),
		frameworks:   make(map[string]*AreaPerformance),
		difficulties: make(map[string]*AreaPerformance),
	}
}

// Wire representation. Field names are the persisted layout and must not change.
type documentFile struct {
	Sessions              []sessionFile                   `json:"sessions"`
	FlashcardStats        map[string]flashcardStatFile    `json:"flashcard_stats"`
	TestResults           []testResultFile                `json:"test_results"`
	TopicPerformance      map[string]topicPerformanceFile `json:"topic_performance"`
	StudyStreak           int                             `json:"study_streak"`
	LastStudyDate         *string                         `json:"last_study_date"`
	FrameworkPerformance  map[string]areaPerformanceFile  `json:"framework_performance"`
	DifficultyPerformance map[string]areaPerformanceFile  `json:"difficulty_performance"`
	LivePerformance       []livePointFile                 `json:"live_performance"`
	FormatVersion         string                          `json:"format_version"`
}

type sessionFile struct {
	SessionID         string    `json:"session_id"`
	StartTime         string    `json:"start_time"`
	EndTime           *string   `json:"end_time"`
	FlashcardsStudied int       `json:"flashcards_studied"`
	TestsTaken        int       `json:"tests_taken"`
	TestScores        []float64 `json:"test_scores"`
	TopicsCovered     topicList `json:"topics_covered"`
	Duration          float64   `json:"duration"`
}

// topicList reads topics_covered leniently. Older writers stored the topic
// set of an open session as its string repr ("set()", "{'A', 'B'}"); those
// are split into names, and any other non-list value reads as empty.
type topicList []string

var quotedName = regexp.MustCompile(`'([^']*)'|"([^"]*)"`)

func (l *topicList) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err == nil {
		*l = names
		return nil
	}
	*l = nil
	var repr string
	if err := json.Unmarshal(b, &repr); err != nil {
		return nil
	}
	for _, m := range quotedName.FindAllStringSubmatch(repr, -1) {
		if name := m[1] + m[2]; name != "" {
			*l = append(*l, name)
		}
	}
	return nil
}

type flashcardStatFile struct {
	TimesStudied    int     `json:"times_studied"`
	TimesCorrect    int     `json:"times_correct"`
	LastStudied     *string `json:"last_studied"`
	DifficultyLevel int     `json:"difficulty_level"`
	NextReview      *string `json:"next_review"`
}

type testResultFile struct {
	SessionID      string  `json:"session_id"`
	Date           string  `json:"date"`
	Topic          string  `json:"topic"`
	Score          float64 `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
}

type topicPerformanceFile struct {
	TotalTests       int       `json:"total_tests"`
	TotalScore       float64   `json:"total_score"`
	BestScore        float64   `json:"best_score"`
	RecentScores     []float64 `json:"recent_scores"`
	ImprovementTrend float64   `json:"improvement_trend"`
}

type areaPerformanceFile struct {
	TotalQuestions int     `json:"total_questions"`
	TotalScore     float64 `json:"total_score"`
	BestScore      float64 `json:"best_score"`
}

type livePointFile struct {
	QuestionNum int     `json:"question_num"`
	Correct     bool    `json:"correct"`
	Accuracy    float64 `json:"accuracy"`
	Timestamp   string  `json:"timestamp"`
}

// encodeDocument renders d as indented JSON.
func encodeDocument(d *document) ([]byte, error) {
	f := documentFile{
		Sessions:              make([]sessionFile, 0, len(d.sessions)),
		FlashcardStats:        make(map[string]flashcardStatFile, len(d.flashcards)),
		TestResults:           make([]testResultFile, 0, len(d.testResults)),
		TopicPerformance:      make(map[string]topicPerformanceFile, len(d.topics)),
		StudyStreak:           d.streak,
		FrameworkPerformance:  encodeAreas(d.frameworks),
		DifficultyPerformance: encodeAreas(d.difficulties),
		LivePerformance:       make([]livePointFile, 0, len(d.live)),
		FormatVersion:         FormatVersion,
	}
	if d.lastStudyDate != "" {
		date := d.lastStudyDate
		f.LastStudyDate = &date
	}

	for _, s := range d.sessions {
		f.Sessions = append(f.Sessions, sessionFile{
			SessionID:         s.ID,
			StartTime:         formatTime(s.StartTime),
			EndTime:           formatTimePtr(s.EndTime),
			FlashcardsStudied: s.FlashcardsStudied,
			TestsTaken:        s.TestsTaken,
			TestScores:        nonNil(s.TestScores),
			TopicsCovered:     topicList(nonNil(s.TopicsCovered)),
			Duration:          s.Duration,
		})
	}
	for term, st := range d.flashcards {
		f.FlashcardStats[term] = flashcardStatFile{
			TimesStudied:    st.TimesStudied,
			TimesCorrect:    st.TimesCorrect,
			LastStudied:     formatTimePtr(st.LastStudied),
			DifficultyLevel: st.DifficultyLevel,
			NextReview:      formatTimePtr(st.NextReview),
		}
	}
	for _, r := range d.testResults {
		f.TestResults = append(f.TestResults, testResultFile{
			SessionID:      r.SessionID,
			Date:           formatTime(r.Date),
			Topic:          r.Topic,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			CorrectAnswers: r.CorrectAnswers,
			Accuracy:       r.Accuracy,
		})
	}
	for topic, p := range d.topics {
		f.TopicPerformance[topic] = topicPerformanceFile{
			TotalTests:       p.TotalTests,
			TotalScore:       p.TotalScore,
			BestScore:        p.BestScore,
			RecentScores:     nonNil(p.RecentScores),
			ImprovementTrend: p.ImprovementTrend,
		}
	}
	for _, lp := range d.live {
		f.LivePerformance = append(f.LivePerformance, livePointFile{
			QuestionNum: lp.QuestionNum,
			Correct:     lp.Correct,
			Accuracy:    lp.Accuracy,
			Timestamp:   formatTime(lp.Timestamp),
		})
	}

	return json.MarshalIndent(f, "", "  ")
}

func encodeAreas(m map[string]*AreaPerformance) map[string]areaPerformanceFile {
	out := make(map[string]areaPerformanceFile, len(m))
	for name, a := range m {
		out[name] = areaPerformanceFile{
			TotalQuestions: a.TotalQuestions,
			TotalScore:     a.TotalScore,
			BestScore:      a.BestScore,
		}
	}
	return out
}

// decodeDocument parses data into a document. Records with an unreadable
// required timestamp are dropped and counted in skipped; unreadable
// optional timestamps become nil.
func decodeDocument(data []byte) (d *document, skipped int, err error) {
	var f documentFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, 0, fmt.Errorf("decode progress document: %w", err)
	}
	if err := checkFormatVersion(f.FormatVersion); err != nil {
		return nil, 0, err
	}

	d = newDocument()
	d.streak = f.StudyStreak
	if f.LastStudyDate != nil {
		if t, err := parseTime(*f.LastStudyDate); err == nil {
			d.lastStudyDate = t.Format(dateLayout)
		}
	}

	for _, sf := range f.Sessions {
		start, err := parseTime(sf.StartTime)
		if err != nil || sf.SessionID == "" {
			skipped++
			continue
		}
		d.sessions = append(d.sessions, &Session{
			ID:                sf.SessionID,
			StartTime:         start,
			EndTime:           parseTimePtr(sf.EndTime),
			FlashcardsStudied: sf.FlashcardsStudied,
			TestsTaken:        sf.TestsTaken,
			TestScores:        sf.TestScores,
			TopicsCovered:     dedupe(sf.TopicsCovered),
			Duration:          sf.Duration,
		})
	}
	for term, sf := range f.FlashcardStats {
		d.flashcards[term] = &FlashcardStat{
			TimesStudied:    max(sf.TimesStudied, 0),
			TimesCorrect:    clampCount(sf.TimesCorrect, sf.TimesStudied),
			LastStudied:     parseTimePtr(sf.LastStudied),
			DifficultyLevel: clampLevel(sf.DifficultyLevel),
			NextReview:      parseTimePtr(sf.NextReview),
		}
	}
	for _, rf := range f.TestResults {
		date, err := parseTime(rf.Date)
		if err != nil {
			skipped++
			continue
		}
		d.testResults = append(d.testResults, TestResult{
			SessionID:      rf.SessionID,
			Date:           date,
			Topic:          rf.Topic,
			Score:          rf.Score,
			TotalQuestions: rf.TotalQuestions,
			CorrectAnswers: rf.CorrectAnswers,
			Accuracy:       rf.Accuracy,
		})
	}
	for topic, pf := range f.TopicPerformance {
		d.topics[topic] = &TopicPerformance{
			TotalTests:       pf.TotalTests,
			TotalScore:       pf.TotalScore,
			BestScore:        pf.BestScore,
			RecentScores:     pf.RecentScores,
			ImprovementTrend: pf.ImprovementTrend,
		}
	}
	decodeAreas(f.FrameworkPerformance, d.frameworks)
	decodeAreas(f.DifficultyPerformance, d.difficulties)
	for _, lf := range f.LivePerformance {
		ts, err := parseTime(lf.Timestamp)
		if err != nil {
			skipped++
			continue
		}
		d.live = append(d.live, LivePoint{
			QuestionNum: lf.QuestionNum,
			Correct:     lf.Correct,
			Accuracy:    lf.Accuracy,
			Timestamp:   ts,
		})
	}

	return d, skipped, nil
}

func decodeAreas(in map[string]areaPerformanceFile, out map[string]*AreaPerformance) {
	for name, af := range in {
		out[name] = &AreaPerformance{
			TotalQuestions: af.TotalQuestions,
			TotalScore:     af.TotalScore,
			BestScore:      af.BestScore,
		}
	}
}

// checkFormatVersion accepts documents without a version (the oldest
// layout) and any version sharing FormatVersion's major.
func checkFormatVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: invalid format_version %q", errIncompatibleFormat, v)
	}
	if semver.Major(v) != semver.Major(FormatVersion) {
		return fmt.Errorf("%w: format_version %s, supported %s", errIncompatibleFormat, v, semver.Major(FormatVersion))
	}
	return nil
}

const dateLayout = "2006-01-02"

// Layouts accepted on read. Naive timestamps are read in local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	dateLayout,
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseTimePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// clampCount bounds a correct-answer count to [0, studied].
func clampCount(correct, studied int) int {
	return min(max(correct, 0), max(studied, 0))
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func dedupe(xs []string) []string {
	seen := make(map[string]bool, len(xs))
	var out []string
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}
