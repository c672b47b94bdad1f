package progress

import (
	"math"
	"sort"
	"time"
)

// IsDue returns true if the card has been studied and its review date is
// at or before now.
func (f *FlashcardStat) IsDue(now time.Time) bool {
	return f.NextReview != nil && !now.Before(*f.NextReview)
}

// DaysUntilReview returns the number of whole days until the next review,
// rounded up. Returns 0 if already due or never studied.
func (f *FlashcardStat) DaysUntilReview(now time.Time) int {
	if f.NextReview == nil || f.IsDue(now) {
		return 0
	}
	return int(math.Ceil(f.NextReview.Sub(now).Hours() / 24.0))
}

// recordReview applies one study event: a correct answer lengthens the
// interval by one level, a miss shortens it.
func (f *FlashcardStat) recordReview(correct bool, now time.Time) {
	f.TimesStudied++
	f.LastStudied = &now

	if correct {
		f.TimesCorrect++
		f.DifficultyLevel = clampLevel(f.DifficultyLevel + 1)
	} else {
		f.DifficultyLevel = clampLevel(f.DifficultyLevel - 1)
	}

	next := nextReview(now, f.DifficultyLevel)
	f.NextReview = &next
}

func newFlashcardStat() *FlashcardStat {
	return &FlashcardStat{DifficultyLevel: MinDifficultyLevel}
}

// nextReview is last + 2 days per level, in calendar days.
func nextReview(last time.Time, level int) time.Time {
	return last.AddDate(0, 0, level*ReviewDaysPerLevel)
}

func clampLevel(level int) int {
	return max(MinDifficultyLevel, min(MaxDifficultyLevel, level))
}

// dueTerms returns terms due at now, lowest difficulty level first and by
// term within a level, truncated to limit.
func dueTerms(stats map[string]*FlashcardStat, now time.Time, limit int) []string {
	if limit <= 0 {
		return nil
	}

	type dueCard struct {
		term  string
		level int
	}
	var due []dueCard
	for term, st := range stats {
		if st.IsDue(now) {
			due = append(due, dueCard{term: term, level: st.DifficultyLevel})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].level != due[j].level {
			return due[i].level < due[j].level
		}
		return due[i].term < due[j].term
	})

	if len(due) > limit {
		due = due[:limit]
	}
	terms := make([]string, len(due))
	for i, d := range due {
		terms[i] = d.term
	}
	return terms
}
