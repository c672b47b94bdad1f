package testgen

import "github.com/abhisek/studytrack/internal/questionbank"

// FilterByDifficulty keeps questions of the given difficulty. "All" and
// AllLevels keep everything, and so does a difficulty nothing matches, so
// the result is empty only when qs is.
func FilterByDifficulty(qs []questionbank.Question, difficulty string) []questionbank.Question {
	if difficulty == "All" || difficulty == AllLevels {
		return qs
	}

	var filtered []questionbank.Question
	for _, q := range qs {
		d := q.Difficulty
		if d == "" {
			d = questionbank.DifficultyNormal
		}
		if string(d) == difficulty {
			filtered = append(filtered, q)
		}
	}
	if len(filtered) == 0 {
		return qs
	}
	return filtered
}
