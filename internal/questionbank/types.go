package questionbank

// Difficulty is a question difficulty tier.
type Difficulty string

const (
	DifficultyNormal       Difficulty = "Normal"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
	DifficultyPhD          Difficulty = "PhD"
	DifficultyGodLevel     Difficulty = "God Level"
)

// AllDifficulties lists the tiers from easiest to hardest.
var AllDifficulties = []Difficulty{
	DifficultyNormal,
	DifficultyIntermediate,
	DifficultyAdvanced,
	DifficultyPhD,
	DifficultyGodLevel,
}

// OptionCount is the number of candidate answers every question carries.
const OptionCount = 4

// Question is an immutable multiple-choice pool entry.
type Question struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Correct     int        `json:"correct"`
	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty"`
	Topic       string     `json:"topic"`
	Framework   string     `json:"framework,omitempty"`
}

// CorrectOption returns the text of the correct option.
func (q Question) CorrectOption() string {
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return ""
	}
	return q.Options[q.Correct]
}

// Topic is a named content category with its mock-test weight.
type Topic struct {
	Name      string
	Weight    float64
	Questions []Question
}

// Framework groups topics into a curriculum.
type Framework struct {
	Name   string
	Topics []string
}

// DifficultyLevel pairs a difficulty tier with its description.
type DifficultyLevel struct {
	Name        Difficulty
	Description string
}

// Flashcard is a term/definition pair from the study deck.
type Flashcard struct {
	Term       string     `json:"term"`
	Definition string     `json:"definition"`
	Topic      string     `json:"topic,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
}
