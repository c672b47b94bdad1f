package questionbank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a bank file.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFromPath picks the format from the file extension. Anything that is
// not .json is read as YAML, which is a superset of JSON anyway.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and validates the bank file at path.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse validates data against the bank schema and builds a Bank from it.
func Parse(data []byte, format Format) (*Bank, error) {
	raw, err := toJSON(data, format)
	if err != nil {
		return nil, &ValidationError{Msg: "malformed document", Err: err}
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var f bankFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ValidationError{Msg: "decode document", Err: err}
	}
	return f.build()
}

func toJSON(data []byte, format Format) ([]byte, error) {
	if format == FormatJSON {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// Round-trip through JSON so the compiler sees plain JSON values.
	defBytes, err := json.Marshal(fileSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	const schemaURL = "schema://question-bank.json"
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(schemaURL)
})

func validateSchema(raw []byte) error {
	compiled, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile question bank schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Msg: "malformed document", Err: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ValidationError{Msg: "schema validation failed", Err: err}
	}
	return nil
}

type bankFile struct {
	Topics []struct {
		Name      string         `json:"name"`
		Weight    float64        `json:"weight"`
		Questions []questionFile `json:"questions"`
	} `json:"topics"`
	Frameworks []struct {
		Name   string   `json:"name"`
		Topics []string `json:"topics"`
	} `json:"frameworks"`
	Difficulties []struct {
		Name        Difficulty `json:"name"`
		Description string     `json:"description"`
	} `json:"difficulties"`
	Flashcards []Flashcard `json:"flashcards"`
}

type questionFile struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Correct     answerKey  `json:"correct"`
	Explanation string     `json:"explanation"`
	Difficulty  Difficulty `json:"difficulty"`
	Framework   string     `json:"framework"`
}

func (f *bankFile) build() (*Bank, error) {
	topics := make([]Topic, len(f.Topics))
	for i, t := range f.Topics {
		qs := make([]Question, len(t.Questions))
		for j, q := range t.Questions {
			qs[j] = Question{
				Question:    q.Question,
				Options:     q.Options,
				Correct:     int(q.Correct),
				Explanation: q.Explanation,
				Difficulty:  q.Difficulty,
				Framework:   q.Framework,
			}
		}
		topics[i] = Topic{Name: t.Name, Weight: t.Weight, Questions: qs}
	}

	frameworks := make([]Framework, len(f.Frameworks))
	for i, fw := range f.Frameworks {
		frameworks[i] = Framework{Name: fw.Name, Topics: fw.Topics}
	}

	difficulties := make([]DifficultyLevel, len(f.Difficulties))
	for i, d := range f.Difficulties {
		difficulties[i] = DifficultyLevel{Name: d.Name, Description: d.Description}
	}

	return New(topics, frameworks, difficulties, f.Flashcards)
}

// answerKey accepts either an option index or an option letter ("B",
// "b", "B)", "B) text") and stores the index.
type answerKey int

func (k *answerKey) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*k = answerKey(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("correct must be an option index or letter, got %s", b)
	}
	idx, ok := LetterIndex(s)
	if !ok {
		return fmt.Errorf("correct must be an option index or letter, got %q", s)
	}
	*k = answerKey(idx)
	return nil
}

// LetterIndex converts an option letter to its index: "A" -> 0, "d)" -> 3.
func LetterIndex(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c >= 'A'+OptionCount {
		return 0, false
	}
	if len(s) > 1 && s[1] != ')' && s[1] != '.' && s[1] != ' ' {
		return 0, false
	}
	return int(c - 'A'), true
}

// Letter returns the option letter for index i ("A" for 0).
func Letter(i int) string {
	if i < 0 || i >= OptionCount {
		return "?"
	}
	return string(rune('A' + i))
}
