package questionbank

import (
	"fmt"
	"slices"
)

// Bank is the static, read-only content the generator samples from:
// topics in a fixed order, their questions and weights, frameworks,
// difficulty descriptions, and the flashcard deck.
type Bank struct {
	topics     []Topic
	topicIndex map[string]int

	frameworks     []Framework
	frameworkIndex map[string]int

	difficulties []DifficultyLevel

	flashcards []Flashcard
	cardIndex  map[string]int
}

// New validates the given content and builds a Bank. Every question's Topic
// is set to the topic it is listed under, and a missing difficulty becomes
// Normal. Frameworks may name topics that have no questions; those topics
// simply contribute nothing.
func New(topics []Topic, frameworks []Framework, difficulties []DifficultyLevel, flashcards []Flashcard) (*Bank, error) {
	b := &Bank{
		topicIndex:     make(map[string]int, len(topics)),
		frameworkIndex: make(map[string]int, len(frameworks)),
		cardIndex:      make(map[string]int, len(flashcards)),
	}

	for i, t := range topics {
		path := fmt.Sprintf("topics[%d]", i)
		if t.Name == "" {
			return nil, invalid(path, "topic name is empty")
		}
		if _, dup := b.topicIndex[t.Name]; dup {
			return nil, invalid(path, "duplicate topic %q", t.Name)
		}
		if t.Weight < 0 {
			return nil, invalid(path, "weight %v is negative", t.Weight)
		}

		qs := make([]Question, len(t.Questions))
		for j, q := range t.Questions {
			q, err := normalizeQuestion(q, t.Name, fmt.Sprintf("%s.questions[%d]", path, j))
			if err != nil {
				return nil, err
			}
			qs[j] = q
		}

		b.topicIndex[t.Name] = len(b.topics)
		b.topics = append(b.topics, Topic{Name: t.Name, Weight: t.Weight, Questions: qs})
	}

	for i, f := range frameworks {
		path := fmt.Sprintf("frameworks[%d]", i)
		if f.Name == "" {
			return nil, invalid(path, "framework name is empty")
		}
		if _, dup := b.frameworkIndex[f.Name]; dup {
			return nil, invalid(path, "duplicate framework %q", f.Name)
		}
		b.frameworkIndex[f.Name] = len(b.frameworks)
		b.frameworks = append(b.frameworks, Framework{Name: f.Name, Topics: slices.Clone(f.Topics)})
	}

	if len(difficulties) == 0 {
		for _, d := range AllDifficulties {
			difficulties = append(difficulties, DifficultyLevel{Name: d})
		}
	}
	seen := make(map[Difficulty]bool, len(difficulties))
	for i, d := range difficulties {
		path := fmt.Sprintf("difficulties[%d]", i)
		if !validDifficulty(d.Name) {
			return nil, invalid(path, "unknown difficulty %q", d.Name)
		}
		if seen[d.Name] {
			return nil, invalid(path, "duplicate difficulty %q", d.Name)
		}
		seen[d.Name] = true
		b.difficulties = append(b.difficulties, d)
	}

	for i, c := range flashcards {
		path := fmt.Sprintf("flashcards[%d]", i)
		if c.Term == "" {
			return nil, invalid(path, "flashcard term is empty")
		}
		if _, dup := b.cardIndex[c.Term]; dup {
			return nil, invalid(path, "duplicate flashcard %q", c.Term)
		}
		if c.Difficulty != "" && !validDifficulty(c.Difficulty) {
			return nil, invalid(path, "unknown difficulty %q", c.Difficulty)
		}
		b.cardIndex[c.Term] = len(b.flashcards)
		b.flashcards = append(b.flashcards, c)
	}

	return b, nil
}

func normalizeQuestion(q Question, topic, path string) (Question, error) {
	if q.Question == "" {
		return q, invalid(path, "question text is empty")
	}
	if len(q.Options) != OptionCount {
		return q, invalid(path, "has %d options, want %d", len(q.Options), OptionCount)
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return q, invalid(path, "correct index %d out of range", q.Correct)
	}
	if q.Difficulty == "" {
		q.Difficulty = DifficultyNormal
	}
	if !validDifficulty(q.Difficulty) {
		return q, invalid(path, "unknown difficulty %q", q.Difficulty)
	}
	q.Topic = topic
	q.Options = slices.Clone(q.Options)
	return q, nil
}

func validDifficulty(d Difficulty) bool {
	return slices.Contains(AllDifficulties, d)
}

// Topics returns topic names in bank order.
func (b *Bank) Topics() []string {
	names := make([]string, len(b.topics))
	for i, t := range b.topics {
		names[i] = t.Name
	}
	return names
}

// HasTopic reports whether the bank defines topic.
func (b *Bank) HasTopic(topic string) bool {
	_, ok := b.topicIndex[topic]
	return ok
}

// TopicOrder returns the position of topic in bank order, or -1.
func (b *Bank) TopicOrder(topic string) int {
	if i, ok := b.topicIndex[topic]; ok {
		return i
	}
	return -1
}

// Weight returns the mock-test weight of topic (0 if unknown).
func (b *Bank) Weight(topic string) float64 {
	if i, ok := b.topicIndex[topic]; ok {
		return b.topics[i].Weight
	}
	return 0
}

// Questions returns a copy of the questions listed under topic.
func (b *Bank) Questions(topic string) []Question {
	i, ok := b.topicIndex[topic]
	if !ok {
		return nil
	}
	return cloneQuestions(b.topics[i].Questions)
}

// AllQuestions returns every question in bank order.
func (b *Bank) AllQuestions() []Question {
	var all []Question
	for _, t := range b.topics {
		all = append(all, cloneQuestions(t.Questions)...)
	}
	return all
}

func cloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.Options = slices.Clone(q.Options)
		out[i] = q
	}
	return out
}

// Frameworks returns framework names in bank order.
func (b *Bank) Frameworks() []string {
	names := make([]string, len(b.frameworks))
	for i, f := range b.frameworks {
		names[i] = f.Name
	}
	return names
}

// FrameworkTopics returns the topics grouped under framework.
func (b *Bank) FrameworkTopics(framework string) ([]string, bool) {
	i, ok := b.frameworkIndex[framework]
	if !ok {
		return nil, false
	}
	return slices.Clone(b.frameworks[i].Topics), true
}

// Difficulties returns the difficulty tiers the bank describes.
func (b *Bank) Difficulties() []Difficulty {
	names := make([]Difficulty, len(b.difficulties))
	for i, d := range b.difficulties {
		names[i] = d.Name
	}
	return names
}

// DifficultyDescription returns the description of d, if the bank has one.
func (b *Bank) DifficultyDescription(d Difficulty) (string, bool) {
	for _, lvl := range b.difficulties {
		if lvl.Name == d {
			return lvl.Description, true
		}
	}
	return "", false
}

// Flashcards returns the deck in bank order.
func (b *Bank) Flashcards() []Flashcard {
	return slices.Clone(b.flashcards)
}

// Flashcard looks up a deck entry by term.
func (b *Bank) Flashcard(term string) (Flashcard, bool) {
	i, ok := b.cardIndex[term]
	if !ok {
		return Flashcard{}, false
	}
	return b.flashcards[i], true
}
