package testgen

import (
	"math/rand/v2"
	"slices"

	"github.com/abhisek/studytrack/internal/questionbank"
)

// AllLevels disables difficulty filtering wherever a difficulty is accepted.
const AllLevels = "All Levels"

// TestQuestion is one numbered question of a generated test. It is a
// private copy; callers may modify it.
type TestQuestion struct {
	questionbank.Question
	Number int `json:"question_number"`
}

// Generator samples tests from a question bank. It holds no state besides
// its random source.
type Generator struct {
	bank *questionbank.Bank
	rng  *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithRand sets the random source, for reproducible tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// New creates a generator over bank.
func New(bank *questionbank.Bank, opts ...Option) *Generator {
	g := &Generator{bank: bank}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Bank returns the bank the generator samples from.
func (g *Generator) Bank() *questionbank.Bank { return g.bank }

// GenerateMockTest builds a test across topics. With a nil custom
// distribution, total is spread by topic weight. Topics whose pool is
// smaller than their share are padded by repeating the pool.
func (g *Generator) GenerateMockTest(total int, custom map[string]int) []TestQuestion {
	dist := custom
	if dist == nil {
		dist = g.Distribution(total)
	}

	var out []TestQuestion
	for _, topic := range g.bank.Topics() {
		n := dist[topic]
		if n <= 0 {
			continue
		}
		out = append(out, g.sampleWithPadding(g.bank.Questions(topic), n)...)
	}

	g.shuffle(out)
	number(out)
	return out
}

// GenerateTopicTest builds an n-question test from one topic, padding by
// repetition when the pool is short. Unknown or empty topics yield nothing.
func (g *Generator) GenerateTopicTest(topic string, n int) []TestQuestion {
	if !g.bank.HasTopic(topic) || n <= 0 {
		return nil
	}
	out := g.sampleWithPadding(g.bank.Questions(topic), n)
	g.shuffle(out)
	number(out)
	return out
}

// GenerateFrameworkTest builds up to n questions from the framework's
// topics, keeping only exact difficulty matches unless difficulty is empty
// or AllLevels. A short pool returns what exists, unpadded.
func (g *Generator) GenerateFrameworkTest(framework, difficulty string, n int) []TestQuestion {
	topics, ok := g.bank.FrameworkTopics(framework)
	if !ok || n <= 0 {
		return nil
	}

	filter := difficulty != "" && difficulty != AllLevels
	var pool []TestQuestion
	for _, topic := range topics {
		for _, q := range g.bank.Questions(topic) {
			if filter && string(q.Difficulty) != difficulty {
				continue
			}
			tq := newTestQuestion(q)
			tq.Framework = framework
			pool = append(pool, tq)
		}
	}

	out := g.sampleNoPadding(pool, n)
	number(out)
	return out
}

// GenerateDifficultyTest builds up to n questions of one difficulty from
// the whole bank. If nothing in the bank has that difficulty the filter is
// dropped. A short pool returns what exists, unpadded.
func (g *Generator) GenerateDifficultyTest(difficulty string, n int) []TestQuestion {
	if n <= 0 {
		return nil
	}
	qs := FilterByDifficulty(g.bank.AllQuestions(), difficulty)
	if len(qs) == 0 {
		return nil
	}

	pool := make([]TestQuestion, len(qs))
	for i, q := range qs {
		pool[i] = newTestQuestion(q)
	}
	out := g.sampleNoPadding(pool, n)
	number(out)
	return out
}

// sampleWithPadding draws n questions without replacement, or tiles the
// pool in order and truncates when n exceeds it.
func (g *Generator) sampleWithPadding(qs []questionbank.Question, n int) []TestQuestion {
	if len(qs) == 0 || n <= 0 {
		return nil
	}

	out := make([]TestQuestion, 0, n)
	if n > len(qs) {
		for len(out) < n {
			for _, q := range qs {
				if len(out) == n {
					break
				}
				out = append(out, newTestQuestion(q))
			}
		}
		return out
	}

	for _, i := range g.rng.Perm(len(qs))[:n] {
		out = append(out, newTestQuestion(qs[i]))
	}
	return out
}

// sampleNoPadding shuffles the pool and keeps at most n.
func (g *Generator) sampleNoPadding(pool []TestQuestion, n int) []TestQuestion {
	g.shuffle(pool)
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

func (g *Generator) shuffle(qs []TestQuestion) {
	g.rng.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func newTestQuestion(q questionbank.Question) TestQuestion {
	q.Options = slices.Clone(q.Options)
	return TestQuestion{Question: q}
}

// number assigns 1-based question numbers in slice order.
func number(qs []TestQuestion) {
	for i := range qs {
		qs[i].Number = i + 1
	}
}

// Topics returns the bank's topics in order.
func (g *Generator) Topics() []string { return g.bank.Topics() }

// Frameworks returns the bank's frameworks in order.
func (g *Generator) Frameworks() []string { return g.bank.Frameworks() }

// FrameworkTopics returns the topics of framework, or nil if unknown.
func (g *Generator) FrameworkTopics(framework string) []string {
	topics, _ := g.bank.FrameworkTopics(framework)
	return topics
}

// Difficulties returns the difficulty tiers the bank describes.
func (g *Generator) Difficulties() []questionbank.Difficulty { return g.bank.Difficulties() }

// DifficultyDescription describes difficulty, or returns "".
func (g *Generator) DifficultyDescription(d questionbank.Difficulty) string {
	desc, _ := g.bank.DifficultyDescription(d)
	return desc
}

// TopicQuestionCount returns how many questions topic has.
func (g *Generator) TopicQuestionCount(topic string) int {
	return len(g.bank.Questions(topic))
}
