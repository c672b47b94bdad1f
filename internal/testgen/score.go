package testgen

// Unanswered marks an Outcome with no submitted answer.
const Unanswered = -1

// Outcome is the marking of one question.
type Outcome struct {
	Number   int
	Topic    string
	Selected int // option index, or Unanswered
	Correct  int // option index of the key
	IsRight  bool
}

// TopicScore is the sub-score of one topic within a test.
type TopicScore struct {
	Topic   string
	Total   int
	Correct int
	Score   float64
}

// Result is a marked test.
type Result struct {
	Total    int
	Correct  int
	Score    float64
	Topics   []TopicScore // in order of first appearance in the test
	Outcomes []Outcome
}

// Score marks answers against questions. answers maps a 0-based position
// in questions to the selected option; missing positions count as wrong.
func Score(questions []TestQuestion, answers map[int]int) Result {
	res := Result{
		Total:    len(questions),
		Outcomes: make([]Outcome, len(questions)),
	}

	topicIdx := make(map[string]int)
	for i, q := range questions {
		selected, answered := answers[i]
		if !answered {
			selected = Unanswered
		}
		right := answered && selected == q.Correct

		res.Outcomes[i] = Outcome{
			Number:   q.Number,
			Topic:    q.Topic,
			Selected: selected,
			Correct:  q.Correct,
			IsRight:  right,
		}

		ti, ok := topicIdx[q.Topic]
		if !ok {
			ti = len(res.Topics)
			topicIdx[q.Topic] = ti
			res.Topics = append(res.Topics, TopicScore{Topic: q.Topic})
		}
		res.Topics[ti].Total++
		if right {
			res.Correct++
			res.Topics[ti].Correct++
		}
	}

	res.Score = percent(res.Correct, res.Total)
	for i := range res.Topics {
		res.Topics[i].Score = percent(res.Topics[i].Correct, res.Topics[i].Total)
	}
	return res
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
