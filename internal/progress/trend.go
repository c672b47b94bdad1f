package progress

// trendWindow is how many of the newest scores count as "recent".
const trendWindow = 3

// recordScore folds one test score into the topic aggregate.
func (p *TopicPerformance) recordScore(score float64) {
	p.TotalTests++
	p.TotalScore += score
	p.BestScore = max(p.BestScore, score)

	p.RecentScores = append(p.RecentScores, score)
	if len(p.RecentScores) > RecentScoresCap {
		p.RecentScores = append([]float64(nil), p.RecentScores[len(p.RecentScores)-RecentScoresCap:]...)
	}

	if trend, ok := improvementTrend(p.RecentScores); ok {
		p.ImprovementTrend = trend
	}
}

// improvementTrend is mean(last 3) - mean(everything before them). It needs
// at least one older score.
func improvementTrend(scores []float64) (float64, bool) {
	if len(scores) <= trendWindow {
		return 0, false
	}
	split := len(scores) - trendWindow
	return mean(scores[split:]) - mean(scores[:split]), true
}

func (a *AreaPerformance) record(score float64) {
	a.TotalQuestions++
	a.TotalScore += score
	a.BestScore = max(a.BestScore, score)
}

func (a *AreaPerformance) average() float64 {
	if a.TotalQuestions == 0 {
		return 0
	}
	return a.TotalScore / float64(a.TotalQuestions)
}
