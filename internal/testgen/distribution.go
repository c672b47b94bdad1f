package testgen

import "math"

// Distribution spreads total questions across topics in proportion to
// their weights. Shares are rounded half to even, then the topic with the
// largest share (first in bank order on ties) absorbs the difference so
// the counts sum to total. No count goes below zero.
func (g *Generator) Distribution(total int) map[string]int {
	topics := g.bank.Topics()
	dist := make(map[string]int, len(topics))
	if len(topics) == 0 {
		return dist
	}

	var totalWeight float64
	for _, t := range topics {
		totalWeight += g.bank.Weight(t)
	}

	sum := 0
	for _, t := range topics {
		n := 0
		if totalWeight > 0 {
			n = int(math.RoundToEven(g.bank.Weight(t) / totalWeight * float64(total)))
		}
		dist[t] = n
		sum += n
	}

	if sum != total {
		largest := topics[0]
		for _, t := range topics[1:] {
			if dist[t] > dist[largest] {
				largest = t
			}
		}
		dist[largest] = max(0, dist[largest]+total-sum)
	}
	return dist
}
