package sentiment

import (
	"weibo-sentiment/pkg/domain"

	"github.com/jonreiter/govader"
)

// Classification thresholds and the neutral default are contractual
// constants, not runtime knobs: a score strictly above 0.6 is
// positive, strictly below 0.4 is negative, anything else neutral.
const (
	positiveThreshold = 0.6
	negativeThreshold = 0.4
	neutralScore      = 0.5
)

// Classifier assigns a continuous sentiment score in [0,1] and a
// three-way label to comment text.
type Classifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewClassifier creates a Classifier backed by a VADER intensity
// analyzer.
func NewClassifier() *Classifier {
	return &Classifier{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Classify scores the given text. Empty text gets the fixed neutral
// score of 0.5 and the neutral label.
func (c *Classifier) Classify(text string) (float64, string) {
	if text == "" {
		return neutralScore, domain.SentimentNeutral
	}

	// VADER's compound score lives in [-1,1]; rescale to [0,1].
	compound := c.analyzer.PolarityScores(text).Compound
	score := (compound + 1) / 2

	return score, labelFor(score)
}

// labelFor maps a score in [0,1] onto the three-way label. Both
// boundaries are exclusive: exactly 0.6 and exactly 0.4 are neutral.
func labelFor(score float64) string {
	switch {
	case score > positiveThreshold:
		return domain.SentimentPositive
	case score < negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}
