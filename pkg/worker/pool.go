package worker

import (
	"context"
	"log"
	"sync"

	"weibo-sentiment/pkg/domain"
)

// Classifier scores one piece of comment text.
type Classifier interface {
	Classify(text string) (float64, string)
}

// Pool scores batches of normalized comments concurrently. Only the
// classification stage runs in parallel; ingestion itself stays
// synchronous.
type Pool struct {
	workerCount int
	classifier  Classifier
}

// NewPool creates a scoring pool with the given worker count.
func NewPool(workerCount int, classifier Classifier) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		classifier:  classifier,
	}
}

// ScoreComments assigns a sentiment score and label to every comment in
// place. Each worker writes only to its own index slots, so no
// coordination beyond the job channel is needed.
func (p *Pool) ScoreComments(ctx context.Context, comments []domain.Comment) {
	if len(comments) == 0 {
		return
	}

	jobChan := make(chan int, len(comments))
	for i := range comments {
		jobChan <- i
	}
	close(jobChan)

	var wg sync.WaitGroup
	for w := 0; w < p.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				score, label := p.classifier.Classify(comments[i].Text)
				comments[i].SentimentScore = score
				comments[i].SentimentLabel = label
			}
		}()
	}
	wg.Wait()

	counts := make(map[string]int)
	for i := range comments {
		counts[comments[i].SentimentLabel]++
	}
	log.Printf("worker: scored %d comments (%d positive, %d neutral, %d negative)",
		len(comments),
		counts[domain.SentimentPositive],
		counts[domain.SentimentNeutral],
		counts[domain.SentimentNegative])
}
