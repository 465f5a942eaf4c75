package similarity

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
)

const (
	DefaultBatchSize = 100
	DefaultTopK      = 5
)

// Entry is one corpus vector.
type Entry struct {
	ID     uuid.UUID
	Vector []float32
}

// Candidate is a corpus entry scored against one query.
type Candidate struct {
	ID    uuid.UUID
	Score float64
}

type Config struct {
	BatchSize int
	Workers   int
}

// Scorer ranks a corpus exhaustively. It holds no per-query state and is safe
// for concurrent use.
type Scorer struct {
	batchSize int
	workers   int
}

func NewScorer(cfg Config) *Scorer {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Scorer{batchSize: batchSize, workers: workers}
}

// TopK scores every entry against query and returns at most k candidates by
// descending score. Entries with an undefined score are left out. Equal
// scores keep corpus order.
func (s *Scorer) TopK(ctx context.Context, query []float32, corpus []Entry, k int) ([]Candidate, error) {
	if k <= 0 || len(corpus) == 0 {
		return []Candidate{}, nil
	}

	scores := make([]float64, len(corpus))
	batches := (len(corpus) + s.batchSize - 1) / s.batchSize

	workers := s.workers
	if workers > batches {
		workers = batches
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				start := b * s.batchSize
				end := start + s.batchSize
				if end > len(corpus) {
					end = len(corpus)
				}
				// each batch owns scores[start:end]
				for i := start; i < end; i++ {
					scores[i] = Cosine(query, corpus[i].Vector)
				}
			}
		}()
	}

	var cancelled error
	for b := 0; b < batches; b++ {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		jobs <- b
	}
	close(jobs)
	wg.Wait()

	if cancelled != nil {
		return nil, cancelled
	}

	ranked := make([]Candidate, 0, len(corpus))
	for i, score := range scores {
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		ranked = append(ranked, Candidate{ID: corpus[i].ID, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}
