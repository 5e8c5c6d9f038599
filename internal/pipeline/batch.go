package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/core/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrNoValidSamples reports a run that finished without a single valid
// record. It is not a crash; callers surface it with a distinct exit status.
var ErrNoValidSamples = errors.New("no valid samples found after processing")

const progressInterval = 100

// Batch is the outcome of one run. Results[i] is the verdict for Records[i].
type Batch struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Records   []Record
	Results   []Result
	Stats     Snapshot
}

// Err returns ErrNoValidSamples when the batch produced no valid record.
func (b *Batch) Err() error {
	if b.Stats.ValidSamples == 0 {
		return ErrNoValidSamples
	}
	return nil
}

// SamplesPerSecond is the evaluation throughput of the run.
func (b *Batch) SamplesPerSecond() float64 {
	if b.Duration <= 0 {
		return 0
	}
	return float64(len(b.Results)) / b.Duration.Seconds()
}

// Runner evaluates records on a fixed number of workers.
type Runner struct {
	evaluator *Evaluator
	workers   int
	logger    *logrus.Entry
}

// NewRunner creates a runner. workers below 1 is treated as 1.
func NewRunner(evaluator *Evaluator, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		evaluator: evaluator,
		workers:   workers,
		logger:    logging.NewLogger("speechprep.runner"),
	}
}

// Run evaluates every record. Results keep input order whatever the number
// of workers. Each worker counts into its own RunStatistics; they are merged
// once all workers are done. Run only fails when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, records []Record) (*Batch, error) {
	batch := &Batch{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Records:   records,
		Results:   make([]Result, len(records)),
	}
	log := r.logger.WithField("run_id", batch.RunID)
	log.WithField("records", len(records)).WithField("workers", r.workers).Info("Starting evaluation")

	indices := make(chan int)
	perWorker := make([]*RunStatistics, r.workers)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(indices)
		for i := range records {
			select {
			case indices <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < r.workers; w++ {
		stats := NewRunStatistics()
		perWorker[w] = stats
		g.Go(func() error {
			for i := range indices {
				res := r.evaluator.Evaluate(records[i])
				batch.Results[i] = res
				stats.Add(res)

				if n := done.Add(1); n%progressInterval == 0 {
					log.WithField("processed", n).Infof("Processed %d/%d records", n, len(records))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := NewRunStatistics()
	for _, stats := range perWorker {
		total.Merge(stats)
	}
	batch.Stats = total.Snapshot()
	batch.Duration = time.Since(batch.StartedAt)

	log.WithFields(logrus.Fields{
		"valid":    batch.Stats.ValidSamples,
		"rejected": batch.Stats.RejectedSamples,
		"duration": batch.Duration.String(),
	}).Info("Evaluation finished")
	return batch, nil
}

// Split returns the indices of valid and rejected results, each in input
// order.
func (b *Batch) Split() (valid, rejected []int) {
	for i, res := range b.Results {
		if res.Valid {
			valid = append(valid, i)
		} else {
			rejected = append(rejected, i)
		}
	}
	return valid, rejected
}
