// Package ingest batch-decomposes characters into deck cards. Workers run
// the CPU-bound decomposition against the shared read-only table; results
// are re-ordered and committed to sqlite in batched transactions.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/japaniel/hanzikit/pkg/db"
	"github.com/japaniel/hanzikit/pkg/decompose"
	"github.com/japaniel/hanzikit/pkg/layout"
	"github.com/japaniel/hanzikit/pkg/primitive"
	"github.com/japaniel/hanzikit/pkg/reading"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing
// implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// Ingester decomposes a character batch and persists one card per
// character.
type Ingester struct {
	DB     *sql.DB
	Engine *decompose.Engine
	// Manifest resolves placeholder primitives to asset ids. A placeholder
	// without a manifest entry fails the batch. nil skips substitution.
	Manifest *primitive.Manifest
	// Readings fills in readings the mapping table lacks. Optional.
	Readings *reading.Analyzer
	// Overrides are the deck author's keyword preferences; when nil they
	// are loaded from the deck DB before the batch starts.
	Overrides map[string]string

	BatchSize int
	Workers   int
	MaxDepth  int
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger
	// OnProgress is called periodically with processed and total counts.
	OnProgress func(current, total int)

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates an Ingester with the default pool and batch sizes.
func NewIngester(conn *sql.DB, engine *decompose.Engine) *Ingester {
	return &Ingester{
		DB:        conn,
		Engine:    engine,
		BatchSize: 50,
		Workers:   4,
	}
}

// result carries one decomposed character from a worker to the consumer.
type result struct {
	Index int
	Card  db.Card
	Error error
}

// Ingest decomposes every character and upserts its card. It returns the
// number of cards written. Characters keep their input order in the deck
// writes even though decomposition runs concurrently.
func (ig *Ingester) Ingest(ctx context.Context, chars []string) (int, error) {
	total := len(chars)
	if total == 0 {
		return 0, nil
	}

	overrides := ig.Overrides
	if overrides == nil && ig.DB != nil {
		var err error
		overrides, err = db.LoadOverrides(ig.DB)
		if err != nil {
			return 0, fmt.Errorf("load keyword overrides: %w", err)
		}
		ig.logf("ingest: loaded %d keyword overrides from deck", len(overrides))
	}

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(ig.Workers, ig.Workers*2)
	} else {
		wp = NewWorkerPool(ig.Workers, ig.Workers*2)
	}

	resultCh := make(chan result, ig.Workers*2)
	doneCh := make(chan error, 1)
	var written int64

	bw := NewBatchWriter(ig.DB, ig.BatchSize, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.Start(ctx)

	// Consumer: re-order results by index and hand them to the batch
	// writer so deck writes stay deterministic.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]result)
		nextIdx := 0

		drain := func() error {
			for {
				res, ok := buffer[nextIdx]
				if !ok {
					return nil
				}
				delete(buffer, nextIdx)

				card := res.Card
				err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
					if _, err := db.UpsertCard(tx, card); err != nil {
						return fmt.Errorf("failed to persist card %s: %w", card.Character, err)
					}
					atomic.AddInt64(&written, 1)
					return nil
				})
				if err != nil {
					return err
				}

				nextIdx++
				if ig.OnProgress != nil && nextIdx%ig.BatchSize == 0 {
					ig.OnProgress(nextIdx, total)
				}
			}
		}

		for res := range resultCh {
			if res.Error != nil {
				cancel()
				doneCh <- res.Error
				return
			}
			buffer[res.Index] = res
			if err := drain(); err != nil {
				cancel()
				doneCh <- err
				return
			}
		}
		if err := drain(); err != nil {
			doneCh <- err
			return
		}
		if ig.OnProgress != nil {
			ig.OnProgress(total, total)
		}
	}()

	// Producer: submit one decomposition job per character.
Loop:
	for i, char := range chars {
		if ctx.Err() != nil {
			break Loop
		}
		idx, c := i, char
		job := func(ctx context.Context) error {
			res := ig.processChar(idx, c, overrides)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}
		if err := wp.SubmitCtx(ctx, job); err != nil {
			if err == ctx.Err() || err == ErrPoolClosed {
				break Loop
			}
			wp.Close()
			close(resultCh)
			<-doneCh
			_ = bw.Close()
			return int(atomic.LoadInt64(&written)), err
		}
	}

	wp.Close()
	close(resultCh)

	consumerErr := <-doneCh

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	// Distinguish cancellation from an empty batch.
	if consumerErr == nil {
		consumerErr = ctx.Err()
	}

	return int(atomic.LoadInt64(&written)), consumerErr
}

func (ig *Ingester) logf(format string, args ...interface{}) {
	if ig.Logger != nil {
		ig.Logger.Printf(format, args...)
	}
}

// processChar runs the CPU stage: decompose, overlay keywords, substitute
// placeholder assets, and shape the card row.
func (ig *Ingester) processChar(index int, char string, overrides map[string]string) result {
	node := ig.Engine.DecomposeAndResolve(char, overrides, ig.MaxDepth)

	if ig.Manifest != nil {
		if err := ig.Manifest.Apply(node); err != nil {
			return result{Index: index, Error: err}
		}
	}

	card := db.Card{
		Character: char,
		Keyword:   node.Keyword,
		Reading:   node.Reading,
		AssetID:   node.AssetID,
	}

	if card.Reading == "" && ig.Readings != nil {
		card.Reading = ig.Readings.ReadingFor(char)
	}

	if len(node.Children) > 0 {
		parts := make([]string, 0, len(node.Children))
		for _, c := range node.Children {
			parts = append(parts, c.Keyword)
		}
		card.Decomposition = strings.Join(parts, " + ")
		if node.Layout.Tag != layout.Unknown {
			card.Spatial = node.Layout.Tag.Label()
		}
	} else {
		card.Tags = "primitive"
	}

	return result{Index: index, Card: card}
}
