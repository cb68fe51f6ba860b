package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// WriteFunc is a callback that performs deck writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers card writes and flushes them in batches inside a
// single transaction, keeping sqlite commit overhead off the per-character
// path.
type BatchWriter struct {
	mu          sync.Mutex
	buf         []WriteFunc
	cap         int
	flushTicker *time.Ticker
	closed      bool
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	commitCh chan []WriteFunc
	db       *sql.DB

	// OnError observes asynchronous flush errors as they happen; the first
	// one is also returned from Close.
	OnError func(error)

	errMu   sync.Mutex
	lastErr error
}

// NewBatchWriter creates a writer that flushes every bufferSize submissions
// or every flushInterval (0 disables the ticker).
func NewBatchWriter(db *sql.DB, bufferSize int, flushInterval time.Duration) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	ctx, cancel := context.WithCancel(context.Background())
	bw := &BatchWriter{
		buf:      make([]WriteFunc, 0, bufferSize),
		cap:      bufferSize,
		ctx:      ctx,
		cancel:   cancel,
		commitCh: make(chan []WriteFunc, 2),
		db:       db,
	}

	bw.wg.Add(1)
	go bw.committer()

	if flushInterval > 0 {
		bw.flushTicker = time.NewTicker(flushInterval)
		bw.wg.Add(1)
		go bw.loop()
	}
	return bw
}

// Submit enqueues a write function.
func (bw *BatchWriter) Submit(w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		bw.flushLocked()
	}
	return nil
}

// flushLocked assumes bw.mu is held. Blocking on commitCh propagates
// backpressure to Submit when the committer falls behind.
func (bw *BatchWriter) flushLocked() {
	if len(bw.buf) == 0 {
		return
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)

	select {
	case bw.commitCh <- batch:
	case <-bw.ctx.Done():
		bw.recordErr(fmt.Errorf("batch writer: dropping batch of %d items due to shutdown", len(batch)))
	}
}

func (bw *BatchWriter) committer() {
	defer bw.wg.Done()
	for batch := range bw.commitCh {
		if err := bw.executeBatch(batch); err != nil {
			bw.recordErr(err)
		}
	}
}

func (bw *BatchWriter) recordErr(err error) {
	bw.errMu.Lock()
	if bw.lastErr == nil {
		bw.lastErr = err
	}
	bw.errMu.Unlock()
	if bw.OnError != nil {
		bw.OnError(err)
	}
}

func (bw *BatchWriter) executeBatch(batch []WriteFunc) error {
	// No DB configured (tests): run callbacks with a nil tx.
	if bw.db == nil {
		for _, w := range batch {
			if err := w(bw.ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	// Flushes outlive a closing writer, so use a background context.
	ctx := context.Background()

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

func (bw *BatchWriter) loop() {
	defer bw.wg.Done()
	for {
		select {
		case <-bw.ctx.Done():
			return
		case <-bw.flushTicker.C:
			bw.mu.Lock()
			bw.flushLocked()
			bw.mu.Unlock()
		}
	}
}

// Close stops accepting submissions, flushes what is buffered, and returns
// the first asynchronous error seen, if any.
func (bw *BatchWriter) Close() error {
	bw.mu.Lock()
	if bw.closed {
		bw.mu.Unlock()
		return ErrBatchWriterClosed
	}
	bw.closed = true
	if bw.flushTicker != nil {
		bw.flushTicker.Stop()
	}
	bw.flushLocked()
	bw.mu.Unlock()

	bw.cancel()        // stop ticker loop
	close(bw.commitCh) // stop committer after draining
	bw.wg.Wait()

	bw.errMu.Lock()
	defer bw.errMu.Unlock()
	return bw.lastErr
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
