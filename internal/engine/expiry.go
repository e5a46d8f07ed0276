package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/efreitasn/limitbook/internal/domain"
)

// ExpiryWorker cancels every resting GoodForDay order once per day at the
// configured cutoff. It contends for the book lock like any other caller.
type ExpiryWorker struct {
	book   *Book
	cutoff domain.TimeOfDay
	buffer time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewExpiryWorker creates a worker sweeping book at cutoff each day. The
// buffer is added to every wake deadline so the sweep lands strictly after
// the cutoff.
func NewExpiryWorker(book *Book, cutoff domain.TimeOfDay, buffer time.Duration, logger *slog.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		book:   book,
		cutoff: cutoff,
		buffer: buffer,
		logger: logger,
		now:    time.Now,
	}
}

// Start launches the worker goroutine. It stops, without sweeping, when ctx
// is cancelled.
func (w *ExpiryWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *ExpiryWorker) run(ctx context.Context) {
	for {
		timer := time.NewTimer(w.untilNextCutoff(w.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			w.Sweep()
		}
	}
}

// untilNextCutoff computes the wait until the next cutoff occurrence. It is
// recomputed from the current local time on every iteration, so DST
// transitions self-correct.
func (w *ExpiryWorker) untilNextCutoff(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		w.cutoff.Hour, w.cutoff.Minute, w.cutoff.Second, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now) + w.buffer
}

// Sweep cancels every resting GoodForDay order. Ids are collected under the
// book lock and cancelled under a fresh acquisition, which bounds the
// critical section and makes the cancels run against current state: orders
// filled or cancelled in the gap are no-ops.
func (w *ExpiryWorker) Sweep() {
	ids := w.book.GoodForDayIDs()
	w.book.CancelOrders(ids)
	if w.logger != nil && len(ids) > 0 {
		w.logger.Info("expired good-for-day orders", slog.Int("count", len(ids)))
	}
}
