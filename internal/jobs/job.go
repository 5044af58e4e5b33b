// Package jobs models every long-running engine operation — scanning,
// hierarchy builds, anonymization, validation, DICOMDIR generation, zip
// extraction, network send — as a cancellable unit of work that reports
// progress and a single terminal event over typed channels. There is no
// UI event-dispatch thread in this core; the "foreground" is whichever
// goroutine drains the channels.
package jobs

import "context"

// Progress reports incremental status for a running job.
type Progress struct {
	Current int
	Total   int
	Message string
}

// Event is delivered exactly once, as the last value read from a job's
// event channel, after zero or more Progress values.
type Event struct {
	// Result holds the job's return value on success. Callers type-assert
	// it to the concrete result type documented by the function that
	// started the job (e.g. *anonymize.Result, *validate.CollectionResult).
	Result any
	// Err is non-nil on failure. Cancellation is reported via Cancelled,
	// not Err — per the concurrency model cancellation is neither success
	// nor failure.
	Err error
	// Cancelled is true if the job stopped because its context was
	// cancelled, rather than running to completion or failing outright.
	Cancelled bool
}

// Run drives fn on its own goroutine, forwarding progress and exactly one
// terminal Event. fn must check ctx.Done() between units of work and
// return promptly when cancelled; Run does not forcibly kill it.
//
// fn reports progress by sending on the progress channel it receives;
// Run closes both channels once fn returns.
func Run(ctx context.Context, fn func(ctx context.Context, progress chan<- Progress) (any, error)) (<-chan Progress, <-chan Event) {
	progressCh := make(chan Progress)
	eventCh := make(chan Event, 1)

	go func() {
		defer close(progressCh)
		defer close(eventCh)

		result, err := fn(ctx, progressCh)
		if err != nil {
			if ctx.Err() != nil {
				eventCh <- Event{Cancelled: true}
				return
			}
			eventCh <- Event{Err: err}
			return
		}
		eventCh <- Event{Result: result}
	}()

	return progressCh, eventCh
}

// emit sends p on ch without blocking forever if the receiver has gone
// away because the caller stopped reading after cancellation.
func emit(ctx context.Context, ch chan<- Progress, p Progress) {
	select {
	case ch <- p:
	case <-ctx.Done():
	}
}

// Emit is the public form of emit, used by engines to publish progress
// from within a Run callback.
func Emit(ctx context.Context, ch chan<- Progress, current, total int, message string) {
	emit(ctx, ch, Progress{Current: current, Total: total, Message: message})
}
