package csv

import (
	"context"
	"io"
)

// RowResult is a row or the error that ended a stream.
type RowResult struct {
	Row []string
	Err error
}

// RecordResult is a Record or the error that ended a stream.
type RecordResult struct {
	Record Record
	Err    error
}

// Stream reads rows in a new goroutine and sends them on the returned channel.
// The channel is closed at the end of input, after the first error, or when
// ctx is done; check ctx.Err() to tell cancellation apart from the end of input.
//
// The Reader must not be used by the caller until the channel is closed.
func (r *Reader) Stream(ctx context.Context) <-chan RowResult {
	ch := make(chan RowResult)
	go func() {
		defer close(ch)
		for ctx.Err() == nil {
			row, err := r.Read()
			if err == io.EOF {
				return
			}
			select {
			case ch <- RowResult{Row: r.detach(row), Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// Stream reads Records in a new goroutine like Reader.Stream.
func (h *HeaderReader) Stream(ctx context.Context) <-chan RecordResult {
	ch := make(chan RecordResult)
	go func() {
		defer close(ch)
		for ctx.Err() == nil {
			rec, err := h.Read()
			if err == io.EOF {
				return
			}
			rec.fields = h.r.detach(rec.fields)
			select {
			case ch <- RecordResult{Record: rec, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return ch
}

// WriteStream writes rows received from rows until the channel is closed,
// then completes the output like WriteRows. If ctx is done first, the rows
// received so far are flushed and ctx.Err() is returned.
func (w *Writer) WriteStream(ctx context.Context, rows <-chan []any) error {
	var ctxErr error
	err := w.WriteRowSeq(func(yield func([]any) bool) {
		for {
			select {
			case <-ctx.Done():
				ctxErr = ctx.Err()
				return
			case row, ok := <-rows:
				if !ok || !yield(row) {
					return
				}
			}
		}
	})
	if ctxErr != nil {
		return ctxErr
	}
	return err
}
