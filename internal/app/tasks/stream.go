package tasks

import (
	"context"
	"fmt"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/paging"
)

// Stream is the lazy record sequence produced by Service.Stream. Use it
// like database/sql rows:
//
//	for stream.Next(ctx) {
//		rec := stream.Record()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Close is guaranteed to finalize the underlying paging session exactly
// once, including when the consumer stops early or an error interrupts the
// loop.
type Stream struct {
	pager  *paging.Pager[task.Basic]
	client Client
	mode   Mode

	buf    []task.Basic
	cur    task.Record
	err    error
	closed bool
}

// Next advances to the next record, fetching pages and per-row detail as
// needed. It returns false at the end of the sequence, after Close, or on
// the first error; check Err afterwards.
func (st *Stream) Next(ctx context.Context) bool {
	if st.closed || st.err != nil {
		return false
	}

	for len(st.buf) == 0 {
		rows, err := st.pager.NextPage(ctx)
		if err != nil {
			st.err = err
			return false
		}
		if rows == nil {
			return false
		}
		st.buf = rows
	}

	basic := st.buf[0]
	st.buf = st.buf[1:]

	rec, err := st.materialize(ctx, basic)
	if err != nil {
		st.err = err
		return false
	}
	st.cur = rec
	return true
}

// Record returns the record produced by the last successful Next.
func (st *Stream) Record() task.Record { return st.cur }

// Err returns the first error encountered while streaming, if any.
func (st *Stream) Err() error { return st.err }

// Session exposes the paging cursor for progress reporting.
func (st *Stream) Session() *paging.Session { return st.pager.Session() }

// Close finalizes the paging session and ends the sequence: subsequent Next
// calls return false without touching the transport, even when rows remain
// buffered. Safe to call multiple times.
func (st *Stream) Close() {
	st.closed = true
	st.pager.Close()
}

// materialize turns one basic page row into the record shape the mode
// requests, issuing the per-row detail fetch when needed.
func (st *Stream) materialize(ctx context.Context, basic task.Basic) (task.Record, error) {
	switch st.mode {
	case ModeBasic:
		return basic, nil

	case ModeFull:
		full, err := st.client.FetchTaskFull(ctx, basic.UUID)
		if err != nil {
			return nil, fmt.Errorf("fetching detail for task %s: %w", basic.UUID, err)
		}
		return full, nil

	default:
		full, err := st.client.FetchTaskFull(ctx, basic.UUID)
		if err != nil {
			return nil, fmt.Errorf("fetching detail for task %s: %w", basic.UUID, err)
		}
		return task.NewTask(basic, full), nil
	}
}
