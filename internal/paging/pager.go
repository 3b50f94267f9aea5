package paging

import (
	"context"
	"time"
)

// PageRequest carries the cursor parameters for one page fetch. The
// transport layer combines it with the caller's filter criteria.
type PageRequest struct {
	Offset int
	Limit  int
}

// Page is the result of one page fetch: the ordered rows plus the
// server-reported total for the whole collection.
type Page[T any] struct {
	Rows  []T
	Total int
}

// FetchFunc fetches one page for the given request. Errors propagate to the
// consumer unretried; retry, if any, belongs to the transport underneath.
type FetchFunc[T any] func(ctx context.Context, req PageRequest) (Page[T], error)

// Pager lazily walks a remote collection page by page, driving a Session
// against a fetch callback. It is restartable per call, not resumable: each
// fetch loop gets its own Pager. The consumer may stop enumerating at any
// point; Close must run on every exit path and finalizes the session.
type Pager[T any] struct {
	session *Session
	fetch   FetchFunc[T]
	err     error
}

// NewPager creates a Pager over the given session and fetch callback.
func NewPager[T any](session *Session, fetch FetchFunc[T]) *Pager[T] {
	return &Pager[T]{session: session, fetch: fetch}
}

// Session exposes the pager's cursor for callers that want progress
// information while enumerating.
func (p *Pager[T]) Session() *Session { return p.session }

// NextPage fetches the next page of rows, truncated to the session's row
// window. It returns a nil slice once the session has stopped: after a
// short page, at the row window, or after an error. The sleep configured
// between pages is applied before every fetch except the first.
func (p *Pager[T]) NextPage(ctx context.Context) ([]T, error) {
	if p.err != nil || p.session.Stopped() {
		return nil, p.err
	}

	if p.session.PagesFetched() > 0 {
		if err := p.sleep(ctx); err != nil {
			p.err = err
			p.session.Stop()
			return nil, err
		}
	}

	page, err := p.fetch(ctx, p.session.NextRequest())
	if err != nil {
		p.err = err
		p.session.Stop()
		return nil, err
	}

	keep := p.session.ObservePage(len(page.Rows), page.Total)
	rows := page.Rows[:keep]
	if len(rows) == 0 {
		return nil, nil
	}
	return rows, nil
}

// All drains the pager into a single slice, closing the session before it
// returns.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	defer p.Close()

	var out []T
	for {
		rows, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			return out, nil
		}
		out = append(out, rows...)
	}
}

// Close finalizes the underlying session. Safe to call multiple times.
func (p *Pager[T]) Close() { p.session.Close() }

// sleep waits the configured inter-page delay, aborting early when the
// context is canceled.
func (p *Pager[T]) sleep(ctx context.Context) error {
	if p.session.cfg.Sleep <= 0 {
		return nil
	}

	timer := time.NewTimer(p.session.cfg.Sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
