// Package paging implements the offset/size paging state machine used to
// walk remote task collections page by page. A Session owns the cursor and
// bookkeeping for one fetch loop; a Pager drives it lazily against a fetch
// callback and guarantees finalization on every exit path.
package paging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

// DefaultPageSize is the page size used when the caller does not set one.
const DefaultPageSize = 2000

// Config holds the paging parameters for one session. The zero value is not
// usable; PageSize must be positive.
type Config struct {
	// PageSize is the number of rows requested per page. Must be > 0.
	PageSize int

	// RowStart is the absolute row offset the session starts at.
	RowStart int

	// RowStop, when positive, is the exclusive absolute row index the
	// session will not fetch past. Zero or negative means no bound.
	RowStop int

	// Sleep is the delay between page fetches. It is never applied before
	// the first fetch.
	Sleep time.Duration
}

// Session is the per-request-loop paging cursor. It is owned exclusively by
// the single iteration loop that created it and must be finalized with
// Close on every exit path; Close is idempotent and logs summary
// statistics.
type Session struct {
	id  string
	cfg Config
	log *logger.Logger

	offset       int
	rowsFetched  int
	pagesFetched int
	lastTotal    int
	stopPaging   bool

	startedAt time.Time
	closed    bool
}

// NewSession validates the paging parameters and creates a session starting
// at cfg.RowStart. A session whose window is already empty (RowStart at or
// past RowStop) is created stopped and yields no rows.
func NewSession(cfg Config, log *logger.Logger) (*Session, error) {
	if cfg.PageSize <= 0 {
		return nil, &task.ValidationError{Field: "page_size", Message: fmt.Sprintf("must be greater than zero, got %d", cfg.PageSize)}
	}
	if cfg.RowStart < 0 {
		return nil, &task.ValidationError{Field: "row_start", Message: fmt.Sprintf("must not be negative, got %d", cfg.RowStart)}
	}
	if cfg.Sleep < 0 {
		return nil, &task.ValidationError{Field: "page_sleep", Message: fmt.Sprintf("must not be negative, got %s", cfg.Sleep)}
	}

	id := uuid.New().String()
	s := &Session{
		id:        id,
		cfg:       cfg,
		log:       log.With("session_id", id, "page_size", cfg.PageSize),
		offset:    cfg.RowStart,
		startedAt: time.Now(),
	}
	if cfg.RowStop > 0 && cfg.RowStart >= cfg.RowStop {
		s.stopPaging = true
	}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Offset returns the current absolute row offset. It is monotonically
// non-decreasing over the session's lifetime.
func (s *Session) Offset() int { return s.offset }

// RowsFetched returns the number of rows yielded so far.
func (s *Session) RowsFetched() int { return s.rowsFetched }

// PagesFetched returns the number of pages fetched so far.
func (s *Session) PagesFetched() int { return s.pagesFetched }

// Total returns the most recent server-reported total row count.
func (s *Session) Total() int { return s.lastTotal }

// Stopped reports whether the session has reached a stop condition.
func (s *Session) Stopped() bool { return s.stopPaging || s.closed }

// Stop marks the session finished. Further requests will not be issued.
func (s *Session) Stop() { s.stopPaging = true }

// NextRequest builds the page request for the current cursor position.
func (s *Session) NextRequest() PageRequest {
	return PageRequest{Offset: s.offset, Limit: s.cfg.PageSize}
}

// ObservePage records one fetched page of the given size, advances the
// cursor, and applies the stop conditions: a short page signals server
// end-of-data, and the row window truncates the page when RowStop lands
// inside it. It returns how many of the page's rows fall inside the window.
func (s *Session) ObservePage(rows, total int) int {
	keep := rows
	if s.cfg.RowStop > 0 && s.offset+keep > s.cfg.RowStop {
		keep = s.cfg.RowStop - s.offset
		s.stopPaging = true
	}

	s.offset += keep
	s.rowsFetched += keep
	s.pagesFetched++
	s.lastTotal = total

	if rows < s.cfg.PageSize {
		s.stopPaging = true
	}
	if s.cfg.RowStop > 0 && s.offset >= s.cfg.RowStop {
		s.stopPaging = true
	}
	return keep
}

// Close finalizes the session and logs its summary statistics. It is safe
// to call more than once; only the first call logs.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopPaging = true

	s.log.Info(context.Background(), "paging session complete",
		"rows", s.rowsFetched,
		"pages", s.pagesFetched,
		"elapsed", time.Since(s.startedAt).String(),
	)
}
