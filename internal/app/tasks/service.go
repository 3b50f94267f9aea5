// Package tasks orchestrates the enforcement-task read pipeline: it drives
// the paging state machine against the transport, optionally fetches full
// detail per row, and merges basic and full records into rich task views.
package tasks

import (
	"context"
	"fmt"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/paging"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

// Client is the transport boundary the service consumes. Errors from it
// surface to callers unmodified; this layer never retries.
type Client interface {
	// FetchTaskPage returns one ordered page of basic task rows.
	FetchTaskPage(ctx context.Context, req paging.PageRequest, criteria task.Criteria) (paging.Page[task.Basic], error)

	// FetchTaskFull returns the complete record for one task id.
	FetchTaskFull(ctx context.Context, id string) (task.Full, error)

	// FetchValidFilters returns the current valid filter sets.
	FetchValidFilters(ctx context.Context) (*task.Filters, error)
}

// Mode selects what the pipeline yields per basic page row.
type Mode string

// The pipeline modes. The zero value selects ModeTask.
const (
	// ModeTask fetches full detail per row and yields merged Task records.
	ModeTask Mode = "task"
	// ModeFull fetches full detail per row and yields Full records.
	ModeFull Mode = "full"
	// ModeBasic yields the page rows as-is, with no per-row detail fetch.
	ModeBasic Mode = "basic"
)

// GetOptions configure one fetch: pipeline mode, paging parameters, and
// server-side filter criteria.
type GetOptions struct {
	Mode     Mode
	Paging   paging.Config
	Criteria task.Criteria
}

// Service is the caller-facing surface of the read pipeline.
type Service struct {
	client Client
	log    *logger.Logger
}

// NewService creates a Service over the given transport client.
func NewService(client Client, log *logger.Logger) *Service {
	return &Service{client: client, log: log}
}

// GetFilters fetches the valid filter sets for client-side validation of
// query parameters.
func (s *Service) GetFilters(ctx context.Context) (*task.Filters, error) {
	filters, err := s.client.FetchValidFilters(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching valid filters: %w", err)
	}
	return filters, nil
}

// Get fetches all matching records eagerly. It drains a Stream and closes
// it before returning; row order matches the basic-page order that produced
// it.
func (s *Service) Get(ctx context.Context, opts GetOptions) ([]task.Record, error) {
	stream, err := s.Stream(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var out []task.Record
	for stream.Next(ctx) {
		out = append(out, stream.Record())
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stream starts a lazy fetch. The caller owns the returned Stream and must
// Close it on every exit path; abandoning enumeration early issues no
// further page fetches.
//
// When the mode requires full detail, the pipeline issues one detail fetch
// per basic row. That cost is linear in the row count and is not batched;
// callers needing bulk efficiency should use ModeBasic.
func (s *Service) Stream(ctx context.Context, opts GetOptions) (*Stream, error) {
	cfg := opts.Paging
	if cfg.PageSize == 0 {
		cfg.PageSize = paging.DefaultPageSize
	}

	session, err := paging.NewSession(cfg, s.log)
	if err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, req paging.PageRequest) (paging.Page[task.Basic], error) {
		return s.client.FetchTaskPage(ctx, req, opts.Criteria)
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeTask
	}

	return &Stream{
		pager:  paging.NewPager(session, fetch),
		client: s.client,
		mode:   mode,
	}, nil
}
