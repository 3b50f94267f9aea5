package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

// stubFetcher serves pages of the given sizes and records every request it
// receives. Rows are consecutive ints starting at the request offset.
type stubFetcher struct {
	sizes    []int
	requests []PageRequest
}

func (s *stubFetcher) fetch(_ context.Context, req PageRequest) (Page[int], error) {
	s.requests = append(s.requests, req)

	call := len(s.requests) - 1
	size := 0
	if call < len(s.sizes) {
		size = s.sizes[call]
	}

	rows := make([]int, size)
	for i := range rows {
		rows[i] = req.Offset + i
	}
	return Page[int]{Rows: rows, Total: 1000}, nil
}

func TestPagerTerminatesAfterShortPage(t *testing.T) {
	tests := []struct {
		name          string
		pageSize      int
		sizes         []int
		expectedRows  int
		expectedCalls int
	}{
		{
			name:          "short final page",
			pageSize:      3,
			sizes:         []int{3, 3, 2},
			expectedRows:  8,
			expectedCalls: 3,
		},
		{
			name:          "exact single page",
			pageSize:      5,
			sizes:         []int{4},
			expectedRows:  4,
			expectedCalls: 1,
		},
		{
			name:          "empty first page",
			pageSize:      10,
			sizes:         []int{0},
			expectedRows:  0,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{sizes: tt.sizes}

			session, err := NewSession(Config{PageSize: tt.pageSize}, logger.Noop())
			require.NoError(t, err)

			pager := NewPager(session, fetcher.fetch)
			rows, err := pager.All(context.Background())
			require.NoError(t, err)

			assert.Len(t, rows, tt.expectedRows)
			assert.Equal(t, tt.expectedCalls, len(fetcher.requests),
				"no further fetch may follow the short page")
		})
	}
}

func TestPagerRowWindowClipping(t *testing.T) {
	tests := []struct {
		name         string
		cfg          Config
		sizes        []int
		expectedRows int
	}{
		{
			name:         "row stop truncates mid page",
			cfg:          Config{PageSize: 4, RowStop: 6},
			sizes:        []int{4, 4, 4},
			expectedRows: 6,
		},
		{
			name:         "row stop beyond available rows",
			cfg:          Config{PageSize: 4, RowStop: 100},
			sizes:        []int{4, 2},
			expectedRows: 6,
		},
		{
			name:         "row stop on page boundary",
			cfg:          Config{PageSize: 3, RowStop: 6},
			sizes:        []int{3, 3, 3},
			expectedRows: 6,
		},
		{
			name:         "row start inside the window",
			cfg:          Config{PageSize: 5, RowStart: 8, RowStop: 10},
			sizes:        []int{5},
			expectedRows: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &stubFetcher{sizes: tt.sizes}

			session, err := NewSession(tt.cfg, logger.Noop())
			require.NoError(t, err)

			pager := NewPager(session, fetcher.fetch)
			rows, err := pager.All(context.Background())
			require.NoError(t, err)

			assert.Len(t, rows, tt.expectedRows)
		})
	}
}

func TestPagerOffsetsAdvanceMonotonically(t *testing.T) {
	fetcher := &stubFetcher{sizes: []int{3, 3, 1}}

	session, err := NewSession(Config{PageSize: 3, RowStart: 10}, logger.Noop())
	require.NoError(t, err)

	pager := NewPager(session, fetcher.fetch)
	rows, err := pager.All(context.Background())
	require.NoError(t, err)

	assert.Len(t, rows, 7)
	require.Len(t, fetcher.requests, 3)
	assert.Equal(t, 10, fetcher.requests[0].Offset)
	assert.Equal(t, 13, fetcher.requests[1].Offset)
	assert.Equal(t, 16, fetcher.requests[2].Offset)
	for _, req := range fetcher.requests {
		assert.Equal(t, 3, req.Limit)
	}
}

func TestPagerEmptyWindowIssuesNoFetch(t *testing.T) {
	fetcher := &stubFetcher{sizes: []int{5}}

	session, err := NewSession(Config{PageSize: 5, RowStart: 20, RowStop: 10}, logger.Noop())
	require.NoError(t, err)

	pager := NewPager(session, fetcher.fetch)
	rows, err := pager.All(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rows)
	assert.Empty(t, fetcher.requests)
}

func TestPagerPropagatesFetchErrors(t *testing.T) {
	fetchErr := errors.New("boom")
	calls := 0
	fetch := func(context.Context, PageRequest) (Page[int], error) {
		calls++
		return Page[int]{}, fetchErr
	}

	session, err := NewSession(Config{PageSize: 5}, logger.Noop())
	require.NoError(t, err)

	pager := NewPager(session, fetch)
	_, err = pager.All(context.Background())
	require.ErrorIs(t, err, fetchErr)

	// The error stops the session; no retry happens at this layer.
	rows, err := pager.NextPage(context.Background())
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, 1, calls)
}

func TestNewSessionValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "zero page size", cfg: Config{PageSize: 0}},
		{name: "negative page size", cfg: Config{PageSize: -1}},
		{name: "negative row start", cfg: Config{PageSize: 10, RowStart: -5}},
		{name: "negative sleep", cfg: Config{PageSize: 10, Sleep: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.cfg, logger.Noop())

			var validationErr *task.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	session, err := NewSession(Config{PageSize: 5}, logger.Noop())
	require.NoError(t, err)

	session.Close()
	session.Close()
	assert.True(t, session.Stopped())
}

func TestPagerCloseAfterEarlyStop(t *testing.T) {
	fetcher := &stubFetcher{sizes: []int{5, 5, 5}}

	session, err := NewSession(Config{PageSize: 5}, logger.Noop())
	require.NoError(t, err)

	pager := NewPager(session, fetcher.fetch)

	// Consume a single page, then abandon the iteration.
	rows, err := pager.NextPage(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 5)

	pager.Close()
	assert.True(t, session.Stopped())

	// A stopped session issues no further fetches.
	rows, err = pager.NextPage(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rows)
	assert.Len(t, fetcher.requests, 1)
}
