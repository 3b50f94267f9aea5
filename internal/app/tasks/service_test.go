package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seclens/seclens-go/internal/domain/task"
	"github.com/seclens/seclens-go/internal/paging"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

type MockClient struct{ mock.Mock }

func (m *MockClient) FetchTaskPage(ctx context.Context, req paging.PageRequest, criteria task.Criteria) (paging.Page[task.Basic], error) {
	args := m.Called(ctx, req, criteria)
	return args.Get(0).(paging.Page[task.Basic]), args.Error(1)
}

func (m *MockClient) FetchTaskFull(ctx context.Context, id string) (task.Full, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(task.Full), args.Error(1)
}

func (m *MockClient) FetchValidFilters(ctx context.Context) (*task.Filters, error) {
	args := m.Called(ctx)
	if filters := args.Get(0); filters != nil {
		return filters.(*task.Filters), args.Error(1)
	}
	return nil, args.Error(1)
}

func basicPage(ids ...string) paging.Page[task.Basic] {
	rows := make([]task.Basic, len(ids))
	for i, id := range ids {
		rows[i] = task.Basic{UUID: id, Status: "in_progress", EnforcementName: "enf-" + id}
	}
	return paging.Page[task.Basic]{Rows: rows, Total: len(ids)}
}

func TestServiceGetBasicMode(t *testing.T) {
	client := &MockClient{}
	client.On("FetchTaskPage", mock.Anything, paging.PageRequest{Offset: 0, Limit: 2}, task.Criteria{}).
		Return(basicPage("t1", "t2"), nil).Once()
	client.On("FetchTaskPage", mock.Anything, paging.PageRequest{Offset: 2, Limit: 2}, task.Criteria{}).
		Return(basicPage("t3"), nil).Once()

	svc := NewService(client, logger.Noop())
	records, err := svc.Get(context.Background(), GetOptions{
		Mode:   ModeBasic,
		Paging: paging.Config{PageSize: 2},
	})
	require.NoError(t, err)

	require.Len(t, records, 3)
	for i, expected := range []string{"t1", "t2", "t3"} {
		basic, ok := records[i].(task.Basic)
		require.True(t, ok)
		assert.Equal(t, expected, basic.UUID)
		assert.Equal(t, task.KindBasic, records[i].Kind())
	}

	// Basic mode must not fetch detail.
	client.AssertNotCalled(t, "FetchTaskFull", mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestServiceGetTaskModeFetchesDetailPerRow(t *testing.T) {
	client := &MockClient{}
	client.On("FetchTaskPage", mock.Anything, mock.Anything, task.Criteria{}).
		Return(basicPage("t1", "t2"), nil).Once()

	client.On("FetchTaskFull", mock.Anything, "t1").Return(task.Full{
		Basic: task.Basic{UUID: "t1", Status: "success"},
		ResultsSuccess: []task.Result{
			{ActionName: "a1", ActionType: "isolate"},
		},
	}, nil).Once()
	client.On("FetchTaskFull", mock.Anything, "t2").Return(task.Full{
		Basic: task.Basic{UUID: "t2", Status: "error"},
	}, nil).Once()

	svc := NewService(client, logger.Noop())
	records, err := svc.Get(context.Background(), GetOptions{
		Paging: paging.Config{PageSize: 5},
	})
	require.NoError(t, err)

	// Output order matches the basic-page order that produced it.
	require.Len(t, records, 2)

	first, ok := records[0].(task.Task)
	require.True(t, ok)
	assert.Equal(t, "t1", first.UUID)
	assert.Equal(t, "success", first.Status, "full detail wins over the page row")
	assert.Equal(t, "enf-t1", first.EnforcementName, "page row fills fields detail omitted")
	assert.Equal(t, []string{"isolate"}, first.ActionTypes)

	second, ok := records[1].(task.Task)
	require.True(t, ok)
	assert.Equal(t, "t2", second.UUID)

	client.AssertExpectations(t)
}

func TestServiceGetFullMode(t *testing.T) {
	client := &MockClient{}
	client.On("FetchTaskPage", mock.Anything, mock.Anything, task.Criteria{}).
		Return(basicPage("t1"), nil).Once()
	client.On("FetchTaskFull", mock.Anything, "t1").
		Return(task.Full{Basic: task.Basic{UUID: "t1"}}, nil).Once()

	svc := NewService(client, logger.Noop())
	records, err := svc.Get(context.Background(), GetOptions{
		Mode:   ModeFull,
		Paging: paging.Config{PageSize: 5},
	})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Equal(t, task.KindFull, records[0].Kind())
	client.AssertExpectations(t)
}

func TestServiceGetPropagatesDetailErrors(t *testing.T) {
	client := &MockClient{}
	client.On("FetchTaskPage", mock.Anything, mock.Anything, task.Criteria{}).
		Return(basicPage("t1"), nil).Once()
	client.On("FetchTaskFull", mock.Anything, "t1").
		Return(task.Full{}, task.ErrTaskNotFound).Once()

	svc := NewService(client, logger.Noop())
	_, err := svc.Get(context.Background(), GetOptions{
		Paging: paging.Config{PageSize: 5},
	})

	require.ErrorIs(t, err, task.ErrTaskNotFound)
	client.AssertExpectations(t)
}

func TestServiceGetInvalidPageSize(t *testing.T) {
	svc := NewService(&MockClient{}, logger.Noop())

	_, err := svc.Get(context.Background(), GetOptions{
		Paging: paging.Config{PageSize: -1},
	})

	var validationErr *task.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestServiceStreamEarlyStopIssuesNoFurtherFetches(t *testing.T) {
	client := &MockClient{}
	client.On("FetchTaskPage", mock.Anything, paging.PageRequest{Offset: 0, Limit: 2}, task.Criteria{}).
		Return(basicPage("t1", "t2"), nil).Once()
	client.On("FetchTaskFull", mock.Anything, "t1").
		Return(task.Full{Basic: task.Basic{UUID: "t1"}}, nil).Once()

	svc := NewService(client, logger.Noop())
	stream, err := svc.Stream(context.Background(), GetOptions{
		Paging: paging.Config{PageSize: 2},
	})
	require.NoError(t, err)

	require.True(t, stream.Next(context.Background()))
	assert.Equal(t, task.KindTask, stream.Record().Kind())

	// Abandoning after one row finalizes the session; the buffered second
	// row must not reach the transport, not even for its detail fetch.
	stream.Close()
	assert.False(t, stream.Next(context.Background()))
	require.NoError(t, stream.Err())

	client.AssertNotCalled(t, "FetchTaskFull", mock.Anything, "t2")
	client.AssertExpectations(t)
}

func TestServiceGetFilters(t *testing.T) {
	expected := task.NewFilters(
		[]string{"isolate_host"}, nil, nil, []int{1}, []string{"success"},
	)

	client := &MockClient{}
	client.On("FetchValidFilters", mock.Anything).Return(expected, nil).Once()

	svc := NewService(client, logger.Noop())
	filters, err := svc.GetFilters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"isolate_host"}, filters.EnumActionNames())

	client.AssertExpectations(t)
}

func TestServiceGetFiltersError(t *testing.T) {
	transportErr := errors.New("connection refused")

	client := &MockClient{}
	client.On("FetchValidFilters", mock.Anything).Return(nil, transportErr).Once()

	svc := NewService(client, logger.Noop())
	_, err := svc.GetFilters(context.Background())
	require.ErrorIs(t, err, transportErr)
}
