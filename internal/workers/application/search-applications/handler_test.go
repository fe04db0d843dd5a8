package searchapplications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "hiring-workers/internal/common/errors"
	"hiring-workers/internal/common/logger"
	"hiring-workers/internal/models"
	"hiring-workers/internal/search"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, q search.Query) (*search.Result, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*search.Result), args.Error(1)
}

func TestHandler_Execute_Success(t *testing.T) {
	m := &MockSearcher{}
	want := search.Query{Text: "backend", Status: models.StatusPending, OrganizationID: "org-1", Size: 10}
	m.On("Search", mock.Anything, want).Return(&search.Result{
		Total: 1,
		Items: []search.Document{{ApplicationID: "app-1", JobTitle: "Backend Engineer"}},
	}, nil)

	h := NewHandler(LoadConfig(), m, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Query: "backend", Status: "pending", OrganizationID: "org-1", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, "app-1", out.Items[0].ApplicationID)
	m.AssertExpectations(t)
}

func TestHandler_Execute_EmptyResult(t *testing.T) {
	m := &MockSearcher{}
	m.On("Search", mock.Anything, mock.Anything).Return(&search.Result{}, nil)

	h := NewHandler(LoadConfig(), m, nil, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("search disabled", func(t *testing.T) {
		h := NewHandler(LoadConfig(), nil, nil, logger.NewTestLogger(t))
		_, err := h.Execute(context.Background(), &Input{Query: "x"})
		assert.ErrorIs(t, err, apperrors.ErrDependencyUnavailable)
	})

	t.Run("backend failure passes through", func(t *testing.T) {
		m := &MockSearcher{}
		m.On("Search", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewDependencyUnavailableError("elasticsearch", errors.New("503")))
		h := NewHandler(LoadConfig(), m, nil, logger.NewTestLogger(t))
		_, err := h.Execute(context.Background(), &Input{Query: "x"})
		assert.True(t, apperrors.IsRetryable(err))
	})
}
