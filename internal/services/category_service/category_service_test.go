package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"elite_blog/internal/domain/models"
	"elite_blog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) SaveCategory(ctx context.Context, name string) (models.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.Category), args.Error(1)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func names(categories []models.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Name)
	}
	return out
}

func newStore(repo *MockCategoryRepository) *CategoryStore {
	return NewCategoryStore(slog.Default(), repo, time.Minute)
}

func TestCategoryStore_List(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once then serves snapshot", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("ListCategories", ctx).
			Return([]models.Category{{ID: 1, Name: "Art"}, {ID: 2, Name: "Tech"}}, nil).Once()

		store := newStore(repo)

		first, err := store.List(ctx)
		require.NoError(t, err)
		second, err := store.List(ctx)
		require.NoError(t, err)

		assert.Equal(t, []string{"Art", "Tech"}, names(first))
		assert.Equal(t, first, second)
		repo.AssertExpectations(t)
	})

	t.Run("callers cannot mutate the snapshot", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("ListCategories", ctx).Return([]models.Category{{ID: 1, Name: "Art"}}, nil).Once()

		store := newStore(repo)

		list, err := store.List(ctx)
		require.NoError(t, err)
		list[0].Name = "changed"

		again, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Art", again[0].Name)
	})

	t.Run("load failure", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		repo.On("ListCategories", ctx).Return(nil, errors.New("db down")).Once()

		_, err := newStore(repo).List(ctx)
		assert.ErrorContains(t, err, "db down")
		assert.ErrorContains(t, err, "category_service.List")
	})
}

func TestCategoryStore_Add(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		input     string
		mockSetup func(repo *MockCategoryRepository)
		wantErr   error
		wantNames []string
	}{
		{
			name:  "trimmed and appended in name order",
			input: "  Music  ",
			mockSetup: func(repo *MockCategoryRepository) {
				repo.On("SaveCategory", ctx, "Music").Return(models.Category{ID: 3, Name: "Music"}, nil).Once()
			},
			wantNames: []string{"Art", "Music", "Tech"},
		},
		{
			name:      "blank name rejected before the store",
			input:     "   ",
			mockSetup: func(repo *MockCategoryRepository) {},
			wantNames: []string{"Art", "Tech"},
		},
		{
			name:  "duplicate",
			input: "Art",
			mockSetup: func(repo *MockCategoryRepository) {
				repo.On("SaveCategory", ctx, "Art").Return(models.Category{}, storage.ErrCategoryExists).Once()
			},
			wantErr:   storage.ErrCategoryExists,
			wantNames: []string{"Art", "Tech"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockCategoryRepository)
			repo.On("ListCategories", ctx).
				Return([]models.Category{{ID: 1, Name: "Art"}, {ID: 2, Name: "Tech"}}, nil).Once()
			tt.mockSetup(repo)

			store := newStore(repo)
			_, err := store.List(ctx)
			require.NoError(t, err)

			_, err = store.Add(ctx, tt.input)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.input == "   ":
				var vErr *models.ValidationError
				assert.ErrorAs(t, err, &vErr)
				repo.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
			default:
				assert.NoError(t, err)
			}

			list, err := store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(list))
			repo.AssertExpectations(t)
		})
	}
}

func TestCategoryStore_Remove(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCategoryRepository)
	repo.On("ListCategories", ctx).
		Return([]models.Category{{ID: 1, Name: "Art"}, {ID: 2, Name: "Tech"}}, nil).Once()
	repo.On("DeleteCategory", ctx, int64(1)).Return(nil).Once()
	repo.On("DeleteCategory", ctx, int64(9)).Return(storage.ErrCategoryNotFound).Once()

	store := newStore(repo)
	_, err := store.List(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, 1))
	assert.ErrorIs(t, store.Remove(ctx, 9), storage.ErrCategoryNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech"}, names(list))
	repo.AssertExpectations(t)
}

func TestCategoryStore_Resolve(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCategoryRepository)
	repo.On("ListCategories", ctx).Return([]models.Category{{ID: 7, Name: "Events"}}, nil).Once()

	store := newStore(repo)

	c, err := store.Resolve(ctx, "Events")
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)

	_, err = store.Resolve(ctx, "events")
	assert.ErrorIs(t, err, storage.ErrCategoryNotFound)
}

func TestCategoryStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCategoryRepository)
	repo.On("ListCategories", ctx).Return([]models.Category{}, nil).Once()
	for i := 0; i < 20; i++ {
		name := string(rune('a' + i))
		repo.On("SaveCategory", ctx, name).Return(models.Category{ID: int64(i + 1), Name: name}, nil).Once()
	}

	store := newStore(repo)
	_, err := store.List(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Add(ctx, string(rune('a'+i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestCategoryStore_RefreshDoesNotDropConcurrentAdd(t *testing.T) {
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})

	repo := new(MockCategoryRepository)
	repo.On("ListCategories", ctx).Return([]models.Category{{ID: 1, Name: "Art"}}, nil).Once()
	repo.On("ListCategories", ctx).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]models.Category{{ID: 1, Name: "Art"}}, nil).Once()
	repo.On("SaveCategory", ctx, "Workshop").Return(models.Category{ID: 2, Name: "Workshop"}, nil).Once()

	store := newStore(repo)
	_, err := store.List(ctx)
	require.NoError(t, err)

	refreshed := make(chan []models.Category, 1)
	go func() {
		list, err := store.Refresh(ctx)
		assert.NoError(t, err)
		refreshed <- list
	}()

	<-entered
	_, err = store.Add(ctx, "Workshop")
	require.NoError(t, err)
	close(release)

	assert.Equal(t, []string{"Art", "Workshop"}, names(<-refreshed))

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Art", "Workshop"}, names(list))

	c, err := store.Resolve(ctx, "Workshop")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)
	repo.AssertExpectations(t)
}
