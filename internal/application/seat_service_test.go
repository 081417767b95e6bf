package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	redisinfra "github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/redis"
)

func TestSeatService_ListSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("座席表を返す", func(t *testing.T) {
		env := newSeededEnv(t)
		m := env.movieByTitle(t, "Parasite")

		seats, err := env.seats.ListSeats(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, seats, 48)
		for _, s := range seats {
			assert.Equal(t, m.ID, s.MovieID)
			assert.False(t, s.IsBooked)
		}
	})

	t.Run("未知の映画は空リスト", func(t *testing.T) {
		env := newSeededEnv(t)
		seats, err := env.seats.ListSeats(ctx, "unknown")
		require.NoError(t, err)
		assert.Empty(t, seats)
	})

	t.Run("ストアのエラーを包んで返す", func(t *testing.T) {
		repo := new(MockSeatRepository)
		repo.On("GetByMovieID", ctx, "m").Return(nil, errors.New("db down"))
		svc := NewSeatService(repo, new(MockMovieRepository), nil)

		_, err := svc.ListSeats(ctx, "m")
		assert.ErrorContains(t, err, "db down")
	})
}

func TestSeatService_CountAvailableSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("キャッシュヒット時はストアを読まない", func(t *testing.T) {
		repo := new(MockSeatRepository)
		cache := new(MockSeatCache)
		cache.On("GetAvailableCount", ctx, "m").Return(40, nil)
		svc := NewSeatService(repo, new(MockMovieRepository), cache)

		count, err := svc.CountAvailableSeats(ctx, "m")

		require.NoError(t, err)
		assert.Equal(t, 40, count)
		repo.AssertNotCalled(t, "CountAvailableByMovieID", mock.Anything, mock.Anything)
	})

	t.Run("キャッシュミス時はストアから読んで保存する", func(t *testing.T) {
		repo := new(MockSeatRepository)
		cache := new(MockSeatCache)
		cache.On("GetAvailableCount", ctx, "m").Return(0, redisinfra.ErrCacheMiss)
		repo.On("CountAvailableByMovieID", ctx, "m").Return(48, nil)
		cache.On("SetAvailableCount", ctx, "m", 48, seatCacheTTL).Return(nil)
		svc := NewSeatService(repo, new(MockMovieRepository), cache)

		count, err := svc.CountAvailableSeats(ctx, "m")

		require.NoError(t, err)
		assert.Equal(t, 48, count)
		cache.AssertExpectations(t)
	})

	t.Run("キャッシュ障害時もストアから返す", func(t *testing.T) {
		repo := new(MockSeatRepository)
		cache := new(MockSeatCache)
		cache.On("GetAvailableCount", ctx, "m").Return(0, errors.New("redis down"))
		repo.On("CountAvailableByMovieID", ctx, "m").Return(47, nil)
		cache.On("SetAvailableCount", ctx, "m", 47, seatCacheTTL).Return(errors.New("redis down"))
		svc := NewSeatService(repo, new(MockMovieRepository), cache)

		count, err := svc.CountAvailableSeats(ctx, "m")

		require.NoError(t, err)
		assert.Equal(t, 47, count)
	})

	t.Run("キャッシュなし", func(t *testing.T) {
		repo := new(MockSeatRepository)
		repo.On("CountAvailableByMovieID", ctx, "m").Return(48, nil)
		svc := NewSeatService(repo, new(MockMovieRepository), nil)

		count, err := svc.CountAvailableSeats(ctx, "m")

		require.NoError(t, err)
		assert.Equal(t, 48, count)
	})
}

func TestSeatService_RefreshAvailableCounts(t *testing.T) {
	ctx := context.Background()

	t.Run("全映画の空席数をキャッシュに載せる", func(t *testing.T) {
		repo := new(MockSeatRepository)
		movies := new(MockMovieRepository)
		cache := new(MockSeatCache)
		movies.On("List", ctx).Return([]*movie.Movie{{ID: "m1"}, {ID: "m2"}}, nil)
		repo.On("CountAvailableByMovieID", ctx, "m1").Return(48, nil)
		repo.On("CountAvailableByMovieID", ctx, "m2").Return(30, nil)
		cache.On("SetAvailableCount", ctx, "m1", 48, seatCacheTTL).Return(nil)
		cache.On("SetAvailableCount", ctx, "m2", 30, seatCacheTTL).Return(nil)
		svc := NewSeatService(repo, movies, cache)

		n, err := svc.RefreshAvailableCounts(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		cache.AssertExpectations(t)
	})

	t.Run("キャッシュが無ければ何もしない", func(t *testing.T) {
		movies := new(MockMovieRepository)
		svc := NewSeatService(new(MockSeatRepository), movies, nil)

		n, err := svc.RefreshAvailableCounts(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		movies.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("ストア障害は途中までの件数とエラーを返す", func(t *testing.T) {
		repo := new(MockSeatRepository)
		movies := new(MockMovieRepository)
		cache := new(MockSeatCache)
		movies.On("List", ctx).Return([]*movie.Movie{{ID: "m1"}, {ID: "m2"}}, nil)
		repo.On("CountAvailableByMovieID", ctx, "m1").Return(48, nil)
		repo.On("CountAvailableByMovieID", ctx, "m2").Return(0, errors.New("db down"))
		cache.On("SetAvailableCount", ctx, "m1", 48, seatCacheTTL).Return(nil)
		svc := NewSeatService(repo, movies, cache)

		n, err := svc.RefreshAvailableCounts(ctx)

		require.Error(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestSeatService_CountReflectsBookings(t *testing.T) {
	env := newSeededEnv(t)
	ctx := context.Background()
	m := env.movieByTitle(t, "Inception")

	_, err := env.reservation.Reserve(ctx, ReserveInput{MovieID: m.ID, SeatNumbers: []string{"A1", "A2"}})
	require.NoError(t, err)

	count, err := env.seats.CountAvailableSeats(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, len(seat.DefaultRows)*seat.DefaultSeatsPerRow-2, count)
}
