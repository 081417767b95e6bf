package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/memory"
)

// memoryEnv はメモリストア上に組み立てたサービス一式
type memoryEnv struct {
	store       *memory.Store
	catalog     *CatalogService
	seats       *SeatService
	reservation *ReservationService
	seeder      *Seeder
}

func newMemoryEnv(t *testing.T, opts ...Option) *memoryEnv {
	t.Helper()
	store := memory.NewStore()
	movieRepo := memory.NewMovieRepository(store)
	seatRepo := memory.NewSeatRepository(store)
	bookingRepo := memory.NewBookingRepository(store)

	return &memoryEnv{
		store:       store,
		catalog:     NewCatalogService(movieRepo),
		seats:       NewSeatService(seatRepo, movieRepo, nil),
		reservation: NewReservationService(store, bookingRepo, seatRepo, movieRepo, opts...),
		seeder:      NewSeeder(store, movieRepo, seatRepo),
	}
}

// seeded は標準カタログを投入した環境を返す
func newSeededEnv(t *testing.T, opts ...Option) *memoryEnv {
	t.Helper()
	env := newMemoryEnv(t, opts...)
	n, err := env.seeder.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, n)
	return env
}

// movieByTitle はタイトルで映画を探す
func (e *memoryEnv) movieByTitle(t *testing.T, title string) *movie.Movie {
	t.Helper()
	movies, err := e.catalog.ListMovies(context.Background())
	require.NoError(t, err)
	for _, m := range movies {
		if m.Title == title {
			return m
		}
	}
	t.Fatalf("映画 %q が見つかりません", title)
	return nil
}

// bookedSeats は予約済みの座席番号を返す
func (e *memoryEnv) bookedSeats(t *testing.T, movieID string) map[string]bool {
	t.Helper()
	seats, err := e.seats.ListSeats(context.Background(), movieID)
	require.NoError(t, err)
	booked := make(map[string]bool)
	for _, s := range seats {
		if s.IsBooked {
			booked[s.SeatNumber] = true
		}
	}
	return booked
}
