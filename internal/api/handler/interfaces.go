package handler

import (
	"context"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/application"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
)

// CatalogServiceInterface は映画カタログサービスのインターフェース
type CatalogServiceInterface interface {
	ListMovies(ctx context.Context) ([]*movie.Movie, error)
	GetMovie(ctx context.Context, id string) (*movie.Movie, error)
}

// SeatServiceInterface は座席サービスのインターフェース
type SeatServiceInterface interface {
	ListSeats(ctx context.Context, movieID string) ([]*seat.Seat, error)
	CountAvailableSeats(ctx context.Context, movieID string) (int, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	Reserve(ctx context.Context, input application.ReserveInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ListBookingsByMovie(ctx context.Context, movieID string, limit, offset int) ([]*booking.Booking, error)
}

// Pinger はストアの疎通確認
type Pinger interface {
	Ping(ctx context.Context) error
}
