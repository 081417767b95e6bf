package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// BookingRepository は予約台帳のメモリ実装
type BookingRepository struct {
	store *Store
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

func copyBooking(b *booking.Booking) *booking.Booking {
	cp := *b
	cp.SeatNumbers = make([]string, len(b.SeatNumbers))
	copy(cp.SeatNumbers, b.SeatNumbers)
	return &cp
}

// Create は予約を追記する
// 座席が既に別の予約に属している場合は ErrSeatUnavailable を返す
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	for _, n := range b.SeatNumbers {
		key := seatKey{b.MovieID, n}
		_, owned := r.store.seatOwners[key]
		if _, staged := mtx.ownedSeats[key]; owned || staged {
			r.store.mu.RUnlock()
			return seat.ErrSeatUnavailable
		}
	}
	r.store.mu.RUnlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	for _, n := range b.SeatNumbers {
		mtx.ownedSeats[seatKey{b.MovieID, n}] = struct{}{}
	}

	cp := copyBooking(b)
	cp.MovieTitle, cp.MovieImage = "", ""
	mtx.stage(func(s *Store) {
		s.bookings[cp.ID] = cp
		s.movieBooking[cp.MovieID] = append(s.movieBooking[cp.MovieID], cp.ID)
		for _, n := range cp.SeatNumbers {
			s.seatOwners[seatKey{cp.MovieID, n}] = cp.ID
		}
	})
	return nil
}

// GetByID はIDから予約を映画タイトル・画像付きで取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return r.withMovie(b), nil
}

// ListByMovieID は映画の予約一覧を新しい順に取得する
func (r *BookingRepository) ListByMovieID(ctx context.Context, movieID string, limit, offset int) ([]*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := r.store.movieBooking[movieID]
	result := make([]*booking.Booking, 0)
	skipped := 0
	for i := len(ids) - 1; i >= 0 && len(result) < limit; i-- {
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, r.withMovie(r.store.bookings[ids[i]]))
	}
	return result, nil
}

// withMovie は読み取りロック保持中に呼ぶこと
func (r *BookingRepository) withMovie(b *booking.Booking) *booking.Booking {
	cp := copyBooking(b)
	if m, ok := r.store.movies[b.MovieID]; ok {
		cp.MovieTitle = m.Title
		cp.MovieImage = m.Image
	}
	return cp
}

var _ booking.Repository = (*BookingRepository)(nil)
