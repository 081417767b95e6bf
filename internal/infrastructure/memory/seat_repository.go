package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
)

// SeatRepository は座席リポジトリのメモリ実装
type SeatRepository struct {
	store *Store
}

// NewSeatRepository はSeatRepositoryを作成する
func NewSeatRepository(store *Store) *SeatRepository {
	return &SeatRepository{store: store}
}

func copySeat(s *seat.Seat) *seat.Seat {
	cp := *s
	if s.BookedBy != nil {
		by := *s.BookedBy
		cp.BookedBy = &by
	}
	if s.BookedAt != nil {
		at := *s.BookedAt
		cp.BookedAt = &at
	}
	return &cp
}

func sortSeats(seats []*seat.Seat) {
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
}

// CreateBulk は座席を一括追加する。同一映画内で座席番号が重複する場合はエラー
func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}
	if len(seats) == 0 {
		return nil
	}

	r.store.mu.RLock()
	for _, s := range seats {
		_, committed := r.store.movies[s.MovieID]
		_, staged := mtx.movies[s.MovieID]
		if !committed && !staged {
			r.store.mu.RUnlock()
			return movie.ErrMovieNotFound
		}
		key := seatKey{s.MovieID, s.SeatNumber}
		_, exists := r.store.seats[s.MovieID][s.SeatNumber]
		if _, dup := mtx.seats[key]; exists || dup {
			r.store.mu.RUnlock()
			return fmt.Errorf("座席 %s は既に存在します", s.SeatNumber)
		}
		mtx.seats[key] = struct{}{}
	}
	r.store.mu.RUnlock()

	copies := make([]*seat.Seat, len(seats))
	for i, s := range seats {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		copies[i] = copySeat(s)
	}
	mtx.stage(func(st *Store) {
		for _, s := range copies {
			bySeat, ok := st.seats[s.MovieID]
			if !ok {
				bySeat = make(map[string]*seat.Seat)
				st.seats[s.MovieID] = bySeat
			}
			bySeat[s.SeatNumber] = s
		}
	})
	return nil
}

// GetByMovieID は映画の座席一覧を座席番号順に取得する
func (r *SeatRepository) GetByMovieID(ctx context.Context, movieID string) ([]*seat.Seat, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	bySeat := r.store.seats[movieID]
	seats := make([]*seat.Seat, 0, len(bySeat))
	for _, s := range bySeat {
		seats = append(seats, copySeat(s))
	}
	sortSeats(seats)
	return seats, nil
}

// CountAvailableByMovieID は映画の空席数を取得する
func (r *SeatRepository) CountAvailableByMovieID(ctx context.Context, movieID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, s := range r.store.seats[movieID] {
		if s.IsAvailable() {
			count++
		}
	}
	return count, nil
}

// LockByNumbers は指定座席を取得する
// 書き込みトランザクションは直列なので、取得した状態は Commit まで他から変更されない
func (r *SeatRepository) LockByNumbers(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string) ([]*seat.Seat, error) {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	bySeat := r.store.seats[movieID]
	seats := make([]*seat.Seat, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		s, ok := bySeat[n]
		if !ok {
			continue
		}
		cp := copySeat(s)
		if _, booked := mtx.bookedSeats[seatKey{movieID, n}]; booked {
			cp.IsBooked = true
		}
		seats = append(seats, cp)
	}
	sortSeats(seats)
	return seats, nil
}

// MarkBooked は空席のみを予約済みにする。1席でも予約できなければ何も変更しない
func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, movieID string, seatNumbers []string, bookingID string) error {
	mtx, err := r.store.unwrap(tx)
	if err != nil {
		return err
	}

	r.store.mu.RLock()
	bySeat := r.store.seats[movieID]
	for _, n := range seatNumbers {
		s, ok := bySeat[n]
		_, staged := mtx.bookedSeats[seatKey{movieID, n}]
		if !ok || s.IsBooked || staged {
			r.store.mu.RUnlock()
			return seat.ErrSeatUnavailable
		}
	}
	r.store.mu.RUnlock()

	numbers := make([]string, len(seatNumbers))
	copy(numbers, seatNumbers)
	for _, n := range numbers {
		mtx.bookedSeats[seatKey{movieID, n}] = struct{}{}
	}
	now := time.Now()
	mtx.stage(func(st *Store) {
		for _, n := range numbers {
			s := st.seats[movieID][n]
			by := bookingID
			at := now
			s.IsBooked = true
			s.BookedBy = &by
			s.BookedAt = &at
		}
	})
	return nil
}

var _ seat.Repository = (*SeatRepository)(nil)
