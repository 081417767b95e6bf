package seat

import (
	"fmt"
	"time"
)

// 標準の座席レイアウト（6列 × 8席）
var (
	DefaultRows        = []string{"A", "B", "C", "D", "E", "F"}
	DefaultSeatsPerRow = 8
)

// Seat は座席エンティティを表す
type Seat struct {
	ID         string
	MovieID    string
	SeatNumber string
	IsBooked   bool
	BookedBy   *string // booking_id
	BookedAt   *time.Time
	CreatedAt  time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(movieID, seatNumber string) *Seat {
	return &Seat{
		MovieID:    movieID,
		SeatNumber: seatNumber,
		IsBooked:   false,
		CreatedAt:  time.Now(),
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.IsBooked
}

// Book は座席を予約済みにする。予約済みから空席へ戻ることはない
func (s *Seat) Book(bookingID string) error {
	if s.IsBooked {
		return &UnavailableError{SeatNumber: s.SeatNumber}
	}
	now := time.Now()
	s.IsBooked = true
	s.BookedBy = &bookingID
	s.BookedAt = &now
	return nil
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.MovieID == "" {
		return ErrMovieIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	return nil
}

// Layout は列ラベルと1列あたりの席数から座席番号（A1, A2, ...）を生成する
func Layout(rows []string, seatsPerRow int) []string {
	numbers := make([]string, 0, len(rows)*seatsPerRow)
	for _, row := range rows {
		for n := 1; n <= seatsPerRow; n++ {
			numbers = append(numbers, fmt.Sprintf("%s%d", row, n))
		}
	}
	return numbers
}

// NewSeatMap は映画1本分の座席を標準レイアウトで作成する
func NewSeatMap(movieID string) []*Seat {
	numbers := Layout(DefaultRows, DefaultSeatsPerRow)
	seats := make([]*Seat, len(numbers))
	for i, n := range numbers {
		seats[i] = NewSeat(movieID, n)
	}
	return seats
}
