package booking

import (
	"strings"
	"time"
)

// DefaultCustomerName は顧客名が未指定の場合に使う名前
const DefaultCustomerName = "Guest"

// Booking は確定済み予約（台帳の1件）を表す。作成後は変更しない
type Booking struct {
	ID            string
	MovieID       string
	SeatNumbers   []string
	CustomerName  string
	CustomerEmail string
	TotalPrice    int
	CreatedAt     time.Time

	// 参照時に映画から非正規化して埋める
	MovieTitle string
	MovieImage string
}

// NewBooking は新しい予約を作成する。合計金額は単価 × 座席数で計算する
func NewBooking(movieID string, seatNumbers []string, customerName, customerEmail string, unitPrice int) *Booking {
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = DefaultCustomerName
	}
	seats := make([]string, len(seatNumbers))
	copy(seats, seatNumbers)
	return &Booking{
		MovieID:       movieID,
		SeatNumbers:   seats,
		CustomerName:  name,
		CustomerEmail: strings.TrimSpace(customerEmail),
		TotalPrice:    unitPrice * len(seats),
		CreatedAt:     time.Now(),
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.MovieID == "" {
		return ErrMovieIDRequired
	}
	if err := ValidateSeatNumbers(b.SeatNumbers); err != nil {
		return err
	}
	if b.TotalPrice <= 0 {
		return ErrInvalidTotalPrice
	}
	return nil
}

// ValidateSeatNumbers は座席番号リストが空でなく、空文字・重複を含まないことを確認する
func ValidateSeatNumbers(seatNumbers []string) error {
	if len(seatNumbers) == 0 {
		return ErrSeatNumbersRequired
	}
	seen := make(map[string]struct{}, len(seatNumbers))
	for _, n := range seatNumbers {
		if strings.TrimSpace(n) == "" {
			return ErrInvalidSeatNumber
		}
		if _, ok := seen[n]; ok {
			return ErrDuplicateSeatNumber
		}
		seen[n] = struct{}{}
	}
	return nil
}
