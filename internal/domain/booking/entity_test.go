package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	t.Run("合計金額は単価×座席数", func(t *testing.T) {
		b := NewBooking("movie-1", []string{"A1", "A2"}, "Jane", "jane@x.com", 1244)

		assert.Equal(t, "movie-1", b.MovieID)
		assert.Equal(t, []string{"A1", "A2"}, b.SeatNumbers)
		assert.Equal(t, "Jane", b.CustomerName)
		assert.Equal(t, "jane@x.com", b.CustomerEmail)
		assert.Equal(t, 2488, b.TotalPrice)
		assert.NotZero(t, b.CreatedAt)
		require.NoError(t, b.Validate())
	})

	t.Run("顧客名未指定はGuest", func(t *testing.T) {
		b := NewBooking("movie-1", []string{"A1"}, "  ", "", 995)

		assert.Equal(t, DefaultCustomerName, b.CustomerName)
		assert.Equal(t, "", b.CustomerEmail)
	})

	t.Run("座席リストは呼び出し元と共有しない", func(t *testing.T) {
		seats := []string{"A1", "A2"}
		b := NewBooking("movie-1", seats, "", "", 100)

		seats[0] = "Z9"

		assert.Equal(t, "A1", b.SeatNumbers[0])
	})
}

func TestValidateSeatNumbers(t *testing.T) {
	tests := []struct {
		name        string
		seats       []string
		expectedErr error
	}{
		{"1席", []string{"A1"}, nil},
		{"複数席", []string{"A1", "B2", "F8"}, nil},
		{"nil", nil, ErrSeatNumbersRequired},
		{"空リスト", []string{}, ErrSeatNumbersRequired},
		{"空文字を含む", []string{"A1", " "}, ErrInvalidSeatNumber},
		{"重複を含む", []string{"A1", "A2", "A1"}, ErrDuplicateSeatNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeatNumbers(tt.seats)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.True(t, IsInvalidRequest(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name        string
		booking     *Booking
		expectedErr error
	}{
		{"有効な予約", &Booking{MovieID: "m", SeatNumbers: []string{"A1"}, TotalPrice: 100}, nil},
		{"映画ID未指定", &Booking{MovieID: "", SeatNumbers: []string{"A1"}, TotalPrice: 100}, ErrMovieIDRequired},
		{"座席未選択", &Booking{MovieID: "m", TotalPrice: 100}, ErrSeatNumbersRequired},
		{"合計金額0", &Booking{MovieID: "m", SeatNumbers: []string{"A1"}, TotalPrice: 0}, ErrInvalidTotalPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.booking.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewCreatedEvent(t *testing.T) {
	b := NewBooking("movie-1", []string{"A1", "A2"}, "Alice", "alice@example.com", 1244)
	b.ID = "booking-1"

	ev := NewCreatedEvent(b, "Inception")

	assert.Equal(t, CreatedEventType, ev.Type)
	assert.Equal(t, "booking-1", ev.BookingID)
	assert.Equal(t, "Inception", ev.MovieTitle)
	assert.Equal(t, []string{"A1", "A2"}, ev.SeatNumbers)
	assert.Equal(t, 2488, ev.TotalPrice)

	// イベントは予約の座席リストを共有しない
	ev.SeatNumbers[0] = "Z9"
	assert.Equal(t, "A1", b.SeatNumbers[0])
}
