package booking

import "time"

// CreatedEventType は予約確定イベントの種別（キュー名の既定値でもある）
const CreatedEventType = "booking.created"

// CreatedEvent は予約がコミットされた後に配信されるイベント
type CreatedEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	MovieID       string    `json:"movie_id"`
	MovieTitle    string    `json:"movie_title"`
	SeatNumbers   []string  `json:"seat_numbers"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	TotalPrice    int       `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewCreatedEvent は確定済み予約からイベントを作成する
func NewCreatedEvent(b *Booking, movieTitle string) CreatedEvent {
	seats := make([]string, len(b.SeatNumbers))
	copy(seats, b.SeatNumbers)
	return CreatedEvent{
		Type:          CreatedEventType,
		BookingID:     b.ID,
		MovieID:       b.MovieID,
		MovieTitle:    movieTitle,
		SeatNumbers:   seats,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		TotalPrice:    b.TotalPrice,
		CreatedAt:     b.CreatedAt.UTC(),
	}
}
