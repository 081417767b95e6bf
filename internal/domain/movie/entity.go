package movie

import "time"

// Movie は上映作品（カタログの1件）を表す
type Movie struct {
	ID          string
	Title       string
	Price       int // 1席あたりの価格（最小通貨単位）
	Description string
	Duration    string
	Image       string
	CreatedAt   time.Time
}

// NewMovie は新しい映画を作成する
func NewMovie(title string, price int, description, duration, image string) *Movie {
	return &Movie{
		Title:       title,
		Price:       price,
		Description: description,
		Duration:    duration,
		Image:       image,
		CreatedAt:   time.Now(),
	}
}

// Validate は映画の検証を行う
func (m *Movie) Validate() error {
	if m.Title == "" {
		return ErrTitleRequired
	}
	if m.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// TotalPrice は指定席数分の合計金額を返す
func (m *Movie) TotalPrice(seatCount int) int {
	return m.Price * seatCount
}
