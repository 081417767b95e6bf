package seat

import (
	"errors"
	"fmt"
)

// Seat ドメインのエラー定義
var (
	ErrSeatUnavailable    = errors.New("座席は予約できません")
	ErrMovieIDRequired    = errors.New("映画IDは必須です")
	ErrSeatNumberRequired = errors.New("座席番号は必須です")
)

// UnavailableError は予約できなかった座席番号を保持する
// errors.Is(err, ErrSeatUnavailable) で判定できる
type UnavailableError struct {
	SeatNumber string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("座席 %s は予約できません", e.SeatNumber)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrSeatUnavailable
}
