package booking

import "errors"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound     = errors.New("予約が見つかりません")
	ErrMovieIDRequired     = errors.New("映画IDは必須です")
	ErrSeatNumbersRequired = errors.New("座席を1つ以上選択してください")
	ErrInvalidSeatNumber   = errors.New("座席番号が不正です")
	ErrDuplicateSeatNumber = errors.New("同じ座席が重複して指定されています")
	ErrInvalidTotalPrice   = errors.New("合計金額は1以上である必要があります")
)

// IsInvalidRequest はリクエスト内容の不備によるエラーかを返す
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrMovieIDRequired) ||
		errors.Is(err, ErrSeatNumbersRequired) ||
		errors.Is(err, ErrInvalidSeatNumber) ||
		errors.Is(err, ErrDuplicateSeatNumber)
}
