package movie

import "errors"

// Movie ドメインのエラー定義
var (
	ErrMovieNotFound = errors.New("映画が見つかりません")
	ErrTitleRequired = errors.New("タイトルは必須です")
	ErrInvalidPrice  = errors.New("価格は1以上である必要があります")
)
