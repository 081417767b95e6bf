package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL のエラーコード
const (
	codeUniqueViolation      = "23505"
	codeInvalidTextRepresent = "22P02" // UUID として解釈できない値
)

func pqCode(err error) string {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return string(pgErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

// isInvalidID は不正な形式のIDで検索したことを示す
// 存在しないIDと同じく NotFound として扱う
func isInvalidID(err error) bool {
	return pqCode(err) == codeInvalidTextRepresent
}
