package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
)

// toHTTPError はアプリケーション層のエラーをHTTPステータスに対応付ける
func toHTTPError(err error) *echo.HTTPError {
	var unavailable *seat.UnavailableError
	switch {
	case errors.As(err, &unavailable):
		return echo.NewHTTPError(http.StatusConflict, unavailable.Error())
	case errors.Is(err, seat.ErrSeatUnavailable):
		return echo.NewHTTPError(http.StatusConflict, seat.ErrSeatUnavailable.Error())
	case booking.IsInvalidRequest(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, movie.ErrMovieNotFound):
		return echo.NewHTTPError(http.StatusNotFound, movie.ErrMovieNotFound.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, booking.ErrBookingNotFound.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
	}
}
