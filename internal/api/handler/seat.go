package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type SeatResponse struct {
	ID         string `json:"id"`
	MovieID    string `json:"movie_id"`
	SeatNumber string `json:"seat_number" example:"A1"`
	IsBooked   bool   `json:"is_booked"`
}

type AvailableCountResponse struct {
	Count int `json:"count"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	return SeatResponse{ID: s.ID, MovieID: s.MovieID, SeatNumber: s.SeatNumber, IsBooked: s.IsBooked}
}

// GetByMovie godoc
// @Summary 座席表を取得
// @Description 座席番号順に返します。未知の映画は空配列
// @Tags seats
// @Produce json
// @Param id path string true "映画ID"
// @Success 200 {array} SeatResponse
// @Router /movies/{id}/seats [get]
func (h *SeatHandler) GetByMovie(c echo.Context) error {
	seats, err := h.service.ListSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountAvailable godoc
// @Summary 空席数を取得
// @Tags seats
// @Produce json
// @Param id path string true "映画ID"
// @Success 200 {object} AvailableCountResponse
// @Router /movies/{id}/seats/available/count [get]
func (h *SeatHandler) CountAvailable(c echo.Context) error {
	count, err := h.service.CountAvailableSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, AvailableCountResponse{Count: count})
}
