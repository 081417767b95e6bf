package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/application"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
)

const bookingSuccessMessage = "Booking successful!"

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

// CreateBookingRequest は予約リクエスト。座席は seats と seat_numbers のどちらでも受け付ける
type CreateBookingRequest struct {
	MovieID       string   `json:"movie_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Seats         []string `json:"seats" example:"A1,A2"`
	SeatNumbers   []string `json:"seat_numbers"`
	CustomerName  string   `json:"customer_name" validate:"max=255" example:"Jane"`
	CustomerEmail string   `json:"customer_email" validate:"omitempty,max=255,email" example:"jane@example.com"`
}

func (r *CreateBookingRequest) seatNumbers() []string {
	if len(r.SeatNumbers) > 0 {
		return r.SeatNumbers
	}
	return r.Seats
}

type CreateBookingResponse struct {
	BookingID   string   `json:"booking_id"`
	Movie       string   `json:"movie" example:"Inception"`
	MovieTitle  string   `json:"movie_title" example:"Inception"`
	Seats       []string `json:"seats"`
	SeatNumbers []string `json:"seat_numbers"`
	TotalPrice  int      `json:"total_price" example:"2488"`
	Message     string   `json:"message" example:"Booking successful!"`
}

type BookingResponse struct {
	ID            string    `json:"id"`
	MovieID       string    `json:"movie_id"`
	Seats         []string  `json:"seats"`
	SeatNumbers   []string  `json:"seat_numbers"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	TotalPrice    int       `json:"total_price"`
	CreatedAt     time.Time `json:"created_at"`
	BookingDate   time.Time `json:"booking_date"`
	MovieTitle    string    `json:"movie_title"`
	MovieImage    string    `json:"movie_image"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID: b.ID, MovieID: b.MovieID,
		Seats: b.SeatNumbers, SeatNumbers: b.SeatNumbers,
		CustomerName: b.CustomerName, CustomerEmail: b.CustomerEmail,
		TotalPrice: b.TotalPrice, CreatedAt: b.CreatedAt, BookingDate: b.CreatedAt,
		MovieTitle: b.MovieTitle, MovieImage: b.MovieImage,
	}
}

// Create godoc
// @Summary 座席を予約
// @Description 指定した座席をまとめて予約します。1席でも予約できなければ何も変更しません
// @Tags bookings
// @Accept json
// @Produce json
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} CreateBookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "映画が存在しない"
// @Failure 409 {object} map[string]string "座席が予約済み"
// @Failure 429 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	b, err := h.service.Reserve(c.Request().Context(), application.ReserveInput{
		MovieID:       req.MovieID,
		SeatNumbers:   req.seatNumbers(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, CreateBookingResponse{
		BookingID:   b.ID,
		Movie:       b.MovieTitle,
		MovieTitle:  b.MovieTitle,
		Seats:       b.SeatNumbers,
		SeatNumbers: b.SeatNumbers,
		TotalPrice:  b.TotalPrice,
		Message:     bookingSuccessMessage,
	})
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} map[string]string
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListByMovie godoc
// @Summary 映画ごとの予約一覧
// @Description 新しい順に返します
// @Tags bookings
// @Produce json
// @Param id path string true "映画ID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /movies/{id}/bookings [get]
func (h *BookingHandler) ListByMovie(c echo.Context) error {
	var limit, offset int
	if err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit と offset は整数で指定してください").SetInternal(err)
	}
	bookings, err := h.service.ListBookingsByMovie(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}
