package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
)

type MovieHandler struct {
	service CatalogServiceInterface
}

func NewMovieHandler(s CatalogServiceInterface) *MovieHandler {
	return &MovieHandler{service: s}
}

type MovieResponse struct {
	ID          string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title       string `json:"title" example:"Inception"`
	Image       string `json:"image" example:"/images/inception.jpg"`
	Price       int    `json:"price" example:"1244"`
	Description string `json:"description"`
	Duration    string `json:"duration" example:"2h 28m"`
}

func toMovieResponse(m *movie.Movie) MovieResponse {
	return MovieResponse{
		ID: m.ID, Title: m.Title, Image: m.Image, Price: m.Price,
		Description: m.Description, Duration: m.Duration,
	}
}

// List godoc
// @Summary 映画一覧を取得
// @Description 登録順に全映画を返します
// @Tags movies
// @Produce json
// @Success 200 {array} MovieResponse
// @Router /movies [get]
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.service.ListMovies(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]MovieResponse, len(movies))
	for i, m := range movies {
		resp[i] = toMovieResponse(m)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary 映画を取得
// @Tags movies
// @Produce json
// @Param id path string true "映画ID"
// @Success 200 {object} MovieResponse
// @Failure 404 {object} map[string]string
// @Router /movies/{id} [get]
func (h *MovieHandler) GetByID(c echo.Context) error {
	m, err := h.service.GetMovie(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toMovieResponse(m))
}
