package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/router"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/application"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/metrics"
)

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo     *echo.Echo
	Registry *prometheus.Registry
}

// newTestServer はメモリストアに標準カタログを投入したサーバーを作成する
func newTestServer(t *testing.T) *TestServer {
	t.Helper()

	store := memory.NewStore()
	movieRepo := memory.NewMovieRepository(store)
	seatRepo := memory.NewSeatRepository(store)
	bookingRepo := memory.NewBookingRepository(store)

	_, err := application.NewSeeder(store, movieRepo, seatRepo).Seed(context.Background())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	e := router.New(router.Services{
		Catalog:  application.NewCatalogService(movieRepo),
		Seats:    application.NewSeatService(seatRepo, movieRepo, nil),
		Bookings: application.NewReservationService(store, bookingRepo, seatRepo, movieRepo, application.WithMetrics(m)),
		Store:    store,
	}, router.Options{Metrics: m, Gatherer: reg})

	return &TestServer{Echo: e, Registry: reg}
}

// do はリクエストを送りレスポンスを返す。body が nil でなければ JSON で送る
func (s *TestServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// movieByTitle はカタログAPIからタイトルで映画を探す
func (s *TestServer) movieByTitle(t *testing.T, title string) handler.MovieResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/movies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, m := range decode[[]handler.MovieResponse](t, rec) {
		if m.Title == title {
			return m
		}
	}
	t.Fatalf("映画 %q が見つかりません", title)
	return handler.MovieResponse{}
}

// seatMap は座席番号 -> 予約済みか を返す
func (s *TestServer) seatMap(t *testing.T, movieID string) map[string]bool {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/movies/"+movieID+"/seats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	seats := make(map[string]bool)
	for _, st := range decode[[]handler.SeatResponse](t, rec) {
		seats[st.SeatNumber] = st.IsBooked
	}
	return seats
}

type bookingRequest struct {
	MovieID       string   `json:"movie_id"`
	Seats         []string `json:"seats,omitempty"`
	SeatNumbers   []string `json:"seat_numbers,omitempty"`
	CustomerName  string   `json:"customer_name,omitempty"`
	CustomerEmail string   `json:"customer_email,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
