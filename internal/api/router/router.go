// Package router は HTTP サーバー（echo）のルーティングを組み立てる
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/api"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/config"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/metrics"
)

// Services はハンドラーが使うサービス群
// Store が nil ならヘルスチェックはストアを確認しない
type Services struct {
	Catalog  handler.CatalogServiceInterface
	Seats    handler.SeatServiceInterface
	Bookings handler.BookingServiceInterface
	Store    handler.Pinger
}

// Options はルーターの付帯設定
type Options struct {
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	MetricsAuth    config.MetricsConfig
	BookingLimiter *middleware.IPRateLimiter
	// IPExtractor が nil なら接続元アドレスをクライアントIPとする
	IPExtractor    echo.IPExtractor
}

// New はミドルウェアとルートを登録した echo を返す
func New(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Validator = api.NewValidator()
	e.IPExtractor = opts.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	middleware.SetupMiddleware(e, opts.Metrics)
	Register(e, svc, opts)
	return e
}

// Register はルートだけを登録する
func Register(e *echo.Echo, svc Services, opts Options) {
	movieHandler := handler.NewMovieHandler(svc.Catalog)
	seatHandler := handler.NewSeatHandler(svc.Seats)
	bookingHandler := handler.NewBookingHandler(svc.Bookings)
	healthHandler := handler.NewHealthHandler(svc.Store)

	e.GET("/health", healthHandler.Check)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})),
		middleware.MetricsBasicAuth(opts.MetricsAuth))

	g := e.Group("/api")

	g.GET("/movies", movieHandler.List)
	g.GET("/movies/:id", movieHandler.GetByID)
	g.GET("/movies/:id/seats", seatHandler.GetByMovie)
	g.GET("/movies/:id/seats/available/count", seatHandler.CountAvailable)
	g.GET("/movies/:id/bookings", bookingHandler.ListByMovie)

	var bookingMiddleware []echo.MiddlewareFunc
	if opts.BookingLimiter != nil {
		bookingMiddleware = append(bookingMiddleware, opts.BookingLimiter.Middleware())
	}
	g.POST("/bookings", bookingHandler.Create, bookingMiddleware...)
	g.GET("/bookings/:id", bookingHandler.GetByID)
}
