package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/api/router"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/application"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/config"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/worker"
)

const (
	shutdownTimeout      = 10 * time.Second
	seatCountRefreshRate = 20 * time.Second
)

// storage はストア実装ごとのリポジトリ一式
type storage struct {
	txManager   transaction.Manager
	movieRepo   movie.Repository
	seatRepo    seat.Repository
	bookingRepo booking.Repository
	pinger      handler.Pinger
	close       func() error
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, ".env の読み込みに失敗しました: %v\n", err)
	}
	cfg := config.Load()

	logger.Set(logger.NewLogger(cfg.App.Env))
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("サーバー起動エラー", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.Init()

	ipExtractor, err := middleware.ClientIPExtractor(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	store, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("ストアのクローズに失敗", zap.Error(err))
		}
	}()

	if cfg.Store.Seed {
		n, err := application.NewSeeder(store.txManager, store.movieRepo, store.seatRepo).Seed(ctx)
		if err != nil {
			return fmt.Errorf("初期データの投入に失敗しました: %w", err)
		}
		if n > 0 {
			logger.Info("初期データを投入しました", zap.Int("movies", n))
		}
	}

	opts := []application.Option{application.WithMetrics(m)}

	// 未設定のインターフェースに typed nil を入れないよう、有効なときだけ代入する
	var seatCache application.SeatCountCache
	var workers []interface{ Stop() }

	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("Redis接続エラー: %w", err)
		}
		defer client.Close()

		cache := redisinfra.NewSeatCache(client)
		seatCache = cache
		opts = append(opts,
			application.WithLockManager(redisinfra.NewLockManager(client)),
			application.WithSeatCache(cache),
		)
		logger.Info("Redis を有効化しました", zap.String("addr", cfg.Redis.Addr()))
	}

	var auditor *worker.BookingAuditor
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return fmt.Errorf("RabbitMQ接続エラー: %w", err)
		}
		defer publisher.Close()
		opts = append(opts, application.WithPublisher(publisher))

		auditor = worker.NewBookingAuditor(rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue), nil)
		go auditor.Start(ctx)
		workers = append(workers, auditor)
		logger.Info("予約イベント配信を有効化しました", zap.String("queue", cfg.RabbitMQ.Queue))
	}

	catalogService := application.NewCatalogService(store.movieRepo)
	seatService := application.NewSeatService(store.seatRepo, store.movieRepo, seatCache)
	reservationService := application.NewReservationService(
		store.txManager, store.bookingRepo, store.seatRepo, store.movieRepo, opts...,
	)

	if seatCache != nil {
		refresher := worker.NewSeatCountRefresher(seatService, seatCountRefreshRate)
		go refresher.Start(ctx)
		workers = append(workers, refresher)
	}

	// RATE_LIMIT_RPS が 0 以下なら予約APIを制限しない
	var limiter *middleware.IPRateLimiter
	if cfg.RateLimit.RPS > 0 {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx.Done())
	}

	e := router.New(router.Services{
		Catalog:  catalogService,
		Seats:    seatService,
		Bookings: reservationService,
		Store:    store.pinger,
	}, router.Options{
		Metrics:        m,
		Gatherer:       prometheus.DefaultGatherer,
		MetricsAuth:    cfg.Metrics,
		BookingLimiter: limiter,
		IPExtractor:    ipExtractor,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr), zap.String("store", cfg.Store.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	}

	logger.Info("サーバーをシャットダウンしています...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}

	shutdownFields := []zap.Field{}
	if auditor != nil {
		shutdownFields = append(shutdownFields, zap.Int64("audited_bookings", auditor.Processed()))
	}
	logger.Info("サーバーが正常にシャットダウンしました", shutdownFields...)
	return nil
}

// openStorage は STORE_DRIVER に応じてストアを組み立てる
func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		s := memory.NewStore()
		return &storage{
			txManager:   s,
			movieRepo:   memory.NewMovieRepository(s),
			seatRepo:    memory.NewSeatRepository(s),
			bookingRepo: memory.NewBookingRepository(s),
			pinger:      s,
			close:       func() error { return nil },
		}, nil

	case config.StoreDriverPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("DB接続エラー: %w", err)
		}
		if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("マイグレーションエラー: %w", err)
		}
		return &storage{
			txManager:   postgres.NewTxManager(db),
			movieRepo:   postgres.NewMovieRepository(db),
			seatRepo:    postgres.NewSeatRepository(db),
			bookingRepo: postgres.NewBookingRepository(db),
			pinger:      postgres.NewPinger(db),
			close:       db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("未知のストア種別です: %q", cfg.Store.Driver)
	}
}
