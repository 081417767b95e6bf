package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/lock"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/metrics"
)

const (
	seatLockTTL        = 10 * time.Second
	seatLockRetries    = 3
	seatLockRetryDelay = 50 * time.Millisecond

	defaultBookingListLimit = 20
	maxBookingListLimit     = 100
)

// BookingEventPublisher は予約確定イベントの送信先
type BookingEventPublisher interface {
	Publish(ctx context.Context, ev booking.CreatedEvent) error
}

// ReservationService は座席予約（検証 → 一括確定）と予約台帳の参照を担う
type ReservationService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	movieRepo   movie.Repository

	lockManager lock.Manager
	cache       SeatCountCache
	publisher   BookingEventPublisher
	metrics     *metrics.Metrics
}

// Option は ReservationService の任意の依存を設定する
type Option func(*ReservationService)

// WithLockManager は同一座席への同時リクエストを事前に抑止する分散ロックを設定する
func WithLockManager(lm lock.Manager) Option {
	return func(s *ReservationService) { s.lockManager = lm }
}

// WithSeatCache は予約確定後に無効化する空席数キャッシュを設定する
func WithSeatCache(c SeatCountCache) Option {
	return func(s *ReservationService) { s.cache = c }
}

// WithPublisher は予約確定イベントの送信先を設定する
func WithPublisher(p BookingEventPublisher) Option {
	return func(s *ReservationService) { s.publisher = p }
}

// WithMetrics は予約結果を記録するメトリクスを設定する
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReservationService) { s.metrics = m }
}

func NewReservationService(txm transaction.Manager, br booking.Repository, sr seat.Repository, mr movie.Repository, opts ...Option) *ReservationService {
	s := &ReservationService{txManager: txm, bookingRepo: br, seatRepo: sr, movieRepo: mr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ReserveInput struct {
	MovieID       string
	SeatNumbers   []string
	CustomerName  string
	CustomerEmail string
}

// Reserve は指定座席をまとめて予約する
//
// 検証順序: 映画の存在 → 座席リストの形式 → 各座席が存在し空席であること。
// 座席の確認・予約済みへの更新・台帳への追記は1トランザクションで行い、
// 1席でも予約できなければ何も変更しない。金額は映画の単価から計算する。
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*booking.Booking, error) {
	log := logger.FromContext(ctx).With(
		zap.String("movie_id", input.MovieID),
		zap.Strings("seat_numbers", input.SeatNumbers),
	)

	m, err := s.movieRepo.GetByID(ctx, input.MovieID)
	if err != nil {
		s.recordOutcome(err, 0)
		if errors.Is(err, movie.ErrMovieNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("映画取得に失敗: %w", err)
	}

	if err := booking.ValidateSeatNumbers(input.SeatNumbers); err != nil {
		s.recordOutcome(err, 0)
		return nil, err
	}

	release := s.acquireSeatLock(ctx, input.MovieID, input.SeatNumbers)
	defer release()

	b := booking.NewBooking(m.ID, input.SeatNumbers, input.CustomerName, input.CustomerEmail, m.Price)
	if err := b.Validate(); err != nil {
		s.recordOutcome(err, 0)
		return nil, err
	}

	if err := s.commit(ctx, b); err != nil {
		s.recordOutcome(err, 0)
		if errors.Is(err, seat.ErrSeatUnavailable) {
			log.Info("座席が予約できませんでした", zap.Error(err))
		} else {
			log.Error("予約の確定に失敗", zap.Error(err))
		}
		return nil, err
	}

	s.recordOutcome(nil, len(b.SeatNumbers))
	log.Info("予約を確定しました", zap.String("booking_id", b.ID), zap.Int("total_price", b.TotalPrice))

	s.afterCommit(ctx, b, m)

	b.MovieTitle = m.Title
	b.MovieImage = m.Image
	return b, nil
}

// commit は座席のロック・空席確認・台帳追記・座席更新を1トランザクションで行う
func (s *ReservationService) commit(ctx context.Context, b *booking.Booking) error {
	return transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		locked, err := s.seatRepo.LockByNumbers(ctx, tx, b.MovieID, b.SeatNumbers)
		if err != nil {
			return fmt.Errorf("座席取得に失敗: %w", err)
		}
		byNumber := make(map[string]*seat.Seat, len(locked))
		for _, se := range locked {
			byNumber[se.SeatNumber] = se
		}
		// リクエスト順で最初に予約できない座席を返す
		for _, n := range b.SeatNumbers {
			se, ok := byNumber[n]
			if !ok || !se.IsAvailable() {
				return &seat.UnavailableError{SeatNumber: n}
			}
		}

		if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
			return fmt.Errorf("予約作成に失敗: %w", err)
		}
		if err := s.seatRepo.MarkBooked(ctx, tx, b.MovieID, b.SeatNumbers, b.ID); err != nil {
			return fmt.Errorf("座席更新に失敗: %w", err)
		}
		return nil
	})
}

// afterCommit はコミット後の副作用を実行する。失敗しても予約結果は変わらない
func (s *ReservationService) afterCommit(ctx context.Context, b *booking.Booking, m *movie.Movie) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, b.MovieID); err != nil {
			log.Warn("キャッシュ無効化エラー", zap.String("movie_id", b.MovieID), zap.Error(err))
		}
	}

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, booking.NewCreatedEvent(b, m.Title))
		s.metrics.RecordPublish(err == nil)
		if err != nil {
			log.Warn("予約イベントの送信に失敗", zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}

// acquireSeatLock は映画＋座席集合の分散ロックを取得し、解放関数を返す
// 取得できなくても予約は続行する（整合性はストアのトランザクションで担保する）
func (s *ReservationService) acquireSeatLock(ctx context.Context, movieID string, seatNumbers []string) func() {
	if s.lockManager == nil {
		return func() {}
	}

	start := time.Now()
	l, err := s.lockManager.AcquireLockWithRetry(ctx, buildSeatLockKey(movieID, seatNumbers), seatLockTTL, seatLockRetries, seatLockRetryDelay)
	s.metrics.ObserveLock("acquire", err == nil, time.Since(start).Seconds())
	if err != nil {
		logger.FromContext(ctx).Warn("分散ロックを取得できませんでした。ストアのロックで続行します",
			zap.String("movie_id", movieID), zap.Error(err))
		return func() {}
	}

	return func() {
		start := time.Now()
		// リクエストがキャンセルされていても解放する
		err := l.Release(context.WithoutCancel(ctx))
		s.metrics.ObserveLock("release", err == nil, time.Since(start).Seconds())
		if err != nil {
			logger.FromContext(ctx).Warn("分散ロックの解放に失敗", zap.Error(err))
		}
	}
}

// buildSeatLockKey は座席番号をソートして映画ごとのロックキーを作る
func buildSeatLockKey(movieID string, seatNumbers []string) string {
	sorted := make([]string, len(seatNumbers))
	copy(sorted, seatNumbers)
	sort.Strings(sorted)
	return "movie:" + movieID + ":seats:" + strings.Join(sorted, ",")
}

func (s *ReservationService) recordOutcome(err error, seats int) {
	s.metrics.RecordReservation(reservationStatus(err), seats)
}

// reservationStatus はエラーをメトリクスのラベル値に分類する
func reservationStatus(err error) string {
	switch {
	case err == nil:
		return metrics.ReservationSuccess
	case errors.Is(err, movie.ErrMovieNotFound):
		return metrics.ReservationNotFound
	case booking.IsInvalidRequest(err):
		return metrics.ReservationInvalid
	case errors.Is(err, seat.ErrSeatUnavailable):
		return metrics.ReservationSeatUnavailable
	default:
		return metrics.ReservationError
	}
}

// GetBooking は予約を映画タイトル付きで返す。存在しなければ booking.ErrBookingNotFound
func (s *ReservationService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ListBookingsByMovie は映画の予約を新しい順に返す
func (s *ReservationService) ListBookingsByMovie(ctx context.Context, movieID string, limit, offset int) ([]*booking.Booking, error) {
	if _, err := s.movieRepo.GetByID(ctx, movieID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultBookingListLimit
	}
	if limit > maxBookingListLimit {
		limit = maxBookingListLimit
	}
	if offset < 0 {
		offset = 0
	}
	bookings, err := s.bookingRepo.ListByMovieID(ctx, movieID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("予約一覧の取得に失敗しました: %w", err)
	}
	return bookings, nil
}
