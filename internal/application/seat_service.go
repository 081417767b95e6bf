package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	redisinfra "github.com/sanosuguru/go-movie-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

const seatCacheTTL = 30 * time.Second

// SeatCountCache は映画ごとの空席数キャッシュ
type SeatCountCache interface {
	GetAvailableCount(ctx context.Context, movieID string) (int, error)
	SetAvailableCount(ctx context.Context, movieID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, movieID string) error
}

type SeatService struct {
	seatRepo  seat.Repository
	movieRepo movie.Repository
	cache     SeatCountCache
}

// NewSeatService は SeatService を作成する。cache は nil でもよい
func NewSeatService(sr seat.Repository, mr movie.Repository, cache SeatCountCache) *SeatService {
	return &SeatService{seatRepo: sr, movieRepo: mr, cache: cache}
}

// ListSeats は映画の座席表を座席番号順に返す。未知の映画は空
func (s *SeatService) ListSeats(ctx context.Context, movieID string) ([]*seat.Seat, error) {
	seats, err := s.seatRepo.GetByMovieID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("座席表の取得に失敗しました: %w", err)
	}
	return seats, nil
}

// CountAvailableSeats は映画の空席数を返す。キャッシュがあれば優先する
func (s *SeatService) CountAvailableSeats(ctx context.Context, movieID string) (int, error) {
	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, movieID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("movie_id", movieID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	count, err := s.seatRepo.CountAvailableByMovieID(ctx, movieID)
	if err != nil {
		return 0, fmt.Errorf("空席数の取得に失敗しました: %w", err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetAvailableCount(ctx, movieID, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}
	return count, nil
}

// RefreshAvailableCounts は全映画の空席数をストアから読み直してキャッシュに載せる
// 更新した映画の数を返す
func (s *SeatService) RefreshAvailableCounts(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	movies, err := s.movieRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("映画一覧の取得に失敗しました: %w", err)
	}

	refreshed := 0
	for _, m := range movies {
		count, err := s.seatRepo.CountAvailableByMovieID(ctx, m.ID)
		if err != nil {
			return refreshed, fmt.Errorf("空席数の取得に失敗しました: %w", err)
		}
		if err := s.cache.SetAvailableCount(ctx, m.ID, count, seatCacheTTL); err != nil {
			return refreshed, err
		}
		refreshed++
	}
	return refreshed, nil
}
