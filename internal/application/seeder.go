package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/seat"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-movie-ticket-booking/internal/pkg/logger"
)

// DefaultCatalog は初回起動時に投入する上映作品
func DefaultCatalog() []*movie.Movie {
	return []*movie.Movie{
		movie.NewMovie("The Dark Knight", 1079,
			"When the menace known as the Joker wreaks havoc on Gotham", "2h 32min",
			"/images/The_Dark_Knight_poster_7a6cd56a.png"),
		movie.NewMovie("Inception", 1244,
			"A thief who steals corporate secrets through dream-sharing technology", "2h 28min",
			"/images/Inception_poster_d0098617.png"),
		movie.NewMovie("Interstellar", 1161,
			"A team of explorers travel through a wormhole in space", "2h 49min",
			"/images/Interstellar_poster_d75fd98b.png"),
		movie.NewMovie("The Matrix", 995,
			"A computer hacker learns about the true nature of reality", "2h 16min",
			"/images/The_Matrix_poster_634ab313.png"),
		movie.NewMovie("Avengers: Endgame", 1327,
			"The Avengers assemble once more to reverse Thanos' actions", "3h 1min",
			"/images/Avengers_Endgame_poster_1113e999.png"),
		movie.NewMovie("Parasite", 1079,
			"Greed and class discrimination threaten a new family bond", "2h 12min",
			"/images/Parasite_poster_b4f60cf4.png"),
	}
}

// Seeder は空のストアにカタログと座席表を投入する
type Seeder struct {
	txManager transaction.Manager
	movieRepo movie.Repository
	seatRepo  seat.Repository
	catalog   func() []*movie.Movie
}

func NewSeeder(txm transaction.Manager, mr movie.Repository, sr seat.Repository) *Seeder {
	return &Seeder{txManager: txm, movieRepo: mr, seatRepo: sr, catalog: DefaultCatalog}
}

// Seed はカタログが空の場合のみ映画と座席（A1〜F8）を作成する
// 作成した映画の数を返す。既にデータがあれば何もせず 0 を返す
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	count, err := s.movieRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("映画数の取得に失敗しました: %w", err)
	}
	if count > 0 {
		logger.Debug("カタログは投入済みです", zap.Int("movies", count))
		return 0, nil
	}

	// 他プロセスの投入と重ならないよう、ロックを取ってから再確認する
	movies := s.catalog()
	seeded := false
	err = transaction.Run(ctx, s.txManager, func(tx transaction.Tx) error {
		n, err := s.movieRepo.CountForUpdate(ctx, tx)
		if err != nil {
			return fmt.Errorf("映画数の取得に失敗しました: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, m := range movies {
			if err := m.Validate(); err != nil {
				return fmt.Errorf("映画 %q が不正です: %w", m.Title, err)
			}
			if err := s.movieRepo.Create(ctx, tx, m); err != nil {
				return err
			}
			if err := s.seatRepo.CreateBulk(ctx, tx, seat.NewSeatMap(m.ID)); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !seeded {
		logger.Debug("カタログは他のプロセスが投入済みです")
		return 0, nil
	}

	logger.Info("カタログを投入しました", zap.Int("movies", len(movies)),
		zap.Int("seats_per_movie", len(seat.DefaultRows)*seat.DefaultSeatsPerRow))
	return len(movies), nil
}
