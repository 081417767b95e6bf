package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
)

// CatalogService は上映作品カタログの参照を提供する
type CatalogService struct {
	movieRepo movie.Repository
}

func NewCatalogService(movieRepo movie.Repository) *CatalogService {
	return &CatalogService{movieRepo: movieRepo}
}

// ListMovies は映画一覧を登録順に返す
func (s *CatalogService) ListMovies(ctx context.Context) ([]*movie.Movie, error) {
	movies, err := s.movieRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("映画一覧の取得に失敗しました: %w", err)
	}
	return movies, nil
}

// GetMovie は映画を1件返す。存在しなければ movie.ErrMovieNotFound
func (s *CatalogService) GetMovie(ctx context.Context, id string) (*movie.Movie, error) {
	return s.movieRepo.GetByID(ctx, id)
}
