package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-movie-ticket-booking/internal/domain/movie"
)

func TestCatalogService(t *testing.T) {
	ctx := context.Background()

	t.Run("登録順に一覧を返す", func(t *testing.T) {
		env := newSeededEnv(t)

		movies, err := env.catalog.ListMovies(ctx)
		require.NoError(t, err)
		require.Len(t, movies, 6)

		titles := make([]string, len(movies))
		for i, m := range movies {
			titles[i] = m.Title
		}
		assert.Equal(t, []string{
			"The Dark Knight", "Inception", "Interstellar",
			"The Matrix", "Avengers: Endgame", "Parasite",
		}, titles)
	})

	t.Run("IDで取得できる", func(t *testing.T) {
		env := newSeededEnv(t)
		want := env.movieByTitle(t, "Interstellar")

		got, err := env.catalog.GetMovie(ctx, want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1161, got.Price)
		assert.Equal(t, "2h 49min", got.Duration)
	})

	t.Run("存在しない映画は NotFound", func(t *testing.T) {
		env := newSeededEnv(t)
		_, err := env.catalog.GetMovie(ctx, "missing")
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("一覧取得の失敗を包んで返す", func(t *testing.T) {
		repo := new(MockMovieRepository)
		repo.On("List", ctx).Return(nil, errors.New("db down"))

		_, err := NewCatalogService(repo).ListMovies(ctx)
		assert.ErrorContains(t, err, "映画一覧の取得に失敗しました")
	})
}
