package catalog_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/jrsteele09/go-bookshelf-client/catalog"
	catalogfakerepo "github.com/jrsteele09/go-bookshelf-client/catalog/repofake"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func ids(list []*books.Book) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	all := catalog.SeedBooks(time.Now())

	t.Run("query matches title and author", func(t *testing.T) {
		require.Equal(t, []string{"b-001"}, ids(catalog.Filter(all, books.SearchParams{Query: "dune"})))
		require.Equal(t, []string{"b-009", "b-010"}, ids(catalog.Filter(all, books.SearchParams{Query: "ishiguro"})))
	})

	t.Run("genre and sort", func(t *testing.T) {
		got := catalog.Filter(all, books.SearchParams{Genres: []string{"Fantasy"}, SortBy: books.SortByPublished, SortOrder: "desc"})
		require.Equal(t, []string{"b-006", "b-007", "b-004"}, ids(got))
	})

	t.Run("no match", func(t *testing.T) {
		require.Empty(t, catalog.Filter(all, books.SearchParams{Query: "zzz"}))
	})
}

func TestPopularAndNewReleases(t *testing.T) {
	all := catalog.SeedBooks(time.Now())
	require.Equal(t, []string{"b-005", "b-004", "b-001"}, ids(catalog.Popular(all, 3)))
	require.Len(t, catalog.NewReleases(all, 2), 2)
	require.Len(t, catalog.Popular(all, 0), len(all))
}

func TestRecommend(t *testing.T) {
	all := catalog.SeedBooks(time.Now())
	got := catalog.Recommend(all, []string{"science fiction"}, []string{"b-005"}, 2)
	require.Equal(t, []string{"b-001", "b-002"}, ids(got))
}

func TestFeatured(t *testing.T) {
	all := catalog.SeedBooks(time.Now())
	require.Equal(t, []string{"b-005", "b-004", "b-003", "b-008", "b-010"}, ids(catalog.Featured(all, 0)))
	require.Equal(t, []string{"b-005", "b-004"}, ids(catalog.Featured(all, 2)))
}

func TestPage(t *testing.T) {
	list := []int{1, 2, 3, 4, 5}
	page, total := catalog.Page(list, 2, 2)
	require.Equal(t, []int{3, 4}, page)
	require.Equal(t, 3, total)

	page, _ = catalog.Page(list, 4, 2)
	require.Empty(t, page)
}

func TestFakeCatalogRepo_Reviews(t *testing.T) {
	repo := catalogfakerepo.NewFakeCatalogRepo()
	now := time.Now()
	for _, b := range catalog.SeedBooks(now) {
		require.NoError(t, repo.Upsert(b))
	}

	require.ErrorIs(t, repo.UpsertReview(&books.Review{BookID: "missing"}), apperrors.ErrNotFound)

	older := &books.Review{BookID: "b-001", UserID: "u1", Rating: 4, CreatedAt: now.Add(-time.Hour)}
	newer := &books.Review{BookID: "b-001", UserID: "u2", Rating: 2, CreatedAt: now}
	require.NoError(t, repo.UpsertReview(older))
	require.NoError(t, repo.UpsertReview(newer))

	reviews, err := repo.Reviews("b-001")
	require.NoError(t, err)
	require.Equal(t, []string{newer.ID, older.ID}, []string{reviews[0].ID, reviews[1].ID})
	require.InDelta(t, 3.0, catalog.AverageRating(reviews), 0.001)

	got, err := repo.UserReview("b-001", "u1")
	require.NoError(t, err)
	require.Equal(t, older.ID, got.ID)

	_, err = repo.UserReview("b-002", "u1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.DeleteReview(older.ID))
	require.ErrorIs(t, repo.DeleteReview(older.ID), apperrors.ErrNotFound)
}
