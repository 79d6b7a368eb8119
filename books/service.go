// Package books is the catalog, review and reading list API built on the
// shared apiclient.Client.
package books

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-bookshelf-client/apiclient"
	"github.com/jrsteele09/go-bookshelf-client/endpoints"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/internal/utils"
	"github.com/pkg/errors"
)

const (
	defaultListLimit   = 10
	defaultPageLimit   = 20
	defaultReviewLimit = 10
)

type Service struct {
	client *apiclient.Client
}

func NewService(client *apiclient.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("[books.NewService] client is required")
	}
	return &Service{client: client}, nil
}

// Search queries the catalog. Zero fields are left out of the query.
func (s *Service) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", params.Query)
	q.Set("author", params.Author)
	q["genre"] = params.Genres
	q.Set("language", params.Language)
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	q.Set("sortBy", string(params.SortBy))
	q.Set("sortOrder", params.SortOrder)

	resp, err := apiclient.Get[SearchResult](ctx, s.client, endpoints.WithQuery(endpoints.BooksSearch, q))
	if err != nil {
		return nil, errors.Wrap(err, "[Search] failed")
	}
	return &resp.Data, nil
}

func (s *Service) ByID(ctx context.Context, id string) (*Book, error) {
	resp, err := apiclient.Get[Book](ctx, s.client, endpoints.BookByID(id))
	if err != nil {
		return nil, errors.Wrapf(err, "[ByID] book %s", id)
	}
	return &resp.Data, nil
}

// Popular returns up to limit books, 10 when limit is not positive.
func (s *Service) Popular(ctx context.Context, limit int) ([]Book, error) {
	return s.list(ctx, endpoints.BooksPopular, limit)
}

func (s *Service) NewReleases(ctx context.Context, limit int) ([]Book, error) {
	return s.list(ctx, endpoints.BooksNewReleases, limit)
}

// Recommended returns recommendations for userID, or for the signed in user
// when userID is empty.
// Recommended needs a session and fails with errors.ErrNotAuthenticated
// (internal/errors) before any request when there is none.
func (s *Service) Recommended(ctx context.Context, userID string, limit int) ([]Book, error) {
	if !s.client.HasSession(ctx) {
		return nil, apperrors.ErrNotAuthenticated
	}
	return s.list(ctx, endpoints.BookRecommendationsFor(userID), limit)
}

func (s *Service) Similar(ctx context.Context, bookID string, limit int) ([]Book, error) {
	return s.list(ctx, endpoints.BookSimilar(bookID), limit)
}

func (s *Service) ByGenre(ctx context.Context, genre string, page, limit int) (*SearchResult, error) {
	path := endpoints.WithPagination(endpoints.BooksByGenre(genre), page, utils.Coalesce(limit, defaultPageLimit))
	resp, err := apiclient.Get[SearchResult](ctx, s.client, path)
	if err != nil {
		return nil, errors.Wrapf(err, "[ByGenre] genre %s", genre)
	}
	return &resp.Data, nil
}

func (s *Service) ByAuthor(ctx context.Context, author string, page, limit int) (*SearchResult, error) {
	path := endpoints.WithPagination(endpoints.BooksByAuthor(author), page, utils.Coalesce(limit, defaultPageLimit))
	resp, err := apiclient.Get[SearchResult](ctx, s.client, path)
	if err != nil {
		return nil, errors.Wrapf(err, "[ByAuthor] author %s", author)
	}
	return &resp.Data, nil
}

// Featured returns the best rated book of each genre.
func (s *Service) Featured(ctx context.Context, limit int) ([]Book, error) {
	return s.list(ctx, endpoints.BooksFeatured, limit)
}

func (s *Service) list(ctx context.Context, path string, limit int) ([]Book, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	resp, err := apiclient.Get[BookList](ctx, s.client, endpoints.WithLimit(path, limit))
	if err != nil {
		return nil, errors.Wrapf(err, "[list] %s", path)
	}
	return resp.Data.Books, nil
}

func (s *Service) Reviews(ctx context.Context, bookID string, page, limit int) (*ReviewPage, error) {
	path := endpoints.WithPagination(endpoints.BookReviews(bookID), page, utils.Coalesce(limit, defaultReviewLimit))
	resp, err := apiclient.Get[ReviewPage](ctx, s.client, path)
	if err != nil {
		return nil, errors.Wrapf(err, "[Reviews] book %s", bookID)
	}
	return &resp.Data, nil
}

func (s *Service) CreateReview(ctx context.Context, req CreateReviewRequest) (*Review, error) {
	resp, err := apiclient.Post[Review](ctx, s.client, endpoints.Reviews, req)
	if err != nil {
		return nil, errors.Wrap(err, "[CreateReview] failed")
	}
	return &resp.Data, nil
}

func (s *Service) UpdateReview(ctx context.Context, reviewID string, req UpdateReviewRequest) (*Review, error) {
	resp, err := apiclient.Put[Review](ctx, s.client, endpoints.ReviewByID(reviewID), req)
	if err != nil {
		return nil, errors.Wrapf(err, "[UpdateReview] review %s", reviewID)
	}
	return &resp.Data, nil
}

func (s *Service) DeleteReview(ctx context.Context, reviewID string) error {
	_, err := s.client.Delete(ctx, endpoints.ReviewByID(reviewID))
	return errors.Wrapf(err, "[DeleteReview] review %s", reviewID)
}

// UserReview returns the signed in user's review of bookID, or nil when the
// user has not reviewed it. Other failures are returned.
func (s *Service) UserReview(ctx context.Context, bookID string) (*Review, error) {
	resp, err := apiclient.Get[Review](ctx, s.client, endpoints.BookUserReview(bookID))
	if apiclient.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[UserReview] book %s", bookID)
	}
	return &resp.Data, nil
}

func (s *Service) RateBook(ctx context.Context, bookID string, rating int) error {
	_, err := s.client.Post(ctx, endpoints.BookRating(bookID), map[string]int{"rating": rating})
	return errors.Wrapf(err, "[RateBook] book %s", bookID)
}

func (s *Service) MarkAsRead(ctx context.Context, bookID string) error {
	_, err := s.client.Post(ctx, endpoints.BookMarkRead(bookID), nil)
	return errors.Wrapf(err, "[MarkAsRead] book %s", bookID)
}

func (s *Service) Progress(ctx context.Context, bookID string) (*Progress, error) {
	resp, err := apiclient.Get[Progress](ctx, s.client, endpoints.BookProgress(bookID))
	if err != nil {
		return nil, errors.Wrapf(err, "[Progress] book %s", bookID)
	}
	return &resp.Data, nil
}

func (s *Service) UpdateProgress(ctx context.Context, bookID string, currentPage int) error {
	_, err := s.client.Put(ctx, endpoints.BookProgress(bookID), map[string]int{"currentPage": currentPage})
	return errors.Wrapf(err, "[UpdateProgress] book %s", bookID)
}

func (s *Service) ReadingLists(ctx context.Context) (*ReadingLists, error) {
	resp, err := apiclient.Get[ReadingLists](ctx, s.client, endpoints.UsersReadingLists)
	if err != nil {
		return nil, errors.Wrap(err, "[ReadingLists] failed")
	}
	return &resp.Data, nil
}

func (s *Service) Favorites(ctx context.Context) ([]Book, error) {
	resp, err := apiclient.Get[BookList](ctx, s.client, endpoints.UsersFavorites)
	if err != nil {
		return nil, errors.Wrap(err, "[Favorites] failed")
	}
	return resp.Data.Books, nil
}

func (s *Service) AddToReadingList(ctx context.Context, bookID string, list ReadingListType) error {
	if !list.Valid() {
		return errors.Errorf("[AddToReadingList] unknown reading list %q", list)
	}
	_, err := s.client.Post(ctx, endpoints.ReadingListByType(string(list)), map[string]string{"bookId": bookID})
	return errors.Wrapf(err, "[AddToReadingList] book %s", bookID)
}

func (s *Service) RemoveFromReadingList(ctx context.Context, bookID string, list ReadingListType) error {
	if !list.Valid() {
		return errors.Errorf("[RemoveFromReadingList] unknown reading list %q", list)
	}
	_, err := s.client.Delete(ctx, endpoints.RemoveFromReadingList(string(list), bookID))
	return errors.Wrapf(err, "[RemoveFromReadingList] book %s", bookID)
}

// UploadAvatar sends the image as the "file" part of a multipart form.
func (s *Service) UploadAvatar(ctx context.Context, filename string, image io.Reader) (string, error) {
	resp, err := s.client.Upload(ctx, endpoints.UploadAvatar, apiclient.FormFile{Name: filename, Content: image})
	if err != nil {
		return "", errors.Wrap(err, "[UploadAvatar] failed")
	}
	data, _ := resp.Data.(map[string]any)
	avatarURL, _ := data["avatarUrl"].(string)
	return avatarURL, nil
}

// ExportData downloads the signed in user's data export.
func (s *Service) ExportData(ctx context.Context) ([]byte, error) {
	resp, err := s.client.Download(ctx, endpoints.UsersExportData)
	if err != nil {
		return nil, errors.Wrap(err, "[ExportData] failed")
	}
	return resp.Data, nil
}
