package server

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/jrsteele09/go-bookshelf-client/catalog"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/users"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit   = 10
	defaultPageLimit   = 20
	defaultReviewLimit = 10
)

func (s *Server) allBooks(w http.ResponseWriter) ([]*books.Book, bool) {
	all, err := s.repos.Catalog.List()
	if err != nil {
		log.Err(err).Msg("failed to list catalog")
		writeError(w, http.StatusInternalServerError, "Failed to load catalog")
		return nil, false
	}
	return all, true
}

// bookFromPath loads the book named by the {id} route variable, writing 404 when absent.
func (s *Server) bookFromPath(w http.ResponseWriter, r *http.Request) (*books.Book, bool) {
	book, err := s.repos.Catalog.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Book not found")
		return nil, false
	}
	return book, true
}

func (s *Server) SearchBooksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := books.SearchParams{
			Query:     strings.TrimSpace(q.Get("q")),
			Author:    strings.TrimSpace(q.Get("author")),
			Genres:    q["genre"],
			Language:  q.Get("language"),
			Page:      queryInt(r, "page", 1),
			Limit:     queryInt(r, "limit", defaultPageLimit),
			SortBy:    books.SortField(q.Get("sortBy")),
			SortOrder: q.Get("sortOrder"),
		}
		all, ok := s.allBooks(w)
		if !ok {
			return
		}
		matches := catalog.Filter(all, params)
		page, totalPages := catalog.Page(matches, params.Page, params.Limit)
		writeJSON(w, http.StatusOK, books.SearchResult{
			Books:      catalog.Values(page),
			Total:      len(matches),
			Page:       params.Page,
			Limit:      params.Limit,
			TotalPages: totalPages,
		})
	}
}

func (s *Server) PopularBooksHandler() http.HandlerFunc {
	return s.bookListHandler(catalog.Popular)
}

func (s *Server) NewReleasesHandler() http.HandlerFunc {
	return s.bookListHandler(catalog.NewReleases)
}

func (s *Server) bookListHandler(rank func([]*books.Book, int) []*books.Book) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, ok := s.allBooks(w)
		if !ok {
			return
		}
		list := rank(all, queryInt(r, "limit", defaultListLimit))
		writeJSON(w, http.StatusOK, books.BookList{Books: catalog.Values(list)})
	}
}

// RecommendationsHandler ranks books in the caller's preferred genres,
// leaving out what they have completed. A {userId} other than the caller's
// own is only allowed for admins.
func (s *Server) RecommendationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		target := user
		if id := mux.Vars(r)["userId"]; id != "" && id != user.ID {
			if !user.IsAdmin() {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			other, err := s.repos.Users.GetByID(id)
			if err != nil {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			target = other
		}

		all, ok := s.allBooks(w)
		if !ok {
			return
		}
		list := catalog.Recommend(all, target.Preferences.Genres, target.ReadingLists.Completed, queryInt(r, "limit", defaultListLimit))
		writeJSON(w, http.StatusOK, books.BookList{Books: catalog.Values(list)})
	}
}

func (s *Server) FeaturedBooksHandler() http.HandlerFunc {
	return s.bookListHandler(catalog.Featured)
}

func (s *Server) BooksByGenreHandler() http.HandlerFunc {
	return s.filteredPageHandler(func(r *http.Request) books.SearchParams {
		return books.SearchParams{Genres: []string{mux.Vars(r)["genre"]}, SortBy: books.SortByRating, SortOrder: "desc"}
	})
}

func (s *Server) BooksByAuthorHandler() http.HandlerFunc {
	return s.filteredPageHandler(func(r *http.Request) books.SearchParams {
		return books.SearchParams{Author: mux.Vars(r)["author"], SortBy: books.SortByPublished}
	})
}

// filteredPageHandler serves one page of the books matching the request's params.
func (s *Server) filteredPageHandler(params func(*http.Request) books.SearchParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, ok := s.allBooks(w)
		if !ok {
			return
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", defaultPageLimit)
		matches := catalog.Filter(all, params(r))
		list, totalPages := catalog.Page(matches, page, limit)
		writeJSON(w, http.StatusOK, books.SearchResult{
			Books:      catalog.Values(list),
			Total:      len(matches),
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		})
	}
}

func (s *Server) BookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, book)
	}
}

func (s *Server) SimilarBooksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		all, ok := s.allBooks(w)
		if !ok {
			return
		}
		list := catalog.Recommend(all, book.Genres, []string{book.ID}, queryInt(r, "limit", defaultListLimit))
		writeJSON(w, http.StatusOK, books.BookList{Books: catalog.Values(list)})
	}
}

func (s *Server) BookReviewsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		reviews, err := s.repos.Catalog.Reviews(book.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load reviews")
			return
		}
		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", defaultReviewLimit)
		list, totalPages := catalog.Page(reviews, page, limit)
		out := make([]books.Review, 0, len(list))
		for _, rv := range list {
			out = append(out, *rv)
		}
		writeJSON(w, http.StatusOK, books.ReviewPage{
			Reviews:    out,
			Total:      len(reviews),
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		})
	}
}

func (s *Server) UserReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		review, err := s.repos.Catalog.UserReview(book.ID, user.ID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Review not found")
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

func validRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

// RateBookHandler records the caller's rating as their review of the book,
// creating one when they have none.
func (s *Server) RateBookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		var req struct {
			Rating int `json:"rating"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validRating(req.Rating) {
			writeError(w, http.StatusUnprocessableEntity, "Rating must be between 1 and 5")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		review, err := s.repos.Catalog.UserReview(book.ID, user.ID)
		if err != nil {
			review = newReview(book.ID, user)
		}
		review.Rating = req.Rating
		review.UpdatedAt = time.Now().UTC()
		if err := s.saveReview(review); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save rating")
			return
		}
		if updated, err := s.repos.Catalog.Get(book.ID); err == nil {
			book = updated
		}
		writeJSON(w, http.StatusOK, map[string]any{"rating": req.Rating, "bookRating": book.Rating})
	}
}

func newReview(bookID string, user *users.User) *books.Review {
	now := time.Now().UTC()
	return &books.Review{
		BookID:     bookID,
		UserID:     user.ID,
		UserName:   user.Name,
		UserAvatar: user.Avatar,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// saveReview stores review and refreshes its book's rating and review count.
// Callers hold stateLock.
func (s *Server) saveReview(review *books.Review) error {
	if err := s.repos.Catalog.UpsertReview(review); err != nil {
		return err
	}
	return s.recomputeRating(review.BookID)
}

func (s *Server) recomputeRating(bookID string) error {
	book, err := s.repos.Catalog.Get(bookID)
	if err != nil {
		return err
	}
	reviews, err := s.repos.Catalog.Reviews(bookID)
	if err != nil {
		return err
	}
	if len(reviews) > 0 {
		book.Rating = catalog.AverageRating(reviews)
	}
	book.ReviewCount = len(reviews)
	book.UpdatedAt = time.Now().UTC()
	return s.repos.Catalog.Upsert(book)
}

// MarkReadHandler moves the book to the completed list and sets progress to
// the last page.
func (s *Server) MarkReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		user.ReadingLists.Remove(string(books.ListCurrentlyReading), book.ID)
		user.ReadingLists.Remove(string(books.ListWantToRead), book.ID)
		user.ReadingLists.Add(string(books.ListCompleted), book.ID)
		if book.PageCount > 0 {
			setProgress(user, book.ID, book.PageCount)
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update reading lists")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Marked as read"})
	}
}

func setProgress(user *users.User, bookID string, page int) {
	if user.Progress == nil {
		user.Progress = make(map[string]int)
	}
	user.Progress[bookID] = page
}

func progressOf(user *users.User, book *books.Book) books.Progress {
	p := books.Progress{CurrentPage: user.Progress[book.ID], TotalPages: book.PageCount}
	if p.TotalPages > 0 {
		p.Percentage = float64(p.CurrentPage) * 100 / float64(p.TotalPages)
	}
	p.LastReadAt = user.LastLogin
	return p
}

func (s *Server) ProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		s.stateLock.Lock()
		p := progressOf(user, book)
		s.stateLock.Unlock()
		writeJSON(w, http.StatusOK, p)
	}
}

// UpdateProgressHandler records the current page. Starting a book puts it
// on the currently reading list and reaching the last page completes it.
func (s *Server) UpdateProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		book, ok := s.bookFromPath(w, r)
		if !ok {
			return
		}
		var req struct {
			CurrentPage int `json:"currentPage"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.CurrentPage < 0 || (book.PageCount > 0 && req.CurrentPage > book.PageCount) {
			writeError(w, http.StatusUnprocessableEntity, "currentPage is out of range")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		setProgress(user, book.ID, req.CurrentPage)
		switch {
		case book.PageCount > 0 && req.CurrentPage == book.PageCount:
			user.ReadingLists.Remove(string(books.ListCurrentlyReading), book.ID)
			user.ReadingLists.Add(string(books.ListCompleted), book.ID)
		case req.CurrentPage > 0 && !slices.Contains(user.ReadingLists.Completed, book.ID):
			user.ReadingLists.Remove(string(books.ListWantToRead), book.ID)
			user.ReadingLists.Add(string(books.ListCurrentlyReading), book.ID)
		}
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save progress")
			return
		}
		p := progressOf(user, book)
		p.LastReadAt = time.Now().UTC()
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) CreateReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		var req books.CreateReviewRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if !validRating(req.Rating) {
			writeError(w, http.StatusUnprocessableEntity, "Rating must be between 1 and 5")
			return
		}
		if _, err := s.repos.Catalog.Get(req.BookID); err != nil {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		if _, err := s.repos.Catalog.UserReview(req.BookID, user.ID); err == nil {
			writeError(w, http.StatusConflict, "Review already exists")
			return
		}
		review := newReview(req.BookID, user)
		review.Rating = req.Rating
		review.Comment = strings.TrimSpace(req.Comment)
		if err := s.saveReview(review); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save review")
			return
		}
		writeJSON(w, http.StatusCreated, review)
	}
}

// ownReview loads the {id} review, answering 404 when absent and 403 when
// another user wrote it.
func (s *Server) ownReview(w http.ResponseWriter, r *http.Request, user *users.User) (*books.Review, bool) {
	review, err := s.repos.Catalog.GetReview(mux.Vars(r)["id"])
	if apperrors.Is(err, apperrors.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Review not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load review")
		return nil, false
	}
	if review.UserID != user.ID && !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Not your review")
		return nil, false
	}
	return review, true
}

func (s *Server) UpdateReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		var req books.UpdateReviewRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Rating != nil && !validRating(*req.Rating) {
			writeError(w, http.StatusUnprocessableEntity, "Rating must be between 1 and 5")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		review, ok := s.ownReview(w, r, user)
		if !ok {
			return
		}
		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Comment != nil {
			review.Comment = strings.TrimSpace(*req.Comment)
		}
		review.UpdatedAt = time.Now().UTC()
		if err := s.saveReview(review); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save review")
			return
		}
		writeJSON(w, http.StatusOK, review)
	}
}

func (s *Server) DeleteReviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		review, ok := s.ownReview(w, r, user)
		if !ok {
			return
		}
		if err := s.repos.Catalog.DeleteReview(review.ID); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete review")
			return
		}
		if err := s.recomputeRating(review.BookID); err != nil {
			log.Err(err).Str("book", review.BookID).Msg("failed to recompute rating")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
