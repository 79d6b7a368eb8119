// Package endpoints holds the backend route paths used by the service
// packages, relative to the API base URL.
package endpoints

import (
	"net/url"
	"strconv"
	"strings"
)

// Auth
const (
	AuthLogin              = "/auth/login"
	AuthRegister           = "/auth/register"
	AuthLogout             = "/auth/logout"
	AuthRefresh            = "/auth/refresh"
	AuthProfile            = "/auth/profile"
	AuthChangePassword     = "/auth/change-password"
	AuthForgotPassword     = "/auth/forgot-password"
	AuthResetPassword      = "/auth/reset-password"
	AuthVerifyEmail        = "/auth/verify-email"
	AuthResendVerification = "/auth/resend-verification"
)

// Users
const (
	UsersProfile         = "/users/profile"
	UsersAccount         = "/users/account"
	UsersPreferences     = "/users/preferences"
	UsersReadingLists    = "/users/reading-lists"
	UsersFavorites       = "/users/favorites"
	UsersRecommendations = "/users/recommendations"
	UsersExportData      = "/users/export-data"
)

// Books
const (
	BooksSearch          = "/books/search"
	BooksPopular         = "/books/popular"
	BooksNewReleases     = "/books/new-releases"
	BooksFeatured        = "/books/featured"
	BooksRecommendations = "/books/recommendations"
)

const (
	Reviews      = "/reviews"
	UploadAvatar = "/upload/avatar"
)

func BookByID(id string) string {
	return "/books/" + url.PathEscape(id)
}

func BooksByGenre(genre string) string {
	return "/books/genre/" + url.PathEscape(genre)
}

func BooksByAuthor(author string) string {
	return "/books/author/" + url.PathEscape(author)
}

// BookRecommendationsFor returns the recommendations path for userID, or the
// current user's when userID is empty.
func BookRecommendationsFor(userID string) string {
	if userID == "" {
		return BooksRecommendations
	}
	return BooksRecommendations + "/" + url.PathEscape(userID)
}

func BookSimilar(id string) string    { return BookByID(id) + "/similar" }
func BookReviews(id string) string    { return BookByID(id) + "/reviews" }
func BookUserReview(id string) string { return BookByID(id) + "/user-review" }
func BookMarkRead(id string) string   { return BookByID(id) + "/mark-read" }
func BookProgress(id string) string   { return BookByID(id) + "/progress" }
func BookRating(id string) string     { return BookByID(id) + "/rating" }

func ReviewByID(id string) string {
	return Reviews + "/" + url.PathEscape(id)
}

func ReadingListByType(listType string) string {
	return UsersReadingLists + "/" + url.PathEscape(listType)
}

func RemoveFromReadingList(listType, bookID string) string {
	return ReadingListByType(listType) + "/" + url.PathEscape(bookID)
}

// WithQuery appends params to path. Empty values are skipped and keys are
// encoded in sorted order.
func WithQuery(path string, params url.Values) string {
	q := make(url.Values, len(params))
	for k, vs := range params {
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	encoded := q.Encode()
	if encoded == "" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + encoded
}

// WithPagination adds page and limit. Non-positive values fall back to page 1
// and limit 20.
func WithPagination(path string, page, limit int) string {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return WithQuery(path, url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	})
}

func WithLimit(path string, limit int) string {
	if limit < 1 {
		return path
	}
	return WithQuery(path, url.Values{"limit": {strconv.Itoa(limit)}})
}

// Valid reports whether path is a usable relative endpoint.
func Valid(path string) bool {
	return strings.HasPrefix(path, "/") && len(path) > 1
}
