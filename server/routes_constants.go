package server

// Route paths relative to APIPrefix. They mirror the client's endpoints package.
const (
	RouteHealth = "/health"

	// Auth
	RouteAuthLogin              = "/auth/login"
	RouteAuthRegister           = "/auth/register"
	RouteAuthRefresh            = "/auth/refresh"
	RouteAuthLogout             = "/auth/logout"
	RouteAuthProfile            = "/auth/profile"
	RouteAuthChangePassword     = "/auth/change-password"
	RouteAuthForgotPassword     = "/auth/forgot-password"
	RouteAuthResetPassword      = "/auth/reset-password"
	RouteAuthVerifyEmail        = "/auth/verify-email"
	RouteAuthResendVerification = "/auth/resend-verification"

	// Books
	RouteBooksSearch              = "/books/search"
	RouteBooksPopular             = "/books/popular"
	RouteBooksNewReleases         = "/books/new-releases"
	RouteBooksRecommendations     = "/books/recommendations"
	RouteBooksRecommendationsUser = "/books/recommendations/{userId}"
	RouteBooksFeatured            = "/books/featured"
	RouteBooksByGenre             = "/books/genre/{genre}"
	RouteBooksByAuthor            = "/books/author/{author}"
	RouteBookByID                 = "/books/{id}"
	RouteBookSimilar              = "/books/{id}/similar"
	RouteBookReviews              = "/books/{id}/reviews"
	RouteBookUserReview           = "/books/{id}/user-review"
	RouteBookRating               = "/books/{id}/rating"
	RouteBookMarkRead             = "/books/{id}/mark-read"
	RouteBookProgress             = "/books/{id}/progress"

	// Reviews
	RouteReviews    = "/reviews"
	RouteReviewByID = "/reviews/{id}"

	// Users
	RouteUsersProfile          = "/users/profile"
	RouteUsersAccount          = "/users/account"
	RouteUsersPreferences      = "/users/preferences"
	RouteUsersRecommendations  = "/users/recommendations"
	RouteUsersReadingLists     = "/users/reading-lists"
	RouteUsersReadingList      = "/users/reading-lists/{type}"
	RouteUsersReadingListEntry = "/users/reading-lists/{type}/{bookId}"
	RouteUsersFavorites        = "/users/favorites"
	RouteUsersExportData       = "/users/export-data"
	RouteUploadAvatar          = "/upload/avatar"
	RouteAvatar                = "/avatars/{id}"
)
