package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	public := s.APIMiddleware()
	protected := s.APIMiddleware(s.RequireAuth)

	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), public...))

	// Auth
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthResetPassword, ChainMiddleware(s.ResetPasswordHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthVerifyEmail, ChainMiddleware(s.VerifyEmailHandler(), public...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteAuthProfile, ChainMiddleware(s.ProfileHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteAuthResendVerification, ChainMiddleware(s.ResendVerificationHandler(), protected...))

	// Books: fixed paths before {id}
	s.RegisterRouteFunc("GET "+RouteBooksSearch, ChainMiddleware(s.SearchBooksHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBooksPopular, ChainMiddleware(s.PopularBooksHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBooksNewReleases, ChainMiddleware(s.NewReleasesHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBooksRecommendations, ChainMiddleware(s.RecommendationsHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteBooksRecommendationsUser, ChainMiddleware(s.RecommendationsHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteBooksFeatured, ChainMiddleware(s.FeaturedBooksHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBooksByGenre, ChainMiddleware(s.BooksByGenreHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBooksByAuthor, ChainMiddleware(s.BooksByAuthorHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBookByID, ChainMiddleware(s.BookHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBookSimilar, ChainMiddleware(s.SimilarBooksHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBookReviews, ChainMiddleware(s.BookReviewsHandler(), public...))
	s.RegisterRouteFunc("GET "+RouteBookUserReview, ChainMiddleware(s.UserReviewHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteBookRating, ChainMiddleware(s.RateBookHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteBookMarkRead, ChainMiddleware(s.MarkReadHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteBookProgress, ChainMiddleware(s.ProgressHandler(), protected...))
	s.RegisterRouteFunc("PUT "+RouteBookProgress, ChainMiddleware(s.UpdateProgressHandler(), protected...))

	// Reviews
	s.RegisterRouteFunc("POST "+RouteReviews, ChainMiddleware(s.CreateReviewHandler(), protected...))
	s.RegisterRouteFunc("PUT "+RouteReviewByID, ChainMiddleware(s.UpdateReviewHandler(), protected...))
	s.RegisterRouteFunc("DELETE "+RouteReviewByID, ChainMiddleware(s.DeleteReviewHandler(), protected...))

	// Users
	s.RegisterRouteFunc("GET "+RouteUsersProfile, ChainMiddleware(s.ProfileHandler(), protected...))
	s.RegisterRouteFunc("PUT "+RouteUsersProfile, ChainMiddleware(s.UpdateProfileHandler(), protected...))
	s.RegisterRouteFunc("DELETE "+RouteUsersAccount, ChainMiddleware(s.DeleteAccountHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteUsersPreferences, ChainMiddleware(s.PreferencesHandler(), protected...))
	s.RegisterRouteFunc("PUT "+RouteUsersPreferences, ChainMiddleware(s.UpdatePreferencesHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteUsersRecommendations, ChainMiddleware(s.RecommendationsHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteUsersReadingLists, ChainMiddleware(s.ReadingListsHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteUsersReadingList, ChainMiddleware(s.AddToReadingListHandler(), protected...))
	s.RegisterRouteFunc("DELETE "+RouteUsersReadingListEntry, ChainMiddleware(s.RemoveFromReadingListHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteUsersFavorites, ChainMiddleware(s.FavoritesHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteUsersExportData, ChainMiddleware(s.ExportDataHandler(), protected...))
	s.RegisterRouteFunc("POST "+RouteUploadAvatar, ChainMiddleware(s.UploadAvatarHandler(), protected...))
	s.RegisterRouteFunc("GET "+RouteAvatar, ChainMiddleware(s.AvatarHandler(), public...))

	// Preflight requests never reach the router, see ServeHTTP.
	s.preflight = ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.CorsMiddleware)

	s.router.NotFoundHandler = ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	}, s.LoggingMiddleware)
	s.router.MethodNotAllowedHandler = ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}, s.LoggingMiddleware)
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": s.config.GetAppName()})
	}
}
