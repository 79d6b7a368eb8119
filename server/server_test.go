package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	catalogfakerepo "github.com/jrsteele09/go-bookshelf-client/catalog/repofake"
	"github.com/jrsteele09/go-bookshelf-client/internal/config"
	"github.com/jrsteele09/go-bookshelf-client/server"
	refreshrepofake "github.com/jrsteele09/go-bookshelf-client/token/refresh/repofake"
	fakeuserrepo "github.com/jrsteele09/go-bookshelf-client/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	demoEmail    = "reader@bookshelf.dev"
	demoPassword = "Bookworm42"
	testSecret   = "server-test-secret"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DEMO_EMAIL", demoEmail)
	t.Setenv("DEMO_PASSWORD", demoPassword)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	s, err := server.New(config.New(), server.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Catalog:       catalogfakerepo.NewFakeCatalogRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

// call sends a JSON request and decodes the JSON response into out when non-nil.
func call(t *testing.T, ts *httptest.Server, method, path, accessToken string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+server.APIPrefix+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp
}

type session struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func login(t *testing.T, ts *httptest.Server, email, password string) session {
	t.Helper()
	var s session
	resp := call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &s)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, s.AccessToken)
	require.NotEmpty(t, s.RefreshToken)
	return s
}

func register(t *testing.T, ts *httptest.Server, email string) session {
	t.Helper()
	var s session
	resp := call(t, ts, http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "Passw0rdX", "name": "Second Reader"}, &s)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return s
}

type message struct {
	Message string `json:"message"`
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	resp := call(t, ts, http.MethodGet, "/health", "", nil, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	s := login(t, ts, demoEmail, demoPassword)
	require.Equal(t, demoEmail, s.User.Email)

	var msg message
	resp := call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{"email": demoEmail, "password": "wrong"}, &msg)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid credentials", msg.Message)

	resp = call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{"email": "nobody@bookshelf.dev", "password": "x"}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/login", "", map[string]string{"email": ""}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	s := register(t, ts, "new@bookshelf.dev")
	require.Equal(t, "new@bookshelf.dev", s.User.Email)
	require.NotEmpty(t, s.User.ID)
	require.NotEmpty(t, s.AccessToken)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{"duplicate", map[string]string{"email": "NEW@bookshelf.dev", "password": "Passw0rdX", "name": "Again"}, http.StatusConflict},
		{"weak password", map[string]string{"email": "weak@bookshelf.dev", "password": "password", "name": "Weak"}, http.StatusUnprocessableEntity},
		{"bad email", map[string]string{"email": "not-an-email", "password": "Passw0rdX", "name": "Bad"}, http.StatusBadRequest},
		{"missing name", map[string]string{"email": "noname@bookshelf.dev", "password": "Passw0rdX"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, ts, http.MethodPost, "/auth/register", "", tt.body, nil)
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	var msg message
	resp := call(t, ts, http.MethodGet, "/auth/profile", "", nil, &msg)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Authentication required", msg.Message)

	resp = call(t, ts, http.MethodGet, "/auth/profile", "garbage", nil, &msg)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid token", msg.Message)

	s := login(t, ts, demoEmail, demoPassword)
	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": s.User.ID,
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	resp = call(t, ts, http.MethodGet, "/auth/profile", expired, nil, &msg)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Token expired", msg.Message)
}

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	var user map[string]any
	resp := call(t, ts, http.MethodGet, "/auth/profile", s.AccessToken, nil, &user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, demoEmail, user["email"])
	require.NotContains(t, user, "passwordHash")
	require.NotContains(t, user, "PasswordHash")

	resp = call(t, ts, http.MethodPut, "/users/profile", s.AccessToken, map[string]any{"name": "Renamed", "preferences": map[string]any{"genres": []string{"memoir"}}}, &user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Renamed", user["name"])

	resp = call(t, ts, http.MethodPut, "/users/profile", s.AccessToken, map[string]any{"name": "  "}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRefreshRotates(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	var pair session
	resp := call(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": s.RefreshToken}, &pair)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEqual(t, s.RefreshToken, pair.RefreshToken)

	var msg message
	resp = call(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": s.RefreshToken}, &msg)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid refresh token", msg.Message)

	resp = call(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := call(t, ts, http.MethodPost, "/auth/logout", s.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": s.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := call(t, ts, http.MethodPost, "/auth/change-password", s.AccessToken, map[string]string{"oldPassword": "wrong", "newPassword": "N3wPassword"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/change-password", s.AccessToken, map[string]string{"oldPassword": demoPassword, "newPassword": "short"}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/change-password", s.AccessToken, map[string]string{"oldPassword": demoPassword, "newPassword": "N3wPassword"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login(t, ts, demoEmail, "N3wPassword")
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	ts := newTestServer(t)
	for _, email := range []string{demoEmail, "ghost@bookshelf.dev"} {
		resp := call(t, ts, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": email}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := call(t, ts, http.MethodPost, "/auth/reset-password", "", map[string]string{"token": "made-up", "newPassword": "N3wPassword"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/verify-email", "", map[string]string{"token": "made-up"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResendVerification(t *testing.T) {
	ts := newTestServer(t)

	demo := login(t, ts, demoEmail, demoPassword)
	resp := call(t, ts, http.MethodPost, "/auth/resend-verification", demo.AccessToken, nil, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	s := register(t, ts, "unverified@bookshelf.dev")
	resp = call(t, ts, http.MethodPost, "/auth/resend-verification", s.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

type bookList struct {
	Books []struct {
		ID     string  `json:"id"`
		Title  string  `json:"title"`
		Rating float64 `json:"rating"`
	} `json:"books"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func TestCatalogReads(t *testing.T) {
	ts := newTestServer(t)

	var list bookList
	resp := call(t, ts, http.MethodGet, "/books/popular?limit=3", "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list.Books, 3)
	require.Equal(t, "b-005", list.Books[0].ID)
	require.Equal(t, "b-004", list.Books[1].ID)
	require.Equal(t, "b-001", list.Books[2].ID)

	list = bookList{}
	call(t, ts, http.MethodGet, "/books/new-releases?limit=2", "", nil, &list)
	require.Len(t, list.Books, 2)

	list = bookList{}
	resp = call(t, ts, http.MethodGet, "/books/search?q=ishiguro&sortBy=publishedDate&sortOrder=asc", "", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 2, list.Total)
	require.Equal(t, "b-010", list.Books[0].ID)

	list = bookList{}
	call(t, ts, http.MethodGet, "/books/search?genre=fantasy&limit=2&page=2", "", nil, &list)
	require.Equal(t, 3, list.Total)
	require.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Books, 1)

	list = bookList{}
	call(t, ts, http.MethodGet, "/books/genre/classic", "", nil, &list)
	require.Equal(t, 4, list.Total)

	var book map[string]any
	resp = call(t, ts, http.MethodGet, "/books/b-001", "", nil, &book)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Dune", book["title"])

	var msg message
	resp = call(t, ts, http.MethodGet, "/books/nope", "", nil, &msg)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Book not found", msg.Message)

	list = bookList{}
	call(t, ts, http.MethodGet, "/books/b-004/similar", "", nil, &list)
	require.NotEmpty(t, list.Books)
	for _, b := range list.Books {
		require.NotEqual(t, "b-004", b.ID)
	}
}

func TestRecommendations(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := call(t, ts, http.MethodPost, "/books/b-005/mark-read", s.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list bookList
	resp = call(t, ts, http.MethodGet, "/books/recommendations", s.AccessToken, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, list.Books)
	for _, b := range list.Books {
		require.NotEqual(t, "b-005", b.ID)
	}

	other := register(t, ts, "other@bookshelf.dev")
	resp = call(t, ts, http.MethodGet, "/books/recommendations/"+s.User.ID, other.AccessToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/books/recommendations", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type review struct {
	ID      string `json:"id"`
	BookID  string `json:"bookId"`
	UserID  string `json:"userId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func TestReviewLifecycle(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := call(t, ts, http.MethodGet, "/books/b-002/user-review", s.AccessToken, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var created review
	resp = call(t, ts, http.MethodPost, "/reviews", s.AccessToken, map[string]any{"bookId": "b-002", "rating": 5, "comment": "Superb"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.ID)
	require.Equal(t, s.User.ID, created.UserID)

	resp = call(t, ts, http.MethodPost, "/reviews", s.AccessToken, map[string]any{"bookId": "b-002", "rating": 4}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/reviews", s.AccessToken, map[string]any{"bookId": "b-003", "rating": 9}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/reviews", s.AccessToken, map[string]any{"bookId": "missing", "rating": 3}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var book struct {
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"reviewCount"`
	}
	call(t, ts, http.MethodGet, "/books/b-002", "", nil, &book)
	require.Equal(t, 5.0, book.Rating)
	require.Equal(t, 1, book.ReviewCount)

	var page struct {
		Reviews []review `json:"reviews"`
		Total   int      `json:"total"`
	}
	call(t, ts, http.MethodGet, "/books/b-002/reviews", "", nil, &page)
	require.Equal(t, 1, page.Total)
	require.Equal(t, "Superb", page.Reviews[0].Comment)

	other := register(t, ts, "critic@bookshelf.dev")
	resp = call(t, ts, http.MethodPut, "/reviews/"+created.ID, other.AccessToken, map[string]any{"rating": 1}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = call(t, ts, http.MethodDelete, "/reviews/"+created.ID, other.AccessToken, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var updated review
	resp = call(t, ts, http.MethodPut, "/reviews/"+created.ID, s.AccessToken, map[string]any{"comment": "Still superb"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 5, updated.Rating)
	require.Equal(t, "Still superb", updated.Comment)

	resp = call(t, ts, http.MethodDelete, "/reviews/"+created.ID, s.AccessToken, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = call(t, ts, http.MethodDelete, "/reviews/"+created.ID, s.AccessToken, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateBook(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := call(t, ts, http.MethodPost, "/books/b-003/rating", s.AccessToken, map[string]int{"rating": 0}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/books/b-003/rating", s.AccessToken, map[string]int{"rating": 3}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/books/b-003/rating", s.AccessToken, map[string]int{"rating": 4}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var r review
	call(t, ts, http.MethodGet, "/books/b-003/user-review", s.AccessToken, nil, &r)
	require.Equal(t, 4, r.Rating)
}

func TestProgressAndReadingLists(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	var progress struct {
		CurrentPage int     `json:"currentPage"`
		TotalPages  int     `json:"totalPages"`
		Percentage  float64 `json:"percentage"`
	}
	resp := call(t, ts, http.MethodPut, "/books/b-004/progress", s.AccessToken, map[string]int{"currentPage": 155}, &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 310, progress.TotalPages)
	require.InDelta(t, 50.0, progress.Percentage, 0.01)

	resp = call(t, ts, http.MethodPut, "/books/b-004/progress", s.AccessToken, map[string]int{"currentPage": 999}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var lists struct {
		Favorites        []struct{ ID string } `json:"favorites"`
		CurrentlyReading []struct{ ID string } `json:"currentlyReading"`
		Completed        []struct{ ID string } `json:"completed"`
	}
	call(t, ts, http.MethodGet, "/users/reading-lists", s.AccessToken, nil, &lists)
	require.Len(t, lists.CurrentlyReading, 1)
	require.Equal(t, "b-004", lists.CurrentlyReading[0].ID)

	resp = call(t, ts, http.MethodPut, "/books/b-004/progress", s.AccessToken, map[string]int{"currentPage": 310}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	call(t, ts, http.MethodGet, "/users/reading-lists", s.AccessToken, nil, &lists)
	require.Empty(t, lists.CurrentlyReading)
	require.Len(t, lists.Completed, 1)

	resp = call(t, ts, http.MethodPost, "/users/reading-lists/favorites", s.AccessToken, map[string]string{"bookId": "b-007"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/users/reading-lists/favorites", s.AccessToken, map[string]string{"bookId": "b-007"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/users/reading-lists/shelf", s.AccessToken, map[string]string{"bookId": "b-007"}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = call(t, ts, http.MethodPost, "/users/reading-lists/favorites", s.AccessToken, map[string]string{"bookId": "missing"}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var favorites bookList
	call(t, ts, http.MethodGet, "/users/favorites", s.AccessToken, nil, &favorites)
	require.Len(t, favorites.Books, 1)
	require.Equal(t, "b-007", favorites.Books[0].ID)

	resp = call(t, ts, http.MethodDelete, "/users/reading-lists/favorites/b-007", s.AccessToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	favorites = bookList{}
	call(t, ts, http.MethodGet, "/users/favorites", s.AccessToken, nil, &favorites)
	require.Empty(t, favorites.Books)
}

func TestExportData(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)
	call(t, ts, http.MethodPost, "/books/b-001/rating", s.AccessToken, map[string]int{"rating": 5}, nil)

	var export struct {
		User    struct{ Email string } `json:"user"`
		Reviews []review               `json:"reviews"`
	}
	resp := call(t, ts, http.MethodGet, "/users/export-data", s.AccessToken, nil, &export)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	require.Equal(t, demoEmail, export.User.Email)
	require.Len(t, export.Reviews, 1)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func uploadAvatar(t *testing.T, ts *httptest.Server, accessToken string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, ts.URL+server.APIPrefix+"/upload/avatar", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestUploadAvatar(t *testing.T) {
	ts := newTestServer(t)
	s := login(t, ts, demoEmail, demoPassword)

	resp := uploadAvatar(t, ts, s.AccessToken, pngHeader)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avatar struct {
		AvatarURL string `json:"avatarUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&avatar))
	require.Equal(t, server.APIPrefix+"/avatars/"+s.User.ID, avatar.AvatarURL)

	img, err := ts.Client().Get(ts.URL + avatar.AvatarURL)
	require.NoError(t, err)
	defer img.Body.Close()
	require.Equal(t, http.StatusOK, img.StatusCode)
	require.Equal(t, "image/png", img.Header.Get("Content-Type"))

	text := uploadAvatar(t, ts, s.AccessToken, []byte("just some text"))
	defer text.Body.Close()
	require.Equal(t, http.StatusUnsupportedMediaType, text.StatusCode)
}

func TestRoutingErrors(t *testing.T) {
	ts := newTestServer(t)

	var msg message
	resp := call(t, ts, http.MethodGet, "/does-not-exist", "", nil, &msg)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Route not found", msg.Message)

	resp = call(t, ts, http.MethodDelete, "/books/popular", "", nil, &msg)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/auth/login", "", nil, &msg)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Invalid JSON body", msg.Message)
}

func TestCorsPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+server.APIPrefix+"/books/popular", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")

	req.Header.Set("Origin", "https://evil.example")
	resp2, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestNew_RequiresRepos(t *testing.T) {
	_, err := server.New(config.New(), server.Repos{})
	require.Error(t, err)
}
