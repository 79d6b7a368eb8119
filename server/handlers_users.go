package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/jrsteele09/go-bookshelf-client/users"
	"github.com/rs/zerolog/log"
)

const maxAvatarSize = 5 << 20

// resolveBooks maps book ids to books, skipping ids no longer in the catalog.
func (s *Server) resolveBooks(ids []string) []books.Book {
	out := make([]books.Book, 0, len(ids))
	for _, id := range ids {
		b, err := s.repos.Catalog.Get(id)
		if err != nil {
			continue
		}
		out = append(out, *b)
	}
	return out
}

func (s *Server) readingLists(user *users.User) books.ReadingLists {
	s.stateLock.Lock()
	lists := users.ReadingLists{
		Favorites:        append([]string(nil), user.ReadingLists.Favorites...),
		CurrentlyReading: append([]string(nil), user.ReadingLists.CurrentlyReading...),
		WantToRead:       append([]string(nil), user.ReadingLists.WantToRead...),
		Completed:        append([]string(nil), user.ReadingLists.Completed...),
	}
	s.stateLock.Unlock()

	return books.ReadingLists{
		Favorites:        s.resolveBooks(lists.Favorites),
		CurrentlyReading: s.resolveBooks(lists.CurrentlyReading),
		WantToRead:       s.resolveBooks(lists.WantToRead),
		Completed:        s.resolveBooks(lists.Completed),
	}
}

func (s *Server) ReadingListsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.readingLists(user))
	}
}

func (s *Server) FavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, books.BookList{Books: s.readingLists(user).Favorites})
	}
}

func listType(w http.ResponseWriter, r *http.Request) (books.ReadingListType, bool) {
	list := books.ReadingListType(mux.Vars(r)["type"])
	if !list.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown reading list %q", list))
		return "", false
	}
	return list, true
}

func (s *Server) AddToReadingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		list, ok := listType(w, r)
		if !ok {
			return
		}
		var req struct {
			BookID string `json:"bookId"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if _, err := s.repos.Catalog.Get(req.BookID); err != nil {
			writeError(w, http.StatusNotFound, "Book not found")
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		user.ReadingLists.Add(string(list), req.BookID)
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update reading list")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Added to " + string(list)})
	}
}

// RemoveFromReadingListHandler is idempotent: removing an absent book succeeds.
func (s *Server) RemoveFromReadingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		list, ok := listType(w, r)
		if !ok {
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		user.ReadingLists.Remove(string(list), mux.Vars(r)["bookId"])
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to update reading list")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Removed from " + string(list)})
	}
}

type exportedProgress struct {
	BookID      string `json:"bookId"`
	CurrentPage int    `json:"currentPage"`
}

type dataExport struct {
	ExportedAt   time.Time          `json:"exportedAt"`
	User         *users.User        `json:"user"`
	ReadingLists books.ReadingLists `json:"readingLists"`
	Reviews      []books.Review     `json:"reviews"`
	Progress     []exportedProgress `json:"progress"`
}

// ExportDataHandler returns everything held about the caller as a JSON attachment.
func (s *Server) ExportDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		all, ok := s.allBooks(w)
		if !ok {
			return
		}

		export := dataExport{
			ExportedAt:   time.Now().UTC(),
			User:         user,
			ReadingLists: s.readingLists(user),
			Reviews:      []books.Review{},
			Progress:     []exportedProgress{},
		}
		for _, b := range all {
			if rv, err := s.repos.Catalog.UserReview(b.ID, user.ID); err == nil {
				export.Reviews = append(export.Reviews, *rv)
			}
		}
		s.stateLock.Lock()
		for _, b := range all {
			if page, ok := user.Progress[b.ID]; ok {
				export.Progress = append(export.Progress, exportedProgress{BookID: b.ID, CurrentPage: page})
			}
		}
		s.stateLock.Unlock()

		w.Header().Set("Content-Disposition", `attachment; filename="bookshelf-export.json"`)
		writeJSON(w, http.StatusOK, export)
	}
}

// UploadAvatarHandler accepts a multipart "file" image of up to 5MB and
// points the caller's avatar at it.
func (s *Server) UploadAvatarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize+(64<<10))
		if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "Avatar must be at most 5MB")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, io.LimitReader(file, maxAvatarSize+1)); err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read file")
			return
		}
		if buf.Len() > maxAvatarSize {
			writeError(w, http.StatusRequestEntityTooLarge, "Avatar must be at most 5MB")
			return
		}
		if !strings.HasPrefix(http.DetectContentType(buf.Bytes()), "image/") {
			writeError(w, http.StatusUnsupportedMediaType, "Avatar must be an image")
			return
		}

		s.avatarsLock.Lock()
		s.avatars[user.ID] = buf.Bytes()
		s.avatarsLock.Unlock()

		avatarURL := APIPrefix + strings.Replace(RouteAvatar, "{id}", user.ID, 1)
		s.stateLock.Lock()
		user.Avatar = avatarURL
		err = s.repos.Users.Upsert(user)
		s.stateLock.Unlock()
		if err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to save avatar url")
			writeError(w, http.StatusInternalServerError, "Failed to save avatar")
			return
		}
		writeJSON(w, http.StatusOK, books.Avatar{AvatarURL: avatarURL})
	}
}

func (s *Server) AvatarHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.avatarsLock.Lock()
		img, ok := s.avatars[mux.Vars(r)["id"]]
		s.avatarsLock.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Avatar not found")
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(img))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(img); err != nil {
			log.Err(err).Msg("failed to write avatar")
		}
	}
}

func (s *Server) PreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		s.stateLock.Lock()
		prefs := user.Preferences
		s.stateLock.Unlock()
		writeJSON(w, http.StatusOK, prefs)
	}
}

func (s *Server) UpdatePreferencesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		var prefs users.Preferences
		if !decodeJSON(w, r, &prefs) {
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		user.Preferences = prefs
		if err := s.repos.Users.Upsert(user); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save preferences")
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

// DeleteAccountHandler removes the caller, their reviews and their refresh tokens.
func (s *Server) DeleteAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.currentUser(w, r)
		if !ok {
			return
		}
		all, ok := s.allBooks(w)
		if !ok {
			return
		}

		s.stateLock.Lock()
		defer s.stateLock.Unlock()
		for _, b := range all {
			rv, err := s.repos.Catalog.UserReview(b.ID, user.ID)
			if err != nil {
				continue
			}
			if err := s.repos.Catalog.DeleteReview(rv.ID); err != nil {
				log.Err(err).Str("review", rv.ID).Msg("failed to delete review")
				continue
			}
			if err := s.recomputeRating(b.ID); err != nil {
				log.Err(err).Str("book", b.ID).Msg("failed to recompute rating")
			}
		}
		if err := s.refreshTokens.Revoke(user.ID); err != nil {
			log.Err(err).Str("user", user.ID).Msg("failed to revoke refresh tokens")
		}
		if err := s.repos.Users.Delete(user.Email); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to delete account")
			return
		}

		s.avatarsLock.Lock()
		delete(s.avatars, user.ID)
		s.avatarsLock.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}
