package catalogfakerepo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-bookshelf-client/books"
	"github.com/jrsteele09/go-bookshelf-client/catalog"
	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
)

var _ catalog.Repo = (*FakeCatalogRepo)(nil)

type FakeCatalogRepo struct {
	books   map[string]*books.Book
	reviews map[string]*books.Review
	lock    sync.RWMutex
}

func NewFakeCatalogRepo() *FakeCatalogRepo {
	return &FakeCatalogRepo{
		books:   make(map[string]*books.Book),
		reviews: make(map[string]*books.Review),
	}
}

func (cr *FakeCatalogRepo) Upsert(book *books.Book) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	cr.books[book.ID] = book
	return nil
}

func (cr *FakeCatalogRepo) Get(id string) (*books.Book, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	b, ok := cr.books[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return b, nil
}

// List returns every book ordered by id.
func (cr *FakeCatalogRepo) List() ([]*books.Book, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	list := make([]*books.Book, 0, len(cr.books))
	for _, b := range cr.books {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (cr *FakeCatalogRepo) UpsertReview(review *books.Review) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if _, ok := cr.books[review.BookID]; !ok {
		return apperrors.ErrNotFound
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	cr.reviews[review.ID] = review
	return nil
}

func (cr *FakeCatalogRepo) GetReview(id string) (*books.Review, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	r, ok := cr.reviews[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r, nil
}

func (cr *FakeCatalogRepo) DeleteReview(id string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	if _, ok := cr.reviews[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(cr.reviews, id)
	return nil
}

// Reviews returns a book's reviews, newest first.
func (cr *FakeCatalogRepo) Reviews(bookID string) ([]*books.Review, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	list := make([]*books.Review, 0)
	for _, r := range cr.reviews {
		if r.BookID == bookID {
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (cr *FakeCatalogRepo) UserReview(bookID, userID string) (*books.Review, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	for _, r := range cr.reviews {
		if r.BookID == bookID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
