// Package catalog is the mock API's book and review storage.
package catalog

import "github.com/jrsteele09/go-bookshelf-client/books"

// Repo stores books and their reviews. Missing records return errors.ErrNotFound.
type Repo interface {
	Upsert(book *books.Book) error
	Get(id string) (*books.Book, error)
	List() ([]*books.Book, error)

	UpsertReview(review *books.Review) error
	GetReview(id string) (*books.Review, error)
	DeleteReview(id string) error
	Reviews(bookID string) ([]*books.Review, error)
	UserReview(bookID, userID string) (*books.Review, error)
}
