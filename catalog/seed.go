package catalog

import (
	"time"

	"github.com/jrsteele09/go-bookshelf-client/books"
)

// SeedBooks is the demo catalog served by the mock API.
func SeedBooks(now time.Time) []*books.Book {
	book := func(id, title, author string, year, pages int, rating float64, genres ...string) *books.Book {
		return &books.Book{
			ID:            id,
			Title:         title,
			Author:        author,
			PublishedYear: year,
			PageCount:     pages,
			Rating:        rating,
			Genres:        genres,
			Language:      "en",
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	}
	return []*books.Book{
		book("b-001", "Dune", "Frank Herbert", 1965, 412, 4.6, "science fiction", "classic"),
		book("b-002", "The Left Hand of Darkness", "Ursula K. Le Guin", 1969, 304, 4.3, "science fiction"),
		book("b-003", "Pride and Prejudice", "Jane Austen", 1813, 279, 4.5, "romance", "classic"),
		book("b-004", "The Hobbit", "J.R.R. Tolkien", 1937, 310, 4.7, "fantasy", "classic"),
		book("b-005", "Project Hail Mary", "Andy Weir", 2021, 476, 4.8, "science fiction"),
		book("b-006", "Circe", "Madeline Miller", 2018, 393, 4.4, "fantasy", "mythology"),
		book("b-007", "The Name of the Wind", "Patrick Rothfuss", 2007, 662, 4.5, "fantasy"),
		book("b-008", "Educated", "Tara Westover", 2018, 334, 4.4, "memoir"),
		book("b-009", "Klara and the Sun", "Kazuo Ishiguro", 2021, 303, 4.0, "literary fiction", "science fiction"),
		book("b-010", "The Remains of the Day", "Kazuo Ishiguro", 1989, 245, 4.2, "literary fiction", "classic"),
	}
}
