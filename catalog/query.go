package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jrsteele09/go-bookshelf-client/books"
)

// Filter returns the books matching every non-empty field of params.
// Query matches title, author or description case-insensitively.
func Filter(all []*books.Book, params books.SearchParams) []*books.Book {
	query := strings.ToLower(params.Query)
	author := strings.ToLower(params.Author)
	out := make([]*books.Book, 0, len(all))
	for _, b := range all {
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Title), query) &&
			!strings.Contains(strings.ToLower(b.Author), query) &&
			!strings.Contains(strings.ToLower(b.Description), query) {
			continue
		}
		if author != "" && !strings.Contains(strings.ToLower(b.Author), author) {
			continue
		}
		if params.Language != "" && !strings.EqualFold(b.Language, params.Language) {
			continue
		}
		if len(params.Genres) > 0 && !hasAnyGenre(b, params.Genres) {
			continue
		}
		out = append(out, b)
	}
	Sort(out, params.SortBy, params.SortOrder)
	return out
}

func hasAnyGenre(b *books.Book, genres []string) bool {
	for _, g := range genres {
		for _, bg := range b.Genres {
			if strings.EqualFold(g, bg) {
				return true
			}
		}
	}
	return false
}

// Sort orders list in place. Relevance and unknown fields keep the order.
func Sort(list []*books.Book, field books.SortField, order string) {
	var compare func(a, b *books.Book) int
	switch field {
	case books.SortByTitle:
		compare = func(a, b *books.Book) int { return cmp.Compare(a.Title, b.Title) }
	case books.SortByAuthor:
		compare = func(a, b *books.Book) int { return cmp.Compare(a.Author, b.Author) }
	case books.SortByPublished:
		compare = func(a, b *books.Book) int { return cmp.Compare(a.PublishedYear, b.PublishedYear) }
	case books.SortByRating:
		compare = func(a, b *books.Book) int { return cmp.Compare(a.Rating, b.Rating) }
	default:
		return
	}
	if order == "desc" {
		asc := compare
		compare = func(a, b *books.Book) int { return asc(b, a) }
	}
	slices.SortStableFunc(list, compare)
}

// Popular returns the highest rated books first.
func Popular(all []*books.Book, limit int) []*books.Book {
	list := slices.Clone(all)
	Sort(list, books.SortByRating, "desc")
	return head(list, limit)
}

// NewReleases returns the most recently published books first.
func NewReleases(all []*books.Book, limit int) []*books.Book {
	list := slices.Clone(all)
	Sort(list, books.SortByPublished, "desc")
	return head(list, limit)
}

// Recommend ranks books sharing a genre with any of the liked genres,
// skipping excluded ids.
func Recommend(all []*books.Book, genres []string, exclude []string, limit int) []*books.Book {
	list := make([]*books.Book, 0, len(all))
	for _, b := range all {
		if slices.Contains(exclude, b.ID) {
			continue
		}
		if len(genres) == 0 || hasAnyGenre(b, genres) {
			list = append(list, b)
		}
	}
	Sort(list, books.SortByRating, "desc")
	return head(list, limit)
}

func head[T any](list []T, limit int) []T {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}

// Page returns one page of list plus the page count. Pages start at 1.
func Page[T any](list []T, page, limit int) ([]T, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := (len(list) + limit - 1) / limit
	start := (page - 1) * limit
	if start >= len(list) {
		return []T{}, totalPages
	}
	end := min(start+limit, len(list))
	return list[start:end], totalPages
}

// Values copies the pointed-to books.
func Values(list []*books.Book) []books.Book {
	out := make([]books.Book, 0, len(list))
	for _, b := range list {
		out = append(out, *b)
	}
	return out
}

// AverageRating recomputes a book's rating from its reviews.
func AverageRating(reviews []*books.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	total := 0
	for _, r := range reviews {
		total += r.Rating
	}
	return float64(total) / float64(len(reviews))
}

// Featured picks the best rated book of each primary genre, best first.
func Featured(all []*books.Book, limit int) []*books.Book {
	best := make(map[string]*books.Book)
	for _, b := range all {
		if len(b.Genres) == 0 {
			continue
		}
		genre := strings.ToLower(b.Genres[0])
		if cur, ok := best[genre]; !ok || b.Rating > cur.Rating {
			best[genre] = b
		}
	}
	list := make([]*books.Book, 0, len(best))
	for _, b := range best {
		list = append(list, b)
	}
	slices.SortFunc(list, func(a, b *books.Book) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return head(list, limit)
}
