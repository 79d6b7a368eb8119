package books

import "time"

type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	ISBN          string    `json:"isbn,omitempty"`
	Description   string    `json:"description,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	PublishedYear int       `json:"publishedYear,omitempty"`
	Genres        []string  `json:"genre"`
	Language      string    `json:"language"`
	PageCount     int       `json:"pageCount,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	ReviewCount   int       `json:"reviewCount,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// BookList is the body of the list endpoints (popular, new releases,
// recommendations, favorites).
type BookList struct {
	Books []Book `json:"books"`
}

type SortField string

const (
	SortByTitle     SortField = "title"
	SortByAuthor    SortField = "author"
	SortByPublished SortField = "publishedDate"
	SortByRating    SortField = "rating"
	SortByRelevance SortField = "relevance"
)

type SearchParams struct {
	Query     string
	Author    string
	Genres    []string
	Language  string
	Page      int
	Limit     int
	SortBy    SortField
	SortOrder string // asc or desc
}

type SearchResult struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"bookId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ReviewPage struct {
	Reviews    []Review `json:"reviews"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
}

type CreateReviewRequest struct {
	BookID  string `json:"bookId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

type ReadingListType string

const (
	ListFavorites        ReadingListType = "favorites"
	ListCurrentlyReading ReadingListType = "currentlyReading"
	ListWantToRead       ReadingListType = "wantToRead"
	ListCompleted        ReadingListType = "completed"
)

// Valid reports whether t names one of the four reading lists.
func (t ReadingListType) Valid() bool {
	switch t {
	case ListFavorites, ListCurrentlyReading, ListWantToRead, ListCompleted:
		return true
	}
	return false
}

type ReadingLists struct {
	Favorites        []Book `json:"favorites"`
	CurrentlyReading []Book `json:"currentlyReading"`
	WantToRead       []Book `json:"wantToRead"`
	Completed        []Book `json:"completed"`
}

type Progress struct {
	CurrentPage int       `json:"currentPage"`
	TotalPages  int       `json:"totalPages"`
	Percentage  float64   `json:"percentage"`
	LastReadAt  time.Time `json:"lastReadAt"`
}

type Avatar struct {
	AvatarURL string `json:"avatarUrl"`
}
