package users

import (
	"fmt"
	"slices"
	"time"
	"unicode"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type RoleType string

const (
	RoleReader RoleType = "reader"
	RoleAdmin  RoleType = "admin"
)

type Preferences struct {
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
}

// ReadingLists holds book ids per list.
type ReadingLists struct {
	Favorites        []string `json:"favorites"`
	CurrentlyReading []string `json:"currentlyReading"`
	WantToRead       []string `json:"wantToRead"`
	Completed        []string `json:"completed"`
}

type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Avatar       string         `json:"avatar,omitempty"`
	PasswordHash string         `json:"-"` // never serialized
	Roles        []RoleType     `json:"roles,omitempty"`
	Preferences  Preferences    `json:"preferences"`
	ReadingLists ReadingLists   `json:"readingLists"`
	Progress     map[string]int `json:"-"` // book id -> current page
	DateJoined   time.Time      `json:"dateJoined"`
	LastLogin    time.Time      `json:"lastLogin,omitempty"`
	Verified     bool           `json:"verified"`
	Blocked      bool           `json:"-"`
}

// ValidatePasswordStrength checks the password is at least 8 characters and
// mixes upper case, lower case and digits.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

// Authenticate looks up email and checks password. An unknown email and a
// wrong password both return errors.ErrInvalidCredentials.
func Authenticate(repo Repo, email, password string) (*User, error) {
	u, err := repo.GetByEmail(email)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticate] lookup failed")
	}
	if !u.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return u, nil
}

func (u *User) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}

// List returns a pointer to the named reading list, nil for unknown names.
func (rl *ReadingLists) List(name string) *[]string {
	switch name {
	case "favorites":
		return &rl.Favorites
	case "currentlyReading":
		return &rl.CurrentlyReading
	case "wantToRead":
		return &rl.WantToRead
	case "completed":
		return &rl.Completed
	}
	return nil
}

// Add appends bookID to the named list once. It reports false for unknown lists.
func (rl *ReadingLists) Add(name, bookID string) bool {
	list := rl.List(name)
	if list == nil {
		return false
	}
	if !slices.Contains(*list, bookID) {
		*list = append(*list, bookID)
	}
	return true
}

func (rl *ReadingLists) Remove(name, bookID string) bool {
	list := rl.List(name)
	if list == nil {
		return false
	}
	*list = slices.DeleteFunc(*list, func(id string) bool { return id == bookID })
	return true
}
