package users

// Repo stores mock API accounts. Lookups of unknown users return
// errors.ErrUserNotFound. Create returns errors.ErrUserExists when the email
// is already registered.
type Repo interface {
	Create(user *User) error
	Upsert(user *User) error
	Delete(email string) error
	GetByEmail(email string) (*User, error)
	GetByID(ID string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetVerified(email string, verified bool) error
}
