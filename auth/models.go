package auth

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Preferences struct {
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
}

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Avatar       string      `json:"avatar,omitempty"`
	Verified     bool        `json:"verified"`
	Preferences  Preferences `json:"preferences"`
	ReadingLists struct {
		Favorites        []string `json:"favorites"`
		CurrentlyReading []string `json:"currentlyReading"`
		WantToRead       []string `json:"wantToRead"`
		Completed        []string `json:"completed"`
	} `json:"readingLists"`
}

type Response struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// UpdateProfileRequest changes only the non-nil fields.
type UpdateProfileRequest struct {
	Name        *string      `json:"name,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}
