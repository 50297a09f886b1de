package entity

// User is a roster entry persisted in the durable store.
// Email is stored trimmed and lowercased and is the roster's unique key.
//
// PasswordHash holds whatever the configured hasher produced; the plaintext
// password is never stored.
type User struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

// AuthState is the single session record: who is logged in, plus the roster.
type AuthState struct {
	CurrentUser *User  `json:"currentUser"`
	Users       []User `json:"users"`
}

// Authenticated reports whether a session user is present.
func (s *AuthState) Authenticated() bool {
	return s != nil && s.CurrentUser != nil
}
