package domain

import "time"

// User represents a registered author of the platform.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	ProfilePic   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the user without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// UserPatch carries the optional fields of a profile update. Nil means untouched.
type UserPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	ProfilePic   *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.PasswordHash == nil && p.ProfilePic == nil
}
