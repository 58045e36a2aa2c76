package domain

import "time"

// Post is a blog entry owned by the user referenced in UserID.
// UserID never changes after creation; Username is a display copy kept in
// sync on a best-effort basis when the owner renames.
type Post struct {
	ID          string
	Title       string
	Description string
	Username    string
	UserID      string
	Categories  []string
	Photo       string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        string
	Comment   string
	Author    string
	PostID    string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
