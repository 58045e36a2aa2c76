package http

import (
	"time"

	"blog-server/internal/domain"
)

type UserResponse struct {
	ID         string `json:"_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type PostResponse struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Username    string   `json:"username"`
	UserID      string   `json:"userId"`
	Categories  []string `json:"categories"`
	Photo       string   `json:"photo"`
	Slug        string   `json:"slug"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

type CommentResponse struct {
	ID        string `json:"_id"`
	Comment   string `json:"comment"`
	Author    string `json:"author"`
	PostID    string `json:"postId"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// userToResponse never carries the password hash.
func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		ProfilePic: mediaURL(user.ProfilePic),
		CreatedAt:  formatTime(user.CreatedAt),
		UpdatedAt:  formatTime(user.UpdatedAt),
	}
}

func postToResponse(post domain.Post) PostResponse {
	categories := post.Categories
	if categories == nil {
		categories = []string{}
	}
	return PostResponse{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Username:    post.Username,
		UserID:      post.UserID,
		Categories:  categories,
		Photo:       mediaURL(post.Photo),
		Slug:        post.Slug,
		CreatedAt:   formatTime(post.CreatedAt),
		UpdatedAt:   formatTime(post.UpdatedAt),
	}
}

func commentToResponse(comment domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Comment:   comment.Comment,
		Author:    comment.Author,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		CreatedAt: formatTime(comment.CreatedAt),
		UpdatedAt: formatTime(comment.UpdatedAt),
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}

// mediaURL maps a storage key to the path it is served from.
func mediaURL(key string) string {
	if key == "" {
		return ""
	}
	return "/uploads/" + key
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
