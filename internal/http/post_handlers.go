package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-server/internal/apperr"
	"blog-server/internal/service"
)

type updatePostRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Categories  *[]string `json:"categories"`
}

func (h *Handler) createPost(c *gin.Context) {
	photo, done, err := h.formImage(c, "photo")
	defer done()
	if err != nil {
		h.respondError(c, err)
		return
	}

	categories, err := parseCategories(c.PostFormArray("categories"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), service.PostInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Categories:  categories,
	}, photo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Post created successfully",
		"data":    postToResponse(*post),
	})
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": postsToResponse(posts)})
}

func (h *Handler) getPost(c *gin.Context) {
	post, err := h.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": postToResponse(*post)})
}

func (h *Handler) getPostBySlug(c *gin.Context) {
	post, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": postToResponse(*post)})
}

func (h *Handler) listUserPosts(c *gin.Context) {
	posts, err := h.posts.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": postsToResponse(posts)})
}

func (h *Handler) updatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	update := service.PostUpdate{Title: req.Title, Description: req.Description}
	if req.Categories != nil {
		update.Categories = *req.Categories
		update.SetCategories = true
	}

	post, err := h.posts.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post updated successfully",
		"data":    postToResponse(*post),
	})
}

func (h *Handler) updatePostPhoto(c *gin.Context) {
	photo, done, err := h.formImage(c, "photo")
	defer done()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if photo == nil {
		h.respondError(c, apperr.Validation("Photo is required."))
		return
	}

	post, err := h.posts.UpdatePhoto(c.Request.Context(), c.Param("id"), *photo)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Post image updated successfully",
		"data":    postToResponse(*post),
	})
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Post deleted successfully"})
}
