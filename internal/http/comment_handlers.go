package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-server/internal/apperr"
)

type commentRequest struct {
	Comment string `json:"comment"`
	PostID  string `json:"postId"`
}

func (h *Handler) createComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), req.PostID, req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": commentToResponse(*comment)})
}

func (h *Handler) updateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), c.Param("id"), req.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": commentToResponse(*comment)})
}

func (h *Handler) deleteComment(c *gin.Context) {
	if err := h.comments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Comment has been deleted"})
}

func (h *Handler) listPostComments(c *gin.Context) {
	comments, err := h.comments.ListByPost(c.Request.Context(), c.Param("postId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}
