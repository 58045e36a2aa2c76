package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-server/internal/apperr"
	"blog-server/internal/service"
)

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userToResponse(*user)})
}

func (h *Handler) getUserByUsername(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": userToResponse(*user)})
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperr.Validation("Invalid request body"))
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.Param("id"), service.ProfileInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data":    userToResponse(*user),
	})
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User has been deleted"})
}

func (h *Handler) updateProfilePicture(c *gin.Context) {
	upload, done, err := h.formImage(c, "photo")
	defer done()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if upload == nil {
		h.respondError(c, apperr.Validation("No file uploaded"))
		return
	}

	user, err := h.users.UpdateProfilePicture(c.Request.Context(), c.Param("id"), *upload)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile picture updated",
		"data":    userToResponse(*user),
	})
}
