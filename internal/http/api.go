package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-server/internal/auth"
	"blog-server/internal/metrics"
	"blog-server/internal/service"
)

// Options are the transport settings taken from configuration at startup.
type Options struct {
	AllowedOrigins []string
	CookieSecure   bool
	TokenTTL       time.Duration
	MaxUploadBytes int64
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	posts    service.PostService
	comments service.CommentService
	images   *service.ImageStore
	sessions *auth.Authenticator
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	opts     Options
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	comments service.CommentService,
	images *service.ImageStore,
	sessions *auth.Authenticator,
	m *metrics.Metrics,
	log logrus.FieldLogger,
	opts Options,
) *Handler {
	return &Handler{
		users:    users,
		posts:    posts,
		comments: comments,
		images:   images,
		sessions: sessions,
		metrics:  m,
		log:      log,
		opts:     opts,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.opts.AllowedOrigins), h.accessLog())

	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	router.GET("/uploads/*key", h.serveUpload)

	session := h.requireSession()

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/logout", h.logout)
		authGroup.GET("/refetch", session, h.refetch)

		users := api.Group("/users")
		users.GET("", h.listUsers)
		users.GET("/username/:username", h.getUserByUsername)
		users.GET("/:id", h.getUser)
		users.PATCH("/:id", session, h.updateUser)
		users.DELETE("/:id", session, h.deleteUser)
		users.PATCH("/:id/profile-picture", session, h.updateProfilePicture)

		posts := api.Group("/posts")
		posts.POST("/create", session, h.createPost)
		posts.GET("", h.listPosts)
		posts.GET("/slug/:slug", h.getPostBySlug)
		posts.GET("/user/:userId", h.listUserPosts)
		posts.GET("/:id", h.getPost)
		posts.PUT("/:id", session, h.updatePost)
		posts.PATCH("/:id/photo", session, h.updatePostPhoto)
		posts.DELETE("/:id", session, h.deletePost)

		comments := api.Group("/comments")
		comments.POST("/create", session, h.createComment)
		comments.PUT("/:id", session, h.updateComment)
		comments.DELETE("/:id", session, h.deleteComment)
		comments.GET("/post/:postId", h.listPostComments)
	}
}

// corsMiddleware echoes allowed origins so browsers may send the session
// cookie cross-site. A literal "*" entry allows any origin.
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	_, wildcard := allowed["*"]

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; origin != "" && (ok || wildcard) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
