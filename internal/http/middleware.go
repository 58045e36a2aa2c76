package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"

	"blog-server/internal/apperr"
	"blog-server/internal/auth"
)

const (
	sessionCookie = "token"
	userIDKey     = "user_id"
)

// requireSession resolves the token cookie into a verified user bound to the
// request context, or aborts with 401.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		user, outcome, err := h.sessions.Authenticate(c.Request.Context(), token)
		h.metrics.ObserveSession(string(outcome))
		if err != nil {
			h.respondError(c, err)
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		h.metrics.ObserveRequest(c.Request.Method, c.FullPath(), status)

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if id := c.GetString(userIDKey); id != "" {
			fields["user_id"] = id
		}
		entry := h.log.WithFields(fields)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// respondError writes the failure envelope. Server side failures are logged
// with their detail and reported to the client without it.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		entry := h.log.WithError(err).WithFields(logrus.Fields{
			"code":   apperr.Code(err),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		if oopsErr, ok := oops.AsOops(err); ok {
			entry = entry.WithFields(logrus.Fields(oopsErr.Context()))
		}
		entry.Error("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": apperr.PublicMessage(err)})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(h.opts.TokenTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}
