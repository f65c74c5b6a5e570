package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/model"
)

const contextUserKey = "currentUser"

// LoadUser resolves the session cookie into the current user, if any, and
// stores it on the request context. It never rejects a request on its own.
func (s *Service) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cfg.CookieName)
		if err != nil {
			c.Next()
			return
		}
		user, err := s.UserForToken(c.Request.Context(), token)
		if err != nil {
			log.Printf("resolve session: %v", err)
			c.Next()
			return
		}
		if user != nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(contextUserKey); ok {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}

// RequireUser aborts with 401 when the request carries no valid session.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 401 for anonymous requests and 403 for
// authenticated non-admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required",
			})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Admin access required",
			})
			return
		}
		c.Next()
	}
}
