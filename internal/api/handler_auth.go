package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/model"
)

func userPayload(u *model.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"first_name": u.FirstName,
		"email":      u.Email,
		"role":       u.Role,
		"is_staff":   u.IsAdmin(),
	}
}

// Session handles GET /api/session/ and reports the current user, if any.
func (h *Handler) Session(c *gin.Context) {
	user := auth.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{"status": "success", "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": userPayload(user)})
}

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Password  string `json:"password" binding:"required"`
}

// Register handles POST /api/register/ and signs the new student in.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.FirstName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			respondError(c, http.StatusConflict, "Username is already taken")
		case errors.Is(err, auth.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, "Password must be at least 8 characters")
		case errors.Is(err, auth.ErrValidation):
			respondError(c, http.StatusBadRequest, "Invalid input")
		default:
			log.Printf("register failed: %v", err)
			respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		}
		return
	}

	h.startSession(c, user)
	c.JSON(http.StatusCreated, gin.H{"status": "success", "user": userPayload(user)})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/login/.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Printf("login failed: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}

	h.startSession(c, user)
	c.JSON(http.StatusOK, gin.H{"status": "success", "user": userPayload(user)})
}

// Logout handles POST /api/logout/.
func (h *Handler) Logout(c *gin.Context) {
	token, err := c.Cookie(h.auth.CookieName())
	if err == nil {
		if err := h.auth.EndSession(c.Request.Context(), token); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	c.SetCookie(h.auth.CookieName(), "", -1, "/", "", h.auth.Secure(), true)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged out"})
}

func (h *Handler) startSession(c *gin.Context, user *model.User) {
	session, err := h.auth.StartSession(c.Request.Context(), user)
	if err != nil {
		log.Printf("start session for user %d: %v", user.ID, err)
		return
	}
	c.SetCookie(h.auth.CookieName(), session.Token, int(h.auth.TTL().Seconds()), "/", "", h.auth.Secure(), true)
}
