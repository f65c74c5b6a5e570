package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/store"
)

// respondError writes the error envelope with the given status.
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": "error", "message": message})
}

// respondAllocError maps allocation failures onto the HTTP surface. Internal
// error text never reaches the client.
func respondAllocError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, alloc.ErrAlreadyAllocated):
		respondError(c, http.StatusConflict, "You already have a room allocated")
	case errors.Is(err, store.ErrHostelFull):
		respondError(c, http.StatusConflict, "Hostel is full")
	case errors.Is(err, store.ErrHostelNotFound):
		respondError(c, http.StatusNotFound, "Hostel not found")
	case errors.Is(err, store.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "User not found")
	case errors.Is(err, store.ErrAllocationNotFound):
		respondError(c, http.StatusNotFound, "Allocation not found")
	case errors.Is(err, alloc.ErrValidation):
		respondError(c, http.StatusBadRequest, "Invalid input")
	default:
		log.Printf("allocation request failed: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
	}
}
