package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/auth"
)

type allocateRequest struct {
	HostelID   int64  `json:"hostel_id" binding:"required"`
	StudentID  int64  `json:"student_id"`
	RoomNumber string `json:"room_number"`
}

// Allocate handles POST /api/allocate/. A request without student_id is a
// self-service application; any explicit student_id from an admin, their own
// included, uses the override path.
func (h *Handler) Allocate(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "hostel_id is required")
		return
	}

	if req.StudentID != 0 && user.IsAdmin() {
		allocation, err := h.alloc.AdminAllocate(c.Request.Context(), user, req.StudentID, req.HostelID, req.RoomNumber)
		if err != nil {
			respondAllocError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      "success",
			"message":     "Student allocated successfully",
			"room_number": allocation.RoomNumber,
		})
		return
	}
	if req.StudentID != 0 && req.StudentID != user.ID {
		respondError(c, http.StatusForbidden, "Admin access required")
		return
	}

	allocation, err := h.alloc.Apply(c.Request.Context(), user, req.HostelID)
	if err != nil {
		respondAllocError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Room allocated successfully",
		"room_number": allocation.RoomNumber,
	})
}
