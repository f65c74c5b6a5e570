package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/auth"
)

// DeleteUser handles DELETE /api/admin/users/:id. Rooms held by the user are
// released back to their hostels before the account disappears.
func (h *Handler) DeleteUser(c *gin.Context) {
	actor := auth.CurrentUser(c)

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}
	if userID == actor.ID {
		respondError(c, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	if err := h.alloc.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		respondAllocError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "User deleted"})
}

type updateRoomRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
}

// UpdateAllocationRoom handles PATCH /api/admin/allocations/:id.
func (h *Handler) UpdateAllocationRoom(c *gin.Context) {
	actor := auth.CurrentUser(c)

	allocationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid allocation ID")
		return
	}

	var req updateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "room_number is required")
		return
	}

	allocation, err := h.alloc.UpdateRoomNumber(c.Request.Context(), actor, allocationID, req.RoomNumber)
	if err != nil {
		respondAllocError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Room number updated",
		"room_number": allocation.RoomNumber,
	})
}
