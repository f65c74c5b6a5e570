package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/model"
)

// allocationPayload is the allocation shape shared by status and dashboards.
func allocationPayload(a *model.Allocation) gin.H {
	return gin.H{
		"id":           a.ID,
		"student":      a.Student.Username,
		"hostel_name":  a.Hostel.Name,
		"room_number":  a.RoomNumber,
		"allocated_on": a.AllocatedOn,
	}
}

// AllocationStatus handles GET /api/status/ for the signed-in student.
func (h *Handler) AllocationStatus(c *gin.Context) {
	user := auth.CurrentUser(c)

	var allocation model.Allocation
	err := h.store.DB().
		Preload("Student").
		Preload("Hostel").
		Where("student_id = ?", user.ID).
		Order("id DESC").
		First(&allocation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "allocation": nil})
		return
	}
	if err != nil {
		log.Printf("fetch allocation status for user %d: %v", user.ID, err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "allocation": allocationPayload(&allocation)})
}
