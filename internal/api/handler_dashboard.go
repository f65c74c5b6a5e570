package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/model"
)

// Dashboard handles GET /api/dashboard/ for any authenticated user. Students
// see their own allocation; admins see all of them.
func (h *Handler) Dashboard(c *gin.Context) {
	user := auth.CurrentUser(c)
	db := h.store.DB()

	var hostels []model.Hostel
	if err := db.Find(&hostels).Error; err != nil {
		log.Printf("dashboard: fetch hostels: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	hostelList := make([]HostelResponse, 0, len(hostels))
	for _, hostel := range hostels {
		hostelList = append(hostelList, HostelResponse{
			ID:         hostel.ID,
			Name:       hostel.Name,
			Location:   hostel.Location,
			TotalRooms: hostel.Remaining(),
		})
	}

	query := db.Preload("Student").Preload("Hostel").Order("id")
	if !user.IsAdmin() {
		query = query.Where("student_id = ?", user.ID)
	}
	var allocations []model.Allocation
	if err := query.Find(&allocations).Error; err != nil {
		log.Printf("dashboard: fetch allocations: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	allocationList := make([]gin.H, 0, len(allocations))
	for i := range allocations {
		allocationList = append(allocationList, allocationPayload(&allocations[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"user":        userPayload(user),
		"hostels":     hostelList,
		"allocations": allocationList,
	})
}

// AdminDashboard handles GET /api/admin/dashboard/.
func (h *Handler) AdminDashboard(c *gin.Context) {
	db := h.store.DB()

	var totalUsers, totalAllocations int64
	var hostels []model.Hostel
	if err := db.Model(&model.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("admin dashboard: count users: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	if err := db.Model(&model.Allocation{}).Count(&totalAllocations).Error; err != nil {
		log.Printf("admin dashboard: count allocations: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	if err := db.Find(&hostels).Error; err != nil {
		log.Printf("admin dashboard: fetch hostels: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	roomsAvailable := 0
	for _, hostel := range hostels {
		roomsAvailable += hostel.Remaining()
	}

	var users []model.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		log.Printf("admin dashboard: fetch users: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	userList := make([]gin.H, 0, len(users))
	for i := range users {
		userList = append(userList, userPayload(&users[i]))
	}

	var allocations []model.Allocation
	if err := db.Preload("Student").Preload("Hostel").Order("id").Find(&allocations).Error; err != nil {
		log.Printf("admin dashboard: fetch allocations: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	allocationList := make([]gin.H, 0, len(allocations))
	for i := range allocations {
		allocationList = append(allocationList, allocationPayload(&allocations[i]))
	}

	var activities []model.ActivityLog
	if err := db.Order("id DESC").Limit(100).Find(&activities).Error; err != nil {
		log.Printf("admin dashboard: fetch activities: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}
	activityList := make([]gin.H, 0, len(activities))
	for _, entry := range activities {
		activityList = append(activityList, gin.H{
			"id":         entry.ID,
			"user_id":    entry.UserID,
			"action":     entry.Action,
			"details":    entry.Details,
			"created_at": entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"summary": gin.H{
			"total_users":       totalUsers,
			"total_hostels":     len(hostels),
			"total_allocations": totalAllocations,
			"rooms_available":   roomsAvailable,
		},
		"users":       userList,
		"allocations": allocationList,
		"activities":  activityList,
	})
}
