package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/model"
)

// HostelResponse represents the API response for a single hostel. The
// total_rooms field reports rooms still available, matching what applicants
// care about.
type HostelResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	TotalRooms int    `json:"total_rooms"`
}

// GetHostels handles GET /api/hostels/.
func (h *Handler) GetHostels(c *gin.Context) {
	var hostels []model.Hostel
	if err := h.store.DB().Find(&hostels).Error; err != nil {
		respondError(c, http.StatusServiceUnavailable, "Hostel listing is temporarily unavailable")
		return
	}

	responses := make([]HostelResponse, 0, len(hostels))
	for _, hostel := range hostels {
		responses = append(responses, HostelResponse{
			ID:         hostel.ID,
			Name:       hostel.Name,
			Location:   hostel.Location,
			TotalRooms: hostel.Remaining(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "hostels": responses})
}
