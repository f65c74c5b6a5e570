package api

import (
	"encoding/csv"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostel-allocation-backend/internal/model"
)

// ExportAllocationsCSV handles GET /api/export/allocations.csv.
func (h *Handler) ExportAllocationsCSV(c *gin.Context) {
	var allocations []model.Allocation
	if err := h.store.DB().
		Preload("Student").
		Preload("Hostel").
		Order("id").
		Find(&allocations).Error; err != nil {
		log.Printf("export allocations: %v", err)
		respondError(c, http.StatusBadRequest, "Something went wrong, please try again")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="allocations.csv"`)

	w := csv.NewWriter(c.Writer)
	records := [][]string{{"ID", "Student", "Hostel", "Room", "Allocated On"}}
	for _, a := range allocations {
		records = append(records, []string{
			strconv.FormatInt(a.ID, 10),
			a.Student.Username,
			a.Hostel.Name,
			a.RoomNumber,
			a.AllocatedOn.Format("2006-01-02 15:04:05"),
		})
	}
	if err := w.WriteAll(records); err != nil {
		log.Printf("write allocations csv: %v", err)
	}
}
