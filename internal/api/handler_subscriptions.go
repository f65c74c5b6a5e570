package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/model"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription creates or replaces the caller's push subscription. A
// subscription always belongs to the signed-in user; re-registering an
// endpoint moves it.
func (h *Handler) PutSubscription(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "endpoint, p256dh and auth are required")
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
		UserID:   user.ID,
	}
	if err := h.store.DB().Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "user_id"}),
	}).Create(&subscription).Error; err != nil {
		respondError(c, http.StatusBadRequest, "Could not save subscription")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success"})
}

// GetSubscription reports the caller's registered push endpoints.
func (h *Handler) GetSubscription(c *gin.Context) {
	user := auth.CurrentUser(c)

	var subscriptions []model.PushSubscription
	if err := h.store.DB().Where("user_id = ?", user.ID).Find(&subscriptions).Error; err != nil {
		respondError(c, http.StatusBadRequest, "Could not load subscriptions")
		return
	}

	endpoints := make([]string, 0, len(subscriptions))
	for _, sub := range subscriptions {
		endpoints = append(endpoints, sub.Endpoint)
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "endpoints": endpoints})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's push subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "endpoint is required")
		return
	}

	var subscription model.PushSubscription
	err := h.store.DB().
		Where("endpoint = ? AND user_id = ?", req.Endpoint, user.ID).
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, "Subscription not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not delete subscription")
		return
	}
	if err := h.store.DB().Delete(&subscription).Error; err != nil {
		respondError(c, http.StatusBadRequest, "Could not delete subscription")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
