package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	alloc   *alloc.Service
	auth    *auth.Service
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, allocSvc *alloc.Service, authSvc *auth.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		alloc:   allocSvc,
		auth:    authSvc,
		webpush: webpushOptions,
	}
}
