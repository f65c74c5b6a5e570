package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/alloc"
	"hostel-allocation-backend/internal/auth"
	"hostel-allocation-backend/internal/mw"
	"hostel-allocation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, s store.Store, allocSvc *alloc.Service, authSvc *auth.Service, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, allocSvc, authSvc, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter, authSvc.LoadUser())
	{
		api.GET("/session/", handler.Session)
		api.POST("/register/", handler.Register)
		api.POST("/login/", handler.Login)
		api.POST("/logout/", handler.Logout)

		api.GET("/hostels/", caching, handler.GetHostels)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		authed := api.Group("", auth.RequireUser())
		{
			authed.GET("/status/", handler.AllocationStatus)
			authed.POST("/allocate/", handler.Allocate)
			authed.GET("/dashboard/", handler.Dashboard)
			authed.GET("/export/allocations.csv", handler.ExportAllocationsCSV)

			authed.GET("/subscriptions", handler.GetSubscription)
			authed.PUT("/subscriptions", handler.PutSubscription)
			authed.DELETE("/subscriptions", handler.DeleteSubscription)
		}

		admin := api.Group("/admin", auth.RequireAdmin())
		{
			admin.GET("/dashboard/", handler.AdminDashboard)
			admin.DELETE("/users/:id", handler.DeleteUser)
			admin.PATCH("/allocations/:id", handler.UpdateAllocationRoom)
		}
	}

	return r
}
