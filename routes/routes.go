package routes

import (
	"net/http"

	"deal-pipeline-api/controllers"
	"deal-pipeline-api/middleware"
	"deal-pipeline-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, h *controllers.WorkflowHandler, auth gin.HandlerFunc) {
	v1 := router.Group("/api/v1")
	{
		// Public routes
		v1.GET("/health", controllers.Health)

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(auth)
		{
			protected.GET("/stages", controllers.GetStages)

			deals := protected.Group("/deals")
			{
				// Owner or admin, checked by the service
				deals.GET("/:id", h.GetDeal)

				admin := deals.Group("", middleware.RequireRole(models.RoleAdmin))
				admin.POST("", h.CreateDeal)
				admin.GET("/:id/activity", h.ListDealActivity)
				admin.POST("/:id/stage", h.AdvanceStage)
				admin.POST("/:id/handoff", h.SetHandoff)
				admin.POST("/:id/release", h.AuthorizeRelease)
				admin.POST("/:id/partner-alerts", h.SendPartnerAlerts)
			}

			protected.POST("/documents/:id/reject", middleware.RequireRole(models.RoleAdmin), h.RejectDocument)

			partners := protected.Group("/partners", middleware.RequireRole(models.RoleAdmin))
			{
				partners.GET("/:id/preferences", h.GetPartnerPreferences)
				partners.PUT("/:id/preferences", h.UpdatePartnerPreferences)
			}

			// Partner portal; the partner is always the caller's own binding
			partner := protected.Group("/partner", middleware.RequireRole(models.RolePartner))
			{
				partner.POST("/deals/:id/actions", h.RecordPartnerAction)
				partner.GET("/deals/:id/package", h.GetDealPackage)
				partner.GET("/releases", h.ListPartnerReleases)
				partner.GET("/preferences", h.GetMyPreferences)
				partner.PUT("/preferences", h.UpdateMyPreferences)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
