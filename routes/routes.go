package routes

import (
	"ibaclean-backend/config"
	"ibaclean-backend/controllers"
	"ibaclean-backend/models"
	"ibaclean-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Controllers struct {
	Booking *controllers.BookingController
	Catalog *controllers.CatalogController
	Admin   *controllers.AdminController
	Auth    *controllers.AuthController
}

func SetupRouter(cfg *config.Config, logger *logrus.Logger, h Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := make(map[string]bool, len(cfg.Server.CORSOrigins))
	for _, o := range cfg.Server.CORSOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
	}))

	r.Use(config.PerformanceLogger(logger))

	r.GET("/health", controllers.Health)

	authn := utils.AuthMiddleware(cfg.JWT.Secret)

	auth := r.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authn, h.Auth.Me)
	}

	api := r.Group("/api")
	{
		api.GET("/services", h.Catalog.GetServices)
		api.GET("/services/pricing", h.Catalog.GetPricing)
		api.POST("/quote", h.Catalog.Quote)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.Booking.CreateBooking)
			bookings.GET("/:id", h.Booking.GetBooking)
			bookings.GET("", authn, h.Booking.GetMyBookings)
			bookings.POST("/:id/cancel", authn, h.Booking.CancelMyBooking)
		}

		admin := api.Group("/admin", authn, utils.RequireRole(models.RoleAdmin))
		{
			admin.GET("/bookings", h.Admin.ListBookings)
			admin.PATCH("/bookings/:id/status", h.Admin.UpdateBookingStatus)
			admin.GET("/bookings/:id/notifications", h.Admin.GetBookingNotifications)
			admin.POST("/bookings/:id/resend", h.Admin.ResendNotifications)

			admin.PUT("/pricing/:propertyType", h.Admin.UpdatePricing)

			admin.GET("/addons", h.Admin.ListAddOns)
			admin.POST("/addons", h.Admin.CreateAddOn)
			admin.PUT("/addons/:id", h.Admin.UpdateAddOn)

			admin.GET("/analytics", h.Admin.GetAnalytics)
		}
	}

	return r
}
