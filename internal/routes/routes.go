package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/townbook-za/townbook/internal/audit"
	"github.com/townbook-za/townbook/internal/cache"
	"github.com/townbook-za/townbook/internal/config"
	"github.com/townbook-za/townbook/internal/handlers"
	infraRepo "github.com/townbook-za/townbook/internal/infra/repository"
	"github.com/townbook-za/townbook/internal/middleware"
	"github.com/townbook-za/townbook/internal/notify"
	"github.com/townbook-za/townbook/internal/payfast"
	"github.com/townbook-za/townbook/internal/realtime"
	"github.com/townbook-za/townbook/internal/storage"
	ucBooking "github.com/townbook-za/townbook/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	notifier := notify.New(db, rdb, log)
	availCache := cache.NewAvailabilityCache(rdb)
	payfastClient := payfast.New(cfg.PayFast)
	uploader := storage.NewUploader(cfg.S3)
	hub := realtime.NewHub(rdb, log)

	limiter := middleware.NewRateLimiter(rdb, cfg.RateLimitPerMinute, log)

	// ======================================================
	// USE CASES — BOOKINGS
	// ======================================================
	createBookingUC := ucBooking.NewCreateBooking(bookingRepo, auditDispatcher)
	confirmBookingUC := ucBooking.NewConfirmBooking(bookingRepo, auditDispatcher)
	cancelBookingUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher)
	completeBookingUC := ucBooking.NewCompleteBooking(bookingRepo, auditDispatcher)
	noShowUC := ucBooking.NewMarkNoShow(bookingRepo, auditDispatcher)
	rescheduleUC := ucBooking.NewRescheduleBooking(bookingRepo, auditDispatcher)
	availabilityUC := ucBooking.NewGetAvailability(bookingRepo)
	listByDateUC := ucBooking.NewListBookingsByDate(bookingRepo)
	listByMonthUC := ucBooking.NewListBookingsByMonth(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	businessHandler := handlers.NewBusinessHandler(db, uploader)
	serviceHandler := handlers.NewServiceHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(db, createBookingUC, availabilityUC, availCache, notifier)

	bookingHandler := handlers.NewBookingHandler(
		db,
		createBookingUC,
		confirmBookingUC,
		cancelBookingUC,
		completeBookingUC,
		noShowUC,
		rescheduleUC,
		listByDateUC,
		listByMonthUC,
		availCache,
		notifier,
	)

	paymentHandler := handlers.NewPaymentHandler(db, payfastClient, notifier, auditDispatcher, log)
	reviewHandler := handlers.NewReviewHandler(db)
	messageHandler := handlers.NewMessageHandler(db, notifier)
	notificationHandler := handlers.NewNotificationHandler(db)
	adminHandler := handlers.NewAdminHandler(db, notifier)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC DIRECTORY + BOOKING
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(limiter.Middleware())
		{
			publicAPI.GET("/businesses", publicHandler.SearchBusinesses)
			publicAPI.GET("/categories", publicHandler.ListCategories)
			publicAPI.GET("/businesses/:slug", publicHandler.GetBusiness)
			publicAPI.GET("/businesses/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/businesses/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/businesses/:slug/bookings", publicHandler.CreateBooking)
			publicAPI.GET("/businesses/:slug/reviews", reviewHandler.ListForBusiness)
		}

		// ------------------------------
		// PAYMENT GATEWAY WEBHOOK
		// ------------------------------
		api.POST("/payments/notify", paymentHandler.Notify)

		// ------------------------------
		// AUTH
		// ------------------------------
		auth := api.Group("/auth")
		auth.Use(limiter.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/register-business", authHandler.RegisterBusiness)
			auth.POST("/login", authHandler.Login)
		}

		// ------------------------------
		// AUTHENTICATED (any role)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/ws", hub.Serve)

			secured.GET("/notifications", notificationHandler.List)
			secured.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
			secured.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)

			secured.POST("/messages", messageHandler.Send)
			secured.GET("/messages/conversations", messageHandler.ListConversations)
			secured.GET("/messages/:userId", messageHandler.GetThread)

			secured.POST("/businesses/:slug/reviews", reviewHandler.Create)
			secured.DELETE("/reviews/:id", reviewHandler.Delete)

			secured.POST("/bookings", bookingHandler.CreateAsCustomer)
			secured.GET("/bookings", bookingHandler.ListMine)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.CancelMine)

			secured.POST("/payments/initiate", paymentHandler.Initiate)
			secured.GET("/payments", paymentHandler.ListMine)
			secured.GET("/payments/booking/:bookingId", paymentHandler.GetForBooking)
		}

		// ------------------------------
		// BUSINESS OWNERS / STAFF
		// ------------------------------
		business := api.Group("/me")
		business.Use(middleware.AuthMiddleware(cfg), middleware.RequireBusiness())
		{
			business.GET("/business", businessHandler.GetMeBusiness)
			business.PATCH("/business", businessHandler.UpdateMeBusiness)
			business.POST("/business/logo", businessHandler.UploadLogo)

			business.GET("/services", serviceHandler.List)
			business.POST("/services", serviceHandler.Create)
			business.PATCH("/services/:id", serviceHandler.Update)

			business.GET("/working-hours", workingHoursHandler.Get)
			business.PUT("/working-hours", workingHoursHandler.Update)

			business.POST("/bookings", bookingHandler.Create)
			business.GET("/bookings", bookingHandler.ListByDate)
			business.GET("/bookings/month", bookingHandler.ListByMonth)
			business.PATCH("/bookings/:id/confirm", bookingHandler.Confirm)
			business.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			business.PATCH("/bookings/:id/complete", bookingHandler.Complete)
			business.PATCH("/bookings/:id/no-show", bookingHandler.NoShow)
			business.PATCH("/bookings/:id/reschedule", bookingHandler.Reschedule)

			business.GET("/audit-logs", auditLogsHandler.List)
		}

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole("admin"))
		{
			admin.GET("/categories", adminHandler.ListCategories)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.PATCH("/categories/:id", adminHandler.UpdateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)

			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)

			admin.GET("/businesses", adminHandler.ListBusinesses)
			admin.PATCH("/businesses/:id/approve", adminHandler.ApproveBusiness)
			admin.PATCH("/businesses/:id/suspend", adminHandler.SuspendBusiness)

			admin.PATCH("/payments/:id/refund", adminHandler.RefundPayment)

			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSettings)

			admin.GET("/audit-logs", adminHandler.ListAuditLogs)
		}
	}
}
