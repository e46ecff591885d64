// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/floramart/floramart-backend/internal/config"
	"github.com/floramart/floramart-backend/internal/handlers"
	"github.com/floramart/floramart-backend/internal/middleware"
	"github.com/floramart/floramart-backend/internal/realtime"
	"github.com/floramart/floramart-backend/internal/services"
	"github.com/floramart/floramart-backend/internal/utils"
)

// Services bundles the long-lived services so main can start their
// background loops alongside the HTTP server.
type Services struct {
	Notifications *services.NotificationService
	Sweeper       *services.ListingSweeper
	Hub           *realtime.Hub
}

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *Services) {
	hub := realtime.NewHub()

	notificationService := services.NewNotificationService(db, cfg, hub)
	storageService, _ := services.NewStorageService(cfg)
	shippingService := services.NewShippingService(cfg)

	authService := services.NewAuthService(db, cfg)
	flowerService := services.NewFlowerService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, cfg, shippingService, notificationService)
	chatService := services.NewChatService(db, hub, notificationService)
	hub.CanJoin = chatService.IsParticipant
	followService := services.NewFollowService(db, notificationService)
	reviewService := services.NewReviewService(db, notificationService)
	paymentService := services.NewPaymentService(db, cfg, orderService, notificationService)
	adminService := services.NewAdminService(db, notificationService)
	sweeper := services.NewListingSweeper(db, cfg)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService, followService, storageService)
	flowerHandler := handlers.NewFlowerHandler(flowerService, storageService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	chatHandler := handlers.NewChatHandler(chatService, storageService, hub)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	shippingHandler := handlers.NewShippingHandler(shippingService)
	followHandler := handlers.NewFollowHandler(followService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(adminService)

	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Static file serving for local-disk uploads (development)
	if cfg.Environment != "production" {
		r.Static("/uploads", "./uploads")
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetPublicProfile)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.GET("/profile", userHandler.GetProfile)
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/avatar", middleware.UploadRateLimit(), userHandler.UploadAvatar)
				protected.GET("/following", followHandler.GetFollowing)
			}
		}

		flowers := v1.Group("/flowers")
		{
			flowers.GET("", flowerHandler.GetFlowers)
			flowers.GET("/mine", middleware.AuthRequired(), middleware.SellerRequired(), flowerHandler.GetMyFlowers)
			flowers.GET("/:id", flowerHandler.GetFlower)
			flowers.GET("/:id/reviews", reviewHandler.GetFlowerReviews)

			selling := flowers.Group("")
			selling.Use(middleware.AuthRequired(), middleware.SellerRequired())
			{
				selling.POST("", flowerHandler.CreateFlower)
				selling.PUT("/:id", flowerHandler.UpdateFlower)
				selling.DELETE("/:id", flowerHandler.DeleteFlower)
				selling.POST("/images", middleware.UploadRateLimit(), flowerHandler.UploadImages)
			}
		}

		v1.GET("/categories", flowerHandler.GetCategories)

		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.POST("/custom-items", middleware.SellerRequired(), cartHandler.AddCustomItem)
			cart.PUT("/items/:id", cartHandler.UpdateQuantity)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("/checkout", orderHandler.Checkout)
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/selling", middleware.SellerRequired(), orderHandler.GetSellingOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/delivery", orderHandler.UpdateDeliveryStatus)
		}

		chat := v1.Group("/chat")
		chat.Use(middleware.AuthRequired())
		{
			chat.POST("/create", chatHandler.CreateConversation)
			chat.GET("/conversations", chatHandler.GetConversations)
			chat.POST("/send", middleware.UploadRateLimit(), chatHandler.SendMessage)
			chat.GET("/history/:id", chatHandler.GetHistory)
			chat.POST("/conversations/:id/read", chatHandler.MarkRead)
			chat.DELETE("/messages/:id", chatHandler.DeleteMessage)
		}

		v1.GET("/ws", middleware.AuthRequired(), chatHandler.ServeWS)

		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
		}

		shipping := v1.Group("/shipping")
		{
			shipping.POST("/calculate-shipping-fee", shippingHandler.CalculateFee)
			shipping.GET("/districts", shippingHandler.GetDistricts)
		}

		sellers := v1.Group("/sellers")
		{
			sellers.GET("/:id/followers", followHandler.GetFollowers)

			following := sellers.Group("")
			following.Use(middleware.AuthRequired())
			{
				following.POST("/:id/follow", followHandler.Follow)
				following.DELETE("/:id/follow", followHandler.Unfollow)
			}
		}

		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.CreateReview)
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.GET("", paymentHandler.GetPaymentHistory)
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		withdrawals := v1.Group("/withdrawals")
		withdrawals.Use(middleware.AuthRequired(), middleware.SellerRequired())
		{
			withdrawals.POST("", adminHandler.RequestWithdrawal)
			withdrawals.GET("/balance", adminHandler.GetBalance)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/orders", orderHandler.GetAllOrders)
			admin.GET("/withdrawals", adminHandler.GetWithdrawals)
			admin.PUT("/withdrawals/:id", adminHandler.ProcessWithdrawal)
			admin.POST("/orders/:id/refund", paymentHandler.RefundPayment)
		}
	}

	return r, &Services{
		Notifications: notificationService,
		Sweeper:       sweeper,
		Hub:           hub,
	}
}
