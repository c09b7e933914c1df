package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/config"
	"github.com/vuongnd/learnify/internal/handlers"
	"github.com/vuongnd/learnify/internal/middleware"
	"github.com/vuongnd/learnify/internal/payment"
	"github.com/vuongnd/learnify/internal/service"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	paypalClient, err := config.InitPayPalClient()
	if err != nil {
		return fmt.Errorf("failed to initialize paypal client: %v", err)
	}

	registry := payment.NewRegistry(
		payment.NewVNPay(config.LoadVNPayConfig()),
		payment.NewPayPal(paypalClient, config.LoadPayPalConfig()),
	)

	cart := service.NewRedisCart(config.InitRedis(cfg))
	notifier := service.NewNotifier(db, config.LoadSMTPConfig(), logger)
	paymentService := service.NewPaymentService(db, cart, registry, notifier, logger, config.LoadSettlementConfig())

	r := gin.Default()

	setupRoutes(r, db, paymentService, cart)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, paymentService *service.PaymentService, cart service.CartStore) {
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.PaymentMiddleware(paymentService, cart))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		coursePublic := public.Group("/courses")
		{
			coursePublic.GET("", handlers.ListCourses)
			coursePublic.GET("/:id", handlers.GetCourse)
		}

		public.GET("/categories", handlers.ListCategories)

		// Gateways call back unauthenticated.
		public.GET("/payments/callback/:provider", handlers.PaymentCallback)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		courseProtected := protected.Group("/courses")
		{
			courseProtected.POST("", handlers.CreateCourse)
			courseProtected.PUT("/:id", handlers.UpdateCourse)
			courseProtected.DELETE("/:id", handlers.DeleteCourse)
		}

		protected.POST("/categories", middleware.RequireRole("admin"), handlers.CreateCategory)

		cartGroup := protected.Group("/cart")
		{
			cartGroup.GET("", handlers.GetCart)
			cartGroup.POST("/items", handlers.AddCartItem)
			cartGroup.DELETE("/items/:courseId", handlers.RemoveCartItem)
		}

		couponGroup := protected.Group("/coupons")
		{
			couponGroup.POST("", handlers.CreateCoupon)
			couponGroup.GET("", handlers.ListMyCoupons)
			couponGroup.DELETE("/:id", handlers.DeleteCoupon)
		}

		paymentGroup := protected.Group("/payments")
		{
			paymentGroup.POST("", handlers.CreatePayment)
			paymentGroup.GET("/:orderId/qr", handlers.PaymentQR)
		}

		payoutGroup := protected.Group("/payouts")
		{
			payoutGroup.POST("", handlers.CreatePayout)
			payoutGroup.GET("", handlers.ListMyPayouts)
		}

		adminGroup := protected.Group("/admin", middleware.RequireRole("admin"))
		{
			adminGroup.GET("/payouts", handlers.ListPendingPayouts)
			adminGroup.PUT("/payouts/:id", handlers.ProcessPayout)
		}

		instructorGroup := protected.Group("/instructor")
		{
			instructorGroup.GET("/dashboard", handlers.InstructorDashboard)
			instructorGroup.GET("/courses", handlers.InstructorCourses)
		}

		protected.GET("/my-courses", handlers.MyCourses)
	}
}
