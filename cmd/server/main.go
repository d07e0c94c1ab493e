package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/shif13/shinab/internal/config"
	"github.com/shif13/shinab/internal/gateway"
	"github.com/shif13/shinab/internal/handlers"
	"github.com/shif13/shinab/internal/mailer"
	"github.com/shif13/shinab/internal/messaging"
	"github.com/shif13/shinab/internal/repository/postgres"
	"github.com/shif13/shinab/internal/service"
	"github.com/shif13/shinab/pkg/metrics"
)

func main() {
	log.Println("Shina Boutique backend starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := postgres.InitDB(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	rabbitClient := messaging.NewClient(messaging.NewRabbitMQConfig())
	if err := rabbitClient.Connect(); err != nil {
		log.Fatalf("RabbitMQ connection error: %v", err)
	}
	defer rabbitClient.Close()

	publisher := messaging.NewPublisher(rabbitClient)
	consumer := messaging.NewConsumer(rabbitClient, "notification-queue", "notification-worker")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	cartRepo := postgres.NewCartRepository(db)
	wishlistRepo := postgres.NewWishlistRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Payment gateway
	var paymentGateway gateway.PaymentGateway
	if cfg.Stripe.UseMockGateway {
		log.Println("Using mock payment gateway")
		paymentGateway = gateway.NewMockPaymentGateway()
	} else {
		paymentGateway = gateway.NewStripeClient(cfg.Stripe.SecretKey)
	}

	// Email sender
	var emailSender mailer.Sender
	if cfg.SMTP.Host != "" {
		smtpPort, _ := strconv.Atoi(cfg.SMTP.Port)
		emailSender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     smtpPort,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Println("EMAIL_HOST not set, emails go to the log")
		emailSender = mailer.LogSender{}
	}

	// Services
	authService := service.NewAuthService(userRepo, publisher, cfg.JWT.Secret, cfg.JWT.TokenTTL)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, publisher)
	paymentService := service.NewPaymentService(orderRepo, userRepo, paymentGateway, publisher)
	notificationService := service.NewNotificationService(notificationRepo, emailSender)

	var googleAuthHandler *handlers.GoogleAuthHandler
	if cfg.Google.Enabled() {
		googleAuth := service.NewGoogleAuthService(userRepo, authService,
			cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL)
		googleAuthHandler = handlers.NewGoogleAuthHandler(googleAuth, cfg.Google.ClientURL)
		log.Println("Google sign-in enabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productRepo)
	cartHandler := handlers.NewCartHandler(cartService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.Stripe.WebhookSecret)

	serverMetrics := metrics.NewServerMetrics("backend")

	app := setupFiberApp(serverMetrics)
	setupRoutes(app, authService, authHandler, googleAuthHandler, productHandler,
		cartHandler, wishlistHandler, orderHandler, paymentHandler)

	// Notification worker
	if err := consumer.ConsumeEvents(notificationService.RoutingKeys(), notificationService.HandleEvent); err != nil {
		log.Printf("Notification consumer start error: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Backend shutting down...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Backend listening on http://localhost:%s", cfg.HTTP.Port)
	if err := app.Listen(":" + cfg.HTTP.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func setupFiberApp(serverMetrics *metrics.ServerMetrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Shina Boutique Backend v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))
	app.Use(serverMetrics.Middleware())

	return app
}

func setupRoutes(
	app *fiber.App,
	authService *service.AuthService,
	authHandler *handlers.AuthHandler,
	googleAuthHandler *handlers.GoogleAuthHandler,
	productHandler *handlers.ProductHandler,
	cartHandler *handlers.CartHandler,
	wishlistHandler *handlers.WishlistHandler,
	orderHandler *handlers.OrderHandler,
	paymentHandler *handlers.PaymentHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	if googleAuthHandler != nil {
		auth.Get("/google", googleAuthHandler.Login)
		auth.Get("/google/callback", googleAuthHandler.Callback)
	}

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Webhook ingress authenticates by signature, not by bearer token.
	api.Post("/payment/webhook", paymentHandler.HandleWebhook)

	// Authenticated routes
	authRequired := handlers.AuthRequired(authService)

	api.Get("/auth/me", authRequired, authHandler.Me)

	cart := api.Group("/cart", authRequired)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/add", cartHandler.AddToCart)
	cart.Put("/items/:itemId", cartHandler.UpdateItem)
	cart.Delete("/items/:itemId", cartHandler.RemoveItem)
	cart.Delete("/", cartHandler.ClearCart)

	wishlist := api.Group("/wishlist", authRequired)
	wishlist.Get("/", wishlistHandler.List)
	wishlist.Post("/:productId", wishlistHandler.Add)
	wishlist.Delete("/:productId", wishlistHandler.Remove)

	orders := api.Group("/orders", authRequired)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/cancel", orderHandler.CancelOrder)

	payment := api.Group("/payment", authRequired)
	payment.Post("/create-intent", paymentHandler.CreateIntent)
	payment.Post("/verify", paymentHandler.VerifyPayment)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Route not found",
		})
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
