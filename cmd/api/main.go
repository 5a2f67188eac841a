package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"lilium-backend/internal/config"
	"lilium-backend/internal/handler"
	"lilium-backend/internal/middleware"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"
	"lilium-backend/internal/service"
	"lilium-backend/internal/ws"
	"lilium-backend/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (use a dedicated migration tool for production schema changes)
	db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Company{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.StockHistory{},
		&model.Settlement{},
		&model.Notification{},
		&model.StockSubscription{},
	)

	// 3. Seed default super admin
	seedSuperAdmin(db)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	companyRepo := repository.NewCompanyRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	historyRepo := repository.NewStockHistoryRepo(db)
	settlementRepo := repository.NewSettlementRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	subscriptionRepo := repository.NewStockSubscriptionRepo(db)

	notifier := service.NewHubNotifier(notificationRepo, subscriptionRepo, wsHub)

	invService := service.NewInventoryService(productRepo, historyRepo, orderRepo, db, notifier, cfg.Stock)
	orderService := service.NewOrderService(orderRepo, productRepo, companyRepo, invService)
	settlementService := service.NewSettlementService(settlementRepo, orderRepo, companyRepo, cfg.Settlement)
	catalogService := service.NewCatalogService(productRepo, categoryRepo, companyRepo, subscriptionRepo)
	companyService := service.NewCompanyService(companyRepo)
	dashService := service.NewDashboardService(productRepo, historyRepo, orderRepo, cfg.Stock)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, companyRepo)

	invHandler := handler.NewInventoryHandler(invService)
	orderHandler := handler.NewOrderHandler(orderService)
	settlementHandler := handler.NewSettlementHandler(settlementService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	companyHandler := handler.NewCompanyHandler(companyService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Lilium B2B Platform v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	admins := []string{model.RoleSuperAdmin, model.RoleLocationAdmin}
	stockManagers := []string{model.RoleSuperAdmin, model.RoleLocationAdmin, model.RoleVendor, model.RoleCompanyManager}
	financeRoles := []string{model.RoleSuperAdmin, model.RoleLocationAdmin, model.RoleCompanyManager}

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequireRole(admins...), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequireRole(admins...), dashHandler.GetStockMovement)
	protected.Get("/dashboard/revenue", middleware.RequireRole(admins...), dashHandler.GetRevenueSummary)

	// Catalog
	protected.Get("/products", catalogHandler.GetProducts)
	protected.Get("/products/:id", catalogHandler.GetProduct)
	protected.Post("/products", middleware.RequireRole(stockManagers...), catalogHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequireRole(stockManagers...), catalogHandler.UpdateProduct)
	protected.Post("/products/:id/notify-me", catalogHandler.SubscribeBackInStock)
	protected.Get("/categories", catalogHandler.GetCategories)
	protected.Post("/categories", middleware.RequireRole(admins...), catalogHandler.CreateCategory)

	// Inventory Ledger
	protected.Post("/inventory/stock", middleware.RequireRole(stockManagers...), invHandler.UpdateStock)
	protected.Post("/inventory/stock/bulk", middleware.RequireRole(stockManagers...), invHandler.BulkUpdateStock)
	protected.Get("/inventory/restock-suggestions", middleware.RequireRole(stockManagers...), invHandler.GetRestockSuggestions)
	protected.Get("/products/:id/history", middleware.RequireRole(stockManagers...), invHandler.GetStockHistory)

	// Companies
	protected.Get("/companies", companyHandler.GetCompanies)
	protected.Get("/companies/:id", companyHandler.GetCompany)
	protected.Post("/companies", middleware.RequireRole(admins...), companyHandler.CreateCompany)
	protected.Put("/companies/:id", middleware.RequireRole(admins...), companyHandler.UpdateCompany)

	// Orders
	protected.Post("/orders", orderHandler.PlaceOrder)
	protected.Get("/orders/mine", orderHandler.GetMyOrders)
	protected.Get("/orders", middleware.RequireRole(admins...), orderHandler.GetOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Put("/orders/:id/status", middleware.RequireRole(stockManagers...), orderHandler.UpdateOrderStatus)

	// Settlements & Cash Reconciliation
	protected.Post("/companies/:id/settlements", middleware.RequireRole(financeRoles...), settlementHandler.CreateSettlement)
	protected.Get("/companies/:id/settlements", middleware.RequireRole(financeRoles...), settlementHandler.ListSettlements)
	protected.Get("/companies/:id/settlements/summary", middleware.RequireRole(financeRoles...), settlementHandler.GetSettlementSummary)
	protected.Get("/companies/:id/settlements/reconcile", middleware.RequireRole(financeRoles...), settlementHandler.ReconcileCash)
	protected.Get("/companies/:id/settlements/pending-cash", middleware.RequireRole(financeRoles...), settlementHandler.GetPendingCashCollections)
	protected.Post("/orders/:id/cash-collected", middleware.RequireRole(admins...), settlementHandler.MarkCashCollected)
	protected.Get("/settlements/platform-earnings", middleware.RequireRole(model.RoleSuperAdmin), settlementHandler.GetPlatformEarnings)
	protected.Post("/settlements/:id/verify", middleware.RequireRole(admins...), settlementHandler.VerifySettlement)
	protected.Post("/settlements/:id/settle", middleware.RequireRole(model.RoleSuperAdmin), settlementHandler.MarkSettled)
	protected.Post("/settlements/:id/dispute", middleware.RequireRole(financeRoles...), settlementHandler.DisputeSettlement)

	// User Management
	protected.Get("/users", middleware.RequireRole(admins...), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequireRole(admins...), userHandler.GetUser)
	protected.Post("/users", middleware.RequireRole(model.RoleSuperAdmin), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequireRole(model.RoleSuperAdmin), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequireRole(model.RoleSuperAdmin), userHandler.DeleteUser)

	// Notifications
	protected.Get("/notifications", middleware.RequireRole(admins...), func(c *fiber.Ctx) error {
		notifications, err := notificationRepo.FindRecent(100)
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch notifications"})
		}
		return c.JSON(notifications)
	})

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedSuperAdmin creates the default SUPER_ADMIN account if it doesn't exist
func seedSuperAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@lilium.iq"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Email:    email,
		FullName: "Platform Administrator",
		Role:     model.RoleSuperAdmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Printf("Admin user created: %s (SUPER_ADMIN)", email)
	}
}
