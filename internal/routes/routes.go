package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/config"
	"github.com/example/lumina/internal/handlers"
	"github.com/example/lumina/internal/middleware"
	"github.com/example/lumina/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize Telegram service
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	checkoutStore := services.NewCheckoutStore()
	orderStore := services.NewOrderStore(db)
	productStore := services.NewProductStore(db)
	couponService := services.NewCouponService(db)
	deliveryService := services.NewDeliveryService(db)
	refundService := services.NewRefundService()

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Store:    orderStore,
		Products: productStore,
		Coupons:  couponService,
		Delivery: deliveryService,
		Notifier: telegramService,
		Refunds:  refundService,
		TaxRate:  cfg.TaxRate,
	})
	if err != nil {
		log.Fatalf("[Routes] order service setup failed: %v", err)
	}

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutStore, productStore, cfg.TaxRate)
	couponHandler := handlers.NewCouponHandler(db, couponService)
	deliveryHandler := handlers.NewDeliveryHandler(db, deliveryService)
	orderHandler := handlers.NewOrderHandler(db, orderService, checkoutStore)
	profileHandler := handlers.NewProfileHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog
	categories := api.Group("/categories")
	categories.Get("/", catalogHandler.ListCategories)
	categories.Get("/:id", catalogHandler.GetCategory)

	collections := api.Group("/collections")
	collections.Get("/", catalogHandler.ListCollections)
	collections.Get("/:id", catalogHandler.GetCollection)

	api.Get("/banners", catalogHandler.ListBanners)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Coupons and delivery quotes
	coupons := api.Group("/coupons")
	coupons.Post("/validate", couponHandler.Validate)
	coupons.Get("/eligible", couponHandler.Eligible)

	api.Post("/delivery/quote", deliveryHandler.Quote)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)
	protected.Get("/profile/addresses", profileHandler.ListAddresses)
	protected.Post("/profile/addresses", profileHandler.CreateAddress)
	protected.Put("/profile/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/profile/addresses/:id", profileHandler.DeleteAddress)

	protected.Get("/cart", cartHandler.ListItems)
	protected.Post("/cart", cartHandler.AddItem)
	protected.Put("/cart/:id", cartHandler.UpdateItem)
	protected.Delete("/cart/:id", cartHandler.RemoveItem)
	protected.Delete("/cart", cartHandler.Clear)

	protected.Post("/checkout/buy-now", checkoutHandler.BuyNow)
	protected.Get("/checkout/sessions/:id", checkoutHandler.GetSession)

	protected.Post("/orders", orderHandler.CreateOrder)
	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)
	protected.Post("/orders/:id/cancel", orderHandler.CancelOrder)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireAdmin(db))

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Post("/collections", catalogHandler.CreateCollection)
	admin.Put("/collections/:id", catalogHandler.UpdateCollection)
	admin.Delete("/collections/:id", catalogHandler.DeleteCollection)

	admin.Post("/banners", catalogHandler.CreateBanner)
	admin.Put("/banners/:id", catalogHandler.UpdateBanner)
	admin.Delete("/banners/:id", catalogHandler.DeleteBanner)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
	admin.Post("/products/:id/variants", productHandler.CreateVariant)
	admin.Put("/products/:id/variants/:variantId", productHandler.UpdateVariant)
	admin.Delete("/products/:id/variants/:variantId", productHandler.DeleteVariant)

	admin.Get("/coupons", couponHandler.ListCoupons)
	admin.Post("/coupons", couponHandler.CreateCoupon)
	admin.Put("/coupons/:id", couponHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", couponHandler.DeleteCoupon)

	admin.Get("/delivery-settings", deliveryHandler.GetSettings)
	admin.Put("/delivery-settings", deliveryHandler.UpdateSettings)

	admin.Get("/orders", orderHandler.AdminListOrders)
	admin.Get("/orders/:id", orderHandler.AdminGetOrder)
	admin.Put("/orders/:id/status", orderHandler.AdminUpdateStatus)
}
