package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/handlers"
	"github.com/example/clothy/internal/middleware"
	"github.com/example/clothy/internal/services"
	"github.com/example/clothy/internal/storage"
)

// Register wires every route group onto the app.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, store storage.Storage) {
	orderService := services.NewOrderService(db, cfg.SinglePhoneOrder)
	gateway := services.NewSSLCommerzService(cfg.SSLCommerzStoreID, cfg.SSLCommerzStorePwd, cfg.SSLCommerzLive)
	email := services.NewEmailService(cfg)

	authHandler := handlers.NewAuthHandler(db, cfg)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, email)
	productHandler := handlers.NewProductHandler(db, store)
	orderHandler := handlers.NewOrderHandler(db, cfg, orderService, gateway)

	requireAuth := middleware.AuthMiddleware(db, cfg)
	requireAdmin := middleware.RequireAdmin()

	api := app.Group("/api")

	auth := api.Group("/auth", middleware.RateLimit())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/admin/register", authHandler.AdminRegister)
	auth.Post("/admin/login", authHandler.AdminLogin)
	auth.Post("/forget-password", resetHandler.ForgetPassword)
	auth.Post("/reset-password/:token", resetHandler.ResetPassword)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Post("/token", requireAuth, authHandler.Token)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Post("/create", requireAuth, requireAdmin, productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", requireAuth, requireAdmin, productHandler.UpdateProduct)
	products.Delete("/:id", requireAuth, requireAdmin, productHandler.DeleteProduct)

	api.Get("/search", productHandler.SearchProducts)

	orders := api.Group("/orders")
	orders.Post("/", requireAuth, orderHandler.CreateOrder)
	orders.Post("/ssl-success", orderHandler.SSLSuccess)
	orders.Post("/ssl-fail", orderHandler.SSLFail)
	orders.Post("/ssl-cancel", orderHandler.SSLCancel)
	orders.Get("/track-order", orderHandler.TrackOrder)
	orders.Get("/", requireAuth, requireAdmin, orderHandler.ListOrders)
	orders.Put("/:order_id", requireAuth, requireAdmin, orderHandler.UpdateOrderStatus)
	orders.Put("/:order_id/payment", requireAuth, requireAdmin, orderHandler.UpdatePaymentStatus)
}
