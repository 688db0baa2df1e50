package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Stock     *StockHandler
	Product   *ProductHandler
	Order     *OrderHandler
	Dashboard *DashboardHandler
	Cart      *CartHandler
	Wallet    *WalletHandler
}

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(requestLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Kitchen POS v1.0",
	})

	if requestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New())
	return app
}

// RegisterRoutes mounts the REST API under /api/v1. requireAuth guards every
// route except login, registration and token checks.
func RegisterRoutes(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/register", h.Auth.Register)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)
	priv := middleware.RequirePrivilege
	anyPriv := middleware.RequireAnyPrivilege

	// Dashboard
	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), h.Dashboard.GetStockMovement)

	// Stocks
	protected.Get("/stocks", priv(model.PrivStockView), h.Stock.GetStocks)
	protected.Get("/stocks/low", priv(model.PrivStockView), h.Stock.GetLowStocks)
	protected.Get("/stocks/resolve", priv(model.PrivStockView), h.Stock.ResolveStock)
	protected.Post("/stocks/deduct", priv(model.PrivStockManage), h.Stock.Deduct)
	protected.Get("/stocks/:id", priv(model.PrivStockView), h.Stock.GetStock)
	protected.Get("/stocks/:id/history", priv(model.PrivStockView), h.Stock.GetHistory)
	protected.Post("/stocks", priv(model.PrivStockManage), h.Stock.CreateStock)
	protected.Put("/stocks/:id", priv(model.PrivStockManage), h.Stock.UpdateStock)
	protected.Patch("/stocks/:id/quantity", priv(model.PrivStockManage), h.Stock.AdjustQuantity)
	protected.Delete("/stocks/:id", priv(model.PrivStockManage), h.Stock.DeleteStock)

	// Products
	protected.Get("/products", h.Product.GetProducts)
	protected.Get("/products/:id", h.Product.GetProduct)
	protected.Post("/products", priv(model.PrivProductManage), h.Product.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductManage), h.Product.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductManage), h.Product.DeleteProduct)
	protected.Get("/products/:id/ingredients/matches", priv(model.PrivProductManage), h.Product.MatchIngredients)
	protected.Put("/ingredients/:id/stock", priv(model.PrivProductManage), h.Product.LinkIngredient)

	// Orders
	protected.Post("/orders", priv(model.PrivOrderCreate), h.Order.PlaceOrder)
	protected.Get("/orders", priv(model.PrivOrderView), h.Order.GetOrders)
	protected.Get("/orders/mine", h.Order.GetMyOrders)
	protected.Get("/orders/new", priv(model.PrivOrderFulfill), h.Order.GetNewOrders)
	protected.Get("/orders/assigned", priv(model.PrivOrderFulfill), h.Order.GetAssignedOrders)
	protected.Get("/orders/history", priv(model.PrivOrderFulfill), h.Order.GetOrderHistory)
	protected.Get("/orders/:id", h.Order.GetOrder)
	protected.Post("/orders/:id/assign", priv(model.PrivOrderFulfill), h.Order.AssignOrder)
	protected.Patch("/orders/:id/status", priv(model.PrivOrderFulfill), h.Order.UpdateStatus)
	protected.Post("/orders/:id/complete", priv(model.PrivOrderFulfill), h.Order.CompleteOrder)
	protected.Post("/orders/:id/pay", priv(model.PrivOrderFulfill), h.Order.MarkPaid)
	protected.Post("/orders/:id/cancel", anyPriv(model.PrivOrderFulfill, model.PrivOrderCreate), h.Order.CancelOrder)
	protected.Post("/orders/:id/pay-wallet", anyPriv(model.PrivOrderFulfill, model.PrivOrderCreate), h.Order.PayWithWallet)

	// Cart
	protected.Get("/cart", priv(model.PrivOrderCreate), h.Cart.GetCart)
	protected.Get("/cart/summary", priv(model.PrivOrderCreate), h.Cart.GetSummary)
	protected.Post("/cart", priv(model.PrivOrderCreate), h.Cart.AddItem)
	protected.Post("/cart/checkout", priv(model.PrivOrderCreate), h.Cart.Checkout)
	protected.Put("/cart/:id", priv(model.PrivOrderCreate), h.Cart.UpdateItem)
	protected.Delete("/cart/:id", priv(model.PrivOrderCreate), h.Cart.RemoveItem)
	protected.Delete("/cart", priv(model.PrivOrderCreate), h.Cart.ClearCart)

	// Wallet
	protected.Get("/wallet", h.Wallet.GetBalance)
	protected.Get("/wallet/transactions", h.Wallet.GetTransactions)
	protected.Post("/wallet/:user_id/topup", priv(model.PrivWalletTopUp), h.Wallet.TopUp)

	// Discounts
	protected.Get("/discounts/pending", priv(model.PrivDiscountReview), h.Order.GetAwaitingDiscount)
	protected.Post("/orders/:id/discount/request", priv(model.PrivDiscountRequest), h.Order.RequestDiscount)
	protected.Post("/orders/:id/discount/skip", priv(model.PrivDiscountRequest), h.Order.SkipDiscount)
	protected.Post("/orders/:id/discount/approve", priv(model.PrivDiscountReview), h.Order.ApproveDiscount)
	protected.Post("/orders/:id/discount/deny", priv(model.PrivDiscountReview), h.Order.DenyDiscount)

	// Users
	protected.Get("/users", priv(model.PrivUserManage), h.User.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserManage), h.User.GetUser)
	protected.Post("/users", priv(model.PrivUserManage), h.User.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserManage), h.User.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserManage), h.User.DeleteUser)
}
