package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/trademate-console/internal/config"
	domainRepo "github.com/sangkips/trademate-console/internal/domain/repository"
	"github.com/sangkips/trademate-console/internal/infrastructure/session"
	"github.com/sangkips/trademate-console/internal/presentation/http/handler"
	"github.com/sangkips/trademate-console/internal/presentation/http/middleware"
	"github.com/sangkips/trademate-console/internal/presentation/web"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Store     *handler.StoreHandler
	Dashboard *handler.DashboardHandler
	Product   *handler.ProductHandler
	Category  *handler.CategoryHandler
	Staff     *handler.StaffHandler
	Receipt   *handler.ReceiptHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Logger          *slog.Logger
	Sessions        *session.Store
	Renderer        *web.Renderer
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
	// OnSessionExpired releases pollers and the cart of a session whose token expired
	OnSessionExpired func(c *gin.Context, sessionID string)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.RegisterFormTagNames()

	router := gin.New()
	router.HTMLRender = deps.Renderer
	router.MaxMultipartMemory = 8 << 20

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))

	router.StaticFS("/static", web.Static())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	registerPublicRoutes(router, h, deps)

	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware(middleware.AuthConfig{
		Store:     deps.Sessions,
		TokenSkew: deps.Cfg.Session.TokenSkew,
		OnExpired: deps.OnSessionExpired,
	}))
	protected.POST("/logout", h.Auth.Logout)

	registerCashierRoutes(protected, h, deps)
	registerAdminRoutes(protected, h)
	registerAPIRoutes(protected, h, deps)

	router.NoRoute(h.Auth.NotFound)

	return router
}

func registerPublicRoutes(router *gin.Engine, h *Handlers, deps *Deps) {
	router.GET("/", h.Auth.Root)
	router.GET("/unauthorized", h.Auth.Unauthorized)

	auth := router.Group("")
	auth.Use(deps.RateLimiter.Middleware())
	{
		auth.GET("/login", h.Auth.ShowLogin)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/register", h.Auth.ShowRegister)
		auth.POST("/register", h.Auth.Register)
		auth.GET("/verify", h.Auth.ShowVerify)
		auth.POST("/verify", h.Auth.Verify)
	}
}

func registerCashierRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	store := protected.Group("/store")
	store.Use(middleware.RequireCashier())
	{
		store.GET("", h.Store.Show)
		store.GET("/catalog", h.Store.Catalog)

		store.POST("/cart/add", h.Store.AddToCart)
		store.POST("/cart/increment", h.Store.Increment)
		store.POST("/cart/decrement", h.Store.Decrement)
		store.POST("/cart/remove", h.Store.Remove)
		store.POST("/cart/clear", h.Store.Clear)

		store.POST("/checkout", h.Store.Checkout)
		store.POST("/checkout/print", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:     deps.IdempotencyRepo,
			InFlight: "/store",
		}), h.Store.Print)
		store.POST("/checkout/cancel", h.Store.Cancel)
		store.GET("/receipt", h.Store.Receipt)
	}
}

func registerAdminRoutes(protected *gin.RouterGroup, h *Handlers) {
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())

	admin.GET("/dashboard", h.Dashboard.Show)
	admin.GET("/dashboard/overview", h.Dashboard.Overview)

	products := admin.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/new", h.Product.New)
		products.POST("", h.Product.Create)
		products.GET("/:id/edit", h.Product.Edit)
		products.POST("/:id", h.Product.Update)
		products.GET("/:id/delete", h.Product.ConfirmDelete)
		products.POST("/:id/delete", h.Product.Delete)
	}

	categories := admin.Group("/categories")
	{
		categories.GET("", h.Category.List)
		categories.GET("/new", h.Category.New)
		categories.POST("", h.Category.Create)
		categories.GET("/:id/edit", h.Category.Edit)
		categories.POST("/:id", h.Category.Update)
		categories.GET("/:id/delete", h.Category.ConfirmDelete)
		categories.POST("/:id/delete", h.Category.Delete)
	}

	staff := admin.Group("/staff")
	{
		staff.GET("", h.Staff.List)
		staff.GET("/invite", h.Staff.ShowInvite)
		staff.POST("/invite", h.Staff.Invite)
		staff.POST("/:id/assign", h.Staff.Assign)
		staff.GET("/:id/block", h.Staff.ConfirmBlock)
		staff.POST("/:id/block", h.Staff.ToggleBlock)
	}

	receipts := admin.Group("/receipts")
	{
		receipts.GET("", h.Receipt.Search)
		receipts.GET("/:code/print", h.Receipt.Print)
		receipts.POST("/:code/reprint", h.Receipt.Reprint)
	}
}

func registerAPIRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	api := protected.Group("/api")
	api.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	api.GET("/printer/status", h.Printer.GetStatus)

	cashier := api.Group("")
	cashier.Use(middleware.RequireCashier())
	{
		cashier.GET("/catalog", h.Store.Products)
		cashier.GET("/terminal", h.Store.Terminal)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/dashboard", h.Dashboard.Stats)
		admin.POST("/printer/test", h.Printer.TestPrint)
	}
}
