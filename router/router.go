package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-storefront/config"
	"github.com/yeremiapane/restaurant-storefront/controllers"
	"github.com/yeremiapane/restaurant-storefront/middlewares"
	"github.com/yeremiapane/restaurant-storefront/realtime"
	"github.com/yeremiapane/restaurant-storefront/services"
	"github.com/yeremiapane/restaurant-storefront/utils"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	Config       *config.Config
	Tokens       *utils.TokenManager
	Auth         *services.AuthService
	Settings     *services.SettingsService
	Reservations *services.ReservationService
	Menu         *services.MenuService
	Orders       *services.OrderService
	History      *services.HistoryService
	Sections     *services.SectionService
	Dashboard    *services.DashboardService
	Hub          *realtime.Hub
	// StreamTables is the default websocket subscription.
	StreamTables []string
}

var imageSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// onlyImages refuses anything under /uploads that is not an image.
func onlyImages() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/uploads/") {
			path := strings.ToLower(c.Request.URL.Path)
			for _, suffix := range imageSuffixes {
				if strings.HasSuffix(path, suffix) {
					c.Next()
					return
				}
			}
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	r.Use(onlyImages())

	r.Static("/uploads", cfg.UploadDir)

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(d.Auth)
	customerCtrl := controllers.NewCustomerController(d.Auth)
	settingsCtrl := controllers.NewSettingsController(d.Settings)
	reservationCtrl := controllers.NewReservationController(d.Reservations)
	categoryCtrl := controllers.NewMenuCategoryController(d.Menu)
	menuCtrl := controllers.NewMenuController(d.Menu)
	orderCtrl := controllers.NewOrderController(d.Orders, d.History)
	receiptCtrl := controllers.NewReceiptController(d.Orders, d.Settings)
	sectionCtrl := controllers.NewSectionController(d.Sections)
	adminCtrl := controllers.NewAdminController(d.Dashboard, d.Orders, d.Settings)
	realtimeCtrl := controllers.NewRealtimeController(d.Hub, d.Auth, d.StreamTables)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	strict := middlewares.NewStrictRateLimiter()
	public := r.Group("/")
	public.Use(strict.RateLimit())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	r.GET("/settings", settingsCtrl.GetSettings)
	r.GET("/categories", categoryCtrl.GetCategories)
	r.GET("/menus", menuCtrl.BrowseMenu)
	r.GET("/menus/:menu_id", menuCtrl.GetMenuItem)
	r.GET("/sections", sectionCtrl.GetSections)
	r.GET("/returns/reasons", orderCtrl.ReturnReasons)
	r.GET("/reservations/settings", reservationCtrl.GetSettings)
	r.POST("/reservations", middlewares.OptionalAuth(d.Tokens), reservationCtrl.Create)

	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens), realtimeCtrl.Subscribe)

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(d.Tokens))
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", customerCtrl.GetProfile)
		auth.PUT("/profile", customerCtrl.UpdateProfile)

		auth.POST("/orders", orderCtrl.Checkout)
		auth.GET("/orders", orderCtrl.OrderHistory)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.POST("/orders/:order_id/returns", orderCtrl.RequestReturn)
		auth.POST("/orders/:order_id/feedback", orderCtrl.SubmitFeedback)
		auth.GET("/orders/:order_id/receipt", middlewares.DownloadLogger("receipt"), receiptCtrl.GenerateReceipt)

		auth.GET("/reservations/mine", reservationCtrl.ListMine)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(d.Tokens), middlewares.AdminOnly(d.Auth))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboardStats)
		admin.GET("/dashboard/report", middlewares.DownloadLogger("report"), adminCtrl.DownloadReport)

		admin.GET("/settings", settingsCtrl.GetSettings)
		admin.PUT("/settings", settingsCtrl.UpdateSettings)
		admin.GET("/flags", settingsCtrl.ListFlags)
		admin.POST("/flags/:key/toggle", settingsCtrl.ToggleFlag)

		admin.GET("/reservation-settings", reservationCtrl.GetSettings)
		admin.PUT("/reservation-settings", reservationCtrl.UpdateSettings)
		admin.GET("/reservations", reservationCtrl.AdminList)
		admin.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateStatus)

		admin.GET("/categories", categoryCtrl.AdminList)
		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PUT("/categories/:category_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

		admin.GET("/menus", menuCtrl.AdminList)
		admin.POST("/menus", menuCtrl.CreateMenu)
		admin.GET("/menus/:menu_id", menuCtrl.GetMenuItem)
		admin.PUT("/menus/:menu_id", menuCtrl.UpdateMenu)
		admin.DELETE("/menus/:menu_id", menuCtrl.DeleteMenu)
		admin.POST("/menus/:menu_id/toggle-availability", menuCtrl.ToggleAvailability)
		admin.POST("/menus/:menu_id/image", menuCtrl.UploadImage)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:order_id", orderCtrl.AdminGetOrder)
		admin.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		admin.GET("/orders/:order_id/receipt", middlewares.DownloadLogger("receipt"), receiptCtrl.AdminReceipt)

		admin.GET("/returns", adminCtrl.ListReturns)
		admin.PATCH("/returns/:return_id", adminCtrl.ModerateReturn)
		admin.GET("/feedback", adminCtrl.ListFeedback)

		admin.GET("/sections", sectionCtrl.AdminList)
		admin.PUT("/sections/:key", sectionCtrl.UpdateSection)
		admin.POST("/sections/:key/toggle", sectionCtrl.ToggleVisibility)
	}

	return r
}
