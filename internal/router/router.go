package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "finbook/docs"
	"finbook/internal/config"
	"finbook/internal/handler"
	"finbook/internal/middleware"
	"finbook/internal/service"
)

// Handlers bundles everything Setup mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Business  *handler.BusinessHandler
	Client    *handler.ClientHandler
	Invoice   *handler.InvoiceHandler
	Recurring *handler.RecurringHandler
	Statement *handler.StatementHandler
	File      *handler.FileHandler
	Fx        *handler.FxHandler
	Report    *handler.ReportHandler
	Health    *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, authSvc service.AuthService, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/send_otp", h.Auth.SendOTP)
	auth.POST("/resend_otp", h.Auth.ResendOTP)
	auth.POST("/verify_otp", h.Auth.VerifyOTP)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.POST("/social", h.Auth.SocialLogin)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Business profile and onboarding
	protected.POST("/onboarding/complete", h.Business.CompleteOnboarding)
	protected.GET("/profile", h.Business.Get)
	protected.PUT("/profile", h.Business.Update)

	// Clients
	clients := protected.Group("/clients")
	clients.POST("", h.Client.Create)
	clients.GET("", h.Client.List)
	clients.GET("/:id", h.Client.GetByID)
	clients.PUT("/:id", h.Client.Update)
	clients.DELETE("/:id", h.Client.Delete)

	// Invoices
	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/next_number", h.Invoice.NextNumber)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PATCH("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.PATCH("/:id/status", h.Invoice.SetStatus)
	invoices.POST("/:id/send", h.Invoice.Send)
	invoices.GET("/:id/pdf", h.Invoice.DownloadPDF)
	invoices.POST("/:id/recurring", h.Invoice.MakeRecurring)

	// Recurring schedules
	recurring := protected.Group("/recurring_invoices")
	recurring.POST("", h.Recurring.Create)
	recurring.GET("", h.Recurring.List)
	recurring.GET("/:id", h.Recurring.GetByID)
	recurring.PATCH("/:id", h.Recurring.Update)
	recurring.DELETE("/:id", h.Recurring.Delete)
	recurring.PATCH("/:id/status", h.Recurring.SetStatus)
	recurring.POST("/:id/generate", h.Recurring.GenerateNow)

	// Bank statements and transactions
	statements := protected.Group("/statements")
	statements.POST("/upload", h.Statement.Upload)
	statements.GET("", h.Statement.List)
	statements.GET("/:id", h.Statement.GetByID)

	transactions := protected.Group("/transactions")
	transactions.GET("", h.Statement.ListTransactions)
	transactions.PATCH("/:id/category", h.Statement.UpdateTransactionCategory)

	rules := protected.Group("/category_rules")
	rules.POST("", h.Statement.CreateRule)
	rules.GET("", h.Statement.ListRules)
	rules.DELETE("/:id", h.Statement.DeleteRule)

	// Document storage
	folders := protected.Group("/folders")
	folders.POST("", h.File.CreateFolder)
	folders.GET("", h.File.ListFolders)
	folders.DELETE("/:id", h.File.DeleteFolder)

	files := protected.Group("/files")
	files.POST("/upload", h.File.Upload)
	files.GET("", h.File.List)
	files.GET("/:id", h.File.GetByID)
	files.GET("/:id/download", h.File.DownloadURL)
	files.DELETE("/:id", h.File.Delete)

	// Exchange rates
	protected.GET("/exchange_rate", h.Fx.GetRate)
	fx := protected.Group("/exchange_rates")
	fx.PUT("", h.Fx.Upsert)
	fx.GET("/:currency/convert", h.Fx.Convert)

	// Reports
	reports := protected.Group("/reports")
	reports.GET("/dashboard", h.Report.Dashboard)
	reports.GET("/invoice_register.xlsx", h.Report.InvoiceRegister)
	reports.GET("/transactions.csv", h.Statement.ExportTransactions)

	return r
}
