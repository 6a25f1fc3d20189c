package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/handlers"
	"bitbucket.org/mmdatafocus/leden_backend/jobs"
	"bitbucket.org/mmdatafocus/leden_backend/mailer"
	"bitbucket.org/mmdatafocus/leden_backend/middlewares"
	"bitbucket.org/mmdatafocus/leden_backend/models"
	"bitbucket.org/mmdatafocus/leden_backend/mollie"
	"bitbucket.org/mmdatafocus/leden_backend/payments"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// customErrorLogger logs only requests that collected errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func registerRoutes(r *gin.Engine, mollieClient *mollie.Client, mailerClient *mailer.Client) {
	r.POST("/login", handlers.LoginHandler())

	// Webhook deliveries are unauthenticated by nature; the handlers verify
	// state against the provider instead of trusting the payload.
	r.POST("/webhooks/mollie/contributions", payments.ContributionWebhookHandler(mollieClient))
	r.POST("/webhooks/mollie/donations", payments.DonationWebhookHandler(mollieClient))

	read := r.Group("/", middlewares.RequireRole(models.UserRoleBoard, models.UserRoleReadonly))
	{
		read.GET("/members", handlers.GetMembersHandler())
		read.GET("/members/:id", handlers.GetMemberHandler())
		read.GET("/members/export/csv", handlers.ExportMembersCSVHandler())
		read.GET("/members/export/xlsx", handlers.ExportMembersXlsxHandler())
		read.GET("/companies", handlers.GetCompaniesHandler())
		read.GET("/companies/:id", handlers.GetCompanyHandler())
		read.GET("/tags", handlers.GetTagsHandler())
		read.GET("/invoices", handlers.GetInvoicesHandler())
		read.GET("/invoices/:id", handlers.GetInvoiceHandler())
		read.GET("/contributions", handlers.GetContributionsHandler())
		read.GET("/donations", handlers.GetDonationsHandler())
		read.GET("/incomes", handlers.GetIncomesHandler())
		read.GET("/expenses", handlers.GetExpensesHandler())
		read.GET("/documents/:id/url", handlers.GetDocumentURLHandler())
		read.GET("/inventory", handlers.GetInventoryItemsHandler())
		read.GET("/budgets/report", handlers.GetBudgetReportHandler())
		read.GET("/events", handlers.GetEventsHandler())
		read.GET("/events/:id", handlers.GetEventHandler())
		read.GET("/mailings", handlers.GetMailingsHandler())
		read.GET("/mailings/:id", handlers.GetMailingHandler())
		read.GET("/mailings/:id/recipients", handlers.PreviewMailingRecipientsHandler())
	}

	board := r.Group("/", middlewares.RequireRole(models.UserRoleBoard))
	{
		board.POST("/members", handlers.CreateMemberHandler())
		board.PUT("/members/:id", handlers.UpdateMemberHandler())
		board.DELETE("/members/:id", handlers.DeleteMemberHandler())
		board.POST("/members/import", handlers.ImportMembersHandler())

		board.POST("/companies", handlers.CreateCompanyHandler())
		board.PUT("/companies/:id", handlers.UpdateCompanyHandler())
		board.DELETE("/companies/:id", handlers.DeleteCompanyHandler())
		board.POST("/companies/:id/logo", handlers.SetCompanyLogoHandler())

		board.POST("/tags", handlers.CreateTagHandler())
		board.PUT("/tags/:id", handlers.UpdateTagHandler())
		board.DELETE("/tags/:id", handlers.DeleteTagHandler())
		board.POST("/tags/attach", handlers.AttachTagHandler())
		board.POST("/tags/detach", handlers.DetachTagHandler())

		board.POST("/invoices", handlers.CreateInvoiceHandler())
		board.PUT("/invoices/:id", handlers.UpdateInvoiceHandler())
		board.DELETE("/invoices/:id", handlers.DeleteInvoiceHandler())
		board.POST("/invoices/preview-totals", handlers.PreviewInvoiceTotalsHandler())
		board.POST("/invoices/:id/send", handlers.SendInvoiceHandler(mailerClient))
		board.POST("/invoices/:id/payments", handlers.RecordInvoicePaymentHandler())
		board.POST("/invoices/:id/reminders", handlers.SendInvoiceReminderHandler(mailerClient))

		board.POST("/contributions", handlers.CreateContributionHandler())
		board.DELETE("/contributions/:id", handlers.DeleteContributionHandler())
		board.POST("/contributions/:id/mark-paid", handlers.MarkContributionPaidHandler())
		board.POST("/contributions/:id/payments", handlers.StartContributionPaymentHandler(mollieClient))

		board.POST("/donations", handlers.CreateDonationHandler())
		board.POST("/donations/:id/mark-paid", handlers.MarkDonationPaidHandler())
		board.POST("/donations/:id/payments", handlers.StartDonationPaymentHandler(mollieClient))

		board.POST("/incomes", handlers.CreateIncomeHandler())
		board.PUT("/incomes/:id", handlers.UpdateIncomeHandler())
		board.DELETE("/incomes/:id", handlers.DeleteIncomeHandler())
		board.POST("/expenses", handlers.CreateExpenseHandler())
		board.PUT("/expenses/:id", handlers.UpdateExpenseHandler())
		board.DELETE("/expenses/:id", handlers.DeleteExpenseHandler())

		board.POST("/inventory", handlers.CreateInventoryItemHandler())
		board.PUT("/inventory/:id", handlers.UpdateInventoryItemHandler())
		board.DELETE("/inventory/:id", handlers.DeleteInventoryItemHandler())
		board.POST("/budgets", handlers.CreateBudgetHandler())
		board.PUT("/budgets/:id", handlers.UpdateBudgetHandler())
		board.DELETE("/budgets/:id", handlers.DeleteBudgetHandler())

		board.POST("/events", handlers.CreateEventHandler())
		board.PUT("/events/:id", handlers.UpdateEventHandler())
		board.DELETE("/events/:id", handlers.DeleteEventHandler())
		board.POST("/events/registrations", handlers.RegisterForEventHandler())
		board.POST("/events/registrations/:id/cancel", handlers.CancelEventRegistrationHandler())

		board.POST("/mailings", handlers.CreateMailingHandler())
		board.PUT("/mailings/:id", handlers.UpdateMailingHandler())
		board.DELETE("/mailings/:id", handlers.DeleteMailingHandler())
		board.POST("/mailings/:id/send", handlers.SendMailingHandler(mailerClient))
	}

	admin := r.Group("/", middlewares.RequireRole())
	{
		admin.GET("/users", handlers.GetUsersHandler())
		admin.POST("/users", handlers.CreateUserHandler())
		admin.DELETE("/users/:id", handlers.DeleteUserHandler())
	}
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP so Cloud Run considers the revision healthy.
	// Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.AuthMiddleware())
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	mollieClient, err := mollie.NewClient()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "mollie"}).Warn("mollie client disabled: " + err.Error())
	}
	mailerClient, err := mailer.NewClient()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "mailer"}).Warn("mailer client disabled: " + err.Error())
	}

	registerRoutes(r, mollieClient, mailerClient)

	// Start listening immediately (Cloud Run startup probe is TCP based).
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations as
	// a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	scheduler := jobs.StartScheduler(logger)

	log.Println("Server started successfully on port " + port)

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop the scheduler first so no new sweep starts while draining.
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
