package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"himakeu/models"
	"himakeu/pkg/directory"
	"himakeu/pkg/ledger"
)

// application carries the request handlers' dependencies.
type application struct {
	cfg       *Config
	log       *zap.Logger
	stores    *Stores
	ledger    *ledger.Store
	directory *directory.Store
}

func newApplication(cfg *Config, log *zap.Logger, stores *Stores) *application {
	return &application{
		cfg:       cfg,
		log:       log,
		stores:    stores,
		ledger:    ledger.NewStore(stores.Ledger),
		directory: directory.NewStore(stores.Master),
	}
}

func (app *application) setupRoutes(r *gin.Engine) {
	r.Use(requestID())
	r.Use(requestLogger(app.log))
	r.Use(corsMiddleware(app.cfg.FrontendURL))

	// receipts are served straight from disk under their public URL prefix
	r.Static("/uploads", app.cfg.Upload.Base)

	api := r.Group("/api")
	api.GET("/health", app.healthHandler)

	auth := api.Group("/auth")
	auth.POST("/register", app.registerHandler)
	auth.POST("/login", app.loginHandler)
	auth.POST("/logout", authRequired(app.secret()), app.logoutHandler)
	auth.GET("/profile", authRequired(app.secret()), app.profileHandler)

	member := api.Group("/member")
	member.Use(authRequired(app.secret()), requireRole(models.RoleMember))
	member.GET("/dashboard", app.memberDashboardHandler)
	// the multipart envelope (boundaries, form fields) needs headroom beyond
	// the receipt file ceiling itself
	member.POST("/upload-payment", bodyLimit(app.cfg.Upload.MaxBytes+64<<10), app.uploadPaymentHandler)
	member.GET("/payment-history", app.paymentHistoryHandler)

	admin := api.Group("/admin")
	admin.Use(authRequired(app.secret()), requireRole(models.RoleAdmin))
	admin.GET("/dashboard", app.adminDashboardHandler)
	admin.GET("/pending-approvals", app.pendingApprovalsHandler)
	admin.POST("/approve-payment", app.approvePaymentHandler)
	admin.POST("/add-expense", app.addExpenseHandler)
	admin.GET("/transactions", app.adminTransactionsHandler)
	admin.GET("/transactions/:transactionId/decisions", app.transactionDecisionsHandler)
	admin.GET("/reports/transactions", app.exportTransactionsHandler)
	admin.GET("/reports/yearly", app.yearlySummaryHandler)
	admin.GET("/members", app.adminMembersHandler)
	admin.PUT("/members/:id/status", app.updateMemberStatusHandler)
	admin.DELETE("/members/:id", app.deleteMemberHandler)
}

func (app *application) secret() []byte {
	return []byte(app.cfg.SessionSecret)
}
