// Package api exposes the meal ordering services over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"meal-admin/bot"
	"meal-admin/config"
	"meal-admin/directory"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const notifyTimeout = 15 * time.Second

type Server struct {
	cfg       config.HTTPConfig
	notifier  bot.Notifier
	directory *directory.Cache
	syncer    *directory.Syncer
	login     *ipLimiter
	now       func() time.Time
}

// Options carries the optional collaborators of the HTTP server.
type Options struct {
	Notifier  bot.Notifier
	Directory *directory.Cache
	Syncer    *directory.Syncer
}

func NewServer(cfg config.HTTPConfig, opts Options) *Server {
	n := opts.Notifier
	if n == nil {
		n = bot.Noop{}
	}
	return &Server{
		cfg:       cfg,
		notifier:  n,
		directory: opts.Directory,
		syncer:    opts.Syncer,
		login:     newIPLimiter(cfg.LoginPerMinute),
		now:       time.Now,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/login", s.login.middleware(), s.handleLogin)

	authed := api.Group("", s.authRequired())
	authed.GET("/auth/me", s.handleMe)

	orders := authed.Group("/mealorders")
	{
		orders.POST("", s.handlePlaceOrders)
		orders.GET("", s.handleListMyOrders)
		orders.GET("/outstanding", s.handleMyOutstanding)
		orders.GET("/:id", s.handleGetOrder)
		orders.DELETE("/:id", s.handleCancelOrder)
		orders.POST("/:id/pay", requireAdmin(), s.handleMarkOrderPaid)
	}

	authed.GET("/settings/portion", s.handleGetPortion)
	authed.PUT("/settings/portion", requireAdmin(), s.handleSetPortion)

	menus := authed.Group("/menus")
	{
		menus.GET("", s.handleListMenus)
		menus.GET("/:id", s.handleGetMenu)
		menus.POST("", requireAdmin(), s.handleCreateMenu)
		menus.POST("/:id/meals", requireAdmin(), s.handleAddMeal)
		menus.POST("/:id/finalize", requireAdmin(), s.handleFinalizeMenu)
	}

	meals := authed.Group("/meals", requireAdmin())
	{
		meals.PUT("/:id", s.handleUpdateMealPrice)
		meals.DELETE("/:id", s.handleDeleteMeal)
	}

	suppliers := authed.Group("/suppliers")
	{
		suppliers.GET("", s.handleListSuppliers)
		suppliers.GET("/:id", s.handleGetSupplier)
		suppliers.POST("", requireAdmin(), s.handleCreateSupplier)
		suppliers.PUT("/:id", requireAdmin(), s.handleUpdateSupplier)
		suppliers.DELETE("/:id", requireAdmin(), s.handleDeleteSupplier)
	}

	reports := authed.Group("/reports", requireAdmin())
	{
		reports.GET("/menu/:id", s.handleMenuReport)
		reports.GET("/daily", s.handleDailyReport)
	}

	admin := authed.Group("/admin", requireAdmin())
	{
		admin.GET("/mealorders", s.handleAdminListOrders)
		admin.POST("/mealorders/pay", s.handleBatchPay)
		admin.GET("/mealorders/outstanding/:userId", s.handleAdminOutstanding)
		admin.GET("/users", s.handleListUsers)
		admin.POST("/users/:id/password", s.handleResetPassword)
		admin.PUT("/users/:id/active", s.handleSetUserActive)
		admin.GET("/directory/employees", s.handleDirectoryEmployees)
		admin.GET("/directory/employees/:code", s.handleDirectoryEmployee)
		admin.POST("/directory/sync", s.handleDirectorySync)
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// notifyAsync runs fn detached from the request so a slow chat API never delays the response.
func (s *Server) notifyAsync(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}
