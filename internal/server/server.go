package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"norahair-backend/internal/config"
	"norahair-backend/internal/metrics"
	"norahair-backend/internal/usecase"
)

type Server struct {
	cfg      config.Config
	log      *slog.Logger
	payments *usecase.PaymentService
	orders   *usecase.OrderService
	products *usecase.ProductService
	content  *usecase.ContentService
	auth     *usecase.AuthService
	registry *prometheus.Registry
	health   func(context.Context) error
	engine   *gin.Engine
}

type Deps struct {
	Payments *usecase.PaymentService
	Orders   *usecase.OrderService
	Products *usecase.ProductService
	Content  *usecase.ContentService
	Auth     *usecase.AuthService
	Registry *prometheus.Registry
	Health   func(context.Context) error
	Log      *slog.Logger
}

func New(cfg config.Config, d Deps) *Server {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:      cfg,
		log:      d.Log,
		payments: d.Payments,
		orders:   d.Orders,
		products: d.Products,
		content:  d.Content,
		auth:     d.Auth,
		registry: d.Registry,
		health:   d.Health,
		engine:   gin.New(),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.engine.Use(gin.Recovery(), s.cors())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	if s.registry != nil {
		s.engine.GET("/metrics", gin.WrapH(metrics.Handler(s.registry)))
	}

	api := s.engine.Group("/api")

	api.GET("/products", s.handleListProducts)
	api.GET("/products/:id", s.handleGetProduct)

	api.POST("/orders", s.handleCreateOrder)
	api.GET("/orders/:id", s.handleGetOrder)

	api.POST("/paystack/initialize", s.handleInitializePayment)
	api.GET("/paystack/config", s.handlePaystackConfig)
	api.POST("/paystack/verify", s.handleVerifyPayment)
	api.POST("/paystack/webhook", s.handleWebhook)

	api.GET("/testimonials", s.handleListTestimonials)
	api.POST("/testimonials", s.handleAddTestimonial)
	api.POST("/subscribe", s.handleSubscribe)

	api.GET("/meta/states", s.handleStates)
	api.GET("/meta/lgas", s.handleLGAs)

	api.POST("/admin/login", s.handleAdminLogin)

	admin := api.Group("", s.requireAdmin())
	admin.GET("/orders", s.handleListOrders)
	admin.PATCH("/orders/:id/status", s.handleOrderStatus)
	admin.POST("/products", s.handleCreateProduct)
	admin.PATCH("/products/:id", s.handleUpdateProduct)
	admin.DELETE("/products/:id", s.handleDeleteProduct)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			s.errJSON(c, http.StatusUnauthorized, "Unauthorized", "bearer token required")
			c.Abort()
			return
		}
		id, username, err := s.auth.Verify(token)
		if err != nil {
			s.errJSON(c, http.StatusUnauthorized, "Unauthorized", "invalid token")
			c.Abort()
			return
		}
		c.Set("adminId", id)
		c.Set("adminUsername", username)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) errJSON(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}

// fail maps usecase error types onto the wire envelope.
func (s *Server) fail(c *gin.Context, err error) {
	switch err.(type) {
	case usecase.ErrNotFound:
		s.errJSON(c, http.StatusNotFound, "NotFound", err.Error())
	case usecase.ErrBadRequest:
		s.errJSON(c, http.StatusBadRequest, "BadRequest", err.Error())
	case usecase.ErrConflict:
		s.errJSON(c, http.StatusConflict, "Conflict", err.Error())
	case usecase.ErrUnauthorized:
		s.errJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
	case usecase.ErrNotConfigured:
		s.errJSON(c, http.StatusServiceUnavailable, "NotConfigured", err.Error())
	case usecase.ErrUnavailable:
		s.errJSON(c, http.StatusBadGateway, "Unavailable", err.Error())
	default:
		s.log.Error("internal error", "path", c.FullPath(), "err", err)
		s.errJSON(c, http.StatusInternalServerError, "ServerError", "internal error")
	}
}
