package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"norahair-backend/internal/domain"
	"norahair-backend/internal/geo"
	"norahair-backend/internal/infrastructure/paystack"
	"norahair-backend/internal/usecase"
)

func (s *Server) handleInitializePayment(c *gin.Context) {
	var in usecase.InitializeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	res, err := s.payments.Initialize(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handlePaystackConfig(c *gin.Context) {
	if s.cfg.PaystackPublicKey == "" {
		s.fail(c, usecase.ErrNotConfigured("paystack public key"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": s.cfg.PaystackPublicKey})
}

func (s *Server) handleVerifyPayment(c *gin.Context) {
	var req struct {
		Reference string `json:"reference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	res, err := s.payments.Verify(c.Request.Context(), req.Reference)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleWebhook authenticates the sender before touching anything else: the
// signature is recomputed over the exact raw bytes, and no order lookup
// happens until it matches. Once authenticated, the response is 200 whatever
// the reconciliation outcome, so Paystack stops redelivering.
func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "unreadable body")
		return
	}
	sig := c.GetHeader(paystack.SignatureHeader)
	if sig == "" {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "signature header required")
		return
	}
	if s.cfg.PaystackSecretKey == "" {
		s.fail(c, usecase.ErrNotConfigured("paystack secret key"))
		return
	}
	if !paystack.ValidSignature(s.cfg.PaystackSecretKey, body, sig) {
		s.log.Warn("webhook signature mismatch, possible forgery", "remote", c.ClientIP())
		s.errJSON(c, http.StatusUnauthorized, "Unauthorized", "invalid signature")
		return
	}
	var evt paystack.WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid payload")
		return
	}
	s.payments.Reconcile(c.Request.Context(), evt)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var draft usecase.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	o, err := s.orders.Create(draft)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) handleGetOrder(c *gin.Context) {
	o, err := s.orders.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleListOrders(c *gin.Context) {
	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "pageSize", 20)
	orders, total := s.orders.List(page, pageSize)
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func (s *Server) handleOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	o, err := s.orders.Advance(c.Param("id"), domain.OrderStatus(req.Status))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) handleListProducts(c *gin.Context) {
	products, err := s.products.List()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) handleGetProduct(c *gin.Context) {
	p, err := s.products.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	created, err := s.products.Create(&p)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateProduct(c *gin.Context) {
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	p, err := s.products.Update(c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleDeleteProduct(c *gin.Context) {
	if err := s.products.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListTestimonials(c *gin.Context) {
	ts, err := s.content.Testimonials()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ts)
}

func (s *Server) handleAddTestimonial(c *gin.Context) {
	var in domain.Testimonial
	if err := c.ShouldBindJSON(&in); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	created, err := s.content.AddTestimonial(&in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleSubscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	sub, err := s.content.Subscribe(req.Email, req.Phone)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) handleStates(c *gin.Context) {
	c.JSON(http.StatusOK, geo.NigerianStates)
}

func (s *Server) handleLGAs(c *gin.Context) {
	c.JSON(http.StatusOK, geo.LGAs(c.Query("state")))
}

func (s *Server) handleAdminLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errJSON(c, http.StatusBadRequest, "BadRequest", "invalid json")
		return
	}
	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func intQuery(c *gin.Context, name string, def int) int {
	if n, err := strconv.Atoi(c.Query(name)); err == nil && n > 0 {
		return n
	}
	return def
}
