package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"norahair-backend/internal/domain"
	"norahair-backend/internal/infrastructure/paystack"
	"norahair-backend/internal/metrics"
	"norahair-backend/internal/reference"
)

type OrderRepo interface {
	Put(*domain.Order) error
	Get(id string) (*domain.Order, bool)
	GetByReference(ref string) (*domain.Order, bool)
	List(page, pageSize int) ([]domain.Order, int)
	UpdateStatus(id string, status domain.OrderStatus) (*domain.Order, bool)
	UpdatePayment(id string, status domain.PaymentStatus, paidAt *time.Time) (*domain.Order, bool)
	// MarkPaid applies the paid transition iff the order is still unpaid.
	// It must be atomic with respect to concurrent callers.
	MarkPaid(id string, paidAt time.Time) (*domain.Order, bool)
	// MarkFailed records a declined attempt iff the order is still unpaid,
	// under the same atomicity requirement. A paid order is never demoted.
	MarkFailed(id string) (*domain.Order, bool)
}

type TransactionVerifier interface {
	VerifyTransaction(ctx context.Context, ref string) (*paystack.TransactionData, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType, orderID, ref string, payload map[string]any) error
}

// PaymentService owns the order-payment reconciliation flow: binding a
// reference at initialization, the user-present verify path, and the
// provider-pushed webhook path. Both confirmation paths converge on
// OrderRepo.MarkPaid, which is what keeps a double confirmation harmless.
type PaymentService struct {
	Orders   OrderRepo
	Products ProductRepo
	Verifier TransactionVerifier
	Events   EventPublisher
	Metrics  *metrics.PaymentMetrics

	SecretKey string
	PublicKey string
	Currency  string

	Log *slog.Logger
	Now func() time.Time
}

const defaultCurrency = "NGN"

func (p *PaymentService) currency() string {
	if p.Currency != "" {
		return p.Currency
	}
	return defaultCurrency
}

func (p *PaymentService) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *PaymentService) log() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

func (p *PaymentService) countVerify(outcome string) {
	if p.Metrics != nil {
		p.Metrics.Verifications.WithLabelValues(outcome).Inc()
	}
}

func (p *PaymentService) countWebhook(outcome string) {
	if p.Metrics != nil {
		p.Metrics.Webhooks.WithLabelValues(outcome).Inc()
	}
}

type InitializeInput struct {
	Email        string          `json:"email"`
	Amount       decimal.Decimal `json:"amount"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	Quantity     int             `json:"quantity"`
	CustomerName string          `json:"customerName"`
	Phone        string          `json:"phone"`
}

type InitializeResult struct {
	Reference string `json:"reference"`
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"` // kobo, the unit the payment popup expects
	Email     string `json:"email"`
	Currency  string `json:"currency"`
	PublicKey string `json:"publicKey"`
}

// Initialize creates an unpaid full-plan order with a freshly issued
// reference. The reference is bound before the client ever opens the payment
// popup; if the popup is abandoned the order simply stays unpaid.
func (p *PaymentService) Initialize(ctx context.Context, in InitializeInput) (*InitializeResult, error) {
	if in.Email == "" {
		return nil, ErrBadRequest("email required")
	}
	if !in.Amount.IsPositive() {
		return nil, ErrBadRequest("amount must be positive")
	}
	if p.PublicKey == "" {
		return nil, ErrNotConfigured("paystack public key")
	}
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	// The line-item price is derived from the charged amount so the snapshot
	// always sums to the order total; the catalog only fills in display fields.
	item := domain.OrderItem{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Price:       in.Amount.Div(decimal.NewFromInt(int64(qty))),
		Quantity:    qty,
	}
	if p.Products != nil && in.ProductID != "" {
		if prod, ok := p.Products.Get(in.ProductID); ok {
			item.ProductName = prod.Name
			if len(prod.Images) > 0 {
				item.Image = prod.Images[0]
			}
		}
	}

	o := &domain.Order{
		ID:                  uuid.NewString(),
		CustomerID:          "guest",
		AddressID:           "new",
		CustomerName:        in.CustomerName,
		Email:               in.Email,
		Phone:               in.Phone,
		Items:               []domain.OrderItem{item},
		TotalAmount:         in.Amount,
		PaymentPlan:         domain.PlanFull,
		FirstPayment:        in.Amount,
		SecondPayment:       decimal.Zero,
		FirstPaymentStatus:  domain.SplitPending,
		SecondPaymentStatus: domain.SplitPending,
		PaymentStatus:       domain.PaymentUnpaid,
		PaystackReference:   reference.Issue(),
		OrderStatus:         domain.OrderPending,
		OrderDate:           p.now(),
	}
	if err := p.Orders.Put(o); err != nil {
		return nil, err
	}
	if p.Events != nil {
		if err := p.Events.Publish(ctx, "order.created", o.ID, o.PaystackReference, map[string]any{"total": o.TotalAmount}); err != nil {
			p.log().Warn("order.created event not published", "orderId", o.ID, "err", err)
		}
	}
	return &InitializeResult{
		Reference: o.PaystackReference,
		OrderID:   o.ID,
		Amount:    o.KoboTotal(),
		Email:     o.Email,
		Currency:  p.currency(),
		PublicKey: p.PublicKey,
	}, nil
}

type VerifyResult struct {
	Success         bool       `json:"success"`
	OrderID         string     `json:"orderId,omitempty"`
	Amount          int64      `json:"amount,omitempty"`
	Reference       string     `json:"reference"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	ProviderStatus  string     `json:"providerStatus,omitempty"`
	GatewayResponse string     `json:"gatewayResponse,omitempty"`
}

// Verify is the user-present confirmation path: the client reports a
// completed popup interaction and we ask Paystack what actually happened.
func (p *PaymentService) Verify(ctx context.Context, ref string) (*VerifyResult, error) {
	if ref == "" {
		p.countVerify("missing_reference")
		return nil, ErrBadRequest("reference required")
	}
	if p.SecretKey == "" {
		return nil, ErrNotConfigured("paystack secret key")
	}

	data, err := p.Verifier.VerifyTransaction(ctx, ref)
	if err != nil {
		p.countVerify("unavailable")
		p.log().Error("paystack verify call failed", "reference", ref, "err", err)
		return nil, ErrUnavailable("payment verification unavailable")
	}

	if data.Status != "success" {
		o, ok := p.Orders.GetByReference(ref)
		if !ok {
			// A client-reported reference with no server record.
			p.countVerify("order_mismatch")
			return nil, ErrConflict("no order recorded for reference")
		}
		// Guarded write: a webhook landing after our lookup keeps its paid
		// state, the declined mark only applies to a still-unpaid order.
		if updated, _ := p.Orders.MarkFailed(o.ID); updated != nil {
			o = updated
		}
		p.countVerify("declined")
		return &VerifyResult{
			Success:         false,
			OrderID:         o.ID,
			Reference:       ref,
			ProviderStatus:  data.Status,
			GatewayResponse: data.GatewayResponse,
		}, nil
	}

	o, ok := p.Orders.GetByReference(ref)
	if !ok {
		p.countVerify("not_found")
		return nil, ErrNotFound("order")
	}
	if data.Amount != o.KoboTotal() || data.Currency != p.currency() {
		p.countVerify("mismatch")
		p.log().Warn("verified transaction does not match order, leaving unpaid",
			"orderId", o.ID, "reference", ref,
			"gotAmount", data.Amount, "wantAmount", o.KoboTotal(),
			"gotCurrency", data.Currency)
		return nil, ErrConflict("transaction amount or currency mismatch")
	}

	paidAt := data.PaidAt
	if paidAt.IsZero() {
		paidAt = p.now()
	}
	updated, applied := p.Orders.MarkPaid(o.ID, paidAt)
	if updated == nil {
		p.countVerify("not_found")
		return nil, ErrNotFound("order")
	}
	if applied {
		p.countVerify("confirmed")
		p.publishCaptured(ctx, updated, data.Amount)
	} else {
		// The webhook got here first; same transaction, nothing to redo.
		p.countVerify("already_paid")
	}
	return &VerifyResult{
		Success:   true,
		OrderID:   updated.ID,
		Amount:    data.Amount,
		Reference: ref,
		PaidAt:    updated.PaidAt,
	}, nil
}

// Webhook reconciliation outcomes, also used as metric labels.
const (
	OutcomeApplied          = "applied"
	OutcomeDuplicate        = "duplicate"
	OutcomeMismatch         = "mismatch"
	OutcomeUnknownReference = "unknown_reference"
	OutcomeIgnored          = "ignored"
)

// Reconcile is the provider-pushed confirmation path. Signature checking has
// already happened against the raw body by the time this runs; everything
// here is trusted payload. Every outcome is an acknowledgment, since the
// provider must not retry deliveries we deliberately declined to apply.
func (p *PaymentService) Reconcile(ctx context.Context, evt paystack.WebhookEvent) string {
	if evt.Event != paystack.EventChargeSuccess {
		p.countWebhook(OutcomeIgnored)
		return OutcomeIgnored
	}

	o, ok := p.Orders.GetByReference(evt.Data.Reference)
	if !ok {
		// Not ours. The reference may belong to another environment sharing
		// the Paystack account; acknowledging stops pointless retries.
		p.countWebhook(OutcomeUnknownReference)
		p.log().Info("webhook for unknown reference", "reference", evt.Data.Reference)
		return OutcomeUnknownReference
	}

	if evt.Data.Amount != o.KoboTotal() || evt.Data.Currency != p.currency() {
		p.countWebhook(OutcomeMismatch)
		p.log().Warn("webhook amount/currency mismatch, order left untouched",
			"orderId", o.ID, "reference", evt.Data.Reference,
			"gotAmount", evt.Data.Amount, "wantAmount", o.KoboTotal(),
			"gotCurrency", evt.Data.Currency)
		return OutcomeMismatch
	}

	if o.PaymentStatus == domain.PaymentPaid {
		p.countWebhook(OutcomeDuplicate)
		return OutcomeDuplicate
	}

	paidAt := evt.Data.PaidAt
	if paidAt.IsZero() {
		paidAt = p.now()
	}
	updated, applied := p.Orders.MarkPaid(o.ID, paidAt)
	if updated == nil {
		p.countWebhook(OutcomeUnknownReference)
		return OutcomeUnknownReference
	}
	if !applied {
		// Lost the race against the verify path after our unpaid read.
		p.countWebhook(OutcomeDuplicate)
		return OutcomeDuplicate
	}
	p.countWebhook(OutcomeApplied)
	p.publishCaptured(ctx, updated, evt.Data.Amount)
	return OutcomeApplied
}

func (p *PaymentService) publishCaptured(ctx context.Context, o *domain.Order, amountKobo int64) {
	if p.Events == nil {
		return
	}
	err := p.Events.Publish(ctx, "payment.captured", o.ID, o.PaystackReference, map[string]any{
		"amount_kobo": amountKobo,
		"currency":    p.currency(),
	})
	if err != nil {
		p.log().Warn("payment.captured event not published", "orderId", o.ID, "err", err)
	}
}
