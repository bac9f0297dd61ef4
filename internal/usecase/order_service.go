package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"norahair-backend/internal/domain"
)

type OrderService struct {
	Repo OrderRepo
	Now  func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

type OrderDraft struct {
	CustomerID    string             `json:"customerId"`
	AddressID     string             `json:"addressId"`
	Items         []domain.OrderItem `json:"items"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	PaymentPlan   domain.PaymentPlan `json:"paymentPlan"`
	FirstPayment  decimal.Decimal    `json:"firstPayment"`
	SecondPayment decimal.Decimal    `json:"secondPayment"`
	OrderDate     *time.Time         `json:"orderDate,omitempty"`
}

// Create records a checkout order. Item names and prices are snapshots taken
// here; the live catalog is never consulted again for this order.
func (s *OrderService) Create(draft OrderDraft) (*domain.Order, error) {
	if len(draft.Items) == 0 {
		return nil, ErrBadRequest("items required")
	}
	subtotal := decimal.Zero
	for _, it := range draft.Items {
		if it.Quantity <= 0 {
			return nil, ErrBadRequest("item quantity must be positive")
		}
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	total := draft.TotalAmount
	if total.IsZero() {
		total = subtotal
	}
	if total.LessThan(subtotal) {
		return nil, ErrBadRequest("total below line-item subtotal")
	}

	plan := draft.PaymentPlan
	if plan == "" {
		plan = domain.PlanFull
	}
	first, second := draft.FirstPayment, draft.SecondPayment
	switch plan {
	case domain.PlanFull:
		first, second = total, decimal.Zero
	case domain.PlanInstallment:
		if !first.Add(second).Equal(total) {
			return nil, ErrBadRequest("installment split must sum to total")
		}
	default:
		return nil, ErrBadRequest("invalid payment plan")
	}

	orderDate := s.now()
	if draft.OrderDate != nil {
		orderDate = *draft.OrderDate
	}
	customerID := draft.CustomerID
	if customerID == "" {
		customerID = "guest"
	}
	addressID := draft.AddressID
	if addressID == "" {
		addressID = "new"
	}

	o := &domain.Order{
		ID:                  uuid.NewString(),
		CustomerID:          customerID,
		AddressID:           addressID,
		Items:               draft.Items,
		TotalAmount:         total,
		PaymentPlan:         plan,
		FirstPayment:        first,
		SecondPayment:       second,
		FirstPaymentStatus:  domain.SplitPending,
		SecondPaymentStatus: domain.SplitPending,
		PaymentStatus:       domain.PaymentUnpaid,
		OrderStatus:         domain.OrderPending,
		OrderDate:           orderDate,
	}
	if err := s.Repo.Put(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Get(id string) (*domain.Order, error) {
	o, ok := s.Repo.Get(id)
	if !ok {
		return nil, ErrNotFound("order")
	}
	return o, nil
}

func (s *OrderService) List(page, pageSize int) ([]domain.Order, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.Repo.List(page, pageSize)
}

// Advance sets the fulfillment status from the admin dashboard. Transitions
// only move forward; payment confirmation already moved pending orders to
// processing, and a delivered order never becomes pending again.
func (s *OrderService) Advance(id string, target domain.OrderStatus) (*domain.Order, error) {
	if target.Rank() < 0 {
		return nil, ErrBadRequest("invalid order status")
	}
	cur, ok := s.Repo.Get(id)
	if !ok {
		return nil, ErrNotFound("order")
	}
	if target.Rank() < cur.OrderStatus.Rank() {
		return nil, ErrBadRequest("order status cannot move backward")
	}
	o, ok := s.Repo.UpdateStatus(id, target)
	if !ok {
		return nil, ErrNotFound("order")
	}
	return o, nil
}
