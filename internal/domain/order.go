package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

// Rank orders the fulfillment states for forward-only checks.
func (s OrderStatus) Rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderProcessing:
		return 1
	case OrderShipped:
		return 2
	case OrderDelivered:
		return 3
	}
	return -1
}

type PaymentPlan string

const (
	PlanFull        PaymentPlan = "full"
	PlanInstallment PaymentPlan = "installment"
)

type SplitStatus string

const (
	SplitPending SplitStatus = "pending"
	SplitPaid    SplitStatus = "paid"
	SplitFailed  SplitStatus = "failed"
)

// OrderItem is a snapshot of the product at checkout time. Later catalog
// edits never change what an existing order records.
type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
}

type Order struct {
	ID                  string          `json:"id"`
	CustomerID          string          `json:"customerId"`
	AddressID           string          `json:"addressId"`
	CustomerName        string          `json:"customerName,omitempty"`
	Email               string          `json:"email,omitempty"`
	Phone               string          `json:"phone,omitempty"`
	Items               []OrderItem     `json:"items"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
	PaymentPlan         PaymentPlan     `json:"paymentPlan"`
	FirstPayment        decimal.Decimal `json:"firstPayment"`
	SecondPayment       decimal.Decimal `json:"secondPayment"`
	FirstPaymentStatus  SplitStatus     `json:"firstPaymentStatus"`
	SecondPaymentStatus SplitStatus     `json:"secondPaymentStatus"`
	PaymentStatus       PaymentStatus   `json:"paymentStatus"`
	PaystackReference   string          `json:"paystackReference,omitempty"`
	OrderStatus         OrderStatus     `json:"orderStatus"`
	OrderDate           time.Time       `json:"orderDate"`
	PaidAt              *time.Time      `json:"paidAt,omitempty"`
}

// KoboTotal is the order total in kobo, the unit Paystack reports amounts in.
func (o *Order) KoboTotal() int64 {
	return o.TotalAmount.Mul(decimal.NewFromInt(100)).IntPart()
}
