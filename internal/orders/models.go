package orders

import (
	"time"

	"orange-brew/internal/catalog"
)

type OrderType string

const (
	TypeDineIn   OrderType = "DINE_IN"
	TypePickup   OrderType = "PICKUP"
	TypeDelivery OrderType = "DELIVERY"
)

func ValidOrderType(t OrderType) bool {
	switch t {
	case TypeDineIn, TypePickup, TypeDelivery:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodQRIS     PaymentMethod = "QRIS"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodTransfer, MethodQRIS:
		return true
	}
	return false
}

// RequiresProof reports whether the method needs an uploaded receipt before
// an order may be created.
func (m PaymentMethod) RequiresProof() bool {
	return m == MethodTransfer || m == MethodQRIS
}

// All money is integer cents; item prices are snapshots taken at order time
// and never touched by later product edits.

type Order struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	OrderType  OrderType    `json:"order_type"`
	Status     Status       `json:"status"`
	TotalCents int64        `json:"total_cents"`
	CreatedAt  time.Time    `json:"created_at"`
	Items      []OrderItem  `json:"items,omitempty"`
	User       *UserSummary `json:"user,omitempty"`
	Payment    *Payment     `json:"payment,omitempty"`
}

type OrderItem struct {
	ID         int64            `json:"id"`
	OrderID    int64            `json:"order_id"`
	ProductID  int64            `json:"product_id"`
	Quantity   int              `json:"quantity"`
	PriceCents int64            `json:"price_cents"`
	Product    *catalog.Product `json:"product,omitempty"`
}

type Payment struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	OrderID     int64         `json:"order_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"method"`
	Status      PaymentStatus `json:"status"`
	ReceiptURL  *string       `json:"receipt_url"`
	CreatedAt   time.Time     `json:"created_at"`
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ItemInput is one cart line as submitted by the client; the price always
// comes from the catalog, never from the request.
type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
