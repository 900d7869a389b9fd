package orders

import (
	"context"
	"io"

	"orange-brew/internal/apperr"
	"orange-brew/internal/auth"
	"orange-brew/internal/catalog"
)

// Ledger is the persistence side of the workflow. CreateOrder and
// SetPaymentStatus are atomic: either every row lands or none does.
type Ledger interface {
	CreateOrder(ctx context.Context, o *Order, p *Payment) (*Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetOrderStatus(ctx context.Context, id int64) (Status, int64, error)
	ListOrders(ctx context.Context, userID int64) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status Status) (*Order, error)
	GetPayment(ctx context.Context, id int64) (*Payment, error)
	SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus, orderStatus *Status) (*Payment, error)
}

// Catalog is the read-only pricing lookup.
type Catalog interface {
	Product(ctx context.Context, id int64) (*catalog.Product, error)
}

// ReceiptStore persists an uploaded proof of payment and returns its URL.
type ReceiptStore interface {
	Save(filename string, r io.Reader) (string, error)
}

// Service is the order workflow engine: cart pricing, atomic order+payment
// creation and the status state machines. Every operation takes the acting
// user explicitly.
type Service struct {
	Ledger   Ledger
	Catalog  Catalog
	Receipts ReceiptStore
	Emitter  Emitter
	Cache    StatusCache
}

type PlaceOrderInput struct {
	OrderType     OrderType
	PaymentMethod PaymentMethod
	Items         []ItemInput
	ReceiptName   string
	Receipt       io.Reader // nil when no file was uploaded
}

// PriceCart validates the cart against the live catalog and prices it.
// All-or-nothing: one unknown product fails the whole cart. No state is
// touched, so concurrent checkouts are safe.
func (s *Service) PriceCart(ctx context.Context, items []ItemInput) ([]OrderItem, int64, error) {
	if len(items) == 0 {
		return nil, 0, apperr.Validation("No items in order")
	}
	priced := make([]OrderItem, 0, len(items))
	var total int64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, 0, apperr.Validation("invalid quantity for product %d", it.ProductID)
		}
		p, err := s.Catalog.Product(ctx, it.ProductID)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, 0, apperr.NotFound("Product %d not found", it.ProductID)
			}
			return nil, 0, err
		}
		total += p.PriceCents * int64(it.Quantity)
		priced = append(priced, OrderItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			PriceCents: p.PriceCents,
			Product:    p,
		})
	}
	return priced, total, nil
}

// PlaceOrder runs the whole checkout: fail-fast validation, receipt
// persistence, pricing, then one atomic insert of order + items + payment.
// Deliberately not idempotent: the same cart twice makes two orders.
func (s *Service) PlaceOrder(ctx context.Context, actor auth.Identity, in PlaceOrderInput) (*Order, error) {
	if !ValidOrderType(in.OrderType) {
		return nil, apperr.Validation("invalid order type %q", in.OrderType)
	}
	method := in.PaymentMethod
	if method == "" {
		method = MethodCash
	}
	if !ValidPaymentMethod(method) {
		return nil, apperr.Validation("invalid payment method %q", method)
	}
	if len(in.Items) == 0 {
		return nil, apperr.Validation("No items in order")
	}
	// Fail fast before any catalog read or upload I/O.
	if method.RequiresProof() && in.Receipt == nil {
		return nil, apperr.Validation("Proof of payment is required")
	}

	var receiptURL *string
	if in.Receipt != nil {
		url, err := s.Receipts.Save(in.ReceiptName, in.Receipt)
		if err != nil {
			return nil, err
		}
		receiptURL = &url
	}

	items, total, err := s.PriceCart(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	o := &Order{
		UserID:     actor.UserID,
		OrderType:  in.OrderType,
		Status:     StatusPending,
		TotalCents: total,
		Items:      items,
	}
	p := &Payment{
		UserID:      actor.UserID,
		AmountCents: total,
		Method:      method,
		Status:      PaymentPending,
		ReceiptURL:  receiptURL,
	}
	created, err := s.Ledger.CreateOrder(ctx, o, p)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, created.ID, created.UserID, created.Status)
	}
	if s.Emitter != nil {
		evItems := make([]ItemPrice, 0, len(created.Items))
		for _, it := range created.Items {
			evItems = append(evItems, ItemPrice{ProductID: it.ProductID, Quantity: it.Quantity, PriceCents: it.PriceCents})
		}
		s.Emitter.Emit(ctx, EventOrderCreated, created.ID, OrderCreatedPayload{
			OrderID:    created.ID,
			UserID:     created.UserID,
			OrderType:  created.OrderType,
			Items:      evItems,
			TotalCents: created.TotalCents,
		})
	}
	return created, nil
}

// ListOrders applies the visibility rule: customers see their own orders,
// staff see everything. Newest first.
func (s *Service) ListOrders(ctx context.Context, actor auth.Identity) ([]Order, error) {
	filter := int64(0)
	if !actor.Role.Staff() {
		filter = actor.UserID
	}
	return s.Ledger.ListOrders(ctx, filter)
}

func (s *Service) GetOrder(ctx context.Context, actor auth.Identity, id int64) (*Order, error) {
	o, err := s.Ledger.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Staff() && o.UserID != actor.UserID {
		// Report not-found rather than forbidden so order ids of other
		// customers cannot be probed.
		return nil, apperr.NotFound("Order not found")
	}
	return o, nil
}

// OrderStatus serves tracking polls, cache first.
func (s *Service) OrderStatus(ctx context.Context, actor auth.Identity, id int64) (Status, error) {
	if s.Cache != nil {
		if status, owner, ok := s.Cache.Get(ctx, id); ok {
			if !actor.Role.Staff() && owner != actor.UserID {
				return "", apperr.NotFound("Order not found")
			}
			return status, nil
		}
	}
	status, owner, err := s.Ledger.GetOrderStatus(ctx, id)
	if err != nil {
		return "", err
	}
	if !actor.Role.Staff() && owner != actor.UserID {
		return "", apperr.NotFound("Order not found")
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, id, owner, status)
	}
	return status, nil
}

// UpdateOrderStatus moves an order through the kitchen state machine.
// Staff only; illegal jumps are rejected against the transition table.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor auth.Identity, id int64, target Status) (*Order, error) {
	if !actor.Role.Staff() {
		return nil, apperr.Authorization("admin or cashier role required")
	}
	if !ValidStatus(target) {
		return nil, apperr.Validation("invalid status %q", target)
	}
	current, owner, err := s.Ledger.GetOrderStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current, target) {
		return nil, apperr.InvalidTransition("cannot move order from %s to %s", current, target)
	}
	o, err := s.Ledger.UpdateOrderStatus(ctx, id, target)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, id, owner, target)
	}
	return o, nil
}

// UpdatePaymentStatus verifies or rejects a payment. Confirmation fires the
// PaymentConfirmed side effect handled by onPaymentConfirmed.
func (s *Service) UpdatePaymentStatus(ctx context.Context, actor auth.Identity, id int64, target PaymentStatus) (*Payment, error) {
	if !actor.Role.Staff() {
		return nil, apperr.Authorization("admin or cashier role required")
	}
	if !ValidPaymentStatus(target) {
		return nil, apperr.Validation("invalid payment status %q", target)
	}
	current, err := s.Ledger.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanPaymentTransition(current.Status, target) {
		return nil, apperr.InvalidTransition("cannot move payment from %s to %s", current.Status, target)
	}

	var orderStatus *Status
	if target == PaymentConfirmed {
		orderStatus = s.onPaymentConfirmed()
	}
	p, err := s.Ledger.SetPaymentStatus(ctx, id, target, orderStatus)
	if err != nil {
		return nil, err
	}

	if target == PaymentConfirmed {
		if s.Cache != nil {
			// Re-read: the guarded order update may have been a no-op.
			if status, owner, err := s.Ledger.GetOrderStatus(ctx, p.OrderID); err == nil {
				s.Cache.Set(ctx, p.OrderID, owner, status)
			}
		}
		if s.Emitter != nil {
			s.Emitter.Emit(ctx, EventPaymentConfirmed, p.OrderID, PaymentConfirmedPayload{
				PaymentID:   p.ID,
				OrderID:     p.OrderID,
				UserID:      p.UserID,
				AmountCents: p.AmountCents,
				Method:      p.Method,
			})
		}
	}
	return p, nil
}

// onPaymentConfirmed is the single handler for the PaymentConfirmed domain
// event: a confirmed payment sends the order to the kitchen.
func (s *Service) onPaymentConfirmed() *Status {
	cooking := StatusCooking
	return &cooking
}
