package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusAwaitingGateway OrderStatus = "AWAITING_GATEWAY"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusFailed          OrderStatus = "FAILED"
	OrderStatusCancelled       OrderStatus = "CANCELLED"

	// Fulfillment states written by the shipping side, never by this core.
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// IsTerminal reports whether the payment flow is allowed to move the
// order any further.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:         {OrderStatusAwaitingGateway, OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusAwaitingGateway: {OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled},
}

// CanTransitionTo reports whether this core may move an order from one
// status to another. Terminal states have no outgoing edges.
func CanTransitionTo(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentVNPay          PaymentMethod = "VNPAY"
	PaymentMoMo           PaymentMethod = "MOMO"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentVNPay, PaymentMoMo:
		return true
	}
	return false
}

type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

// Order mirrors the Order Record Store's view of a submitted order. Line
// contents are immutable after creation; only the status moves.
type Order struct {
	ID              string        `json:"id"`
	AccountID       int64         `json:"account_id"`
	Items           []OrderItem   `json:"items"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	TotalAmount     int64         `json:"total_amount"`
	Status          OrderStatus   `json:"status"`
	Note            string        `json:"note,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderRequest is what the orchestrator submits to the Order Record Store.
type OrderRequest struct {
	AccountID       int64         `json:"account_id"`
	Items           []OrderItem   `json:"items"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	TotalAmount     int64         `json:"total_amount"`
	Note            string        `json:"note,omitempty"`
	IdempotencyKey  string        `json:"idempotency_key"`
}

// OrderReceipt is the store's answer to a create. RedirectURL is set only
// for gateway payments.
type OrderReceipt struct {
	OrderID     string `json:"order_id"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// CallbackVerdict is the Order Record Store's judgement of a gateway
// callback after it verified the signature.
type CallbackVerdict struct {
	Status  string `json:"status"` // "SUCCESS" or "FAILED"
	Message string `json:"message,omitempty"`
}

const VerdictSuccess = "SUCCESS"
