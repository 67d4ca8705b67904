package events

import "errors"

// Channel names. One event type per channel.
const (
	ChannelOrderCreated     = "order.created"
	ChannelOrderConfirmed   = "order.confirmed"
	ChannelOrderCancelled   = "order.cancelled"
	ChannelPaymentInitiated = "payment.initiated"
	ChannelPaymentCompleted = "payment.completed"
	ChannelPaymentFailed    = "payment.failed"
	ChannelPaymentRefunded  = "payment.refunded"
	ChannelInventoryLow     = "product.inventory.low"
	ChannelProductCreated   = "product.created"
	ChannelProductUpdated   = "product.updated"
	ChannelProductDeleted   = "product.deleted"
)

// Payloads are validated at the subscriber boundary; a payload missing a
// required field is dropped, never partially processed.

type OrderCreatedItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreated struct {
	OrderID     string             `json:"orderId"`
	UserID      string             `json:"userId"`
	TotalAmount float64            `json:"totalAmount"`
	Items       []OrderCreatedItem `json:"items"`
}

func (p OrderCreated) Validate() error {
	if p.OrderID == "" {
		return errors.New("order.created: missing orderId")
	}
	if p.TotalAmount <= 0 {
		return errors.New("order.created: missing totalAmount")
	}
	return nil
}

type OrderConfirmedItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type OrderConfirmed struct {
	OrderID     string               `json:"orderId"`
	UserID      string               `json:"userId"`
	TotalAmount float64              `json:"totalAmount"`
	Items       []OrderConfirmedItem `json:"items"`
}

func (p OrderConfirmed) Validate() error {
	if p.OrderID == "" {
		return errors.New("order.confirmed: missing orderId")
	}
	if len(p.Items) == 0 {
		return errors.New("order.confirmed: missing items")
	}
	return nil
}

type OrderCancelled struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
}

func (p OrderCancelled) Validate() error {
	if p.OrderID == "" {
		return errors.New("order.cancelled: missing orderId")
	}
	return nil
}

type PaymentInitiated struct {
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

func (p PaymentInitiated) Validate() error {
	if p.PaymentID == "" || p.OrderID == "" {
		return errors.New("payment.initiated: missing paymentId or orderId")
	}
	return nil
}

type PaymentCompleted struct {
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

func (p PaymentCompleted) Validate() error {
	if p.PaymentID == "" || p.OrderID == "" {
		return errors.New("payment.completed: missing paymentId or orderId")
	}
	return nil
}

type PaymentFailed struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Reason    string `json:"reason"`
}

func (p PaymentFailed) Validate() error {
	if p.PaymentID == "" || p.OrderID == "" {
		return errors.New("payment.failed: missing paymentId or orderId")
	}
	return nil
}

type PaymentRefunded struct {
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
}

func (p PaymentRefunded) Validate() error {
	if p.PaymentID == "" || p.OrderID == "" {
		return errors.New("payment.refunded: missing paymentId or orderId")
	}
	return nil
}

type InventoryLow struct {
	ProductID          string `json:"productId"`
	RemainingInventory int    `json:"remainingInventory"`
}

func (p InventoryLow) Validate() error {
	if p.ProductID == "" {
		return errors.New("product.inventory.low: missing productId")
	}
	return nil
}

type ProductChanged struct {
	ProductID string `json:"productId"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
}

func (p ProductChanged) Validate() error {
	if p.ProductID == "" {
		return errors.New("product event: missing productId")
	}
	return nil
}
