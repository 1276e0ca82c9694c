package model

import "time"

// DefaultCartStatus is applied to cart items the backend sent without a status.
const DefaultCartStatus = "pending"

// CartItem is a server-side snapshot of a submitted order form.
type CartItem struct {
	ID           ID           `json:"id"`
	UserID       ID           `json:"user_id"`
	AddedAt      time.Time    `json:"added_at"`
	Status       string       `json:"status,omitempty"`
	TotalPrice   Amount       `json:"total_price"`
	Flyer        FlyerSummary `json:"flyer"`
	EventTitle   string       `json:"event_title,omitempty"`
	EventDate    string       `json:"event_date,omitempty"`
	DeliveryTime string       `json:"delivery_time,omitempty"`
}

// StatusOrDefault returns the item status, or "pending" when unset.
func (c *CartItem) StatusOrDefault() string {
	if c.Status == "" {
		return DefaultCartStatus
	}
	return c.Status
}

// CheckoutSession is returned by the backend when a payment session is created.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// TestOrderResult is the diagnostic echo from the non-persisting order endpoint.
type TestOrderResult struct {
	Valid    bool           `json:"valid"`
	Message  string         `json:"message,omitempty"`
	Received map[string]any `json:"received,omitempty"`
}
