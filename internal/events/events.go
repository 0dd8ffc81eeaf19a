package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrdersUpdated   = "OrdersUpdated"
	EventProductsUpdated = "ProductsUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "storefront"
	CorrelationID string          `json:"correlation_id,omitempty"` // usually order id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type OrdersUpdatedPayload struct {
	OrderID  string `json:"order_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type ProductsUpdatedPayload struct {
	ProductIDs []string `json:"product_ids,omitempty"`
	Reason     string   `json:"reason,omitempty"` // e.g. PURCHASE, ADMIN_EDIT
}
