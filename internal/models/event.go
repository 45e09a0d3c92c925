package models

import "time"

// ProductEventType names a catalog change.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a successful write. Product is nil for deletes.
type ProductEvent struct {
	EventID    string           `json:"eventId"`
	Type       ProductEventType `json:"type"`
	ProductID  int64            `json:"productId"`
	Product    *Product         `json:"product,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
