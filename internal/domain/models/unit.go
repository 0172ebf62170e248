package models

import "time"

// Status tracks where a unit sits in its lifecycle.
type Status string

const (
	StatusInStock  Status = "IN_STOCK"
	StatusSold     Status = "SOLD"
	StatusReturned Status = "RETURNED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusSold, StatusReturned:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusReturned
}

// InventoryUnit is one individually tracked item (a phone, keyed by IMEI).
type InventoryUnit struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	Model        string     `bson:"model" json:"model"`
	Variant      string     `bson:"variant" json:"variant"`
	IMEI         string     `bson:"imei" json:"imei"`
	Quantity     int        `bson:"quantity" json:"quantity"`
	PurchaseDate time.Time  `bson:"purchase_date" json:"purchaseDate"`
	Status       Status     `bson:"status" json:"status"`
	ActionDate   *time.Time `bson:"action_date,omitempty" json:"actionDate,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"createdAt"`
}
