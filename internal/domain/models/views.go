package models

// StockViews partitions a snapshot by lifecycle state. Current, Sold and
// Returned are pairwise disjoint; History is all units unfiltered.
type StockViews struct {
	Current  []InventoryUnit
	Sold     []InventoryUnit
	Returned []InventoryUnit
	History  []InventoryUnit
}

// AgedUnit decorates a current-stock unit with stocking-age information.
type AgedUnit struct {
	InventoryUnit
	DaysInStock int  `json:"daysInStock"`
	Overdue     bool `json:"overdue"`
}
