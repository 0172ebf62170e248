package views

import (
	"sort"
	"strings"
	"time"

	"github.com/shankarelec/stocktrack/internal/domain/models"
	"github.com/shankarelec/stocktrack/pkg/dates"
)

// Projector derives the stock views from a snapshot. All methods are pure
// with respect to the snapshot: they filter and copy, never mutate.
type Projector struct {
	loc         *time.Location
	overdueDays int
	now         func() time.Time
}

// NewProjector builds a projector anchored to the reporting timezone.
// Units held longer than overdueDays are flagged for return to the supplier.
func NewProjector(loc *time.Location, overdueDays int) *Projector {
	if loc == nil {
		loc = time.UTC
	}
	if overdueDays <= 0 {
		overdueDays = 90
	}
	return &Projector{
		loc:         loc,
		overdueDays: overdueDays,
		now:         time.Now,
	}
}

// Project partitions the snapshot into the four stock views. Current, Sold
// and Returned are disjoint; History is the unfiltered snapshot.
func (p *Projector) Project(snapshot []models.InventoryUnit) models.StockViews {
	v := models.StockViews{History: snapshot}
	for _, unit := range snapshot {
		switch unit.Status {
		case models.StatusInStock:
			v.Current = append(v.Current, unit)
		case models.StatusSold:
			v.Sold = append(v.Sold, unit)
		case models.StatusReturned:
			v.Returned = append(v.Returned, unit)
		}
	}
	return v
}

// DaysInStock counts the whole calendar days the unit has been held.
func (p *Projector) DaysInStock(purchaseDate time.Time) int {
	return dates.DaysBetween(purchaseDate, p.now(), p.loc)
}

// IsOverdue reports whether the unit has been in stock past the threshold.
func (p *Projector) IsOverdue(unit models.InventoryUnit) bool {
	return p.DaysInStock(unit.PurchaseDate) > p.overdueDays
}

// SortedByAge orders units by descending days in stock, oldest acquisition
// first, and decorates each with its age and overdue flag. Units sharing a
// purchase date keep their snapshot order.
func (p *Projector) SortedByAge(units []models.InventoryUnit) []models.AgedUnit {
	aged := make([]models.AgedUnit, 0, len(units))
	for _, unit := range units {
		aged = append(aged, models.AgedUnit{
			InventoryUnit: unit,
			DaysInStock:   p.DaysInStock(unit.PurchaseDate),
			Overdue:       p.IsOverdue(unit),
		})
	}

	sort.SliceStable(aged, func(i, j int) bool {
		return aged[i].DaysInStock > aged[j].DaysInStock
	})
	return aged
}

// Search filters units whose model contains term case-insensitively or whose
// IMEI contains term verbatim, preserving order. An empty term matches all.
func (p *Projector) Search(units []models.InventoryUnit, term string) []models.InventoryUnit {
	if term == "" {
		return units
	}

	lowered := strings.ToLower(term)
	var matched []models.InventoryUnit
	for _, unit := range units {
		if strings.Contains(strings.ToLower(unit.Model), lowered) || strings.Contains(unit.IMEI, term) {
			matched = append(matched, unit)
		}
	}
	return matched
}
