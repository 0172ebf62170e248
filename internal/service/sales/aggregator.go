package sales

import (
	"errors"
	"fmt"
	"time"

	"github.com/shankarelec/stocktrack/internal/domain/models"
	"github.com/shankarelec/stocktrack/pkg/dates"
)

// ErrUnknownWindow indicates an unsupported reporting window selector.
var ErrUnknownWindow = errors.New("unknown sales window")

// Window selects one of the three fixed reporting windows.
type Window string

const (
	WindowToday       Window = "TODAY"
	WindowYesterday   Window = "YESTERDAY"
	WindowMonthToDate Window = "MTD"
)

// ParseWindow maps a raw selector onto a Window.
func ParseWindow(value string) (Window, error) {
	switch Window(value) {
	case WindowToday, WindowYesterday, WindowMonthToDate:
		return Window(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, value)
}

// Report buckets sold units by reporting window. The windows are not
// mutually exclusive: a unit sold today also counts toward the month.
type Report struct {
	Today       []models.InventoryUnit
	Yesterday   []models.InventoryUnit
	MonthToDate []models.InventoryUnit
}

// Select returns the list for the requested window.
func (r Report) Select(w Window) ([]models.InventoryUnit, error) {
	switch w {
	case WindowToday:
		return r.Today, nil
	case WindowYesterday:
		return r.Yesterday, nil
	case WindowMonthToDate:
		return r.MonthToDate, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, w)
}

// Counts carries the dashboard figures for all three windows at once.
type Counts struct {
	Today       int `json:"today"`
	Yesterday   int `json:"yesterday"`
	MonthToDate int `json:"mtd"`
}

// Counts summarizes the report.
func (r Report) Counts() Counts {
	return Counts{
		Today:       len(r.Today),
		Yesterday:   len(r.Yesterday),
		MonthToDate: len(r.MonthToDate),
	}
}

// Aggregator buckets sold units against the reference calendar.
type Aggregator struct {
	loc *time.Location
	now func() time.Time
}

// NewAggregator builds an aggregator anchored to the reporting timezone.
func NewAggregator(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{loc: loc, now: time.Now}
}

// Aggregate partitions sold units into the three reporting windows by exact
// calendar-date equality for today and yesterday, and by calendar month for
// month-to-date. Units without an action date are skipped.
func (a *Aggregator) Aggregate(sold []models.InventoryUnit) Report {
	now := a.now()
	yesterday := now.AddDate(0, 0, -1)

	var report Report
	for _, unit := range sold {
		if unit.ActionDate == nil {
			continue
		}
		actionDate := *unit.ActionDate

		if dates.SameDay(actionDate, now, a.loc) {
			report.Today = append(report.Today, unit)
		}
		if dates.SameDay(actionDate, yesterday, a.loc) {
			report.Yesterday = append(report.Yesterday, unit)
		}
		if dates.SameMonth(actionDate, now, a.loc) {
			report.MonthToDate = append(report.MonthToDate, unit)
		}
	}
	return report
}
