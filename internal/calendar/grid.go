// Package calendar turns the document into what the month view shows: a
// fixed 6x7 grid of day cells, the events bound to each day and the colour
// accent summarizing them. Everything here is pure and safe for concurrent
// use.
package calendar

import (
	"time"

	"minical/internal/model"
)

// GridCells is the fixed size of a month grid: six Sunday-first weeks.
const GridCells = 42

// Cell is one square of the month grid.
type Cell struct {
	Date    model.Date    `json:"date"`
	Day     int           `json:"day"`
	Outside bool          `json:"isOutsideCurrentMonth"`
	Today   bool          `json:"isToday"`
	Events  []model.Event `json:"events"`
	Accent  *Accent       `json:"accent"`
}

// BuildGrid lays out the given month as exactly 42 cells. Leading cells are
// the tail of the previous month back to Sunday, trailing cells continue
// into the next month from day 1. Months that fit in four or five weeks are
// still padded to six rows so the grid height never changes.
func BuildGrid(year int, month time.Month, today model.Date) []Cell {
	m := model.MonthOf(model.NewDate(year, month, 1))
	first := m.First()
	leading := int(first.Weekday())

	cells := make([]Cell, 0, GridCells)

	prev := m.Prev()
	prevDays := prev.Days()
	for day := prevDays - leading + 1; day <= prevDays; day++ {
		cells = append(cells, newCell(model.NewDate(prev.Year, prev.Month, day), true, today))
	}

	for day := 1; day <= m.Days(); day++ {
		cells = append(cells, newCell(model.NewDate(m.Year, m.Month, day), false, today))
	}

	next := m.Next()
	for day := 1; len(cells) < GridCells; day++ {
		cells = append(cells, newCell(model.NewDate(next.Year, next.Month, day), true, today))
	}

	return cells
}

func newCell(d model.Date, outside bool, today model.Date) Cell {
	return Cell{
		Date:    d,
		Day:     d.Day,
		Outside: outside,
		Today:   d == today,
		Events:  []model.Event{},
	}
}
