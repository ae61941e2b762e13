package model

import "strings"

// Category groups events and supplies the colour and emoji they are drawn
// with. Categories are append-only: there is no update or delete path.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// Event is a dated entry spanning StartDate..EndDate inclusive. Dates are
// kept exactly as submitted (ISO-8601 strings); use Span to compare them.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	CategoryID  string `json:"categoryId"`
}

// Span parses the event's calendar range. An empty EndDate means a single
// day event.
func (e Event) Span() (start, end Date, err error) {
	start, err = ParseDate(e.StartDate)
	if err != nil {
		return Date{}, Date{}, err
	}
	if strings.TrimSpace(e.EndDate) == "" {
		return start, start, nil
	}
	end, err = ParseDate(e.EndDate)
	if err != nil {
		return Date{}, Date{}, err
	}
	return start, end, nil
}

// Document is the whole persisted state. It is always loaded and written as
// one unit.
type Document struct {
	Categories []Category `json:"categories"`
	Events     []Event    `json:"events"`
}

// Normalize replaces nil slices so the document serializes as [] rather
// than null.
func (d *Document) Normalize() {
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.Events == nil {
		d.Events = []Event{}
	}
}

// FindCategory returns the category with the given id, or nil.
func (d *Document) FindCategory(id string) *Category {
	return FindCategory(d.Categories, id)
}

// EventIndex returns the position of the event with the given id, or -1.
func (d *Document) EventIndex(id string) int {
	for i := range d.Events {
		if d.Events[i].ID == id {
			return i
		}
	}
	return -1
}

// FindCategory looks a category up by id with a linear scan.
func FindCategory(categories []Category, id string) *Category {
	if id == "" {
		return nil
	}
	for i := range categories {
		if categories[i].ID == id {
			c := categories[i]
			return &c
		}
	}
	return nil
}

// DefaultDocument is written when no data file exists yet.
func DefaultDocument() Document {
	return Document{
		Categories: []Category{
			{ID: "default-personal", Name: "Personal", Emoji: "🏡", Color: "#4caf50"},
			{ID: "default-work", Name: "Work", Emoji: "💼", Color: "#2196f3"},
			{ID: "default-social", Name: "Social", Emoji: "🎉", Color: "#ff9800"},
		},
		Events: []Event{},
	}
}
