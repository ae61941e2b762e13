package calendar

import (
	"sort"

	"minical/internal/model"
)

const (
	fallbackPillColor = "#cbd5f5"
	fallbackListColor = "#38bdf8"
	fallbackEmoji     = "📌"
	uncategorized     = "Uncategorized"
	listSoftAlpha     = 0.25
)

// State is everything the month view is rendered from: the navigation
// cursor plus the client's copy of categories and events.
type State struct {
	Cursor     model.Month
	Categories []model.Category
	Events     []model.Event
}

// NewState starts the cursor on the month containing today.
func NewState(today model.Date, categories []model.Category, events []model.Event) State {
	return State{Cursor: model.MonthOf(today), Categories: categories, Events: events}
}

func (s *State) Next() { s.Cursor = s.Cursor.Next() }
func (s *State) Prev() { s.Cursor = s.Cursor.Prev() }

// Resolve returns the category of e, or nil.
func (s State) Resolve(e model.Event) *model.Category {
	return model.FindCategory(s.Categories, e.CategoryID)
}

// Pill is how a single event is drawn inside a day cell.
type Pill struct {
	Title string `json:"title"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// ListItem is one row of the event list below the grid.
type ListItem struct {
	Event        model.Event `json:"event"`
	Emoji        string      `json:"emoji"`
	CategoryName string      `json:"categoryName"`
	Accent       string      `json:"accent"`
	AccentSoft   string      `json:"accentSoft"`
	DateRange    string      `json:"dateRange"`
}

// MonthView is the rendered month.
type MonthView struct {
	Month model.Month `json:"-"`
	Year  int         `json:"year"`
	Num   int         `json:"month"`
	Label string      `json:"label"`
	Cells []Cell      `json:"cells"`
	List  []ListItem  `json:"list"`
}

// Render produces the month view for the cursor. It depends only on its
// arguments.
func Render(s State, today model.Date) MonthView {
	cells := BuildGrid(s.Cursor.Year, s.Cursor.Month, today)
	Bind(cells, s.Events, CategoryResolver(s.Categories))

	return MonthView{
		Month: s.Cursor,
		Year:  s.Cursor.Year,
		Num:   int(s.Cursor.Month),
		Label: s.Cursor.Label(),
		Cells: cells,
		List:  EventList(s),
	}
}

// PillFor styles an event inside a cell.
func (s State) PillFor(e model.Event) Pill {
	p := Pill{Title: e.Title, Emoji: fallbackEmoji, Color: fallbackPillColor}
	if c := s.Resolve(e); c != nil {
		if c.Color != "" {
			p.Color = c.Color
		}
		if c.Emoji != "" {
			p.Emoji = c.Emoji
		}
	}
	return p
}

// EventList returns all events sorted by start date, then end date.
func EventList(s State) []ListItem {
	sorted := SortByDate(s.Events)
	items := make([]ListItem, 0, len(sorted))
	for _, e := range sorted {
		item := ListItem{
			Event:        e,
			Emoji:        fallbackEmoji,
			CategoryName: uncategorized,
			Accent:       fallbackListColor,
			DateRange:    FormatDateRange(e.StartDate, e.EndDate),
		}
		if c := s.Resolve(e); c != nil {
			item.CategoryName = c.Name
			if c.Emoji != "" {
				item.Emoji = c.Emoji
			}
			if c.Color != "" {
				item.Accent = c.Color
			}
		}
		item.AccentSoft = RGBA(item.Accent, listSoftAlpha)
		items = append(items, item)
	}
	return items
}

// SortByDate returns a copy of events ordered by start then end date.
// Events with unparsable dates sort last; ties keep document order.
func SortByDate(events []model.Event) []model.Event {
	type keyed struct {
		e          model.Event
		start, end model.Date
		ok         bool
	}
	ks := make([]keyed, len(events))
	for i, e := range events {
		start, end, err := e.Span()
		ks[i] = keyed{e: e, start: start, end: end, ok: err == nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if c := a.start.Compare(b.start); c != 0 {
			return c < 0
		}
		return a.end.Before(b.end)
	})

	out := make([]model.Event, len(ks))
	for i, k := range ks {
		out[i] = k.e
	}
	return out
}

// FormatDateRange renders "Mar 4" for single days and "Mar 4 → Mar 6"
// otherwise. Unparsable input is returned as is.
func FormatDateRange(startDate, endDate string) string {
	start, end, err := model.Event{StartDate: startDate, EndDate: endDate}.Span()
	if err != nil {
		return startDate
	}
	const layout = "Jan 2"
	if start == end {
		return start.Time().Format(layout)
	}
	return start.Time().Format(layout) + " → " + end.Time().Format(layout)
}
