package calendar

import "minical/internal/model"

// Resolver looks a category up by id and returns nil when it is unknown.
type Resolver func(id string) *model.Category

// CategoryResolver resolves ids against a category list.
func CategoryResolver(categories []model.Category) Resolver {
	return func(id string) *model.Category {
		return model.FindCategory(categories, id)
	}
}

// EventsOn returns the events occupying day, i.e. start <= day <= end with
// both ends inclusive, in document order. Events whose dates do not parse
// occupy no day.
func EventsOn(day model.Date, events []model.Event) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		start, end, err := e.Span()
		if err != nil {
			continue
		}
		if day.Within(start, end) {
			out = append(out, e)
		}
	}
	return out
}

// Bind fills Events and Accent of every cell.
func Bind(cells []Cell, events []model.Event, resolve Resolver) {
	for i := range cells {
		cells[i].Events = EventsOn(cells[i].Date, events)
		cells[i].Accent = DayAccent(cells[i].Events, resolve)
	}
}

// DayAccent derives a cell's accent from the colours of its events'
// categories. Events with an unresolved category contribute nothing.
func DayAccent(events []model.Event, resolve Resolver) *Accent {
	colors := make([]string, 0, 2)
	for _, e := range events {
		if resolve == nil {
			break
		}
		c := resolve(e.CategoryID)
		if c == nil || c.Color == "" {
			continue
		}
		colors = append(colors, c.Color)
	}
	return AccentFor(colors)
}
