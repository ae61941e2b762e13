// Package service implements the calendar operations on top of the store:
// validation, id assignment, defaulting and trimming, and category
// annotation of events.
package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"minical/internal/calendar"
	appLog "minical/internal/log"
	"minical/internal/model"
	"minical/internal/store"
	"minical/internal/validate"
)

// NotFoundError reports a missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Kind)
}

// EventView is an event annotated with its resolved category. Category is
// nil (JSON null) when the reference does not resolve.
type EventView struct {
	model.Event
	Category *model.Category `json:"category"`
}

type Service struct {
	store *store.Store
	newID func() string
	today func() model.Date
}

type Option func(*Service)

// WithIDs overrides id generation.
func WithIDs(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// WithToday overrides the clock used for "today" highlighting.
func WithToday(fn func() model.Date) Option {
	return func(s *Service) { s.today = fn }
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		newID: uuid.NewString,
		today: model.Today,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date as seen by the service.
func (s *Service) Today() model.Date {
	return s.today()
}

// ListCategories returns all categories in document order.
func (s *Service) ListCategories() ([]model.Category, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return doc.Categories, nil
}

// CreateCategory validates p and appends a new category.
func (s *Service) CreateCategory(p validate.Payload) (model.Category, error) {
	if err := validate.Category(p); err != nil {
		return model.Category{}, err
	}

	name, _ := p.String("name")
	emoji, _ := p.String("emoji")
	color, _ := p.String("color")
	c := model.Category{
		ID:    s.newID(),
		Name:  strings.TrimSpace(name),
		Emoji: emoji,
		Color: color,
	}

	err := s.store.Update(func(doc *model.Document) error {
		doc.Categories = append(doc.Categories, c)
		return nil
	})
	if err != nil {
		return model.Category{}, err
	}

	appLog.Info("category created", "id", c.ID, "name", c.Name)
	return c, nil
}

// ListEvents returns all events in document order, each with its category.
func (s *Service) ListEvents() ([]EventView, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	out := make([]EventView, 0, len(doc.Events))
	for _, e := range doc.Events {
		out = append(out, annotate(&doc, e))
	}
	return out, nil
}

// CreateEvent validates p against the current categories and appends a new
// event. A missing endDate defaults to startDate.
func (s *Service) CreateEvent(p validate.Payload) (EventView, error) {
	var view EventView
	err := s.store.Update(func(doc *model.Document) error {
		if err := validate.Event(p, doc.Categories); err != nil {
			return err
		}
		e := eventFromPayload(s.newID(), p)
		doc.Events = append(doc.Events, e)
		view = annotate(doc, e)
		return nil
	})
	if err != nil {
		return EventView{}, err
	}

	appLog.Info("event created", "id", view.ID, "start", view.StartDate, "end", view.EndDate)
	return view, nil
}

// UpdateEvent overlays patch onto the stored event and validates the merged
// record as a whole. The id cannot be changed.
func (s *Service) UpdateEvent(id string, patch validate.Payload) (EventView, error) {
	var view EventView
	err := s.store.Update(func(doc *model.Document) error {
		idx := doc.EventIndex(id)
		if idx < 0 {
			return &NotFoundError{Kind: "Event", ID: id}
		}

		merged := validate.Merge(validate.EventPayload(doc.Events[idx]), patch)
		if err := validate.Event(merged, doc.Categories); err != nil {
			return err
		}
		e := eventFromPayload(id, merged)
		doc.Events[idx] = e
		view = annotate(doc, e)
		return nil
	})
	if err != nil {
		return EventView{}, err
	}

	appLog.Info("event updated", "id", id)
	return view, nil
}

// DeleteEvent removes the event and returns it.
func (s *Service) DeleteEvent(id string) (model.Event, error) {
	var removed model.Event
	err := s.store.Update(func(doc *model.Document) error {
		idx := doc.EventIndex(id)
		if idx < 0 {
			return &NotFoundError{Kind: "Event", ID: id}
		}
		removed = doc.Events[idx]
		doc.Events = append(doc.Events[:idx], doc.Events[idx+1:]...)
		return nil
	})
	if err != nil {
		return model.Event{}, err
	}

	appLog.Info("event deleted", "id", id)
	return removed, nil
}

// State loads the document into a view state positioned on m.
func (s *Service) State(m model.Month) (calendar.State, error) {
	doc, err := s.store.Load()
	if err != nil {
		return calendar.State{}, err
	}
	return calendar.State{Cursor: m, Categories: doc.Categories, Events: doc.Events}, nil
}

// Month renders the month view for m.
func (s *Service) Month(m model.Month) (calendar.MonthView, error) {
	st, err := s.State(m)
	if err != nil {
		return calendar.MonthView{}, err
	}
	return calendar.Render(st, s.today()), nil
}

func annotate(doc *model.Document, e model.Event) EventView {
	return EventView{Event: e, Category: doc.FindCategory(e.CategoryID)}
}

// eventFromPayload builds a stored event from a validated payload.
func eventFromPayload(id string, p validate.Payload) model.Event {
	title, _ := p.String("title")
	description, _ := p.String("description")
	start, _ := p.String("startDate")
	end, _ := p.String("endDate")
	categoryID, _ := p.String("categoryId")

	if end == "" {
		end = start
	}
	return model.Event{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		StartDate:   start,
		EndDate:     end,
		CategoryID:  categoryID,
	}
}
