// Package validate checks category and event payloads before they are
// applied to the document. Payloads are decoded JSON objects so that both
// missing fields and wrongly typed fields can be reported.
package validate

import (
	"regexp"
	"strings"

	"minical/internal/model"
)

// Payload is a decoded JSON object as received from a client.
type Payload map[string]any

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidationError carries a single human readable reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsHexColor reports whether s is "#RGB" or "#RRGGBB".
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Category validates a category payload.
func Category(p Payload) error {
	if p == nil {
		return invalid("Category must be an object")
	}
	if name, ok := p.String("name"); !ok || strings.TrimSpace(name) == "" {
		return invalid("Category name is required")
	}
	if emoji, ok := p.String("emoji"); !ok || emoji == "" {
		return invalid("Category emoji is required")
	}
	if color, ok := p.String("color"); !ok || !IsHexColor(color) {
		return invalid("Category color must be a hex value like #ff0000")
	}
	return nil
}

// Event validates an event payload against the known categories. For
// updates the caller passes the merged record so the whole event is checked.
func Event(p Payload, categories []model.Category) error {
	if p == nil {
		return invalid("Event must be an object")
	}
	if title, ok := p.String("title"); !ok || strings.TrimSpace(title) == "" {
		return invalid("Event title is required")
	}

	startRaw, _ := p.String("startDate")
	start, err := model.ParseDate(startRaw)
	if err != nil {
		return invalid("Valid startDate is required")
	}

	if p.present("endDate") {
		endRaw, ok := p.String("endDate")
		if !ok {
			return invalid("endDate must be a valid date when provided")
		}
		end, err := model.ParseDate(endRaw)
		if err != nil {
			return invalid("endDate must be a valid date when provided")
		}
		if end.Before(start) {
			return invalid("endDate cannot be before startDate")
		}
	}

	categoryID, _ := p.String("categoryId")
	if model.FindCategory(categories, categoryID) == nil {
		return invalid("A valid categoryId is required")
	}

	if p.present("description") {
		if _, ok := p.String("description"); !ok {
			return invalid("Description must be a string when provided")
		}
	}
	return nil
}

// String returns the value under key if it is a string.
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// present treats absent keys, null and "" as not provided.
func (p Payload) present(key string) bool {
	v, ok := p[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// Merge overlays patch onto base and returns a new payload.
func Merge(base, patch Payload) Payload {
	out := make(Payload, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// EventPayload converts a stored event into the payload shape used for
// merging and validation.
func EventPayload(e model.Event) Payload {
	return Payload{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"startDate":   e.StartDate,
		"endDate":     e.EndDate,
		"categoryId":  e.CategoryID,
	}
}
