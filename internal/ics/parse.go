package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "minical/internal/log"
	"minical/internal/model"
	"minical/internal/validate"
)

// ErrEmptyFeed is returned for an empty ICS body.
var ErrEmptyFeed = errors.New("empty ICS body")

// Parse turns the VEVENTs of an ICS payload into event payloads ready for
// validation. CATEGORIES is matched case-insensitively against category
// names; events without a match get fallbackCategoryID. Multi-day and
// timed events collapse to the dates they touch.
func Parse(body []byte, categories []model.Category, fallbackCategoryID string) ([]validate.Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]validate.Payload, 0)
	for _, ve := range cal.Events() {
		p, perr := parseVEvent(ve, categories, fallbackCategoryID)
		if perr != nil {
			appLog.Warn("skipping vevent", "uid", propValue(ve, ical.ComponentPropertyUniqueId), "err", perr)
			continue
		}
		out = append(out, p)
	}

	appLog.Info("ics parse completed", "event_count", len(out))
	return out, nil
}

func parseVEvent(ve *ical.VEvent, categories []model.Category, fallback string) (validate.Payload, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return nil, errors.New("missing DTSTART")
	}

	var start, end model.Date
	if isDateValue(dtStart) {
		t, err := time.Parse(dateLayout, strings.TrimSpace(dtStart.Value))
		if err != nil {
			return nil, err
		}
		start = model.DateOf(t)
		end = start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if t, err := time.Parse(dateLayout, strings.TrimSpace(dtEnd.Value)); err == nil {
				// DTEND is exclusive for all-day events.
				end = model.DateOf(t).AddDays(-1)
			}
		}
	} else {
		t, err := ve.GetStartAt()
		if err != nil {
			return nil, err
		}
		start = model.DateOf(t)
		end = start
		if t, err := ve.GetEndAt(); err == nil {
			end = model.DateOf(t)
		}
	}
	if end.Before(start) {
		end = start
	}

	p := validate.Payload{
		"title":      propValue(ve, ical.ComponentPropertySummary),
		"startDate":  start.String(),
		"endDate":    end.String(),
		"categoryId": fallback,
	}
	if d := propValue(ve, ical.ComponentPropertyDescription); d != "" {
		p["description"] = d
	}
	if name := propValue(ve, ical.ComponentPropertyCategories); name != "" {
		if id := categoryByName(categories, name); id != "" {
			p["categoryId"] = id
		}
	}
	return p, nil
}

// isDateValue reports whether a DTSTART is a plain DATE (all-day).
func isDateValue(prop *ical.IANAProperty) bool {
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

func propValue(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

// categoryByName matches the first comma-separated CATEGORIES entry.
func categoryByName(categories []model.Category, names string) string {
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		for _, c := range categories {
			if strings.EqualFold(c.Name, name) {
				return c.ID
			}
		}
	}
	return ""
}
