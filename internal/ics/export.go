// Package ics converts calendar events to and from iCalendar feeds.
package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"minical/internal/service"
)

const (
	productID  = "-//minical//minical calendar//EN"
	uidSuffix  = "@minical"
	dateLayout = "20060102"
)

// Export renders events as a VCALENDAR of all-day VEVENTs. DTEND is the
// day after the inclusive end date. Events with unparsable dates are
// skipped.
func Export(events []service.EventView, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		start, end, err := ev.Span()
		if err != nil {
			continue
		}

		ve := cal.AddEvent(ev.ID + uidSuffix)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetAllDayStartAt(start.Time())
		ve.SetAllDayEndAt(end.AddDays(1).Time())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Category != nil {
			ve.AddProperty(ical.ComponentPropertyCategories, ev.Category.Name)
			if ev.Category.Color != "" {
				ve.SetColor(ev.Category.Color)
			}
		}
	}

	return cal.Serialize()
}
