package ics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minical/internal/model"
	"minical/internal/service"
)

var work = model.Category{ID: "default-work", Name: "Work", Emoji: "💼", Color: "#2196f3"}

func TestExportAllDayEvents(t *testing.T) {
	events := []service.EventView{
		{
			Event: model.Event{
				ID: "e1", Title: "Offsite", Description: "Bring a laptop",
				StartDate: "2024-03-04", EndDate: "2024-03-06", CategoryID: work.ID,
			},
			Category: &work,
		},
		{Event: model.Event{ID: "e2", Title: "Orphan", StartDate: "2024-03-10", EndDate: "2024-03-10", CategoryID: "gone"}},
		{Event: model.Event{ID: "e3", Title: "Broken", StartDate: "not-a-date"}},
	}

	out := Export(events, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))

	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240304")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240307")
	assert.Contains(t, out, "CATEGORIES:Work")
	assert.NotContains(t, out, "Broken")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 2)

	ev := cal.Events()[1]
	assert.Equal(t, "e2@minical", ev.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Nil(t, ev.GetProperty(ical.ComponentPropertyCategories))
}

func TestParseRoundTrip(t *testing.T) {
	events := []service.EventView{{
		Event: model.Event{
			ID: "e1", Title: "Offsite", Description: "Bring a laptop",
			StartDate: "2024-03-04", EndDate: "2024-03-06", CategoryID: work.ID,
		},
		Category: &work,
	}}
	body := Export(events, time.Now())

	payloads, err := Parse([]byte(body), []model.Category{work}, "fallback")
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "Offsite", p["title"])
	assert.Equal(t, "Bring a laptop", p["description"])
	assert.Equal(t, "2024-03-04", p["startDate"])
	assert.Equal(t, "2024-03-06", p["endDate"])
	assert.Equal(t, "default-work", p["categoryId"])
}

func TestParseTimedAndUnmatched(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:timed-1",
		"DTSTAMP:20240301T000000Z",
		"DTSTART:20240305T090000Z",
		"DTEND:20240305T100000Z",
		"SUMMARY:Dentist",
		"CATEGORIES:Health",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:no-start",
		"DTSTAMP:20240301T000000Z",
		"SUMMARY:Nothing",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	payloads, err := Parse([]byte(body), []model.Category{work}, "default-personal")
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, "Dentist", p["title"])
	assert.Equal(t, "2024-03-05", p["startDate"])
	assert.Equal(t, "2024-03-05", p["endDate"])
	assert.Equal(t, "default-personal", p["categoryId"])
	_, hasDescription := p["description"]
	assert.False(t, hasDescription)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse([]byte("  \n"), nil, "")
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestReadFileAndURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.ics")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN:VCALENDAR"), 0o644))

	body, err := Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/feed.ics" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("BEGIN:VCALENDAR"))
	}))
	defer srv.Close()

	body, err = Read(context.Background(), srv.URL+"/feed.ics?token=secret")
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(body))

	_, err = Read(context.Background(), srv.URL+"/missing.ics")
	assert.ErrorContains(t, err, "404")
	assert.NotContains(t, err.Error(), "missing.ics")
}

func TestReadRejectsOversizedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxFeedBytes+1))
	}))
	defer srv.Close()

	_, err := Read(context.Background(), srv.URL+"/big.ics?token=secret")
	require.ErrorIs(t, err, ErrFeedTooLarge)
	assert.NotContains(t, err.Error(), "secret")
}

func TestReadAcceptsFeedAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), maxFeedBytes))
	}))
	defer srv.Close()

	body, err := Read(context.Background(), srv.URL+"/feed.ics")
	require.NoError(t, err)
	assert.Len(t, body, maxFeedBytes)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private.ics?token=abcd"))
	assert.Equal(t, "(redacted)", redactURL("not a url"))
}
