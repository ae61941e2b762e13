package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"minical/internal/calendar"
	appLog "minical/internal/log"
	"minical/internal/model"
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type pagePill struct {
	calendar.Pill
	Style template.CSS
}

type pageCell struct {
	calendar.Cell
	Pills []pagePill
	Style template.CSS
}

type pageItem struct {
	calendar.ListItem
	Style       template.CSS
	Description template.HTML
}

type pageData struct {
	Label    string
	Weekdays []string
	Cells    []pageCell
	Items    []pageItem
	PrevURL  string
	NextURL  string
}

// handleCalendarPage renders the month grid and event list as a static
// HTML page. The capture command screenshots this page once the root
// element reports data-ready.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	m, err := s.monthFromQuery(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	st, err := s.svc.State(m)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data := s.buildPage(st, s.svc.Today())
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		appLog.Error("failed to render calendar page", err, "month", m.Label())
		writeError(w, http.StatusInternalServerError, "Failed to render calendar")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) buildPage(st calendar.State, today model.Date) pageData {
	view := calendar.Render(st, today)

	cells := make([]pageCell, 0, len(view.Cells))
	for _, c := range view.Cells {
		pc := pageCell{Cell: c, Style: accentStyle(c.Accent)}
		for _, e := range c.Events {
			p := st.PillFor(e)
			pc.Pills = append(pc.Pills, pagePill{Pill: p, Style: pillStyle(p)})
		}
		cells = append(cells, pc)
	}

	items := make([]pageItem, 0, len(view.List))
	for _, it := range view.List {
		items = append(items, pageItem{
			ListItem:    it,
			Style:       template.CSS(fmt.Sprintf("border-color: %s; background: %s;", it.Accent, it.AccentSoft)),
			Description: s.renderMarkdown(it.Event.Description),
		})
	}

	return pageData{
		Label:    view.Label,
		Weekdays: weekdayNames,
		Cells:    cells,
		Items:    items,
		PrevURL:  monthURL(st.Cursor.Prev()),
		NextURL:  monthURL(st.Cursor.Next()),
	}
}

// renderMarkdown converts an event description to HTML. Raw HTML in the
// source is dropped by goldmark's default renderer.
func (s *Server) renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func accentStyle(a *calendar.Accent) template.CSS {
	if a == nil {
		return ""
	}
	style := fmt.Sprintf("--event-accent: %s; --event-accent-soft: %s;", a.Primary, a.Soft)
	if a.Gradient != "" {
		style += " background: " + a.Gradient + ";"
	}
	return template.CSS(style)
}

func pillStyle(p calendar.Pill) template.CSS {
	return template.CSS(fmt.Sprintf("background: %s; color: %s;", p.Color, calendar.ReadableText(p.Color)))
}

func monthURL(m model.Month) string {
	return fmt.Sprintf("/calendar?year=%d&month=%d", m.Year, int(m.Month))
}

func paletteResponse() []calendar.NamedColor {
	return calendar.Palette
}

var monthPage = template.Must(template.New("month").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Label}}</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; background: #0f172a; color: #e2e8f0; }
main { padding: 24px; }
header { display: flex; align-items: center; justify-content: space-between; }
header a { color: #38bdf8; text-decoration: none; }
.grid { display: grid; grid-template-columns: repeat(7, 1fr); gap: 6px; margin-top: 16px; }
.weekday { text-align: center; font-weight: 600; color: #94a3b8; }
.day { min-height: 96px; padding: 6px; border-radius: 8px; background: rgba(30, 41, 59, 0.92); border: 1px solid var(--event-accent, #334155); }
.day.outside { opacity: 0.4; }
.day.today { outline: 2px solid #f8fafc; }
.pill { display: block; margin-top: 4px; padding: 2px 6px; border-radius: 999px; font-size: 12px; white-space: nowrap; overflow: hidden; text-overflow: ellipsis; }
.events { margin-top: 24px; list-style: none; padding: 0; }
.events li { margin-bottom: 12px; padding: 8px 12px; border-left: 4px solid; border-radius: 6px; }
.meta { font-size: 13px; color: #94a3b8; }
</style>
</head>
<body>
<main data-ready="true">
<header>
<a href="{{.PrevURL}}" aria-label="Previous month">&larr;</a>
<h1>{{.Label}}</h1>
<a href="{{.NextURL}}" aria-label="Next month">&rarr;</a>
</header>
<section class="grid">
{{- range .Weekdays}}
<div class="weekday">{{.}}</div>
{{- end}}
{{- range .Cells}}
<div class="day{{if .Outside}} outside{{end}}{{if .Today}} today{{end}}" data-date="{{.Date}}"{{if .Style}} style="{{.Style}}"{{end}}>
<span class="num">{{.Day}}</span>
{{- range .Pills}}
<span class="pill" style="{{.Style}}">{{.Emoji}} {{.Title}}</span>
{{- end}}
</div>
{{- end}}
</section>
<ul class="events">
{{- range .Items}}
<li style="{{.Style}}">
<strong>{{.Emoji}} {{.Event.Title}}</strong>
<div class="meta">{{.DateRange}} &middot; {{.CategoryName}}</div>
{{- if .Description}}
<div class="description">{{.Description}}</div>
{{- end}}
</li>
{{- else}}
<li class="empty">No events yet.</li>
{{- end}}
</ul>
</main>
</body>
</html>
`))
