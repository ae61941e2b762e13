package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minical/internal/model"
)

func TestStateNavigation(t *testing.T) {
	s := NewState(model.NewDate(2024, time.January, 15), nil, nil)
	assert.Equal(t, model.Month{Year: 2024, Month: time.January}, s.Cursor)

	s.Prev()
	assert.Equal(t, model.Month{Year: 2023, Month: time.December}, s.Cursor)
	s.Next()
	s.Next()
	assert.Equal(t, model.Month{Year: 2024, Month: time.February}, s.Cursor)
}

func TestRender(t *testing.T) {
	events := []model.Event{
		ev("late", "2024-02-20", "2024-02-21", "blue"),
		ev("early", "2024-02-01", "2024-02-03", "red"),
		ev("orphan", "2024-02-01", "", "gone"),
	}
	s := State{Cursor: model.Month{Year: 2024, Month: time.February}, Categories: testCategories, Events: events}
	today := model.NewDate(2024, time.February, 2)

	v := Render(s, today)
	assert.Equal(t, "February 2024", v.Label)
	assert.Equal(t, 2024, v.Year)
	assert.Equal(t, 2, v.Num)
	require.Len(t, v.Cells, GridCells)

	feb1 := v.Cells[4]
	assert.Equal(t, model.NewDate(2024, time.February, 1), feb1.Date)
	assert.Equal(t, []string{"early", "orphan"}, ids(feb1.Events))
	require.NotNil(t, feb1.Accent)
	assert.Equal(t, "#ff0000", feb1.Accent.Primary)
	assert.Empty(t, feb1.Accent.Gradient)
	assert.True(t, v.Cells[5].Today)

	require.Len(t, v.List, 3)
	assert.Equal(t, "orphan", v.List[0].Event.ID, "same start, earlier end first")
	assert.Equal(t, "early", v.List[1].Event.ID)
	assert.Equal(t, "late", v.List[2].Event.ID)

	orphan := v.List[0]
	assert.Equal(t, "Uncategorized", orphan.CategoryName)
	assert.Equal(t, "📌", orphan.Emoji)
	assert.Equal(t, "#38bdf8", orphan.Accent)
	assert.Equal(t, "rgba(56, 189, 248, 0.25)", orphan.AccentSoft)
	assert.Equal(t, "Feb 1", orphan.DateRange)
	assert.Equal(t, "Feb 1 → Feb 3", v.List[1].DateRange)
}

func TestRenderIsPure(t *testing.T) {
	events := []model.Event{ev("a", "2024-02-01", "", "red")}
	s := State{Cursor: model.Month{Year: 2024, Month: time.February}, Categories: testCategories, Events: events}
	today := model.NewDate(2024, time.February, 2)

	assert.Equal(t, Render(s, today), Render(s, today))
	assert.Equal(t, "a", s.Events[0].ID)
}

func TestPillFor(t *testing.T) {
	s := State{Categories: testCategories}
	assert.Equal(t, Pill{Title: "x", Emoji: "🔴", Color: "#ff0000"}, s.PillFor(model.Event{Title: "x", CategoryID: "red"}))
	assert.Equal(t, Pill{Title: "y", Emoji: "📌", Color: "#cbd5f5"}, s.PillFor(model.Event{Title: "y", CategoryID: "gone"}))
}

func TestSortByDateKeepsBrokenLast(t *testing.T) {
	events := []model.Event{
		ev("broken", "someday", "", "red"),
		ev("b", "2024-01-02", "", "red"),
		ev("a", "2024-01-01", "", "red"),
	}
	assert.Equal(t, []string{"a", "b", "broken"}, ids(SortByDate(events)))
	assert.Equal(t, "broken", events[0].ID, "input is not reordered")
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "Mar 4", FormatDateRange("2024-03-04", ""))
	assert.Equal(t, "Mar 4", FormatDateRange("2024-03-04", "2024-03-04"))
	assert.Equal(t, "Dec 30 → Jan 2", FormatDateRange("2023-12-30", "2024-01-02"))
	assert.Equal(t, "whenever", FormatDateRange("whenever", ""))
}
