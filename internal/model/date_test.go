package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-04", want: Date{2024, time.March, 4}},
		{in: " 2024-03-04 ", want: Date{2024, time.March, 4}},
		{in: "2024-03-04T23:30:00+09:00", want: Date{2024, time.March, 4}},
		{in: "2024-03-04T23:30:00Z", want: Date{2024, time.March, 4}},
		{in: "2024-03-04T08:15", want: Date{2024, time.March, 4}},
		{in: "", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "2024-02-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, NewDate(2024, time.January, 31), NewDate(2024, time.February, 0))

	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(NewDate(2024, time.February, 28)))

	assert.True(t, d.Within(d, d))
	assert.False(t, d.Within(d.AddDays(1), d.AddDays(3)))
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{D: NewDate(2024, time.March, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-03-04"}`, string(b))

	var out struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2023-12-31"}`), &out))
	assert.Equal(t, NewDate(2023, time.December, 31), out.D)
}

func TestMonth(t *testing.T) {
	feb := Month{Year: 2024, Month: time.February}
	assert.Equal(t, 29, feb.Days())
	assert.Equal(t, 28, Month{Year: 2023, Month: time.February}.Days())
	assert.Equal(t, time.Thursday, feb.First().Weekday())
	assert.Equal(t, "February 2024", feb.Label())

	dec := Month{Year: 2023, Month: time.December}
	assert.Equal(t, Month{Year: 2024, Month: time.January}, dec.Next())
	assert.Equal(t, dec, dec.Next().Prev())
}

func TestEventSpan(t *testing.T) {
	start, end, err := Event{StartDate: "2024-03-04"}.Span()
	require.NoError(t, err)
	assert.Equal(t, start, end)

	start, end, err = Event{StartDate: "2024-03-04", EndDate: "2024-03-06"}.Span()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", start.String())
	assert.Equal(t, "2024-03-06", end.String())

	_, _, err = Event{StartDate: "2024-03-04", EndDate: "soon"}.Span()
	assert.Error(t, err)
}

func TestDefaultDocument(t *testing.T) {
	doc := DefaultDocument()
	require.Len(t, doc.Categories, 3)
	assert.Equal(t, "default-personal", doc.Categories[0].ID)
	assert.Equal(t, "Work", doc.FindCategory("default-work").Name)
	assert.Nil(t, doc.FindCategory("missing"))
	assert.NotNil(t, doc.Events)
	assert.Equal(t, -1, doc.EventIndex("nope"))
}
