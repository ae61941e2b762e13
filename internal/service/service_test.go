package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minical/internal/model"
	"minical/internal/store"
	"minical/internal/validate"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	n := 0
	svc := New(store.New(path),
		WithIDs(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithToday(func() model.Date { return model.NewDate(2024, time.March, 4) }),
	)
	return svc, path
}

func TestCreateEventDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.CreateEvent(validate.Payload{
		"title":      "  Standup ",
		"startDate":  "2024-03-04",
		"categoryId": "default-work",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "2024-03-04", got.EndDate)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Work", got.Category.Name)

	list, err := svc.ListEvents()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, got, list[0])
}

func TestCreateEventValidation(t *testing.T) {
	svc, path := newTestService(t)
	_, err := svc.ListCategories()
	require.NoError(t, err)
	before, _ := os.ReadFile(path)

	_, err = svc.CreateEvent(validate.Payload{"title": "x", "startDate": "2024-03-04", "categoryId": "nope"})
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "A valid categoryId is required", ve.Reason)

	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after)
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newTestService(t)

	c, err := svc.CreateCategory(validate.Payload{"name": " Gym ", "emoji": "🏋️", "color": "#f97316"})
	require.NoError(t, err)
	assert.Equal(t, model.Category{ID: "id-1", Name: "Gym", Emoji: "🏋️", Color: "#f97316"}, c)

	cats, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, 4)
	assert.Equal(t, c, cats[3])

	_, err = svc.CreateCategory(validate.Payload{"name": "Bad", "emoji": "x", "color": "red"})
	var ve *validate.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateEvent(t *testing.T) {
	svc, _ := newTestService(t)
	created, err := svc.CreateEvent(validate.Payload{
		"title": "Trip", "startDate": "2024-03-04", "endDate": "2024-03-08",
		"description": "pack", "categoryId": "default-personal",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateEvent(created.ID, validate.Payload{
		"id":          "hijack",
		"description": "  pack light  ",
		"categoryId":  "default-social",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Trip", updated.Title)
	assert.Equal(t, "pack light", updated.Description)
	assert.Equal(t, "2024-03-08", updated.EndDate)
	assert.Equal(t, "Social", updated.Category.Name)

	// Clearing endDate falls back to startDate.
	updated, err = svc.UpdateEvent(created.ID, validate.Payload{"endDate": ""})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", updated.EndDate)

	_, err = svc.UpdateEvent(created.ID, validate.Payload{"startDate": "2024-03-09", "endDate": "2024-03-05"})
	var ve *validate.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "endDate cannot be before startDate", ve.Reason)

	_, err = svc.UpdateEvent("missing", validate.Payload{"title": "x"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Event not found", nf.Error())
}

func TestDeleteEvent(t *testing.T) {
	svc, path := newTestService(t)
	a, err := svc.CreateEvent(validate.Payload{"title": "A", "startDate": "2024-03-04", "categoryId": "default-work"})
	require.NoError(t, err)
	b, err := svc.CreateEvent(validate.Payload{"title": "B", "startDate": "2024-03-05", "categoryId": "default-work"})
	require.NoError(t, err)

	before, _ := os.ReadFile(path)
	_, err = svc.DeleteEvent("missing")
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	after, _ := os.ReadFile(path)
	assert.Equal(t, before, after)

	removed, err := svc.DeleteEvent(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Event, removed)

	list, err := svc.ListEvents()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
}

func TestMonth(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateEvent(validate.Payload{"title": "A", "startDate": "2024-03-04", "categoryId": "default-work"})
	require.NoError(t, err)
	_, err = svc.CreateEvent(validate.Payload{"title": "B", "startDate": "2024-03-04", "categoryId": "default-social"})
	require.NoError(t, err)

	v, err := svc.Month(model.Month{Year: 2024, Month: time.March})
	require.NoError(t, err)

	// March 1 2024 is a Friday, so March 4 sits at index 8.
	cell := v.Cells[8]
	assert.Equal(t, "2024-03-04", cell.Date.String())
	assert.True(t, cell.Today)
	require.Len(t, cell.Events, 2)
	require.NotNil(t, cell.Accent)
	assert.Equal(t, "#2196f3", cell.Accent.Primary)
	assert.Contains(t, cell.Accent.Gradient, "rgba(255, 152, 0, 0.25)")
}
