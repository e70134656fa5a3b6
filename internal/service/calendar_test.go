package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/ical"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

func TestCalendarCRUDByTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "cal@example.com")

	_, err := env.calendars.Create(ctx, user, models.CalendarReq{Title: db.DefaultCalendarTitle})
	requireFieldError(t, err, "title")
	_, err = env.calendars.Create(ctx, user, models.CalendarReq{})
	requireFieldError(t, err, "title")

	cal, err := env.calendars.Create(ctx, user, models.CalendarReq{Title: "Work"})
	require.NoError(t, err)

	got, err := env.calendars.Get(ctx, user, "Work")
	require.NoError(t, err)
	assert.Equal(t, cal.ID, got.ID)

	other := env.activeUser(t, "other@example.com")
	_, err = env.calendars.Get(ctx, other, "Work")
	assert.True(t, IsNotFound(err))

	_, err = env.calendars.Update(ctx, user, "Work", models.CalendarReq{Title: db.DefaultCalendarTitle})
	requireFieldError(t, err, "title")
	updated, err := env.calendars.Update(ctx, user, "Work", models.CalendarReq{Title: "Office"})
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Title)

	cals, err := env.calendars.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, cals, 2)
	assert.Equal(t, "Office", cals[1].Title)
}

func TestDeleteCalendarCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "cal@example.com")
	sc := env.schedule(t, user, "standup", "2024-01-02")
	tag, err := env.tags.Create(ctx, user, models.TagReq{Title: "daily"})
	require.NoError(t, err)
	_, err = env.tags.Label(ctx, user, tag.ID, models.TagLabelReq{ScheduleID: &sc.ID})
	require.NoError(t, err)

	require.NoError(t, env.calendars.Delete(ctx, user, db.DefaultCalendarTitle))

	_, err = env.schedules.Get(ctx, user, sc.ID)
	assert.True(t, IsNotFound(err))
	got, err := env.tags.Get(ctx, user, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Schedules)

	assert.True(t, IsNotFound(env.calendars.Delete(ctx, user, db.DefaultCalendarTitle)))
}

func TestCalendarExportImport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "cal@example.com")

	_, err := env.schedules.Create(ctx, user, models.ScheduleReq{
		Title: "retro", Memo: &models.NestedMemoReq{Text: strPtr("what went well")},
		StartDate: "2024-02-01", StartTime: "16:00", EndDate: "2024-02-01", EndTime: "17:00",
	})
	require.NoError(t, err)

	out, err := env.calendars.Export(ctx, user, db.DefaultCalendarTitle)
	require.NoError(t, err)
	events, err := ical.Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "retro", events[0].Summary)
	assert.True(t, events[0].Start.Equal(time.Date(2024, 2, 1, 16, 0, 0, 0, time.UTC)))

	_, err = env.calendars.Create(ctx, user, models.CalendarReq{Title: "Imported"})
	require.NoError(t, err)

	_, err = env.calendars.Import(ctx, user, "Imported", nil)
	requireFieldError(t, err, "url")

	env.fetcher.body = []byte(out)
	created, err := env.calendars.Import(ctx, user, "Imported", strPtr("https://example.com/feed.ics"))
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "retro", created[0].Title)
	assert.Equal(t, "Imported", created[0].Calendar.Title)
	assert.Equal(t, "16:00:00", created[0].StartTime)
	assert.Equal(t, "17:00:00", created[0].EndTime)
	assert.Equal(t, []string{"https://example.com/feed.ics"}, env.fetcher.urls)

	env.fetcher.err = errors.New("timeout")
	_, err = env.calendars.Import(ctx, user, "Imported", strPtr("https://example.com/feed.ics"))
	requireFieldError(t, err, "url")
}
