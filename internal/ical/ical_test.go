package ical

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup@example.com\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"DTSTART:20240105T090000Z\r\n" +
	"DTEND:20240105T093000Z\r\n" +
	"URL:https://calendar.example.com/event/1\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:holiday@example.com\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Holiday\r\n" +
	"DTSTART;VALUE=DATE:20240110\r\n" +
	"DTEND;VALUE=DATE:20240112\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:broken@example.com\r\n" +
	"SUMMARY:No start\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParse(t *testing.T) {
	events, err := Parse([]byte(feed))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Standup", events[0].Summary)
	assert.Equal(t, "https://calendar.example.com/event/1", events[0].URL)
	assert.True(t, events[0].Start.Equal(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)))
	assert.True(t, events[0].End.Equal(time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)))
	assert.False(t, events[0].AllDay)

	assert.Equal(t, "Holiday", events[1].Summary)
	assert.True(t, events[1].AllDay)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), events[1].Start)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), events[1].End)
}

func TestExportParses(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := Export("Work", []Event{{
		UID:     "schedule-1@planner",
		Summary: "Review",
		Start:   start,
		End:     start.Add(time.Hour),
	}}, start)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "X-WR-CALNAME:Work")

	events, err := Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "schedule-1@planner", events[0].UID)
	assert.Equal(t, "Review", events[0].Summary)
	assert.True(t, events[0].Start.Equal(start))
	assert.True(t, events[0].End.Equal(start.Add(time.Hour)))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.ics" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := NewFetcher()

	body, err := f.Fetch(context.Background(), srv.URL+"/basic.ics")
	require.NoError(t, err)
	assert.Equal(t, feed, string(body))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.ics")
	assert.EqualError(t, err, "fetch calendar: unexpected status 404")
}
