package ical

import (
	"bytes"
	"context"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var Module = fx.Provide(NewFetcher)

// Event is a calendar entry independent of the ICS wire form.
type Event struct {
	UID         string
	Summary     string
	Description string
	URL         string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

type Fetcher struct {
	client *resty.Client
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(15*time.Second).
			SetHeader("Accept", "text/calendar"),
	}
}

// Fetch downloads an ICS feed. webcal:// links are fetched over https.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "webcal://") {
		url = "https://" + strings.TrimPrefix(url, "webcal://")
	}
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, errors.Wrap(err, "fetch calendar")
	}
	if resp.IsError() {
		return nil, errors.Errorf("fetch calendar: unexpected status %d", resp.StatusCode())
	}
	if len(resp.Body()) == 0 {
		return nil, errors.New("fetch calendar: empty body")
	}
	return resp.Body(), nil
}

// Parse reads every VEVENT of an ICS payload. Events without a start are
// skipped.
func Parse(body []byte) ([]Event, error) {
	cal, err := ics.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "parse calendar")
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, ok := parseEvent(ve)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseEvent(ve *ics.VEvent) (Event, bool) {
	ev := Event{}
	if p := ve.GetProperty(ics.ComponentPropertyUniqueId); p != nil {
		ev.UID = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		ev.Description = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyUrl); p != nil {
		ev.URL = p.Value
	}

	dtStart := ve.GetProperty(ics.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, false
	}

	if !strings.Contains(dtStart.Value, "T") {
		start, err := time.ParseInLocation("20060102", dtStart.Value, time.UTC)
		if err != nil {
			return ev, false
		}
		ev.AllDay = true
		ev.Start = start
		ev.End = start
		if p := ve.GetProperty(ics.ComponentPropertyDtEnd); p != nil {
			// DTEND of an all-day event is exclusive.
			if end, err := time.ParseInLocation("20060102", p.Value, time.UTC); err == nil && end.After(start) {
				ev.End = end.AddDate(0, 0, -1)
			}
		}
		return ev, true
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, false
	}
	ev.Start = start
	ev.End = start
	if end, err := ve.GetEndAt(); err == nil && !end.Before(start) {
		ev.End = end
	}
	return ev, true
}

// Export renders events as a VCALENDAR named after the calendar title.
func Export(title string, events []Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//planner-back//EN")
	cal.SetXWRCalName(title)

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(ev.Summary)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.URL != "" {
			ve.SetURL(ev.URL)
		}
	}
	return cal.Serialize()
}
