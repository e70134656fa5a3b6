package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/ical"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

// CalendarFetcher downloads external ICS feeds.
type CalendarFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type Calendars struct {
	db      *gorm.DB
	logger  *zap.SugaredLogger
	fetcher CalendarFetcher
}

func NewCalendars(conn *gorm.DB, l *zap.SugaredLogger, fetcher CalendarFetcher) *Calendars {
	return &Calendars{
		db:      conn,
		logger:  l,
		fetcher: fetcher,
	}
}

func (s *Calendars) List(ctx context.Context, user *db.User) ([]db.Calendar, error) {
	cals := make([]db.Calendar, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("id").Find(&cals).Error; err != nil {
		return nil, errors.Wrap(err, "find calendars")
	}
	return cals, nil
}

func (s *Calendars) Create(ctx context.Context, user *db.User, req models.CalendarReq) (*db.Calendar, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.Calendar{}, user.ID, req.Title, 0); err != nil {
		return nil, err
	}
	cal := db.Calendar{Title: req.Title, UserID: user.ID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&cal).Error; err != nil {
		return nil, errors.Wrap(err, "create calendar")
	}
	s.logger.Infow("calendar created", "user_id", user.ID, "calendar_id", cal.ID)
	return &cal, nil
}

func (s *Calendars) Get(ctx context.Context, user *db.User, title string) (*db.Calendar, error) {
	cal := db.Calendar{}
	if err := ownedByTitle(ctx, s.db, &cal, user.ID, title, "Not found."); err != nil {
		return nil, err
	}
	return &cal, nil
}

func (s *Calendars) Update(ctx context.Context, user *db.User, title string, req models.CalendarReq) (*db.Calendar, error) {
	cal, err := s.Get(ctx, user, title)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.Calendar{}, user.ID, req.Title, cal.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(cal).Update("title", req.Title).Error; err != nil {
		return nil, errors.Wrap(err, "update calendar")
	}
	cal.Title = req.Title
	return cal, nil
}

// Delete removes the calendar and every schedule in it.
func (s *Calendars) Delete(ctx context.Context, user *db.User, title string) error {
	cal, err := s.Get(ctx, user, title)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		schedules := squirrel.Select("id").From("schedules").Where(squirrel.Eq{"calendar_id": cal.ID})
		if err := deleteSchedules(ctx, tx, schedules); err != nil {
			return err
		}
		if err := tx.Delete(&db.Calendar{}, cal.ID).Error; err != nil {
			return errors.Wrap(err, "delete calendar")
		}
		s.logger.Infow("calendar deleted", "user_id", user.ID, "calendar_id", cal.ID)
		return nil
	})
}

// Export renders the calendar's schedules as an ICS document. Schedule
// dates and times are treated as UTC.
func (s *Calendars) Export(ctx context.Context, user *db.User, title string) (string, error) {
	cal, err := s.Get(ctx, user, title)
	if err != nil {
		return "", err
	}
	schedules := make([]db.Schedule, 0)
	if err := s.db.WithContext(ctx).Preload("Memo").Where("calendar_id = ?", cal.ID).Order("id").Find(&schedules).Error; err != nil {
		return "", errors.Wrap(err, "find schedules")
	}

	events := make([]ical.Event, 0, len(schedules))
	for _, sc := range schedules {
		ev := ical.Event{
			UID:     fmt.Sprintf("schedule-%d@planner", sc.ID),
			Summary: sc.Title,
			Start:   combine(sc.StartDate, sc.StartTime),
			End:     combine(sc.EndDate, sc.EndTime),
		}
		if sc.Memo != nil && sc.Memo.Text != nil {
			ev.Description = *sc.Memo.Text
		}
		if sc.GoogleURL != nil {
			ev.URL = *sc.GoogleURL
		}
		events = append(events, ev)
	}
	return ical.Export(cal.Title, events, time.Now().UTC()), nil
}

// Import fetches an ICS feed (the given url or the user's google_cal_url)
// and stores its events as schedules of the calendar.
func (s *Calendars) Import(ctx context.Context, user *db.User, title string, url *string) ([]ScheduleDetail, error) {
	cal, err := s.Get(ctx, user, title)
	if err != nil {
		return nil, err
	}

	source := ""
	if url != nil && *url != "" {
		source = *url
	} else if user.GoogleCalURL != nil {
		source = *user.GoogleCalURL
	}
	if source == "" {
		return nil, fieldError("url", msgRequired)
	}

	body, err := s.fetcher.Fetch(ctx, source)
	if err != nil {
		s.logger.Warnw("calendar fetch failed", "user_id", user.ID, "error", err)
		return nil, fieldError("url", "Unable to fetch calendar.")
	}
	events, err := ical.Parse(body)
	if err != nil {
		return nil, fieldError("url", "Invalid calendar data.")
	}

	ids := make([]uint64, 0, len(events))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ev := range events {
			sc := scheduleFromEvent(cal.ID, ev)
			if err := tx.Omit(clause.Associations).Create(&sc).Error; err != nil {
				return errors.Wrap(err, "create imported schedule")
			}
			ids = append(ids, sc.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("calendar imported", "user_id", user.ID, "calendar_id", cal.ID, "count", len(ids))
	return loadScheduleDetails(ctx, s.db, ids)
}

func scheduleFromEvent(calendarID uint64, ev ical.Event) db.Schedule {
	title := ev.Summary
	if title == "" {
		title = "(no title)"
	}
	sc := db.Schedule{
		CalendarID: calendarID,
		Title:      truncateRunes(title, 50),
		StartDate:  dateOf(ev.Start),
		StartTime:  ev.Start.Format(TimeLayout),
		EndDate:    dateOf(ev.End),
		EndTime:    ev.End.Format(TimeLayout),
	}
	link := ev.URL
	if link == "" {
		link = ev.UID
	}
	if link != "" {
		link = truncateRunes(link, 255)
		sc.GoogleURL = &link
	}
	return sc
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func combine(date time.Time, clock string) time.Time {
	c, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return dateOf(date)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), c.Second(), 0, time.UTC)
}
