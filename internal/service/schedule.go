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
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

// ScheduleDetail is a schedule with its calendar loaded and the emails of
// its participants and titles of its tags.
type ScheduleDetail struct {
	db.Schedule
	Participants []string
	Tags         []string
}

type Schedules struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewSchedules(conn *gorm.DB, l *zap.SugaredLogger) *Schedules {
	return &Schedules{
		db:     conn,
		logger: l,
	}
}

func (s *Schedules) List(ctx context.Context, user *db.User, q ScheduleQuery) ([]ScheduleDetail, int64, error) {
	b, err := scheduleFilter(s.db, user.ID, q)
	if err != nil {
		return nil, 0, err
	}
	return s.page(ctx, b, q.Page)
}

// Search matches schedule titles and linked memo texts case-insensitively.
func (s *Schedules) Search(ctx context.Context, user *db.User, q SearchQuery) ([]ScheduleDetail, int64, error) {
	b, err := searchFilter(user.ID, q)
	if err != nil {
		return nil, 0, err
	}
	return s.page(ctx, b, q.Page)
}

func (s *Schedules) page(ctx context.Context, b squirrel.SelectBuilder, p Pagination) ([]ScheduleDetail, int64, error) {
	ids, total, err := pageIDs(ctx, s.db, b, p)
	if err != nil {
		return nil, 0, err
	}
	items, err := loadScheduleDetails(ctx, s.db, ids)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

type scheduleFields struct {
	startDate, endDate time.Time
	startTime, endTime string
}

func parseScheduleFields(req models.ScheduleReq) (scheduleFields, error) {
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return scheduleFields{}, err
	}

	f := scheduleFields{}
	var err error
	if f.startDate, err = ParseDate("start_date", req.StartDate); err != nil && !verr.merge(err) {
		return f, err
	}
	if f.endDate, err = ParseDate("end_date", req.EndDate); err != nil && !verr.merge(err) {
		return f, err
	}
	if f.startTime, err = ParseClock("start_time", req.StartTime); err != nil && !verr.merge(err) {
		return f, err
	}
	if f.endTime, err = ParseClock("end_time", req.EndTime); err != nil && !verr.merge(err) {
		return f, err
	}
	if err := verr.OrNil(); err != nil {
		return f, err
	}

	if f.endDate.Before(f.startDate) || (f.endDate.Equal(f.startDate) && f.endTime < f.startTime) {
		return f, fieldError("end_date", "End must not be before start.")
	}
	return f, nil
}

func (s *Schedules) Create(ctx context.Context, user *db.User, req models.ScheduleReq) (*ScheduleDetail, error) {
	f, err := parseScheduleFields(req)
	if err != nil {
		return nil, err
	}

	schedule := db.Schedule{
		Title:     req.Title,
		GoogleURL: req.GoogleURL,
		StartDate: f.startDate,
		StartTime: f.startTime,
		EndDate:   f.endDate,
		EndTime:   f.endTime,
		IsRepeat:  req.IsRepeat,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := resolveCalendar(ctx, tx, user.ID, req.Calendar)
		if err != nil {
			return err
		}
		schedule.CalendarID = cal.ID

		participants, err := resolveParticipants(ctx, tx, req.Participant)
		if err != nil {
			return err
		}

		if req.Memo != nil {
			memo, err := createMemo(ctx, tx, user.ID, req.Memo)
			if err != nil {
				return err
			}
			schedule.MemoID = &memo.ID
		}

		if err := tx.Omit(clause.Associations).Create(&schedule).Error; err != nil {
			return errors.Wrap(err, "create schedule")
		}
		return setParticipants(ctx, tx, schedule.ID, participants)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("schedule created", "user_id", user.ID, "schedule_id", schedule.ID)
	return s.detail(ctx, schedule.ID)
}

func (s *Schedules) Get(ctx context.Context, user *db.User, id uint64) (*ScheduleDetail, error) {
	if _, err := ownedSchedule(ctx, s.db, user.ID, id); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Update replaces every schedule field. An omitted calendar means the default
// calendar, an omitted participant list clears participants and an omitted
// google_url clears it. The memo is left alone.
func (s *Schedules) Update(ctx context.Context, user *db.User, id uint64, req models.ScheduleReq) (*ScheduleDetail, error) {
	schedule, err := ownedSchedule(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}
	f, err := parseScheduleFields(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cal, err := resolveCalendar(ctx, tx, user.ID, req.Calendar)
		if err != nil {
			return err
		}
		participants, err := resolveParticipants(ctx, tx, req.Participant)
		if err != nil {
			return err
		}

		var googleURL interface{}
		if req.GoogleURL != nil {
			googleURL = *req.GoogleURL
		}
		updates := map[string]interface{}{
			"calendar_id": cal.ID,
			"title":       req.Title,
			"google_url":  googleURL,
			"start_date":  f.startDate,
			"start_time":  f.startTime,
			"end_date":    f.endDate,
			"end_time":    f.endTime,
			"is_repeat":   req.IsRepeat,
		}
		if err := tx.Model(&db.Schedule{}).Where("id = ?", schedule.ID).Updates(updates).Error; err != nil {
			return errors.Wrap(err, "update schedule")
		}

		if err := execSQL(ctx, tx, squirrel.Delete("schedule_participants").Where(squirrel.Eq{"schedule_id": schedule.ID})); err != nil {
			return errors.Wrap(err, "clear participants")
		}
		return setParticipants(ctx, tx, schedule.ID, participants)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *Schedules) Delete(ctx context.Context, user *db.User, id uint64) error {
	if _, err := ownedSchedule(ctx, s.db, user.ID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSchedules(ctx, tx, squirrel.Select("id").From("schedules").Where(squirrel.Eq{"id": id}))
	})
}

// Copy duplicates an owned schedule. A linked memo is duplicated into the
// same memo set; participants, tags and google_url stay with the original.
func (s *Schedules) Copy(ctx context.Context, user *db.User, id uint64) (*ScheduleDetail, error) {
	src, err := ownedSchedule(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}

	dup := db.Schedule{
		CalendarID: src.CalendarID,
		Title:      src.Title,
		StartDate:  src.StartDate,
		StartTime:  src.StartTime,
		EndDate:    src.EndDate,
		EndTime:    src.EndTime,
		IsRepeat:   src.IsRepeat,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if src.MemoID != nil {
			memo := db.Memo{}
			if err := tx.First(&memo, *src.MemoID).Error; err != nil {
				return errors.Wrap(err, "find source memo")
			}
			memoCopy := db.Memo{MemoSetID: memo.MemoSetID, Title: memo.Title, Text: memo.Text}
			if err := tx.Omit(clause.Associations).Create(&memoCopy).Error; err != nil {
				return errors.Wrap(err, "copy memo")
			}
			dup.MemoID = &memoCopy.ID
		}
		if err := tx.Omit(clause.Associations).Create(&dup).Error; err != nil {
			return errors.Wrap(err, "copy schedule")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("schedule copied", "user_id", user.ID, "schedule_id", src.ID, "copy_id", dup.ID)
	return s.detail(ctx, dup.ID)
}

func (s *Schedules) detail(ctx context.Context, id uint64) (*ScheduleDetail, error) {
	items, err := loadScheduleDetails(ctx, s.db, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound("Not found.")
	}
	return &items[0], nil
}

func ownedSchedule(ctx context.Context, conn *gorm.DB, userID, id uint64) (*db.Schedule, error) {
	schedule := db.Schedule{}
	res := conn.WithContext(ctx).
		Where("id = ? AND calendar_id IN (SELECT id FROM calendars WHERE user_id = ?)", id, userID).
		First(&schedule)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("Not found.")
		}
		return nil, errors.Wrap(res.Error, "find schedule")
	}
	return &schedule, nil
}

// resolveCalendar finds the owner's calendar by title, falling back to the
// default "Calendar".
func resolveCalendar(ctx context.Context, conn *gorm.DB, userID uint64, title *string) (*db.Calendar, error) {
	if title == nil || *title == "" {
		return defaultCalendar(ctx, conn, userID)
	}
	cal := db.Calendar{}
	err := ownedByTitle(ctx, conn, &cal, userID, *title, "Calendar not found.")
	if IsNotFound(err) {
		return nil, fieldError("calendar", fmt.Sprintf("Object with title=%s does not exist.", *title))
	}
	if err != nil {
		return nil, err
	}
	return &cal, nil
}

func resolveParticipants(ctx context.Context, conn *gorm.DB, emails []string) ([]uint64, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	users := make([]db.User, 0, len(emails))
	if err := conn.WithContext(ctx).Select("id", "email").Where("email IN ?", emails).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "find participants")
	}
	byEmail := make(map[string]uint64, len(users))
	for _, u := range users {
		byEmail[u.Email] = u.ID
	}

	verr := &ValidationError{}
	ids := make([]uint64, 0, len(emails))
	seen := map[uint64]bool{}
	for _, email := range emails {
		id, ok := byEmail[email]
		if !ok {
			verr.Add("participant", fmt.Sprintf("Object with email=%s does not exist.", email))
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return ids, nil
}

func setParticipants(ctx context.Context, tx *gorm.DB, scheduleID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}
	b := squirrel.Insert("schedule_participants").Columns("schedule_id", "user_id")
	for _, id := range userIDs {
		b = b.Values(scheduleID, id)
	}
	if err := execSQL(ctx, tx, b.Suffix("ON CONFLICT DO NOTHING")); err != nil {
		return errors.Wrap(err, "insert participants")
	}
	return nil
}

// deleteSchedules removes the selected schedules with their tag links and
// participants. Linked memos stay.
func deleteSchedules(ctx context.Context, tx *gorm.DB, ids squirrel.SelectBuilder) error {
	idSQL, idArgs, err := ids.ToSql()
	if err != nil {
		return errors.Wrap(err, "build schedule ids")
	}
	in := squirrel.Expr("schedule_id IN ("+idSQL+")", idArgs...)
	if err := execSQL(ctx, tx, squirrel.Delete("tag_schedules").Where(in)); err != nil {
		return errors.Wrap(err, "delete schedule tags")
	}
	if err := execSQL(ctx, tx, squirrel.Delete("schedule_participants").Where(in)); err != nil {
		return errors.Wrap(err, "delete participants")
	}
	if err := execSQL(ctx, tx, squirrel.Delete("schedules").Where(squirrel.Expr("id IN ("+idSQL+")", idArgs...))); err != nil {
		return errors.Wrap(err, "delete schedules")
	}
	return nil
}

// loadScheduleDetails loads schedules by id, keeping the order of ids.
func loadScheduleDetails(ctx context.Context, conn *gorm.DB, ids []uint64) ([]ScheduleDetail, error) {
	res := make([]ScheduleDetail, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	schedules := make([]db.Schedule, 0, len(ids))
	if err := conn.WithContext(ctx).Preload("Calendar").Where("id IN ?", ids).Find(&schedules).Error; err != nil {
		return nil, errors.Wrap(err, "find schedules")
	}
	byID := make(map[uint64]db.Schedule, len(schedules))
	for _, sc := range schedules {
		byID[sc.ID] = sc
	}

	participants, err := scanGrouped(ctx, conn, squirrel.
		Select("sp.schedule_id", "u.email").From("schedule_participants sp").
		Join("users u ON u.id = sp.user_id").
		Where(squirrel.Eq{"sp.schedule_id": ids}).
		OrderBy("u.id"))
	if err != nil {
		return nil, err
	}
	tags, err := scanGrouped(ctx, conn, squirrel.
		Select("ts.schedule_id", "t.title").From("tag_schedules ts").
		Join("schedules s ON s.id = ts.schedule_id").
		Join("calendars c ON c.id = s.calendar_id").
		Join("tags t ON t.id = ts.tag_id AND t.user_id = c.user_id").
		Where(squirrel.Eq{"ts.schedule_id": ids}).
		OrderBy("t.id"))
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		sc, ok := byID[id]
		if !ok {
			continue
		}
		d := ScheduleDetail{Schedule: sc, Participants: participants[id], Tags: tags[id]}
		if d.Participants == nil {
			d.Participants = []string{}
		}
		if d.Tags == nil {
			d.Tags = []string{}
		}
		res = append(res, d)
	}
	return res, nil
}
