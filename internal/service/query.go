package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
)

const (
	ViewDaily   = "daily"
	ViewWeekly  = "weekly"
	ViewMonthly = "monthly"

	MemoTypeSchedule   = "schedule"
	MemoTypeTodo       = "todo"
	MemoTypeStandalone = ""
)

var memoSorts = map[string]string{
	"created_at_asc":  "m.created_at ASC",
	"created_at_desc": "m.created_at DESC",
	"updated_at_asc":  "m.updated_at ASC",
	"updated_at_desc": "m.updated_at DESC",
	"title_asc":       "m.title ASC",
	"title_desc":      "m.title DESC",
}

// ScheduleQuery holds the raw schedule list filters.
type ScheduleQuery struct {
	StartDate string
	View      string
	Calendars []string
	Page      Pagination
}

// scheduleFilter selects ids of the owner's schedules starting on or after
// the query date inside the view window. The monthly window compares month
// numbers only: start_date's month must be below the query month + 1.
func scheduleFilter(conn *gorm.DB, userID uint64, q ScheduleQuery) (squirrel.SelectBuilder, error) {
	start, err := ParseDate("start_date", q.StartDate)
	if err != nil {
		return squirrel.SelectBuilder{}, err
	}

	b := squirrel.Select("s.id").From("schedules s").
		Join("calendars c ON c.id = s.calendar_id").
		Where(squirrel.Eq{"c.user_id": userID}).
		Where(squirrel.GtOrEq{"s.start_date": start}).
		OrderBy("s.id")

	if len(q.Calendars) != 0 {
		b = b.Where(squirrel.Eq{"c.title": q.Calendars})
	}

	switch q.View {
	case ViewDaily:
		b = b.Where(squirrel.Lt{"s.start_date": start.AddDate(0, 0, 1)})
	case ViewWeekly:
		b = b.Where(squirrel.Lt{"s.start_date": start.AddDate(0, 0, 7)})
	case ViewMonthly, "":
		b = b.Where(db.MonthExpr(conn, "s.start_date")+" < ?", int(start.Month())+1)
	default:
		return squirrel.SelectBuilder{}, fieldError("view", fmt.Sprintf("%q is not a valid choice.", q.View))
	}
	return b, nil
}

// SearchQuery holds the schedule search filters.
type SearchQuery struct {
	Query     string
	Tags      []string
	Calendars []string
	Page      Pagination
}

func searchFilter(userID uint64, q SearchQuery) (squirrel.SelectBuilder, error) {
	if strings.TrimSpace(q.Query) == "" {
		return squirrel.SelectBuilder{}, fieldError("query", msgRequired)
	}
	pattern := "%" + strings.ToLower(q.Query) + "%"

	b := squirrel.Select("s.id").From("schedules s").
		Join("calendars c ON c.id = s.calendar_id").
		LeftJoin("memos m ON m.id = s.memo_id").
		Where(squirrel.Eq{"c.user_id": userID}).
		Where(squirrel.Or{
			squirrel.Expr("LOWER(s.title) LIKE ?", pattern),
			squirrel.Expr("LOWER(COALESCE(m.text, '')) LIKE ?", pattern),
		}).
		OrderBy("s.id")

	if len(q.Calendars) != 0 {
		b = b.Where(squirrel.Eq{"c.title": q.Calendars})
	}
	if len(q.Tags) != 0 {
		in, err := inSubquery("s.id", taggedIDs("tag_schedules", "schedule_id", userID, q.Tags))
		if err != nil {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(in)
	}
	return b, nil
}

// memoFilter composes the memo list filters. Type filtering works on the
// complement: every link kind that was not requested is excluded.
func memoFilter(userID uint64, q MemoQuery) (squirrel.SelectBuilder, error) {
	verr := &ValidationError{}

	b := squirrel.Select("m.id").From("memos m").
		Join("memo_sets ms ON ms.id = m.memo_set_id").
		Where(squirrel.Eq{"ms.user_id": userID})

	from, to, err := creationRange(q.Year, q.Month, q.Day)
	if err != nil && !verr.merge(err) {
		return squirrel.SelectBuilder{}, err
	}
	if !from.IsZero() {
		b = b.Where(squirrel.GtOrEq{"m.created_at": from}).Where(squirrel.Lt{"m.created_at": to})
	}

	if q.Types != nil {
		requested := map[string]bool{}
		for _, t := range q.Types {
			switch t {
			case MemoTypeSchedule, MemoTypeTodo, MemoTypeStandalone:
				requested[t] = true
			default:
				verr.Add("type", fmt.Sprintf("%q is not a valid choice.", t))
			}
		}
		if !requested[MemoTypeTodo] {
			b = b.Where("NOT " + todoLinked).Where("NOT " + subTodoLinked)
		}
		if !requested[MemoTypeSchedule] {
			b = b.Where("NOT " + scheduleLinked)
		}
		if !requested[MemoTypeStandalone] {
			b = b.Where(squirrel.Or{
				squirrel.Expr(scheduleLinked),
				squirrel.Expr(todoLinked),
				squirrel.Expr(subTodoLinked),
			})
		}
	}

	if len(q.MemoSets) != 0 {
		ids, err := parseIDs("memo_set", q.MemoSets)
		if err != nil && !verr.merge(err) {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(squirrel.Eq{"m.memo_set_id": ids})
	}

	if len(q.Tags) != 0 {
		in, err := inSubquery("m.id", taggedIDs("tag_memos", "memo_id", userID, q.Tags))
		if err != nil {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(in)
	}

	if order, ok := memoSorts[q.Sort]; ok {
		b = b.OrderBy(order, "m.id")
	} else if q.Sort != "" {
		verr.Add("sort", fmt.Sprintf("%q is not a valid choice.", q.Sort))
	} else {
		b = b.OrderBy("m.id")
	}

	if err := verr.OrNil(); err != nil {
		return squirrel.SelectBuilder{}, err
	}
	return b, nil
}

const (
	scheduleLinked = "EXISTS (SELECT 1 FROM schedules ls WHERE ls.memo_id = m.id)"
	todoLinked     = "EXISTS (SELECT 1 FROM todos lt WHERE lt.memo_id = m.id)"
	subTodoLinked  = "EXISTS (SELECT 1 FROM sub_todos lst WHERE lst.memo_id = m.id)"
)

// TodoQuery holds the raw todo list filters.
type TodoQuery struct {
	TodoSets     []string
	CompleteDate string
	Tags         []string
	Page         Pagination
}

func todoFilter(userID uint64, q TodoQuery) (squirrel.SelectBuilder, error) {
	verr := &ValidationError{}

	b := squirrel.Select("t.id").From("todos t").
		Join("todo_sets ts ON ts.id = t.todo_set_id").
		Where(squirrel.Eq{"ts.user_id": userID}).
		OrderBy("t.id")

	if len(q.TodoSets) != 0 {
		ids, err := parseIDs("todo_set", q.TodoSets)
		if err != nil && !verr.merge(err) {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(squirrel.Eq{"t.todo_set_id": ids})
	}
	if q.CompleteDate != "" {
		day, err := ParseDate("complete_date", q.CompleteDate)
		if err != nil && !verr.merge(err) {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(squirrel.GtOrEq{"t.complete_date": day}).
			Where(squirrel.Lt{"t.complete_date": day.AddDate(0, 0, 1)})
	}
	if len(q.Tags) != 0 {
		in, err := inSubquery("t.id", taggedIDs("tag_todos", "todo_id", userID, q.Tags))
		if err != nil {
			return squirrel.SelectBuilder{}, err
		}
		b = b.Where(in)
	}

	if err := verr.OrNil(); err != nil {
		return squirrel.SelectBuilder{}, err
	}
	return b, nil
}

// creationRange turns year/month/day parts into a half-open UTC range. All
// parts empty yields zero times.
func creationRange(year, month, day string) (time.Time, time.Time, error) {
	if year == "" {
		if month != "" {
			return time.Time{}, time.Time{}, fieldError("month", "Month requires year.")
		}
		if day != "" {
			return time.Time{}, time.Time{}, fieldError("day", "Day requires month.")
		}
		return time.Time{}, time.Time{}, nil
	}
	if month == "" && day != "" {
		return time.Time{}, time.Time{}, fieldError("day", "Day requires month.")
	}

	y, err := strconv.Atoi(year)
	if err != nil || y < 1 {
		return time.Time{}, time.Time{}, fieldError("year", "A valid integer is required.")
	}
	m, d := 1, 1
	if month != "" {
		if m, err = strconv.Atoi(month); err != nil || m < 1 || m > 12 {
			return time.Time{}, time.Time{}, fieldError("month", "A valid month is required.")
		}
	}
	if day != "" {
		if d, err = strconv.Atoi(day); err != nil || d < 1 || d > 31 {
			return time.Time{}, time.Time{}, fieldError("day", "A valid day is required.")
		}
	}

	from := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if from.Day() != d {
		return time.Time{}, time.Time{}, fieldError("day", "A valid day is required.")
	}
	switch {
	case day != "":
		return from, from.AddDate(0, 0, 1), nil
	case month != "":
		return from, from.AddDate(0, 1, 0), nil
	default:
		return from, from.AddDate(1, 0, 0), nil
	}
}

// taggedIDs selects ids of entities linked to any of the owner's tags named
// in titles.
func taggedIDs(table, column string, userID uint64, titles []string) squirrel.SelectBuilder {
	return squirrel.Select("lnk." + column).From(table + " lnk").
		Join("tags tg ON tg.id = lnk.tag_id").
		Where(squirrel.Eq{"tg.user_id": userID, "tg.title": titles})
}

func inSubquery(column string, sub squirrel.SelectBuilder) (squirrel.Sqlizer, error) {
	sql, args, err := sub.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build subquery")
	}
	return squirrel.Expr(column+" IN ("+sql+")", args...), nil
}

func parseIDs(field string, raw []string) ([]uint64, error) {
	ids := make([]uint64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseUint(r, 10, 64)
		if err != nil {
			return nil, fieldError(field, fmt.Sprintf("%q is not a valid id.", r))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
