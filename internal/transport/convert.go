package transport

import (
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func profileResp(u *db.User) models.ProfileResp {
	return models.ProfileResp{
		Email:        u.Email,
		Nickname:     u.Nickname,
		Gender:       u.Gender,
		Birthday:     u.Birthday.Format(service.DateLayout),
		Photo:        u.Photo,
		GoogleCalURL: u.GoogleCalURL,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

func calendarResp(cal db.Calendar, owner *db.User) models.CalendarResp {
	return models.CalendarResp{
		ID:        cal.ID,
		Title:     cal.Title,
		User:      owner.Email,
		CreatedAt: cal.CreatedAt,
		UpdatedAt: cal.UpdatedAt,
	}
}

func scheduleResp(d service.ScheduleDetail) models.ScheduleResp {
	return models.ScheduleResp{
		ID:          d.ID,
		Calendar:    d.Calendar.Title,
		Memo:        d.MemoID,
		Participant: d.Participants,
		Tags:        d.Tags,
		Title:       d.Title,
		GoogleURL:   d.GoogleURL,
		StartDate:   d.StartDate.Format(service.DateLayout),
		StartTime:   d.StartTime,
		EndDate:     d.EndDate.Format(service.DateLayout),
		EndTime:     d.EndTime,
		IsRepeat:    d.IsRepeat,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func scheduleResps(items []service.ScheduleDetail) []models.ScheduleResp {
	res := make([]models.ScheduleResp, len(items))
	for i := range items {
		res[i] = scheduleResp(items[i])
	}
	return res
}

func memoSetResp(set db.MemoSet) models.MemoSetResp {
	return models.MemoSetResp{
		ID:        set.ID,
		Title:     set.Title,
		User:      set.UserID,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	}
}

func todoSetResp(set db.TodoSet, owner *db.User) models.TodoSetResp {
	return models.TodoSetResp{
		ID:        set.ID,
		Title:     set.Title,
		User:      owner.Email,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	}
}

func memoResp(d service.MemoDetail) models.MemoResp {
	return models.MemoResp{
		ID:           d.ID,
		Title:        d.Title,
		MemoSet:      d.MemoSetID,
		Text:         d.Text,
		MemoSchedule: d.ScheduleID,
		MemoTodo:     d.TodoID,
		MemoSubTodo:  d.SubTodoID,
		Tags:         d.Tags,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func memoRespPtr(d *service.MemoDetail) *models.MemoResp {
	if d == nil {
		return nil
	}
	r := memoResp(*d)
	return &r
}

func memoResps(items []service.MemoDetail) []models.MemoResp {
	res := make([]models.MemoResp, len(items))
	for i := range items {
		res[i] = memoResp(items[i])
	}
	return res
}

func subTodoResp(d service.SubTodoDetail) models.SubTodoResp {
	return models.SubTodoResp{
		ID:           d.ID,
		Todo:         d.TodoID,
		Memo:         memoRespPtr(d.MemoDetail),
		Title:        d.Title,
		StartDate:    d.StartDate,
		CompleteDate: d.CompleteDate,
	}
}

func todoResp(d service.TodoDetail) models.TodoResp {
	subs := make([]models.SubTodoResp, len(d.SubTodos))
	for i := range d.SubTodos {
		subs[i] = subTodoResp(d.SubTodos[i])
	}
	return models.TodoResp{
		ID:           d.ID,
		TodoSet:      d.TodoSetID,
		Memo:         memoRespPtr(d.MemoDetail),
		Title:        d.Title,
		StartDate:    d.StartDate,
		CompleteDate: d.CompleteDate,
		TodoSub:      subs,
		Tags:         d.Tags,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func todoResps(items []service.TodoDetail) []models.TodoResp {
	res := make([]models.TodoResp, len(items))
	for i := range items {
		res[i] = todoResp(items[i])
	}
	return res
}

func tagResp(d service.TagDetail) models.TagResp {
	return models.TagResp{
		ID:       d.ID,
		User:     d.UserID,
		Title:    d.Title,
		Schedule: d.Schedules,
		Todo:     d.Todos,
		Memo:     d.Memos,
	}
}
