package transport

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func (s *HTTPServer) CalendarList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	cals, err := s.calendars.List(c.Context(), user)
	if err != nil {
		return err
	}
	resp := make([]models.CalendarResp, len(cals))
	for i := range cals {
		resp[i] = calendarResp(cals[i], user)
	}
	return c.JSON(resp)
}

func (s *HTTPServer) CalendarCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.CalendarReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	cal, err := s.calendars.Create(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(calendarResp(*cal, user))
}

func (s *HTTPServer) CalendarGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	title, err := GetParam(c, "title")
	if err != nil {
		return err
	}
	cal, err := s.calendars.Get(c.Context(), user, title)
	if err != nil {
		return err
	}
	return c.JSON(calendarResp(*cal, user))
}

func (s *HTTPServer) CalendarUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	title, err := GetParam(c, "title")
	if err != nil {
		return err
	}
	req := models.CalendarReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	cal, err := s.calendars.Update(c.Context(), user, title, req)
	if err != nil {
		return err
	}
	return c.JSON(calendarResp(*cal, user))
}

func (s *HTTPServer) CalendarDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	title, err := GetParam(c, "title")
	if err != nil {
		return err
	}
	if err := s.calendars.Delete(c.Context(), user, title); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) CalendarExport(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	title, err := GetParam(c, "title")
	if err != nil {
		return err
	}
	doc, err := s.calendars.Export(c.Context(), user, title)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	return c.SendString(doc)
}

func (s *HTTPServer) CalendarImport(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	title, err := GetParam(c, "title")
	if err != nil {
		return err
	}
	req := models.CalendarImportReq{}
	if err := BindOptional(c, &req); err != nil {
		return err
	}
	if err := service.Validate(req); err != nil {
		return err
	}
	created, err := s.calendars.Import(c.Context(), user, title, req.URL)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(scheduleResps(created))
}

func (s *HTTPServer) ScheduleList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	q := service.ScheduleQuery{
		StartDate: c.Query("start_date"),
		View:      c.Query("view"),
		Calendars: queryList(c, "calendar"),
		Page:      s.pagination(c),
	}
	items, total, err := s.schedules.List(c.Context(), user, q)
	if err != nil {
		return err
	}
	return s.paginated(c, q.Page, total, scheduleResps(items))
}

func (s *HTTPServer) ScheduleSearch(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	q := service.SearchQuery{
		Query:     c.Query("query"),
		Tags:      queryList(c, "tag"),
		Calendars: queryList(c, "calendar"),
		Page:      s.pagination(c),
	}
	items, total, err := s.schedules.Search(c.Context(), user, q)
	if err != nil {
		return err
	}
	return s.paginated(c, q.Page, total, scheduleResps(items))
}

func (s *HTTPServer) ScheduleCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.ScheduleReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.schedules.Create(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(scheduleResp(*d))
}

func (s *HTTPServer) ScheduleGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.schedules.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(scheduleResp(*d))
}

func (s *HTTPServer) ScheduleUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.ScheduleReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.schedules.Update(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(scheduleResp(*d))
}

func (s *HTTPServer) ScheduleDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.schedules.Delete(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) ScheduleCopy(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.schedules.Copy(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(scheduleResp(*d))
}
