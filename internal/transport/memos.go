package transport

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func (s *HTTPServer) MemoSetList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	sets, err := s.memos.ListSets(c.Context(), user)
	if err != nil {
		return err
	}
	resp := make([]models.MemoSetResp, len(sets))
	for i := range sets {
		resp[i] = memoSetResp(sets[i])
	}
	return c.JSON(resp)
}

func (s *HTTPServer) MemoSetCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.SetReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	set, err := s.memos.CreateSet(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(memoSetResp(*set))
}

func (s *HTTPServer) MemoSetGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	set, err := s.memos.GetSet(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(memoSetResp(*set))
}

func (s *HTTPServer) MemoSetUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.SetReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	set, err := s.memos.UpdateSet(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(memoSetResp(*set))
}

func (s *HTTPServer) MemoSetDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.memos.DeleteSet(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) MemoList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	q := service.MemoQuery{
		Year:     c.Query("year"),
		Month:    c.Query("month"),
		Day:      c.Query("day"),
		Types:    queryList(c, "type"),
		MemoSets: queryList(c, "memo_set"),
		Tags:     queryList(c, "tag"),
		Sort:     c.Query("sort"),
		Page:     s.pagination(c),
	}
	items, total, err := s.memos.List(c.Context(), user, q)
	if err != nil {
		return err
	}
	return s.paginated(c, q.Page, total, memoResps(items))
}

func (s *HTTPServer) MemoCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.MemoReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.memos.Create(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(memoResp(*d))
}

func (s *HTTPServer) MemoGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.memos.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(memoResp(*d))
}

func (s *HTTPServer) MemoUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.MemoReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.memos.Update(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(memoResp(*d))
}

func (s *HTTPServer) MemoDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.memos.Delete(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
