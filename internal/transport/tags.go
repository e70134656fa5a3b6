package transport

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func (s *HTTPServer) TagList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	tags, err := s.tags.List(c.Context(), user)
	if err != nil {
		return err
	}
	resp := make([]models.TagResp, len(tags))
	for i := range tags {
		resp[i] = tagResp(tags[i])
	}
	return c.JSON(resp)
}

func (s *HTTPServer) TagCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.TagReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.tags.Create(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(tagResp(*d))
}

func (s *HTTPServer) TagGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.tags.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(tagResp(*d))
}

func (s *HTTPServer) TagUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.TagReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.tags.Rename(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(tagResp(*d))
}

func (s *HTTPServer) TagDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.tags.Delete(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) TagLabel(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.TagLabelReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.tags.Label(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(tagResp(*d))
}

// TagUnlabel takes the target from the body or, for clients that cannot send
// a DELETE body, from the query string.
func (s *HTTPServer) TagUnlabel(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.TagLabelReq{}
	if err := BindOptional(c, &req); err != nil {
		return err
	}
	if !service.HasID(req.ScheduleID) && !service.HasID(req.TodoID) && !service.HasID(req.MemoID) {
		if err := c.QueryParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	d, err := s.tags.Unlabel(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(tagResp(*d))
}
