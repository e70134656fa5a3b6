package transport

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func (s *HTTPServer) TodoSetList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	sets, err := s.todos.ListSets(c.Context(), user)
	if err != nil {
		return err
	}
	resp := make([]models.TodoSetResp, len(sets))
	for i := range sets {
		resp[i] = todoSetResp(sets[i], user)
	}
	return c.JSON(resp)
}

func (s *HTTPServer) TodoSetCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.SetReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	set, err := s.todos.CreateSet(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(todoSetResp(*set, user))
}

func (s *HTTPServer) TodoSetGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	set, err := s.todos.GetSet(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(todoSetResp(*set, user))
}

func (s *HTTPServer) TodoSetUpdate(c *fiber.Ctx) error {
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
	set, err := s.todos.UpdateSet(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(todoSetResp(*set, user))
}

func (s *HTTPServer) TodoSetDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.todos.DeleteSet(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) TodoList(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	q := service.TodoQuery{
		TodoSets:     queryList(c, "todo_set"),
		CompleteDate: c.Query("complete_date"),
		Tags:         queryList(c, "tag"),
		Page:         s.pagination(c),
	}
	items, total, err := s.todos.List(c.Context(), user, q)
	if err != nil {
		return err
	}
	return s.paginated(c, q.Page, total, todoResps(items))
}

func (s *HTTPServer) TodoCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.TodoReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.todos.Create(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(todoResp(*d))
}

func (s *HTTPServer) TodoGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.todos.Get(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(todoResp(*d))
}

func (s *HTTPServer) TodoUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.TodoUpdateReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.todos.Update(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(todoResp(*d))
}

func (s *HTTPServer) TodoDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.todos.Delete(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *HTTPServer) TodoToggle(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.todos.ToggleStatus(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(todoResp(*d))
}

func (s *HTTPServer) SubTodoCreate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	req := models.SubTodoReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	d, err := s.todos.CreateSubTodo(c.Context(), user, id, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(subTodoResp(*d))
}

func (s *HTTPServer) SubTodoToggle(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	d, err := s.todos.ToggleSubTodo(c.Context(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(subTodoResp(*d))
}

func (s *HTTPServer) SubTodoDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.todos.DeleteSubTodo(c.Context(), user, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
