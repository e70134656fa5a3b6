package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	var (
		verr *service.ValidationError
		bad  *service.BadRequestError
		ferr *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		return c.Status(http.StatusBadRequest).JSON(verr.Fields)
	case errors.As(err, &bad):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": bad.Detail})
	case service.IsNotFound(err):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"detail": service.NotFoundMessage(err)})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"detail": "Authentication credentials were not provided."})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"detail": "It's not valid"})
	case errors.Is(err, service.ErrInvalidLink):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid link"})
	case errors.As(err, &ferr):
		return c.Status(ferr.Code).JSON(fiber.Map{"detail": ferr.Message})
	}

	s.logger.Errorw("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"detail": "Internal server error."})
}

// Bind decodes the JSON body into v. Field rules are checked by the
// services, which report them per field.
func Bind(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(http.StatusBadRequest, "JSON parse error - "+err.Error())
	}
	return nil
}

// BindOptional is Bind for endpoints whose body may be empty.
func BindOptional(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return Bind(c, v)
}

func GetUserFromContext(c *fiber.Ctx) (*db.User, error) {
	user, ok := c.Locals(userLocal).(*db.User)
	if !ok || user == nil {
		return nil, errors.New("no user found in context")
	}
	return user, nil
}

func GetParam(c *fiber.Ctx, name string) (string, error) {
	value, err := url.PathUnescape(c.Params(name))
	if err != nil || value == "" {
		return "", fiber.NewError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

// GetAndParseParam reads a numeric id. Anything else cannot name a row, so it
// is reported as absent.
func GetAndParseParam(c *fiber.Ctx, name string) (uint64, error) {
	v, err := GetParam(c, name)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusNotFound, "Not found.")
	}
	return id, nil
}

// queryList collects a repeated query parameter sent either as key or key[].
// It returns nil when the parameter is absent.
func queryList(c *fiber.Ctx, key string) []string {
	var res []string
	args := c.Context().QueryArgs()
	for _, k := range []string{key, key + "[]"} {
		for _, v := range args.PeekMulti(k) {
			res = append(res, string(v))
		}
	}
	return res
}

func (s *HTTPServer) pagination(c *fiber.Ctx) service.Pagination {
	page := 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			p = -1
		}
		page = p
	}
	return service.Pagination{Page: page, Size: s.pageSize}
}

// paginated wraps one page of results with the total count and links to the
// neighbouring pages.
func (s *HTTPServer) paginated(c *fiber.Ctx, p service.Pagination, total int64, results interface{}) error {
	resp := models.PageResp{Count: total, Results: results}
	if int64(p.Page*p.Size) < total {
		resp.Next = pageURL(c, p.Page+1)
	}
	if p.Page > 1 {
		resp.Previous = pageURL(c, p.Page-1)
	}
	return c.JSON(resp)
}

func pageURL(c *fiber.Ctx, page int) *string {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		values = url.Values{}
	}
	if page == 1 {
		values.Del("page")
	} else {
		values.Set("page", strconv.Itoa(page))
	}
	u := c.BaseURL() + c.Path()
	if q := values.Encode(); q != "" {
		u += "?" + q
	}
	return &u
}
