package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

func (s *HTTPServer) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// run the error handler now so the logged status is the final one
		if herr := s.errorHandler(c, err); herr != nil {
			return herr
		}
	}

	fields := []interface{}{
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	}
	if body := c.Body(); len(body) != 0 {
		fields = append(fields, "body", string(censorBody(body)))
	}
	s.logger.Infow("request", fields...)
	return nil
}

// AuthMiddleware resolves the bearer token to an active user and stores it
// in the request locals.
func (s *HTTPServer) AuthMiddleware(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := ""
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		token = strings.TrimSpace(header[len("Bearer "):])
	}

	user, err := s.users.Authenticate(c.Context(), token)
	if err != nil {
		return err
	}
	c.Locals(userLocal, user)
	return c.Next()
}

// censorBody hides password values of a JSON body. Bodies that are not JSON
// objects are returned untouched.
func censorBody(body []byte) []byte {
	m := map[string]interface{}{}
	if err := json.Unmarshal(body, &m); err != nil {
		return body
	}
	changed := false
	for k := range m {
		if strings.Contains(strings.ToLower(k), "password") {
			m[k] = "$censored"
			changed = true
		}
	}
	if !changed {
		return body
	}
	out, err := json.Marshal(m)
	if err != nil {
		return body
	}
	return out
}
