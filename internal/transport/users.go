package transport

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

func (s *HTTPServer) Signup(c *fiber.Ctx) error {
	req := models.SignupReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	user, err := s.users.Signup(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(profileResp(user))
}

func (s *HTTPServer) Login(c *fiber.Ctx) error {
	req := models.LoginReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	user, err := s.users.Login(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(models.LoginResp{Email: user.Email, Token: *user.Token})
}

func (s *HTTPServer) Logout(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.users.Logout(c.Context(), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"detail": "Logged out."})
}

func (s *HTTPServer) CertifyEmail(c *fiber.Ctx) error {
	uid, err := GetParam(c, "uid")
	if err != nil {
		return err
	}
	token, err := GetParam(c, "token")
	if err != nil {
		return err
	}
	user, err := s.users.CertifyEmail(c.Context(), uid, token)
	if err != nil {
		return err
	}
	return c.JSON(models.EmailResp{Email: user.Email})
}

func (s *HTTPServer) RequestPasswordReset(c *fiber.Ctx) error {
	req := models.EmailReq{}
	if err := BindOptional(c, &req); err != nil {
		return err
	}
	user, err := s.users.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(models.EmailResp{Email: user.Email})
}

func (s *HTTPServer) ResetPassword(c *fiber.Ctx) error {
	req := models.ResetPasswordReq{}
	if err := BindOptional(c, &req); err != nil {
		return err
	}
	user, err := s.users.ResetPassword(c.Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(models.EmailResp{Email: user.Email})
}

func (s *HTTPServer) ProfileGet(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	return c.JSON(profileResp(user))
}

func (s *HTTPServer) ProfileUpdate(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	req := models.ProfileUpdateReq{}
	if err := Bind(c, &req); err != nil {
		return err
	}
	updated, err := s.users.UpdateProfile(c.Context(), user, req)
	if err != nil {
		return err
	}
	return c.JSON(profileResp(updated))
}

func (s *HTTPServer) ProfileDelete(c *fiber.Ctx) error {
	user, err := GetUserFromContext(c)
	if err != nil {
		return err
	}
	if err := s.users.DeleteProfile(c.Context(), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
