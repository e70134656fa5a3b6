package transport

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

const apiPrefix = "/api/v1"

var Module = fx.Provide(NewHTTPServer)

type (
	Params struct {
		fx.In

		Lifecycle fx.Lifecycle
		Config    *config.Config
		Logger    *zap.SugaredLogger

		Users     *service.Users
		Calendars *service.Calendars
		Schedules *service.Schedules
		Memos     *service.Memos
		Todos     *service.Todos
		Tags      *service.Tags
	}

	HTTPServer struct {
		app      *fiber.App
		logger   *zap.SugaredLogger
		pageSize int

		users     *service.Users
		calendars *service.Calendars
		schedules *service.Schedules
		memos     *service.Memos
		todos     *service.Todos
		tags      *service.Tags
	}
)

func NewHTTPServer(p Params) *HTTPServer {
	instance := newServer(p)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := p.Config.Host + ":" + p.Config.Port
				if err := instance.app.Listen(listen); err != nil {
					p.Logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Stopping HTTP server.")
			return instance.app.Shutdown()
		},
	})

	return instance
}

// newServer builds the fiber app without binding it to a port.
func newServer(p Params) *HTTPServer {
	instance := &HTTPServer{
		logger:    p.Logger,
		pageSize:  service.DefaultPageSize,
		users:     p.Users,
		calendars: p.Calendars,
		schedules: p.Schedules,
		memos:     p.Memos,
		todos:     p.Todos,
		tags:      p.Tags,
	}
	if p.Config != nil && p.Config.PageSize > 0 {
		instance.pageSize = p.Config.PageSize
	}

	app := fiber.New(fiber.Config{
		Immutable:    true,
		ErrorHandler: instance.errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(instance.requestLogger)

	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	api := app.Group(apiPrefix)

	users := api.Group("/users")
	users.Post("/signup", instance.Signup)
	users.Post("/login", instance.Login)
	users.Post("/logout", instance.AuthMiddleware, instance.Logout)
	users.Get("/certified/email/:uid/:token", instance.CertifyEmail)
	users.Post("/request/reset/password", instance.RequestPasswordReset)
	users.Post("/reset/password", instance.ResetPassword)
	users.Get("/profile", instance.AuthMiddleware, instance.ProfileGet)
	users.Put("/profile", instance.AuthMiddleware, instance.ProfileUpdate)
	users.Delete("/profile", instance.AuthMiddleware, instance.ProfileDelete)

	// schedule routes go first so "schedule" is never read as a calendar title
	calendars := api.Group("/calendars", instance.AuthMiddleware)
	calendars.Get("/", instance.CalendarList)
	calendars.Post("/", instance.CalendarCreate)
	calendars.Get("/schedule", instance.ScheduleList)
	calendars.Post("/schedule", instance.ScheduleCreate)
	calendars.Get("/schedule/search", instance.ScheduleSearch)
	calendars.Get("/schedule/:id", instance.ScheduleGet)
	calendars.Put("/schedule/:id", instance.ScheduleUpdate)
	calendars.Delete("/schedule/:id", instance.ScheduleDelete)
	calendars.Post("/schedule/:id/copy", instance.ScheduleCopy)
	calendars.Get("/:title", instance.CalendarGet)
	calendars.Put("/:title", instance.CalendarUpdate)
	calendars.Delete("/:title", instance.CalendarDelete)
	calendars.Get("/:title/export", instance.CalendarExport)
	calendars.Post("/:title/import", instance.CalendarImport)

	memos := api.Group("/memos", instance.AuthMiddleware)
	memos.Get("/set", instance.MemoSetList)
	memos.Post("/set", instance.MemoSetCreate)
	memos.Get("/set/:id", instance.MemoSetGet)
	memos.Put("/set/:id", instance.MemoSetUpdate)
	memos.Delete("/set/:id", instance.MemoSetDelete)
	memos.Get("/", instance.MemoList)
	memos.Post("/", instance.MemoCreate)
	memos.Get("/:id", instance.MemoGet)
	memos.Put("/:id", instance.MemoUpdate)
	memos.Delete("/:id", instance.MemoDelete)

	todos := api.Group("/todos", instance.AuthMiddleware)
	todos.Get("/set", instance.TodoSetList)
	todos.Post("/set", instance.TodoSetCreate)
	todos.Get("/set/:id", instance.TodoSetGet)
	todos.Put("/set/:id", instance.TodoSetUpdate)
	todos.Delete("/set/:id", instance.TodoSetDelete)
	todos.Put("/sub_todo/:id/status", instance.SubTodoToggle)
	todos.Delete("/sub_todo/:id", instance.SubTodoDelete)
	todos.Get("/", instance.TodoList)
	todos.Post("/", instance.TodoCreate)
	todos.Get("/:id", instance.TodoGet)
	todos.Put("/:id", instance.TodoUpdate)
	todos.Delete("/:id", instance.TodoDelete)
	todos.Patch("/:id/status", instance.TodoToggle)
	todos.Post("/:id/sub_todo", instance.SubTodoCreate)

	tags := api.Group("/tags", instance.AuthMiddleware)
	tags.Get("/", instance.TagList)
	tags.Post("/", instance.TagCreate)
	tags.Get("/:id", instance.TagGet)
	tags.Put("/:id", instance.TagUpdate)
	tags.Delete("/:id", instance.TagDelete)
	tags.Post("/:id/label", instance.TagLabel)
	tags.Delete("/:id/label", instance.TagUnlabel)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	instance.app = app
	return instance
}
