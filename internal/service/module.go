package service

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewUsers,
		NewCalendars,
		NewSchedules,
		NewMemos,
		NewTodos,
		NewTags,
	)
)
