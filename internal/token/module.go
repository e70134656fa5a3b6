package token

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewLinks,
	)
)
