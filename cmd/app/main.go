package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/ical"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/mail"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/proto"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/token"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/transport"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			newLogger,
			db.NewGormClient,
			func(s *mail.SMTPSender) service.Mailer { return s },
			func(f *ical.Fetcher) service.CalendarFetcher { return f },
		),
		token.Module,
		mail.Module,
		ical.Module,
		service.Module,
		transport.Module,
		proto.Module,
		fx.Invoke(func(*transport.HTTPServer, *proto.PlannerServerImpl) {}),
	).Run()
}

func newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	build := zap.NewProduction
	if cfg.LogDevelopment {
		build = zap.NewDevelopment
	}
	l, err := build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
