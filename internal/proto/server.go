package proto

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/service"
)

type PlannerServerImpl struct {
	server    *grpc.Server
	logger    *zap.SugaredLogger
	users     *service.Users
	schedules *service.Schedules
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger, users *service.Users, schedules *service.Schedules) *PlannerServerImpl {
	instance := newPlannerServer(logger, users, schedules)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
			if err != nil {
				return errors.Wrap(err, "listen grpc")
			}
			go func() {
				if err := instance.server.Serve(lis); err != nil {
					logger.Errorw("grpc server stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			instance.server.GracefulStop()
			return nil
		},
	})

	return instance
}

func newPlannerServer(logger *zap.SugaredLogger, users *service.Users, schedules *service.Schedules) *PlannerServerImpl {
	instance := &PlannerServerImpl{
		server:    grpc.NewServer(),
		logger:    logger,
		users:     users,
		schedules: schedules,
	}
	instance.server.RegisterService(&PlannerServiceDesc, instance)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(instance.server, hs)
	return instance
}

// Agenda lists the caller's schedules with the same filters as the REST
// schedule list: start_date, view, calendar and page.
func (s *PlannerServerImpl) Agenda(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.authenticate(ctx)
	if err != nil {
		return nil, s.toStatus(err)
	}

	fields := req.GetFields()
	q := service.ScheduleQuery{
		StartDate: fields["start_date"].GetStringValue(),
		View:      fields["view"].GetStringValue(),
		Page:      service.Pagination{Page: int(fields["page"].GetNumberValue())},
	}
	for _, v := range fields["calendar"].GetListValue().GetValues() {
		q.Calendars = append(q.Calendars, v.GetStringValue())
	}

	items, total, err := s.schedules.List(ctx, user, q)
	if err != nil {
		return nil, s.toStatus(err)
	}

	schedules := make([]interface{}, 0, len(items))
	for _, d := range items {
		tags := make([]interface{}, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, t)
		}
		schedules = append(schedules, map[string]interface{}{
			"id":         float64(d.ID),
			"title":      d.Title,
			"calendar":   d.Calendar.Title,
			"start_date": d.StartDate.Format(service.DateLayout),
			"start_time": d.StartTime,
			"end_date":   d.EndDate.Format(service.DateLayout),
			"end_time":   d.EndTime,
			"is_repeat":  d.IsRepeat,
			"tags":       tags,
		})
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"count":     float64(total),
		"schedules": schedules,
	})
	if err != nil {
		return nil, s.toStatus(errors.Wrap(err, "build agenda response"))
	}
	return resp, nil
}

func (s *PlannerServerImpl) authenticate(ctx context.Context) (*db.User, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	token := ""
	for _, v := range md.Get("authorization") {
		if strings.HasPrefix(strings.ToLower(v), "bearer ") {
			token = strings.TrimSpace(v[len("bearer "):])
			break
		}
	}
	return s.users.Authenticate(ctx, token)
}

func (s *PlannerServerImpl) toStatus(err error) error {
	var bad *service.BadRequestError
	if verr, ok := service.AsValidation(err); ok {
		return status.Error(codes.InvalidArgument, verr.Error())
	}
	switch {
	case errors.As(err, &bad):
		return status.Error(codes.InvalidArgument, bad.Detail)
	case service.IsNotFound(err):
		return status.Error(codes.NotFound, service.NotFoundMessage(err))
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "Authentication credentials were not provided.")
	}
	s.logger.Errorw("agenda failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
