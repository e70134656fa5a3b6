package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db/dbtest"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/token"
)

type sentMail struct {
	kind string
	to   string
	link string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendActivation(to, link string) error {
	m.sent = append(m.sent, sentMail{kind: "activation", to: to, link: link})
	return nil
}

func (m *fakeMailer) SendPasswordReset(to, link string) error {
	m.sent = append(m.sent, sentMail{kind: "reset", to: to, link: link})
	return nil
}

// last returns uid64 and token of the most recent link sent.
func (m *fakeMailer) last(t *testing.T) (string, string) {
	require.NotEmpty(t, m.sent)
	parts := strings.Split(strings.TrimSuffix(m.sent[len(m.sent)-1].link, "/"), "/")
	require.True(t, len(parts) >= 2)
	return parts[len(parts)-2], parts[len(parts)-1]
}

type fakeFetcher struct {
	body []byte
	err  error
	urls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.body, f.err
}

type testEnv struct {
	db        *gorm.DB
	mailer    *fakeMailer
	fetcher   *fakeFetcher
	users     *Users
	calendars *Calendars
	schedules *Schedules
	memos     *Memos
	todos     *Todos
	tags      *Tags
}

func newTestEnv(t *testing.T) *testEnv {
	conn := dbtest.New(t)
	logger := zap.NewNop().Sugar()
	cfg := &config.Config{
		SecretKey:  "test-secret",
		LinkTTL:    time.Hour,
		BcryptCost: bcrypt.MinCost,
		ClientURL:  "http://planner.test",
	}
	env := &testEnv{
		db:      conn,
		mailer:  &fakeMailer{},
		fetcher: &fakeFetcher{},
	}
	env.users = NewUsers(conn, logger, cfg, env.mailer, token.NewLinks(cfg))
	env.calendars = NewCalendars(conn, logger, env.fetcher)
	env.schedules = NewSchedules(conn, logger)
	env.memos = NewMemos(conn, logger)
	env.todos = NewTodos(conn, logger)
	env.tags = NewTags(conn, logger)
	return env
}

// activeUser stores an activated user with default collections.
func (e *testEnv) activeUser(t *testing.T, email string) *db.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	user := db.User{
		Email:    email,
		Password: string(hash),
		Nickname: "nick",
		Gender:   "female",
		Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}
	require.NoError(t, e.db.Create(&user).Error)
	require.NoError(t, provisionDefaults(e.db, user.ID))
	return &user
}

func (e *testEnv) schedule(t *testing.T, user *db.User, title, date string) *ScheduleDetail {
	d, err := e.schedules.Create(context.Background(), user, models.ScheduleReq{
		Title:     title,
		StartDate: date,
		StartTime: "09:00",
		EndDate:   date,
		EndTime:   "10:00",
	})
	require.NoError(t, err)
	return d
}

func strPtr(s string) *string { return &s }

func u64Ptr(v uint64) *uint64 { return &v }

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	verr, ok := AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.Contains(t, verr.Fields, field)
}
