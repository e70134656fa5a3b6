package db_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/db/dbtest"
)

func TestCalendarTitleUniquePerUser(t *testing.T) {
	conn := dbtest.New(t)

	alice := db.User{Email: "alice@test.com", Password: "x", Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	bob := db.User{Email: "bob@test.com", Password: "x", Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, conn.Create(&alice).Error)
	require.NoError(t, conn.Create(&bob).Error)

	require.NoError(t, conn.Create(&db.Calendar{Title: "Work", UserID: alice.ID}).Error)
	require.NoError(t, conn.Create(&db.Calendar{Title: "Work", UserID: bob.ID}).Error)
	assert.Error(t, conn.Create(&db.Calendar{Title: "Work", UserID: alice.ID}).Error)
}

func TestDeleteUserCascades(t *testing.T) {
	conn := dbtest.New(t)

	user := db.User{Email: "alice@test.com", Password: "x", Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, conn.Create(&user).Error)
	cal := db.Calendar{Title: "Work", UserID: user.ID}
	require.NoError(t, conn.Create(&cal).Error)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Create(&db.Schedule{
		CalendarID: cal.ID, Title: "standup",
		StartDate: day, StartTime: "09:00:00", EndDate: day, EndTime: "09:15:00",
	}).Error)

	require.NoError(t, conn.Delete(&db.User{}, user.ID).Error)

	var count int64
	require.NoError(t, conn.Model(&db.Schedule{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, conn.Model(&db.Calendar{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMonthExpr(t *testing.T) {
	conn := dbtest.New(t)
	assert.Equal(t, "CAST(strftime('%m', s.start_date) AS INTEGER)", db.MonthExpr(conn, "s.start_date"))

	var month int
	require.NoError(t, conn.Raw("SELECT "+db.MonthExpr(conn, "?"), time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)).Scan(&month).Error)
	assert.Equal(t, 3, month)
}
