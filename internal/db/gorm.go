package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
)

const (
	DefaultCalendarTitle = "Calendar"
	DefaultMemoSetTitle  = "Memo"
	DefaultTodoSetTitle  = "Todo"

	DefaultMemoTitle = "새로운 메모"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email        string    `gorm:"unique;not null"`
		Password     string    `gorm:"not null"`
		Token        *string   `gorm:"uniqueIndex"`
		Nickname     string    `gorm:"size:30;not null;default:''"`
		Gender       string    `gorm:"size:20;not null;default:''"`
		Birthday     time.Time `gorm:"type:date;not null"`
		Photo        *string   `gorm:"size:255"`
		GoogleCalURL *string   `gorm:"size:255"`
		IsActive     bool      `gorm:"not null;default:false"`
	}

	Calendar struct {
		GormForkedModel
		Title  string `gorm:"size:50;not null;uniqueIndex:uidx_calendar_title_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_calendar_title_user_id"`
		User   User   `gorm:"constraint:OnDelete:CASCADE"`
	}

	Schedule struct {
		GormForkedModel
		CalendarID uint64    `gorm:"not null;index"`
		Calendar   Calendar  `gorm:"constraint:OnDelete:CASCADE"`
		Title      string    `gorm:"size:50;not null"`
		MemoID     *uint64   `gorm:"uniqueIndex"`
		Memo       *Memo     `gorm:"constraint:OnDelete:SET NULL"`
		GoogleURL  *string   `gorm:"size:255"`
		StartDate  time.Time `gorm:"type:date;not null;index"`
		StartTime  string    `gorm:"size:8;not null"`
		EndDate    time.Time `gorm:"type:date;not null"`
		EndTime    string    `gorm:"size:8;not null"`
		IsRepeat   bool      `gorm:"not null"`
	}

	ScheduleParticipant struct {
		ScheduleID uint64   `gorm:"primaryKey"`
		Schedule   Schedule `gorm:"constraint:OnDelete:CASCADE"`
		UserID     uint64   `gorm:"primaryKey"`
		User       User     `gorm:"constraint:OnDelete:CASCADE"`
	}

	MemoSet struct {
		GormForkedModel
		Title  string `gorm:"size:50;not null;uniqueIndex:uidx_memo_set_title_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_memo_set_title_user_id"`
		User   User   `gorm:"constraint:OnDelete:CASCADE"`
	}

	Memo struct {
		GormForkedModel
		MemoSetID uint64  `gorm:"not null;index"`
		MemoSet   MemoSet `gorm:"constraint:OnDelete:CASCADE"`
		Title     string  `gorm:"size:50;not null"`
		Text      *string
	}

	TodoSet struct {
		GormForkedModel
		Title  string `gorm:"size:50;not null;uniqueIndex:uidx_todo_set_title_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_todo_set_title_user_id"`
		User   User   `gorm:"constraint:OnDelete:CASCADE"`
	}

	Todo struct {
		GormForkedModel
		TodoSetID    uint64     `gorm:"not null;index"`
		TodoSet      TodoSet    `gorm:"constraint:OnDelete:CASCADE"`
		MemoID       *uint64    `gorm:"uniqueIndex"`
		Memo         *Memo      `gorm:"constraint:OnDelete:SET NULL"`
		Title        string     `gorm:"size:50;not null"`
		StartDate    time.Time  `gorm:"not null"`
		CompleteDate *time.Time
	}

	SubTodo struct {
		GormForkedModel
		TodoID       uint64     `gorm:"not null;index"`
		Todo         Todo       `gorm:"constraint:OnDelete:CASCADE"`
		MemoID       *uint64    `gorm:"uniqueIndex"`
		Memo         *Memo      `gorm:"constraint:OnDelete:SET NULL"`
		Title        string     `gorm:"size:50;not null"`
		StartDate    time.Time  `gorm:"not null"`
		CompleteDate *time.Time
	}

	Tag struct {
		GormForkedModel
		Title  string `gorm:"size:30;not null;uniqueIndex:uidx_tag_title_user_id"`
		UserID uint64 `gorm:"not null;uniqueIndex:uidx_tag_title_user_id"`
		User   User   `gorm:"constraint:OnDelete:CASCADE"`
	}

	TagSchedule struct {
		TagID      uint64   `gorm:"primaryKey"`
		Tag        Tag      `gorm:"constraint:OnDelete:CASCADE"`
		ScheduleID uint64   `gorm:"primaryKey"`
		Schedule   Schedule `gorm:"constraint:OnDelete:CASCADE"`
	}

	TagTodo struct {
		TagID  uint64 `gorm:"primaryKey"`
		Tag    Tag    `gorm:"constraint:OnDelete:CASCADE"`
		TodoID uint64 `gorm:"primaryKey"`
		Todo   Todo   `gorm:"constraint:OnDelete:CASCADE"`
	}

	TagMemo struct {
		TagID  uint64 `gorm:"primaryKey"`
		Tag    Tag    `gorm:"constraint:OnDelete:CASCADE"`
		MemoID uint64 `gorm:"primaryKey"`
		Memo   Memo   `gorm:"constraint:OnDelete:CASCADE"`
	}
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Calendar{},
		&MemoSet{},
		&Memo{},
		&Schedule{},
		&ScheduleParticipant{},
		&TodoSet{},
		&Todo{},
		&SubTodo{},
		&Tag{},
		&TagSchedule{},
		&TagTodo{},
		&TagMemo{},
	}
}

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.DBName))
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	}

	return Open(dialector, logLevel(cfg.DBLogLevel))
}

// Open connects through the given dialector and migrates the schema.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		Colorful:                  true,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, errors.Wrap(err, "migrate")
	}

	return db, nil
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=1"
	}
	return path + "?_foreign_keys=1"
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
