package service

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
)

// provisionDefaults creates the reserved collections of a freshly activated
// user. The (user_id, title) unique indexes keep it to one of each.
func provisionDefaults(tx *gorm.DB, userID uint64) error {
	if err := tx.Create(&db.Calendar{Title: db.DefaultCalendarTitle, UserID: userID}).Error; err != nil {
		return errors.Wrap(err, "create default calendar")
	}
	if err := tx.Create(&db.MemoSet{Title: db.DefaultMemoSetTitle, UserID: userID}).Error; err != nil {
		return errors.Wrap(err, "create default memo set")
	}
	if err := tx.Create(&db.TodoSet{Title: db.DefaultTodoSetTitle, UserID: userID}).Error; err != nil {
		return errors.Wrap(err, "create default todo set")
	}
	return nil
}

// ownedByTitle loads the row of model owned by userID with the given title.
func ownedByTitle(ctx context.Context, conn *gorm.DB, dest interface{}, userID uint64, title, msg string) error {
	res := conn.WithContext(ctx).Where("user_id = ? AND title = ?", userID, title).First(dest)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return notFound(msg)
		}
		return errors.Wrap(res.Error, "find by title")
	}
	return nil
}

// ownedByID loads the row of model owned directly by userID.
func ownedByID(ctx context.Context, conn *gorm.DB, dest interface{}, userID, id uint64, msg string) error {
	res := conn.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(dest)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return notFound(msg)
		}
		return errors.Wrap(res.Error, "find by id")
	}
	return nil
}

func defaultCalendar(ctx context.Context, conn *gorm.DB, userID uint64) (*db.Calendar, error) {
	cal := db.Calendar{}
	if err := ownedByTitle(ctx, conn, &cal, userID, db.DefaultCalendarTitle, "Calendar not found."); err != nil {
		return nil, err
	}
	return &cal, nil
}

func defaultMemoSet(ctx context.Context, conn *gorm.DB, userID uint64) (*db.MemoSet, error) {
	set := db.MemoSet{}
	if err := ownedByTitle(ctx, conn, &set, userID, db.DefaultMemoSetTitle, "Memo set not found."); err != nil {
		return nil, err
	}
	return &set, nil
}

func defaultTodoSet(ctx context.Context, conn *gorm.DB, userID uint64) (*db.TodoSet, error) {
	set := db.TodoSet{}
	if err := ownedByTitle(ctx, conn, &set, userID, db.DefaultTodoSetTitle, "Todo set not found."); err != nil {
		return nil, err
	}
	return &set, nil
}
