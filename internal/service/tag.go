package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

// TagDetail is a tag with the ids of everything it labels.
type TagDetail struct {
	db.Tag
	Schedules []uint64
	Todos     []uint64
	Memos     []uint64
}

type labelTarget struct {
	table  string
	column string
	id     uint64
}

type Tags struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewTags(conn *gorm.DB, l *zap.SugaredLogger) *Tags {
	return &Tags{
		db:     conn,
		logger: l,
	}
}

func (s *Tags) List(ctx context.Context, user *db.User) ([]TagDetail, error) {
	tags := make([]db.Tag, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("id").Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "find tags")
	}
	return s.details(ctx, tags)
}

func (s *Tags) Get(ctx context.Context, user *db.User, id uint64) (*TagDetail, error) {
	tag := db.Tag{}
	if err := ownedByID(ctx, s.db, &tag, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	details, err := s.details(ctx, []db.Tag{tag})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *Tags) Create(ctx context.Context, user *db.User, req models.TagReq) (*TagDetail, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.Tag{}, user.ID, req.Title, 0); err != nil {
		return nil, err
	}
	tag := db.Tag{Title: req.Title, UserID: user.ID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&tag).Error; err != nil {
		return nil, errors.Wrap(err, "create tag")
	}
	return &TagDetail{Tag: tag, Schedules: []uint64{}, Todos: []uint64{}, Memos: []uint64{}}, nil
}

func (s *Tags) Rename(ctx context.Context, user *db.User, id uint64, req models.TagReq) (*TagDetail, error) {
	tag := db.Tag{}
	if err := ownedByID(ctx, s.db, &tag, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.Tag{}, user.ID, req.Title, tag.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&tag).Update("title", req.Title).Error; err != nil {
		return nil, errors.Wrap(err, "rename tag")
	}
	return s.Get(ctx, user, id)
}

// Delete removes the tag and every link it has.
func (s *Tags) Delete(ctx context.Context, user *db.User, id uint64) error {
	tag := db.Tag{}
	if err := ownedByID(ctx, s.db, &tag, user.ID, id, "Not found."); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"tag_schedules", "tag_todos", "tag_memos"} {
			if err := execSQL(ctx, tx, squirrel.Delete(table).Where(squirrel.Eq{"tag_id": tag.ID})); err != nil {
				return errors.Wrapf(err, "delete %s", table)
			}
		}
		if err := tx.Delete(&db.Tag{}, tag.ID).Error; err != nil {
			return errors.Wrap(err, "delete tag")
		}
		s.logger.Infow("tag deleted", "user_id", user.ID, "tag_id", tag.ID)
		return nil
	})
}

// Label attaches the tag to the first entity named in req. The entity is not
// looked up first; the link table's foreign key rejects unknown ids.
func (s *Tags) Label(ctx context.Context, user *db.User, id uint64, req models.TagLabelReq) (*TagDetail, error) {
	tag := db.Tag{}
	if err := ownedByID(ctx, s.db, &tag, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	target, err := resolveLabelTarget(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		insert := squirrel.Insert(target.table).
			Columns("tag_id", target.column).
			Values(tag.ID, target.id).
			Suffix("ON CONFLICT DO NOTHING")
		return errors.Wrap(execSQL(ctx, tx, insert), "insert label")
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("tag labeled", "tag_id", tag.ID, target.column, target.id)
	return s.Get(ctx, user, id)
}

// Unlabel detaches the tag from the first entity named in req. Missing links
// are ignored.
func (s *Tags) Unlabel(ctx context.Context, user *db.User, id uint64, req models.TagLabelReq) (*TagDetail, error) {
	tag := db.Tag{}
	if err := ownedByID(ctx, s.db, &tag, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	target, err := resolveLabelTarget(req)
	if err != nil {
		return nil, err
	}

	del := squirrel.Delete(target.table).Where(squirrel.Eq{"tag_id": tag.ID, target.column: target.id})
	if err := execSQL(ctx, s.db, del); err != nil {
		return nil, errors.Wrap(err, "delete label")
	}
	return s.Get(ctx, user, id)
}

// resolveLabelTarget picks the first non-zero id among schedule, todo and
// memo.
func resolveLabelTarget(req models.TagLabelReq) (labelTarget, error) {
	switch {
	case HasID(req.ScheduleID):
		return labelTarget{table: "tag_schedules", column: "schedule_id", id: *req.ScheduleID}, nil
	case HasID(req.TodoID):
		return labelTarget{table: "tag_todos", column: "todo_id", id: *req.TodoID}, nil
	case HasID(req.MemoID):
		return labelTarget{table: "tag_memos", column: "memo_id", id: *req.MemoID}, nil
	default:
		return labelTarget{}, badRequest("Need schedule_id, todo_id or memo_id")
	}
}

// HasID reports whether id is set to a usable value. Zero counts as absent.
func HasID(id *uint64) bool {
	return id != nil && *id != 0
}

func (s *Tags) details(ctx context.Context, tags []db.Tag) ([]TagDetail, error) {
	res := make([]TagDetail, 0, len(tags))
	if len(tags) == 0 {
		return res, nil
	}
	ids := make([]uint64, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}

	links := map[string]map[uint64][]uint64{}
	for table, column := range map[string]string{
		"tag_schedules": "schedule_id",
		"tag_todos":     "todo_id",
		"tag_memos":     "memo_id",
	} {
		grouped, err := scanIDGroups(ctx, s.db, squirrel.
			Select("tag_id", column).From(table).
			Where(squirrel.Eq{"tag_id": ids}).
			OrderBy(column))
		if err != nil {
			return nil, err
		}
		links[table] = grouped
	}

	for _, t := range tags {
		res = append(res, TagDetail{
			Tag:       t,
			Schedules: nonNil(links["tag_schedules"][t.ID]),
			Todos:     nonNil(links["tag_todos"][t.ID]),
			Memos:     nonNil(links["tag_memos"][t.ID]),
		})
	}
	return res, nil
}

func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
