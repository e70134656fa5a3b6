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

// MemoDetail is a memo together with the entities pointing at it.
type MemoDetail struct {
	db.Memo
	ScheduleID *uint64
	TodoID     *uint64
	SubTodoID  *uint64
	Tags       []string
}

type Memos struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewMemos(conn *gorm.DB, l *zap.SugaredLogger) *Memos {
	return &Memos{
		db:     conn,
		logger: l,
	}
}

func (s *Memos) ListSets(ctx context.Context, user *db.User) ([]db.MemoSet, error) {
	sets := make([]db.MemoSet, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("id").Find(&sets).Error; err != nil {
		return nil, errors.Wrap(err, "find memo sets")
	}
	return sets, nil
}

func (s *Memos) CreateSet(ctx context.Context, user *db.User, req models.SetReq) (*db.MemoSet, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.MemoSet{}, user.ID, req.Title, 0); err != nil {
		return nil, err
	}
	set := db.MemoSet{Title: req.Title, UserID: user.ID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&set).Error; err != nil {
		return nil, errors.Wrap(err, "create memo set")
	}
	return &set, nil
}

func (s *Memos) GetSet(ctx context.Context, user *db.User, id uint64) (*db.MemoSet, error) {
	set := db.MemoSet{}
	if err := ownedByID(ctx, s.db, &set, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *Memos) UpdateSet(ctx context.Context, user *db.User, id uint64, req models.SetReq) (*db.MemoSet, error) {
	set, err := s.GetSet(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.MemoSet{}, user.ID, req.Title, set.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(set).Update("title", req.Title).Error; err != nil {
		return nil, errors.Wrap(err, "update memo set")
	}
	set.Title = req.Title
	return set, nil
}

// DeleteSet removes the set and its memos. Schedules and todos that pointed
// at those memos lose their link.
func (s *Memos) DeleteSet(ctx context.Context, user *db.User, id uint64) error {
	set, err := s.GetSet(ctx, user, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memos := squirrel.Select("id").From("memos").Where(squirrel.Eq{"memo_set_id": set.ID})
		if err := deleteMemos(ctx, tx, memos); err != nil {
			return err
		}
		if err := tx.Delete(&db.MemoSet{}, set.ID).Error; err != nil {
			return errors.Wrap(err, "delete memo set")
		}
		s.logger.Infow("memo set deleted", "user_id", user.ID, "memo_set_id", set.ID)
		return nil
	})
}

// MemoQuery holds the raw memo list filters.
type MemoQuery struct {
	Year     string
	Month    string
	Day      string
	Types    []string
	MemoSets []string
	Tags     []string
	Sort     string
	Page     Pagination
}

func (s *Memos) List(ctx context.Context, user *db.User, q MemoQuery) ([]MemoDetail, int64, error) {
	b, err := memoFilter(user.ID, q)
	if err != nil {
		return nil, 0, err
	}
	ids, total, err := pageIDs(ctx, s.db, b, q.Page)
	if err != nil {
		return nil, 0, err
	}
	memos, err := loadMemoDetails(ctx, s.db, ids)
	if err != nil {
		return nil, 0, err
	}
	return memos, total, nil
}

func (s *Memos) Create(ctx context.Context, user *db.User, req models.MemoReq) (*MemoDetail, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	memo := db.Memo{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := createMemo(ctx, tx, user.ID, &models.NestedMemoReq{
			Title:   req.Title,
			Text:    req.Text,
			MemoSet: req.MemoSet,
		})
		if err != nil {
			return err
		}
		memo = *created
		return linkMemo(ctx, tx, user.ID, memo.ID, req.MemoSchedule, req.MemoTodo)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("memo created", "user_id", user.ID, "memo_id", memo.ID)
	return s.detail(ctx, memo.ID)
}

func (s *Memos) Get(ctx context.Context, user *db.User, id uint64) (*MemoDetail, error) {
	if _, err := ownedMemo(ctx, s.db, user.ID, id); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

// Update edits title, text and set of a memo and links it to a schedule or
// todo when one is named.
func (s *Memos) Update(ctx context.Context, user *db.User, id uint64, req models.MemoReq) (*MemoDetail, error) {
	memo, err := ownedMemo(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Text != nil {
			updates["text"] = *req.Text
		}
		if req.MemoSet != nil {
			set := db.MemoSet{}
			if err := ownedByID(ctx, tx, &set, user.ID, *req.MemoSet, "Memo set not found."); err != nil {
				return err
			}
			updates["memo_set_id"] = set.ID
		}
		if len(updates) > 0 {
			if err := tx.Model(memo).Updates(updates).Error; err != nil {
				return errors.Wrap(err, "update memo")
			}
		}
		return linkMemo(ctx, tx, user.ID, memo.ID, req.MemoSchedule, req.MemoTodo)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *Memos) Delete(ctx context.Context, user *db.User, id uint64) error {
	if _, err := ownedMemo(ctx, s.db, user.ID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteMemos(ctx, tx, squirrel.Select("id").From("memos").Where(squirrel.Eq{"id": id}))
	})
}

func (s *Memos) detail(ctx context.Context, id uint64) (*MemoDetail, error) {
	memos, err := loadMemoDetails(ctx, s.db, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(memos) == 0 {
		return nil, notFound("Not found.")
	}
	return &memos[0], nil
}

func ownedMemo(ctx context.Context, conn *gorm.DB, userID, id uint64) (*db.Memo, error) {
	memo := db.Memo{}
	res := conn.WithContext(ctx).
		Where("id = ? AND memo_set_id IN (SELECT id FROM memo_sets WHERE user_id = ?)", id, userID).
		First(&memo)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("Not found.")
		}
		return nil, errors.Wrap(res.Error, "find memo")
	}
	return &memo, nil
}

// createMemo stores a memo in the named set, or in the default "Memo" set.
func createMemo(ctx context.Context, tx *gorm.DB, userID uint64, req *models.NestedMemoReq) (*db.Memo, error) {
	var setID uint64
	if req.MemoSet != nil {
		set := db.MemoSet{}
		if err := ownedByID(ctx, tx, &set, userID, *req.MemoSet, "Memo set not found."); err != nil {
			return nil, err
		}
		setID = set.ID
	} else {
		set, err := defaultMemoSet(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		setID = set.ID
	}

	memo := db.Memo{
		MemoSetID: setID,
		Title:     db.DefaultMemoTitle,
		Text:      req.Text,
	}
	if req.Title != nil && *req.Title != "" {
		memo.Title = *req.Title
	}
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(&memo).Error; err != nil {
		return nil, errors.Wrap(err, "create memo")
	}
	return &memo, nil
}

// linkMemo points an owned schedule or todo at memoID. The target must not
// already carry another memo. A memo hangs off at most one schedule and at
// most one todo or sub-todo, so linking moves it away from its previous holder.
func linkMemo(ctx context.Context, tx *gorm.DB, userID, memoID uint64, scheduleID, todoID *uint64) error {
	if scheduleID != nil {
		schedule, err := ownedSchedule(ctx, tx, userID, *scheduleID)
		if err != nil {
			return err
		}
		if schedule.MemoID != nil && *schedule.MemoID != memoID {
			return fieldError("memo_schedule", "This schedule already has a memo.")
		}
		if err := unlinkMemo(ctx, tx, "schedules", memoID, schedule.ID); err != nil {
			return err
		}
		if err := tx.Model(&db.Schedule{}).Where("id = ?", schedule.ID).Update("memo_id", memoID).Error; err != nil {
			return errors.Wrap(err, "link schedule memo")
		}
	}
	if todoID != nil {
		todo, err := ownedTodo(ctx, tx, userID, *todoID)
		if err != nil {
			return err
		}
		if todo.MemoID != nil && *todo.MemoID != memoID {
			return fieldError("memo_todo", "This todo already has a memo.")
		}
		if err := unlinkMemo(ctx, tx, "todos", memoID, todo.ID); err != nil {
			return err
		}
		if err := unlinkMemo(ctx, tx, "sub_todos", memoID, 0); err != nil {
			return err
		}
		if err := tx.Model(&db.Todo{}).Where("id = ?", todo.ID).Update("memo_id", memoID).Error; err != nil {
			return errors.Wrap(err, "link todo memo")
		}
	}
	return nil
}

// unlinkMemo clears memoID from every row of table except keepID.
func unlinkMemo(ctx context.Context, tx *gorm.DB, table string, memoID, keepID uint64) error {
	q := squirrel.Update(table).Set("memo_id", nil).
		Where(squirrel.Eq{"memo_id": memoID}).
		Where(squirrel.NotEq{"id": keepID})
	if err := execSQL(ctx, tx, q); err != nil {
		return errors.Wrapf(err, "unlink %s memo", table)
	}
	return nil
}

// deleteMemos removes the memos selected by ids together with their tag links
// and clears every reference to them.
func deleteMemos(ctx context.Context, tx *gorm.DB, ids squirrel.SelectBuilder) error {
	idSQL, idArgs, err := ids.ToSql()
	if err != nil {
		return errors.Wrap(err, "build memo ids")
	}
	in := squirrel.Expr("memo_id IN ("+idSQL+")", idArgs...)

	for _, table := range []string{"schedules", "todos", "sub_todos"} {
		if err := execSQL(ctx, tx, squirrel.Update(table).Set("memo_id", nil).Where(in)); err != nil {
			return errors.Wrapf(err, "unlink %s", table)
		}
	}
	if err := execSQL(ctx, tx, squirrel.Delete("tag_memos").Where(in)); err != nil {
		return errors.Wrap(err, "delete memo tags")
	}
	if err := execSQL(ctx, tx, squirrel.Delete("memos").Where(squirrel.Expr("id IN ("+idSQL+")", idArgs...))); err != nil {
		return errors.Wrap(err, "delete memos")
	}
	return nil
}

// loadMemoDetails loads memos by id, keeping the order of ids.
func loadMemoDetails(ctx context.Context, conn *gorm.DB, ids []uint64) ([]MemoDetail, error) {
	res := make([]MemoDetail, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	memos := make([]db.Memo, 0, len(ids))
	if err := conn.WithContext(ctx).Where("id IN ?", ids).Find(&memos).Error; err != nil {
		return nil, errors.Wrap(err, "find memos")
	}
	byID := make(map[uint64]db.Memo, len(memos))
	for _, m := range memos {
		byID[m.ID] = m
	}

	links := map[string]map[uint64][]uint64{}
	for _, table := range []string{"schedules", "todos", "sub_todos"} {
		grouped, err := scanIDGroups(ctx, conn, squirrel.
			Select("memo_id", "id").From(table).
			Where(squirrel.Eq{"memo_id": ids}))
		if err != nil {
			return nil, err
		}
		links[table] = grouped
	}
	tags, err := scanGrouped(ctx, conn, squirrel.
		Select("tm.memo_id", "t.title").From("tag_memos tm").
		Join("memos m ON m.id = tm.memo_id").
		Join("memo_sets ms ON ms.id = m.memo_set_id").
		Join("tags t ON t.id = tm.tag_id AND t.user_id = ms.user_id").
		Where(squirrel.Eq{"tm.memo_id": ids}).
		OrderBy("t.id"))
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		m, ok := byID[id]
		if !ok {
			continue
		}
		d := MemoDetail{
			Memo:       m,
			ScheduleID: firstID(links["schedules"][id]),
			TodoID:     firstID(links["todos"][id]),
			SubTodoID:  firstID(links["sub_todos"][id]),
			Tags:       tags[id],
		}
		if d.Tags == nil {
			d.Tags = []string{}
		}
		res = append(res, d)
	}
	return res, nil
}

func firstID(ids []uint64) *uint64 {
	if len(ids) == 0 {
		return nil
	}
	id := ids[0]
	return &id
}
