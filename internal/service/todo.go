package service

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

type (
	TodoDetail struct {
		db.Todo
		MemoDetail *MemoDetail
		SubTodos   []SubTodoDetail
		Tags       []string
	}

	SubTodoDetail struct {
		db.SubTodo
		MemoDetail *MemoDetail
	}
)

type Todos struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewTodos(conn *gorm.DB, l *zap.SugaredLogger) *Todos {
	return &Todos{
		db:     conn,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Todos) ListSets(ctx context.Context, user *db.User) ([]db.TodoSet, error) {
	sets := make([]db.TodoSet, 0)
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).Order("id").Find(&sets).Error; err != nil {
		return nil, errors.Wrap(err, "find todo sets")
	}
	return sets, nil
}

func (s *Todos) CreateSet(ctx context.Context, user *db.User, req models.SetReq) (*db.TodoSet, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.TodoSet{}, user.ID, req.Title, 0); err != nil {
		return nil, err
	}
	set := db.TodoSet{Title: req.Title, UserID: user.ID}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&set).Error; err != nil {
		return nil, errors.Wrap(err, "create todo set")
	}
	return &set, nil
}

func (s *Todos) GetSet(ctx context.Context, user *db.User, id uint64) (*db.TodoSet, error) {
	set := db.TodoSet{}
	if err := ownedByID(ctx, s.db, &set, user.ID, id, "Not found."); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *Todos) UpdateSet(ctx context.Context, user *db.User, id uint64, req models.SetReq) (*db.TodoSet, error) {
	set, err := s.GetSet(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := checkUniqueTitle(ctx, s.db, &db.TodoSet{}, user.ID, req.Title, set.ID); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(set).Update("title", req.Title).Error; err != nil {
		return nil, errors.Wrap(err, "update todo set")
	}
	set.Title = req.Title
	return set, nil
}

func (s *Todos) DeleteSet(ctx context.Context, user *db.User, id uint64) error {
	set, err := s.GetSet(ctx, user, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todos := squirrel.Select("id").From("todos").Where(squirrel.Eq{"todo_set_id": set.ID})
		if err := deleteTodos(ctx, tx, todos); err != nil {
			return err
		}
		if err := tx.Delete(&db.TodoSet{}, set.ID).Error; err != nil {
			return errors.Wrap(err, "delete todo set")
		}
		s.logger.Infow("todo set deleted", "user_id", user.ID, "todo_set_id", set.ID)
		return nil
	})
}

func (s *Todos) List(ctx context.Context, user *db.User, q TodoQuery) ([]TodoDetail, int64, error) {
	b, err := todoFilter(user.ID, q)
	if err != nil {
		return nil, 0, err
	}
	ids, total, err := pageIDs(ctx, s.db, b, q.Page)
	if err != nil {
		return nil, 0, err
	}
	todos, err := loadTodoDetails(ctx, s.db, ids)
	if err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

func (s *Todos) Create(ctx context.Context, user *db.User, req models.TodoReq) (*TodoDetail, error) {
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return nil, err
	}
	start, err := ParseDateTime("start_date", req.StartDate)
	if err != nil && !verr.merge(err) {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	todo := db.Todo{Title: req.Title, StartDate: start}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		setID, err := resolveTodoSet(ctx, tx, user.ID, req.TodoSet)
		if err != nil {
			return err
		}
		todo.TodoSetID = setID

		if req.Memo != nil {
			memo, err := createMemo(ctx, tx, user.ID, req.Memo)
			if err != nil {
				return err
			}
			todo.MemoID = &memo.ID
		}
		if err := tx.Omit(clause.Associations).Create(&todo).Error; err != nil {
			return errors.Wrap(err, "create todo")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infow("todo created", "user_id", user.ID, "todo_id", todo.ID)
	return s.detail(ctx, todo.ID)
}

func (s *Todos) Get(ctx context.Context, user *db.User, id uint64) (*TodoDetail, error) {
	if _, err := ownedTodo(ctx, s.db, user.ID, id); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *Todos) Update(ctx context.Context, user *db.User, id uint64, req models.TodoUpdateReq) (*TodoDetail, error) {
	todo, err := ownedTodo(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.StartDate != nil {
		start, err := ParseDateTime("start_date", *req.StartDate)
		if err != nil && !verr.merge(err) {
			return nil, err
		}
		updates["start_date"] = start
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.TodoSet != nil {
		set := db.TodoSet{}
		if err := ownedByID(ctx, s.db, &set, user.ID, *req.TodoSet, "Todo set not found."); err != nil {
			return nil, err
		}
		updates["todo_set_id"] = set.ID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(todo).Updates(updates).Error; err != nil {
			return nil, errors.Wrap(err, "update todo")
		}
	}
	return s.detail(ctx, id)
}

func (s *Todos) Delete(ctx context.Context, user *db.User, id uint64) error {
	if _, err := ownedTodo(ctx, s.db, user.ID, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteTodos(ctx, tx, squirrel.Select("id").From("todos").Where(squirrel.Eq{"id": id}))
	})
}

// ToggleStatus completes an open todo now, or reopens a completed one.
func (s *Todos) ToggleStatus(ctx context.Context, user *db.User, id uint64) (*TodoDetail, error) {
	todo, err := ownedTodo(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(todo).Update("complete_date", s.flip(todo.CompleteDate)).Error; err != nil {
		return nil, errors.Wrap(err, "toggle todo")
	}
	return s.detail(ctx, id)
}

func (s *Todos) CreateSubTodo(ctx context.Context, user *db.User, todoID uint64, req models.SubTodoReq) (*SubTodoDetail, error) {
	todo, err := ownedTodo(ctx, s.db, user.ID, todoID)
	if err != nil {
		return nil, err
	}
	verr := &ValidationError{}
	if err := Validate(req); err != nil && !verr.merge(err) {
		return nil, err
	}
	start, err := ParseDateTime("start_date", req.StartDate)
	if err != nil && !verr.merge(err) {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	sub := db.SubTodo{TodoID: todo.ID, Title: req.Title, StartDate: start}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Memo != nil {
			memo, err := createMemo(ctx, tx, user.ID, req.Memo)
			if err != nil {
				return err
			}
			sub.MemoID = &memo.ID
		}
		if err := tx.Omit(clause.Associations).Create(&sub).Error; err != nil {
			return errors.Wrap(err, "create sub todo")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.subDetail(ctx, sub.ID)
}

func (s *Todos) ToggleSubTodo(ctx context.Context, user *db.User, id uint64) (*SubTodoDetail, error) {
	sub, err := ownedSubTodo(ctx, s.db, user.ID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(sub).Update("complete_date", s.flip(sub.CompleteDate)).Error; err != nil {
		return nil, errors.Wrap(err, "toggle sub todo")
	}
	return s.subDetail(ctx, id)
}

func (s *Todos) DeleteSubTodo(ctx context.Context, user *db.User, id uint64) error {
	if _, err := ownedSubTodo(ctx, s.db, user.ID, id); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&db.SubTodo{}, id).Error; err != nil {
		return errors.Wrap(err, "delete sub todo")
	}
	return nil
}

func (s *Todos) flip(completed *time.Time) interface{} {
	if completed == nil {
		return s.now()
	}
	return nil
}

func (s *Todos) detail(ctx context.Context, id uint64) (*TodoDetail, error) {
	todos, err := loadTodoDetails(ctx, s.db, []uint64{id})
	if err != nil {
		return nil, err
	}
	if len(todos) == 0 {
		return nil, notFound("Not found.")
	}
	return &todos[0], nil
}

func (s *Todos) subDetail(ctx context.Context, id uint64) (*SubTodoDetail, error) {
	sub := db.SubTodo{}
	if err := s.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		return nil, errors.Wrap(err, "find sub todo")
	}
	subs, err := withSubMemos(ctx, s.db, []db.SubTodo{sub})
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

func ownedTodo(ctx context.Context, conn *gorm.DB, userID, id uint64) (*db.Todo, error) {
	todo := db.Todo{}
	res := conn.WithContext(ctx).
		Where("id = ? AND todo_set_id IN (SELECT id FROM todo_sets WHERE user_id = ?)", id, userID).
		First(&todo)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("Not found.")
		}
		return nil, errors.Wrap(res.Error, "find todo")
	}
	return &todo, nil
}

func ownedSubTodo(ctx context.Context, conn *gorm.DB, userID, id uint64) (*db.SubTodo, error) {
	sub := db.SubTodo{}
	res := conn.WithContext(ctx).
		Where("id = ? AND todo_id IN (SELECT t.id FROM todos t JOIN todo_sets ts ON ts.id = t.todo_set_id WHERE ts.user_id = ?)", id, userID).
		First(&sub)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound("Not found.")
		}
		return nil, errors.Wrap(res.Error, "find sub todo")
	}
	return &sub, nil
}

func resolveTodoSet(ctx context.Context, conn *gorm.DB, userID uint64, id *uint64) (uint64, error) {
	if id == nil {
		set, err := defaultTodoSet(ctx, conn, userID)
		if err != nil {
			return 0, err
		}
		return set.ID, nil
	}
	set := db.TodoSet{}
	if err := ownedByID(ctx, conn, &set, userID, *id, "Todo set not found."); err != nil {
		return 0, err
	}
	return set.ID, nil
}

// deleteTodos removes the selected todos with their sub todos and tag links.
// Linked memos stay.
func deleteTodos(ctx context.Context, tx *gorm.DB, ids squirrel.SelectBuilder) error {
	idSQL, idArgs, err := ids.ToSql()
	if err != nil {
		return errors.Wrap(err, "build todo ids")
	}
	in := squirrel.Expr("todo_id IN ("+idSQL+")", idArgs...)
	if err := execSQL(ctx, tx, squirrel.Delete("tag_todos").Where(in)); err != nil {
		return errors.Wrap(err, "delete todo tags")
	}
	if err := execSQL(ctx, tx, squirrel.Delete("sub_todos").Where(in)); err != nil {
		return errors.Wrap(err, "delete sub todos")
	}
	if err := execSQL(ctx, tx, squirrel.Delete("todos").Where(squirrel.Expr("id IN ("+idSQL+")", idArgs...))); err != nil {
		return errors.Wrap(err, "delete todos")
	}
	return nil
}

// loadTodoDetails loads todos by id, keeping the order of ids.
func loadTodoDetails(ctx context.Context, conn *gorm.DB, ids []uint64) ([]TodoDetail, error) {
	res := make([]TodoDetail, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}

	todos := make([]db.Todo, 0, len(ids))
	if err := conn.WithContext(ctx).Where("id IN ?", ids).Find(&todos).Error; err != nil {
		return nil, errors.Wrap(err, "find todos")
	}
	subs := make([]db.SubTodo, 0)
	if err := conn.WithContext(ctx).Where("todo_id IN ?", ids).Order("id").Find(&subs).Error; err != nil {
		return nil, errors.Wrap(err, "find sub todos")
	}
	subDetails, err := withSubMemos(ctx, conn, subs)
	if err != nil {
		return nil, err
	}
	tags, err := scanGrouped(ctx, conn, squirrel.
		Select("tt.todo_id", "t.title").From("tag_todos tt").
		Join("todos td ON td.id = tt.todo_id").
		Join("todo_sets ts ON ts.id = td.todo_set_id").
		Join("tags t ON t.id = tt.tag_id AND t.user_id = ts.user_id").
		Where(squirrel.Eq{"tt.todo_id": ids}).
		OrderBy("t.id"))
	if err != nil {
		return nil, err
	}

	memoIDs := make([]uint64, 0)
	for _, t := range todos {
		if t.MemoID != nil {
			memoIDs = append(memoIDs, *t.MemoID)
		}
	}
	memos, err := memoIndex(ctx, conn, memoIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]db.Todo, len(todos))
	for _, t := range todos {
		byID[t.ID] = t
	}
	subsByTodo := make(map[uint64][]SubTodoDetail)
	for _, sd := range subDetails {
		subsByTodo[sd.TodoID] = append(subsByTodo[sd.TodoID], sd)
	}

	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			continue
		}
		d := TodoDetail{Todo: t, SubTodos: subsByTodo[id], Tags: tags[id]}
		if t.MemoID != nil {
			d.MemoDetail = memos[*t.MemoID]
		}
		if d.SubTodos == nil {
			d.SubTodos = []SubTodoDetail{}
		}
		if d.Tags == nil {
			d.Tags = []string{}
		}
		res = append(res, d)
	}
	return res, nil
}

func withSubMemos(ctx context.Context, conn *gorm.DB, subs []db.SubTodo) ([]SubTodoDetail, error) {
	memoIDs := make([]uint64, 0)
	for _, sub := range subs {
		if sub.MemoID != nil {
			memoIDs = append(memoIDs, *sub.MemoID)
		}
	}
	memos, err := memoIndex(ctx, conn, memoIDs)
	if err != nil {
		return nil, err
	}

	res := make([]SubTodoDetail, 0, len(subs))
	for _, sub := range subs {
		d := SubTodoDetail{SubTodo: sub}
		if sub.MemoID != nil {
			d.MemoDetail = memos[*sub.MemoID]
		}
		res = append(res, d)
	}
	return res, nil
}

func memoIndex(ctx context.Context, conn *gorm.DB, ids []uint64) (map[uint64]*MemoDetail, error) {
	details, err := loadMemoDetails(ctx, conn, ids)
	if err != nil {
		return nil, err
	}
	res := make(map[uint64]*MemoDetail, len(details))
	for i := range details {
		res[details[i].ID] = &details[i]
	}
	return res, nil
}
