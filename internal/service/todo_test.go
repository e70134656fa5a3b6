package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/db"
	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

func TestTodoCreateToggleAndSubTodos(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "todo@example.com")
	fixed := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	env.todos.now = func() time.Time { return fixed }

	todo, err := env.todos.Create(ctx, user, models.TodoReq{
		Title:     "ship release",
		StartDate: "2024-06-01T09:00:00+09:00",
		Memo:      &models.NestedMemoReq{Text: strPtr("changelog")},
	})
	require.NoError(t, err)
	assert.True(t, todo.StartDate.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, todo.CompleteDate)
	require.NotNil(t, todo.MemoDetail)
	assert.Equal(t, todo.ID, *todo.MemoDetail.TodoID)

	set, err := defaultTodoSet(ctx, env.db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, set.ID, todo.TodoSetID)

	toggled, err := env.todos.ToggleStatus(ctx, user, todo.ID)
	require.NoError(t, err)
	require.NotNil(t, toggled.CompleteDate)
	assert.True(t, toggled.CompleteDate.Equal(fixed))

	toggled, err = env.todos.ToggleStatus(ctx, user, todo.ID)
	require.NoError(t, err)
	assert.Nil(t, toggled.CompleteDate)

	sub, err := env.todos.CreateSubTodo(ctx, user, todo.ID, models.SubTodoReq{Title: "tag", StartDate: "2024-06-01"})
	require.NoError(t, err)
	assert.Equal(t, todo.ID, sub.TodoID)

	sub, err = env.todos.ToggleSubTodo(ctx, user, sub.ID)
	require.NoError(t, err)
	assert.NotNil(t, sub.CompleteDate)

	reloaded, err := env.todos.Get(ctx, user, todo.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.SubTodos, 1)
	assert.Equal(t, "tag", reloaded.SubTodos[0].Title)

	other := env.activeUser(t, "other@example.com")
	_, err = env.todos.CreateSubTodo(ctx, other, todo.ID, models.SubTodoReq{Title: "x", StartDate: "2024-06-01"})
	assert.True(t, IsNotFound(err))
	_, err = env.todos.ToggleSubTodo(ctx, other, sub.ID)
	assert.True(t, IsNotFound(err))

	require.NoError(t, env.todos.DeleteSubTodo(ctx, user, sub.ID))
	reloaded, err = env.todos.Get(ctx, user, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.SubTodos)
}

func TestTodoListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "todo@example.com")
	env.todos.now = func() time.Time { return time.Date(2024, 6, 2, 23, 30, 0, 0, time.UTC) }

	work, err := env.todos.CreateSet(ctx, user, models.SetReq{Title: "Work"})
	require.NoError(t, err)

	a, err := env.todos.Create(ctx, user, models.TodoReq{Title: "a", StartDate: "2024-06-01T00:00:00Z"})
	require.NoError(t, err)
	b, err := env.todos.Create(ctx, user, models.TodoReq{Title: "b", StartDate: "2024-06-01T00:00:00Z", TodoSet: &work.ID})
	require.NoError(t, err)
	_, err = env.todos.Create(ctx, user, models.TodoReq{Title: "c", StartDate: "2024-06-01T00:00:00Z", TodoSet: &work.ID})
	require.NoError(t, err)

	_, err = env.todos.ToggleStatus(ctx, user, a.ID)
	require.NoError(t, err)
	tag, err := env.tags.Create(ctx, user, models.TagReq{Title: "urgent"})
	require.NoError(t, err)
	_, err = env.tags.Label(ctx, user, tag.ID, models.TagLabelReq{TodoID: &b.ID})
	require.NoError(t, err)

	titles := func(q TodoQuery) []string {
		items, _, err := env.todos.List(ctx, user, q)
		require.NoError(t, err)
		res := make([]string, 0, len(items))
		for _, it := range items {
			res = append(res, it.Title)
		}
		return res
	}

	assert.Equal(t, []string{"a", "b", "c"}, titles(TodoQuery{}))
	assert.Equal(t, []string{"b", "c"}, titles(TodoQuery{TodoSets: []string{strconv.FormatUint(work.ID, 10)}}))
	assert.Equal(t, []string{"a"}, titles(TodoQuery{CompleteDate: "2024-06-02"}))
	assert.Empty(t, titles(TodoQuery{CompleteDate: "2024-06-03"}))
	assert.Equal(t, []string{"b"}, titles(TodoQuery{Tags: []string{"urgent"}}))

	_, _, err = env.todos.List(ctx, user, TodoQuery{TodoSets: []string{"x"}})
	requireFieldError(t, err, "todo_set")
}

func TestTodoUpdateAndDeleteSet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "todo@example.com")

	set, err := env.todos.CreateSet(ctx, user, models.SetReq{Title: "Errands"})
	require.NoError(t, err)
	_, err = env.todos.CreateSet(ctx, user, models.SetReq{Title: "Errands"})
	requireFieldError(t, err, "title")

	todo, err := env.todos.Create(ctx, user, models.TodoReq{Title: "milk", StartDate: "2024-06-01T08:00:00Z"})
	require.NoError(t, err)
	updated, err := env.todos.Update(ctx, user, todo.ID, models.TodoUpdateReq{Title: strPtr("oat milk"), TodoSet: &set.ID})
	require.NoError(t, err)
	assert.Equal(t, "oat milk", updated.Title)
	assert.Equal(t, set.ID, updated.TodoSetID)

	_, err = env.todos.Update(ctx, user, todo.ID, models.TodoUpdateReq{StartDate: strPtr("tomorrow")})
	requireFieldError(t, err, "start_date")

	_, err = env.todos.CreateSubTodo(ctx, user, todo.ID, models.SubTodoReq{Title: "store", StartDate: "2024-06-01"})
	require.NoError(t, err)

	require.NoError(t, env.todos.DeleteSet(ctx, user, set.ID))
	_, err = env.todos.Get(ctx, user, todo.ID)
	assert.True(t, IsNotFound(err))
	var count int64
	require.NoError(t, env.db.Model(&db.SubTodo{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTodoListFilterComposition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "todo@example.com")

	setX, err := env.todos.CreateSet(ctx, user, models.SetReq{Title: "X"})
	require.NoError(t, err)
	setY, err := env.todos.CreateSet(ctx, user, models.SetReq{Title: "Y"})
	require.NoError(t, err)

	tagIDs := map[string]uint64{}
	for _, title := range []string{"t1", "t2", "t3"} {
		tag, err := env.tags.Create(ctx, user, models.TagReq{Title: title})
		require.NoError(t, err)
		tagIDs[title] = tag.ID
	}

	todos := []struct {
		title string
		set   *uint64
		tag   string
	}{
		{"x1", &setX.ID, "t1"},
		{"y1", &setY.ID, "t2"},
		{"d1", nil, "t1"},
		{"x2", &setX.ID, ""},
		{"y2", &setY.ID, "t3"},
	}
	for _, td := range todos {
		created, err := env.todos.Create(ctx, user, models.TodoReq{Title: td.title, StartDate: "2024-01-02T10:00:00Z", TodoSet: td.set})
		require.NoError(t, err)
		if td.tag != "" {
			_, err = env.tags.Label(ctx, user, tagIDs[td.tag], models.TagLabelReq{TodoID: &created.ID})
			require.NoError(t, err)
		}
	}

	titles := func(items []TodoDetail) []string {
		res := make([]string, 0, len(items))
		for _, it := range items {
			res = append(res, it.Title)
		}
		return res
	}

	sets := []string{strconv.FormatUint(setX.ID, 10), strconv.FormatUint(setY.ID, 10)}
	cases := map[string]struct {
		q    TodoQuery
		want []string
	}{
		"tags are or'd":      {TodoQuery{Tags: []string{"t1", "t2"}}, []string{"x1", "y1", "d1"}},
		"sets are or'd":      {TodoQuery{TodoSets: sets}, []string{"x1", "y1", "x2", "y2"}},
		"filters are and'ed": {TodoQuery{TodoSets: sets, Tags: []string{"t1", "t2"}}, []string{"x1", "y1"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			items, total, err := env.todos.List(ctx, user, tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(items))
			assert.Equal(t, int64(len(tc.want)), total)
		})
	}
}
