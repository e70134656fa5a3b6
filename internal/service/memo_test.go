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

func memoTitles(items []MemoDetail) []string {
	titles := make([]string, 0, len(items))
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	return titles
}

// linkedMemos stores one memo of each link kind and returns the user.
func linkedMemos(t *testing.T, env *testEnv) *db.User {
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")

	_, err := env.schedules.Create(ctx, user, models.ScheduleReq{
		Title: "s", Memo: &models.NestedMemoReq{Title: strPtr("schedule memo")},
		StartDate: "2024-01-02", StartTime: "10:00", EndDate: "2024-01-02", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = env.todos.Create(ctx, user, models.TodoReq{
		Title: "t", StartDate: "2024-01-02T10:00:00Z", Memo: &models.NestedMemoReq{Title: strPtr("todo memo")},
	})
	require.NoError(t, err)

	todo, err := env.todos.Create(ctx, user, models.TodoReq{Title: "parent", StartDate: "2024-01-02T10:00:00Z"})
	require.NoError(t, err)
	_, err = env.todos.CreateSubTodo(ctx, user, todo.ID, models.SubTodoReq{
		Title: "sub", StartDate: "2024-01-02T10:00:00Z", Memo: &models.NestedMemoReq{Title: strPtr("sub todo memo")},
	})
	require.NoError(t, err)

	_, err = env.memos.Create(ctx, user, models.MemoReq{Title: strPtr("standalone memo")})
	require.NoError(t, err)
	return user
}

func TestListMemosByType(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := linkedMemos(t, env)

	cases := map[string]struct {
		types []string
		want  []string
	}{
		"no filter":           {nil, []string{"schedule memo", "todo memo", "sub todo memo", "standalone memo"}},
		"standalone":          {[]string{""}, []string{"standalone memo"}},
		"schedule":            {[]string{"schedule"}, []string{"schedule memo"}},
		"todo":                {[]string{"todo"}, []string{"todo memo", "sub todo memo"}},
		"schedule+standalone": {[]string{"schedule", ""}, []string{"schedule memo", "standalone memo"}},
		"all":                 {[]string{"schedule", "todo", ""}, []string{"schedule memo", "todo memo", "sub todo memo", "standalone memo"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			items, _, err := env.memos.List(ctx, user, MemoQuery{Types: tc.types})
			require.NoError(t, err)
			assert.Equal(t, tc.want, memoTitles(items))
		})
	}

	_, _, err := env.memos.List(ctx, user, MemoQuery{Types: []string{"calendar"}})
	requireFieldError(t, err, "type")
}

func TestListMemosByDateSetTagAndSort(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")

	set, err := env.memos.CreateSet(ctx, user, models.SetReq{Title: "Ideas"})
	require.NoError(t, err)

	old, err := env.memos.Create(ctx, user, models.MemoReq{Title: strPtr("b old")})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&db.Memo{}).Where("id = ?", old.ID).
		Update("created_at", time.Date(2023, 5, 20, 12, 0, 0, 0, time.UTC)).Error)
	_, err = env.memos.Create(ctx, user, models.MemoReq{Title: strPtr("a idea"), MemoSet: &set.ID})
	require.NoError(t, err)
	tagged, err := env.memos.Create(ctx, user, models.MemoReq{Title: strPtr("c tagged")})
	require.NoError(t, err)

	tag, err := env.tags.Create(ctx, user, models.TagReq{Title: "later"})
	require.NoError(t, err)
	_, err = env.tags.Label(ctx, user, tag.ID, models.TagLabelReq{MemoID: &tagged.ID})
	require.NoError(t, err)

	list := func(q MemoQuery) []string {
		items, _, err := env.memos.List(ctx, user, q)
		require.NoError(t, err)
		return memoTitles(items)
	}

	assert.Equal(t, []string{"b old"}, list(MemoQuery{Year: "2023"}))
	assert.Equal(t, []string{"b old"}, list(MemoQuery{Year: "2023", Month: "5", Day: "20"}))
	assert.Empty(t, list(MemoQuery{Year: "2023", Month: "5", Day: "21"}))
	assert.Equal(t, []string{"a idea"}, list(MemoQuery{MemoSets: []string{strconv.FormatUint(set.ID, 10)}}))
	assert.Equal(t, []string{"c tagged"}, list(MemoQuery{Tags: []string{"later"}}))
	assert.Equal(t, []string{"a idea", "b old", "c tagged"}, list(MemoQuery{Sort: "title_asc"}))
	assert.Equal(t, []string{"c tagged", "b old", "a idea"}, list(MemoQuery{Sort: "title_desc"}))
	assert.Equal(t, "b old", list(MemoQuery{Sort: "created_at_asc"})[0])

	_, _, err = env.memos.List(ctx, user, MemoQuery{Month: "5"})
	requireFieldError(t, err, "month")
	_, _, err = env.memos.List(ctx, user, MemoQuery{MemoSets: []string{"abc"}})
	requireFieldError(t, err, "memo_set")
	_, _, err = env.memos.List(ctx, user, MemoQuery{Sort: "random"})
	requireFieldError(t, err, "sort")
}

func TestMemoLinking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")
	sc := env.schedule(t, user, "plain", "2024-01-02")

	memo, err := env.memos.Create(ctx, user, models.MemoReq{Text: strPtr("linked later"), MemoSchedule: &sc.ID})
	require.NoError(t, err)
	require.NotNil(t, memo.ScheduleID)
	assert.Equal(t, sc.ID, *memo.ScheduleID)
	assert.Equal(t, db.DefaultMemoTitle, memo.Title)

	_, err = env.memos.Create(ctx, user, models.MemoReq{MemoSchedule: &sc.ID})
	requireFieldError(t, err, "memo_schedule")

	require.NoError(t, env.memos.Delete(ctx, user, memo.ID))
	reloaded, err := env.schedules.Get(ctx, user, sc.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.MemoID)
}

func TestMemoRelinkMovesLink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")

	t.Run("schedule to schedule", func(t *testing.T) {
		from, err := env.schedules.Create(ctx, user, models.ScheduleReq{
			Title: "from", Memo: &models.NestedMemoReq{Title: strPtr("moving")},
			StartDate: "2024-01-02", StartTime: "10:00", EndDate: "2024-01-02", EndTime: "11:00",
		})
		require.NoError(t, err)
		require.NotNil(t, from.MemoID)
		to := env.schedule(t, user, "to", "2024-01-03")

		memo, err := env.memos.Update(ctx, user, *from.MemoID, models.MemoReq{MemoSchedule: &to.ID})
		require.NoError(t, err)
		require.NotNil(t, memo.ScheduleID)
		assert.Equal(t, to.ID, *memo.ScheduleID)

		reloaded, err := env.schedules.Get(ctx, user, from.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.MemoID)
	})

	t.Run("todo to todo", func(t *testing.T) {
		from, err := env.todos.Create(ctx, user, models.TodoReq{
			Title: "from", StartDate: "2024-01-02T10:00:00Z", Memo: &models.NestedMemoReq{Title: strPtr("todo note")},
		})
		require.NoError(t, err)
		require.NotNil(t, from.MemoDetail)
		to, err := env.todos.Create(ctx, user, models.TodoReq{Title: "to", StartDate: "2024-01-02T10:00:00Z"})
		require.NoError(t, err)

		memo, err := env.memos.Update(ctx, user, from.MemoDetail.ID, models.MemoReq{MemoTodo: &to.ID})
		require.NoError(t, err)
		require.NotNil(t, memo.TodoID)
		assert.Equal(t, to.ID, *memo.TodoID)

		reloaded, err := env.todos.Get(ctx, user, from.ID)
		require.NoError(t, err)
		assert.Nil(t, reloaded.MemoID)
		assert.Nil(t, reloaded.MemoDetail)
	})

	t.Run("sub todo to todo", func(t *testing.T) {
		parent, err := env.todos.Create(ctx, user, models.TodoReq{Title: "parent", StartDate: "2024-01-02T10:00:00Z"})
		require.NoError(t, err)
		sub, err := env.todos.CreateSubTodo(ctx, user, parent.ID, models.SubTodoReq{
			Title: "sub", StartDate: "2024-01-02T10:00:00Z", Memo: &models.NestedMemoReq{Title: strPtr("sub note")},
		})
		require.NoError(t, err)
		require.NotNil(t, sub.MemoDetail)
		to, err := env.todos.Create(ctx, user, models.TodoReq{Title: "target", StartDate: "2024-01-02T10:00:00Z"})
		require.NoError(t, err)

		memo, err := env.memos.Update(ctx, user, sub.MemoDetail.ID, models.MemoReq{MemoTodo: &to.ID})
		require.NoError(t, err)
		require.NotNil(t, memo.TodoID)
		assert.Equal(t, to.ID, *memo.TodoID)
		assert.Nil(t, memo.SubTodoID)
	})
}

func TestMemoSetCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")

	_, err := env.memos.CreateSet(ctx, user, models.SetReq{Title: db.DefaultMemoSetTitle})
	requireFieldError(t, err, "title")

	set, err := env.memos.CreateSet(ctx, user, models.SetReq{Title: "Journal"})
	require.NoError(t, err)
	_, err = env.memos.UpdateSet(ctx, user, set.ID, models.SetReq{Title: db.DefaultMemoSetTitle})
	requireFieldError(t, err, "title")
	renamed, err := env.memos.UpdateSet(ctx, user, set.ID, models.SetReq{Title: "Diary"})
	require.NoError(t, err)
	assert.Equal(t, "Diary", renamed.Title)

	_, err = env.memos.Create(ctx, user, models.MemoReq{Title: strPtr("entry"), MemoSet: &set.ID})
	require.NoError(t, err)

	other := env.activeUser(t, "other@example.com")
	_, err = env.memos.GetSet(ctx, other, set.ID)
	assert.True(t, IsNotFound(err))
	_, err = env.memos.Create(ctx, other, models.MemoReq{MemoSet: &set.ID})
	assert.True(t, IsNotFound(err))

	require.NoError(t, env.memos.DeleteSet(ctx, user, set.ID))
	var count int64
	require.NoError(t, env.db.Model(&db.Memo{}).Where("memo_set_id = ?", set.ID).Count(&count).Error)
	assert.Zero(t, count)

	sets, err := env.memos.ListSets(ctx, user)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, db.DefaultMemoSetTitle, sets[0].Title)
}

func TestListMemosFilterComposition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.activeUser(t, "memo@example.com")

	setA, err := env.memos.CreateSet(ctx, user, models.SetReq{Title: "A"})
	require.NoError(t, err)
	setB, err := env.memos.CreateSet(ctx, user, models.SetReq{Title: "B"})
	require.NoError(t, err)
	sc := env.schedule(t, user, "meeting", "2024-01-02")

	tagIDs := map[string]uint64{}
	for _, title := range []string{"red", "blue", "green"} {
		tag, err := env.tags.Create(ctx, user, models.TagReq{Title: title})
		require.NoError(t, err)
		tagIDs[title] = tag.ID
	}

	memos := []struct {
		title    string
		set      *uint64
		tag      string
		schedule *uint64
	}{
		{"a1", &setA.ID, "red", nil},
		{"b1", &setB.ID, "blue", nil},
		{"d1", nil, "red", nil},
		{"a2", &setA.ID, "", nil},
		{"a3", &setA.ID, "blue", &sc.ID},
		{"b2", &setB.ID, "green", nil},
	}
	for _, m := range memos {
		created, err := env.memos.Create(ctx, user, models.MemoReq{Title: strPtr(m.title), MemoSet: m.set, MemoSchedule: m.schedule})
		require.NoError(t, err)
		if m.tag != "" {
			_, err = env.tags.Label(ctx, user, tagIDs[m.tag], models.TagLabelReq{MemoID: &created.ID})
			require.NoError(t, err)
		}
	}

	sets := []string{strconv.FormatUint(setA.ID, 10), strconv.FormatUint(setB.ID, 10)}
	cases := map[string]struct {
		q    MemoQuery
		want []string
	}{
		"tags are or'd":       {MemoQuery{Tags: []string{"red", "blue"}}, []string{"a1", "b1", "d1", "a3"}},
		"sets are or'd":       {MemoQuery{MemoSets: sets}, []string{"a1", "b1", "a2", "a3", "b2"}},
		"standalone only":     {MemoQuery{Types: []string{""}}, []string{"a1", "b1", "d1", "a2", "b2"}},
		"filters are and'ed":  {MemoQuery{Types: []string{""}, MemoSets: sets, Tags: []string{"red", "blue"}}, []string{"a1", "b1"}},
		"unknown tag matches": {MemoQuery{Tags: []string{"purple"}}, []string{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			items, total, err := env.memos.List(ctx, user, tc.q)
			require.NoError(t, err)
			assert.Equal(t, tc.want, memoTitles(items))
			assert.Equal(t, int64(len(tc.want)), total)
		})
	}
}
