package models

import "time"

type (
	SignupReq struct {
		Email        string  `json:"email" validate:"required,email,max=255"`
		Password     string  `json:"password"`
		Nickname     string  `json:"nickname" validate:"required,max=30"`
		Gender       string  `json:"gender" validate:"required,oneof=male female"`
		Birthday     string  `json:"birthday" validate:"required"`
		Photo        *string `json:"photo" validate:"omitempty,url,max=255"`
		GoogleCalURL *string `json:"google_cal_url" validate:"omitempty,url,max=255"`
	}

	LoginReq struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	LoginResp struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}

	EmailReq struct {
		Email string `json:"email"`
	}

	EmailResp struct {
		Email string `json:"email"`
	}

	ResetPasswordReq struct {
		UID64    string `json:"uid64"`
		Token    string `json:"token"`
		Password string `json:"password"`
	}

	ProfileUpdateReq struct {
		Nickname     *string `json:"nickname" validate:"omitempty,max=30"`
		Gender       *string `json:"gender" validate:"omitempty,oneof=male female"`
		Birthday     *string `json:"birthday"`
		Photo        *string `json:"photo" validate:"omitempty,url,max=255"`
		GoogleCalURL *string `json:"google_cal_url" validate:"omitempty,url,max=255"`
		Password     *string `json:"password" validate:"omitempty,min=1"`
	}

	ProfileResp struct {
		Email        string    `json:"email"`
		Nickname     string    `json:"nickname"`
		Gender       string    `json:"gender"`
		Birthday     string    `json:"birthday"`
		Photo        *string   `json:"photo"`
		GoogleCalURL *string   `json:"google_cal_url"`
		IsActive     bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"`
	}
)

type (
	CalendarReq struct {
		Title string `json:"title" validate:"required,max=50"`
	}

	CalendarResp struct {
		ID        uint64    `json:"id"`
		Title     string    `json:"title"`
		User      string    `json:"user"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	CalendarImportReq struct {
		URL *string `json:"url" validate:"omitempty,url"`
	}
)

type (
	// NestedMemoReq creates a memo together with its owning schedule or todo.
	NestedMemoReq struct {
		Title   *string `json:"title" validate:"omitempty,max=50"`
		Text    *string `json:"text"`
		MemoSet *uint64 `json:"memo_set"`
	}

	ScheduleReq struct {
		Title       string         `json:"title" validate:"required,max=50"`
		Calendar    *string        `json:"calendar" validate:"omitempty,max=50"`
		Memo        *NestedMemoReq `json:"memo"`
		GoogleURL   *string        `json:"google_url" validate:"omitempty,url,max=255"`
		StartDate   string         `json:"start_date" validate:"required"`
		StartTime   string         `json:"start_time" validate:"required"`
		EndDate     string         `json:"end_date" validate:"required"`
		EndTime     string         `json:"end_time" validate:"required"`
		IsRepeat    bool           `json:"is_repeat"`
		Participant []string       `json:"participant" validate:"omitempty,dive,email"`
	}

	ScheduleResp struct {
		ID          uint64    `json:"id"`
		Calendar    string    `json:"calendar"`
		Memo        *uint64   `json:"memo"`
		Participant []string  `json:"participant"`
		Tags        []string  `json:"tags"`
		Title       string    `json:"title"`
		GoogleURL   *string   `json:"google_url"`
		StartDate   string    `json:"start_date"`
		StartTime   string    `json:"start_time"`
		EndDate     string    `json:"end_date"`
		EndTime     string    `json:"end_time"`
		IsRepeat    bool      `json:"is_repeat"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
)

type (
	SetReq struct {
		Title string `json:"title" validate:"required,max=50"`
	}

	MemoSetResp struct {
		ID        uint64    `json:"id"`
		Title     string    `json:"title"`
		User      uint64    `json:"user"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	TodoSetResp struct {
		ID        uint64    `json:"id"`
		Title     string    `json:"title"`
		User      string    `json:"user"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	MemoReq struct {
		Title        *string `json:"title" validate:"omitempty,max=50"`
		Text         *string `json:"text"`
		MemoSet      *uint64 `json:"memo_set"`
		MemoSchedule *uint64 `json:"memo_schedule"`
		MemoTodo     *uint64 `json:"memo_todo"`
	}

	MemoResp struct {
		ID           uint64    `json:"id"`
		Title        string    `json:"title"`
		MemoSet      uint64    `json:"memo_set"`
		Text         *string   `json:"text"`
		MemoSchedule *uint64   `json:"memo_schedule"`
		MemoTodo     *uint64   `json:"memo_todo"`
		MemoSubTodo  *uint64   `json:"memo_sub_todo"`
		Tags         []string  `json:"tags"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}
)

type (
	TodoReq struct {
		Title     string         `json:"title" validate:"required,max=50"`
		StartDate string         `json:"start_date" validate:"required"`
		TodoSet   *uint64        `json:"todo_set"`
		Memo      *NestedMemoReq `json:"memo"`
	}

	TodoUpdateReq struct {
		Title     *string `json:"title" validate:"omitempty,max=50"`
		StartDate *string `json:"start_date"`
		TodoSet   *uint64 `json:"todo_set"`
	}

	SubTodoReq struct {
		Title     string         `json:"title" validate:"required,max=50"`
		StartDate string         `json:"start_date" validate:"required"`
		Memo      *NestedMemoReq `json:"memo"`
	}

	TodoResp struct {
		ID           uint64        `json:"id"`
		TodoSet      uint64        `json:"todo_set"`
		Memo         *MemoResp     `json:"memo"`
		Title        string        `json:"title"`
		StartDate    time.Time     `json:"start_date"`
		CompleteDate *time.Time    `json:"complete_date"`
		TodoSub      []SubTodoResp `json:"todo_sub"`
		Tags         []string      `json:"tags"`
		CreatedAt    time.Time     `json:"created_at"`
		UpdatedAt    time.Time     `json:"updated_at"`
	}

	SubTodoResp struct {
		ID           uint64     `json:"id"`
		Todo         uint64     `json:"todo"`
		Memo         *MemoResp  `json:"memo"`
		Title        string     `json:"title"`
		StartDate    time.Time  `json:"start_date"`
		CompleteDate *time.Time `json:"complete_date"`
	}
)

type (
	TagReq struct {
		Title string `json:"title" validate:"required,max=30"`
	}

	// TagLabelReq names the entity to (un)label. The first non-null id wins
	// in field order.
	TagLabelReq struct {
		ScheduleID *uint64 `json:"schedule_id" query:"schedule_id"`
		TodoID     *uint64 `json:"todo_id" query:"todo_id"`
		MemoID     *uint64 `json:"memo_id" query:"memo_id"`
	}

	TagResp struct {
		ID       uint64   `json:"id"`
		User     uint64   `json:"user"`
		Title    string   `json:"title"`
		Schedule []uint64 `json:"schedule"`
		Todo     []uint64 `json:"todo"`
		Memo     []uint64 `json:"memo"`
	}
)

type PageResp struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}
