//go:build functional

package test_functional

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/models"
)

const signupBody = `
	{"email": "test@gmail.com", "password": "111111111111", "nickname": "tester",
	 "gender": "male", "birthday": "1990-05-01"}
`

func apiURL(path string) string {
	u := AppBaseURL
	u.Path = "/api/v1" + path
	return u.String()
}

func TestSignup(t *testing.T) {
	t.Run("successful signup", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&models.ProfileResp{}).
			SetBody(signupBody).
			Post(apiURL("/users/signup"))
		require.Nil(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode())

		got, ok := resp.Result().(*models.ProfileResp)
		require.True(t, ok)
		assert.Equal(t, "test@gmail.com", got.Email)
		assert.False(t, got.IsActive)

		var active bool
		err = DBConn.QueryRow(ctx, "SELECT is_active FROM users WHERE email=$1", got.Email).Scan(&active)
		assert.Nil(t, err)
		assert.False(t, active)
	})

	t.Run("bad body", func(t *testing.T) {
		defer FlushDB()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		resp, err := resty.New().
			R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(`
			{"something": "???"}
		`).
			Post(apiURL("/users/signup"))
		assert.Nil(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})
}

func TestLogin(t *testing.T) {
	defer FlushDB()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	cl := resty.New()
	resp, err := cl.R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(signupBody).
		Post(apiURL("/users/signup"))
	require.Nil(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	login := `{"email": "test@gmail.com", "password": "111111111111"}`

	t.Run("inactive account", func(t *testing.T) {
		resp, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetBody(login).
			Post(apiURL("/users/login"))
		assert.Nil(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
	})

	_, err = DBConn.Exec(ctx, "UPDATE users SET is_active = TRUE WHERE email = $1", "test@gmail.com")
	require.Nil(t, err)

	var token string
	t.Run("active account", func(t *testing.T) {
		resp, err := cl.R().
			SetHeader("Content-Type", "application/json").
			SetContext(ctx).
			SetResult(&models.LoginResp{}).
			SetBody(login).
			Post(apiURL("/users/login"))
		require.Nil(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())

		got, ok := resp.Result().(*models.LoginResp)
		require.True(t, ok)
		require.NotEmpty(t, got.Token)
		token = got.Token

		var stored string
		err = DBConn.QueryRow(ctx, "SELECT token FROM users WHERE email=$1", got.Email).Scan(&stored)
		assert.Nil(t, err)
		assert.Equal(t, stored, got.Token)
	})

	t.Run("profile", func(t *testing.T) {
		resp, err := cl.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(&models.ProfileResp{}).
			Get(apiURL("/users/profile"))
		require.Nil(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode())
		assert.Equal(t, "tester", resp.Result().(*models.ProfileResp).Nickname)
	})

	t.Run("no token", func(t *testing.T) {
		resp, err := cl.R().
			SetContext(ctx).
			Get(apiURL("/calendars"))
		assert.Nil(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode())
	})
}
