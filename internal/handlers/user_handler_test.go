package handlers_test

import (
	"EnvKeeper/internal/model"
	"EnvKeeper/internal/repo"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

func hasAuthCookie(rr interface{ Result() *http.Response }) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "auth_token" {
			return true
		}
	}
	return false
}

func TestUser_Register(t *testing.T) {
	m := new(mockUserRepo)
	app := newTestAppWithUsers(t, m)

	t.Run("ok", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return((*model.User)(nil), nil).Once()
		created := &model.User{ID: 42, Login: "john"}
		m.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool { return u.Login == "john" && u.Password != "" })).Return(created, nil).Once()

		rr := app.do(t, http.MethodPost, "/api/user/register", `{"login":"john","password":"p"}`, 0)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, hasAuthCookie(rr), "Set-Cookie auth_token expected")
		assert.Equal(t, float64(42), decodeJSON(t, rr)["id"])
		m.AssertExpectations(t)
	})

	t.Run("conflict", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "john").Return(&model.User{ID: 1, Login: "john"}, nil).Once()

		rr := app.do(t, http.MethodPost, "/api/user/register", `{"login":"john","password":"p"}`, 0)

		assert.Equal(t, http.StatusConflict, rr.Code)
		m.AssertExpectations(t)
	})

	t.Run("bad request", func(t *testing.T) {
		m.ExpectedCalls = nil
		rr := app.do(t, http.MethodPost, "/api/user/register", `{"login":"john"}`, 0)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUser_Login(t *testing.T) {
	m := new(mockUserRepo)
	app := newTestAppWithUsers(t, m)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)

	t.Run("ok", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		rr := app.do(t, http.MethodPost, "/api/user/login", `{"login":"alice","password":"secret"}`, 0)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, hasAuthCookie(rr))
		m.AssertExpectations(t)
	})

	t.Run("unauthorized", func(t *testing.T) {
		m.ExpectedCalls = nil
		m.On("GetUserByLogin", mock.Anything, "alice").Return(&model.User{ID: 2, Login: "alice", Password: string(hash)}, nil).Once()

		rr := app.do(t, http.MethodPost, "/api/user/login", `{"login":"alice","password":"bad"}`, 0)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		m.AssertExpectations(t)
	})
}

func TestUser_Status(t *testing.T) {
	app := newTestAppWithUsers(t, new(mockUserRepo))

	t.Run("anonymous", func(t *testing.T) {
		rr := app.do(t, http.MethodPost, "/api/user/test", "", 0)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("authorized", func(t *testing.T) {
		rr := app.do(t, http.MethodPost, "/api/user/test", "", 77)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, float64(77), decodeJSON(t, rr)["user_id"])
	})
}
